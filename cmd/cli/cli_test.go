package cli

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urbanflow/client/internal/session"
	"github.com/urbanflow/client/internal/testing/fakeapi"
)

func setupCLI(t *testing.T) *fakeapi.Server {
	t.Helper()
	server := fakeapi.New(t)
	t.Setenv("URBANFLOW_STORAGE_PATH", t.TempDir())
	t.Setenv("URBANFLOW_API_BASE_URL", server.BaseURL())
	return server
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd := GetCommandOptions()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)

	err := rootCmd.ExecuteContext(context.Background())
	closeClient()

	return out.String(), err
}

func login(t *testing.T) {
	t.Helper()
	out, err := runCLI(t, "login", "--email", fakeapi.DefaultEmail, "--password", fakeapi.DefaultPassword)
	require.NoError(t, err)
	require.Contains(t, out, "Login successful!")
}

func TestLoginStatusLogout(t *testing.T) {
	setupCLI(t)

	out, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")

	out, err = runCLI(t, "login", "--email", fakeapi.DefaultEmail, "--password", fakeapi.DefaultPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Rita Resident (resident)")

	out, err = runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "Subject")
	assert.Contains(t, out, fakeapi.DefaultEmail)
	assert.Contains(t, out, "Token Type")

	out, err = runCLI(t, "status", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "Session valid for Rita Resident")

	out, err = runCLI(t, "profile")
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "`+fakeapi.DefaultEmail+`"`)

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = runCLI(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "No active session")

	out, err = runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")
}

func TestLoginRejected(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "login", "--email", fakeapi.DefaultEmail, "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No active account found with the given credentials")
	assert.Contains(t, err.Error(), "status 401")
}

func TestRegister(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "register", "--email", "new@example.com", "--password", "pw", "--role", "mayor")
	assert.ErrorContains(t, err, "invalid role")

	out, err := runCLI(t, "register",
		"--email", "new@example.com",
		"--password", "pw",
		"--first-name", "Ivy",
		"--last-name", "Investor",
		"--role", "investor")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ivy Investor (investor)")

	out, err = runCLI(t, "profile", "-q", ".role")
	require.NoError(t, err)
	assert.Equal(t, "\"investor\"\n", out)
}

func TestEphemeralSessionIsNotKept(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "--ephemeral", "login", "--email", fakeapi.DefaultEmail, "--password", fakeapi.DefaultPassword)
	require.NoError(t, err)

	out, err := runCLI(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "anonymous")
}

func TestProjectsList(t *testing.T) {
	server := setupCLI(t)

	out, err := runCLI(t, "projects", "list", "--status", "approved", "-q", ".results[0].title")
	require.NoError(t, err)
	assert.Equal(t, "\"Riverside bike lanes\"\n", out)

	request, ok := server.LastRequest()
	require.True(t, ok)
	assert.Equal(t, "/api/v1/suggestions/projects/", request.Path)
	assert.Equal(t, "status=approved", request.Query)

	_, err = runCLI(t, "projects", "list", "--filter", "district=north", "--search", "bike")
	require.NoError(t, err)

	request, _ = server.LastRequest()
	assert.Equal(t, "district=north&search=bike", request.Query)
}

func TestProjectLookups(t *testing.T) {
	server := setupCLI(t)

	for _, sub := range []string{"get", "sentiment", "dashboard", "feedback"} {
		t.Run(sub, func(t *testing.T) {
			_, err := runCLI(t, "projects", sub, fakeapi.ProjectApproved)
			require.NoError(t, err)

			request, _ := server.LastRequest()
			assert.Contains(t, request.Path, fakeapi.ProjectApproved)
		})
	}

	before := len(server.Requests())
	_, err := runCLI(t, "projects", "get", "not-a-uuid")
	assert.ErrorContains(t, err, "must be a UUID")
	assert.Len(t, server.Requests(), before)
}

func TestProjectCreateFromFile(t *testing.T) {
	setupCLI(t)
	login(t)

	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Skate park\ndistrict: east\n"), 0600))

	out, err := runCLI(t, "-o", "yaml", "projects", "create", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "title: Skate park")
	assert.Contains(t, out, "status: proposed")
}

func TestFeedbackSubmit(t *testing.T) {
	server := setupCLI(t)
	login(t)

	_, err := runCLI(t, "feedback", "submit", "--project", fakeapi.ProjectApproved, "--comment", "More trees", "--rating", "4")
	require.NoError(t, err)

	request, _ := server.LastRequest()
	assert.Equal(t, http.MethodPost, request.Method)
	assert.JSONEq(t, `{"project":"`+fakeapi.ProjectApproved+`","comment":"More trees","rating":4}`, string(request.Body))

	_, err = runCLI(t, "feedback", "submit", "--rating", "9", "--project", fakeapi.ProjectApproved)
	assert.ErrorContains(t, err, "rating")

	_, err = runCLI(t, "feedback", "submit")
	assert.ErrorContains(t, err, "--project")
}

func TestBuildingsAndInsights(t *testing.T) {
	server := setupCLI(t)
	login(t)

	out, err := runCLI(t, "buildings", "list", "-q", ".[0].name")
	require.NoError(t, err)
	assert.Equal(t, "\"Central Library\"\n", out)

	_, err = runCLI(t, "buildings", "get", fakeapi.BuildingID)
	require.NoError(t, err)

	out, err = runCLI(t, "dashboard", "--filter", "district=north", "-q", ".district")
	require.NoError(t, err)
	assert.Equal(t, "\"north\"\n", out)

	request, _ := server.LastRequest()
	assert.Equal(t, "district=north", request.Query)

	out, err = runCLI(t, "statistics", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "projects: 2")

	_, err = runCLI(t, "payments")
	require.NoError(t, err)
}

func TestUnauthenticatedCommandFails(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "payments")
	require.Error(t, err)
	assert.Equal(t, "Authentication credentials were not provided. (status 401)", err.Error())
}

func TestRequestCommand(t *testing.T) {
	server := setupCLI(t)
	login(t)

	_, err := runCLI(t, "request", "v1/auth/profile/",
		"-X", "PATCH",
		"-d", `{"first_name":"Rita"}`,
		"-H", "X-Trace: abc",
		"--param", "fields=all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not found.")
	assert.Contains(t, err.Error(), "status 404")

	request, _ := server.LastRequest()
	assert.Equal(t, http.MethodPatch, request.Method)
	assert.Equal(t, "/api/v1/auth/profile/", request.Path)
	assert.Equal(t, "fields=all", request.Query)
	assert.Equal(t, "abc", request.Header.Get("X-Trace"))
	assert.Contains(t, request.Header.Get("Authorization"), "Bearer ")
	assert.JSONEq(t, `{"first_name":"Rita"}`, string(request.Body))

	out, err := runCLI(t, "request", "/v1/auth/profile/", "-q", ".email")
	require.NoError(t, err)
	assert.Equal(t, "\""+fakeapi.DefaultEmail+"\"\n", out)

	_, err = runCLI(t, "request", "/v1/buildings/", "-H", "broken")
	assert.ErrorContains(t, err, "expected key:value")
}

func TestInvalidGlobalFlags(t *testing.T) {
	setupCLI(t)

	_, err := runCLI(t, "--base-url", "ftp://example.com", "status")
	assert.ErrorContains(t, err, "invalid base URL")

	_, err = runCLI(t, "--output", "xml", "status")
	assert.ErrorContains(t, err, "unsupported output format")

	_, err = runCLI(t, "--query", ".[", "statistics")
	assert.ErrorContains(t, err, "invalid query")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "URBANFLOW CLI")
}

func TestHumanizeKey(t *testing.T) {
	assert.Equal(t, "Expires At", humanizeKey("expires_at"))
	assert.Equal(t, "Base Url", humanizeKey("base_url"))
	assert.Equal(t, "State", humanizeKey("state"))
}

func TestParseKeyValues(t *testing.T) {
	values, err := parseKeyValues([]string{"status=approved", " page = 2 ", "search=a=b"}, "=")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"status": "approved",
		"page":   "2",
		"search": "a=b",
	}, values)

	_, err = parseKeyValues([]string{"=value"}, "=")
	assert.Error(t, err)
}

func TestAddClaimFields(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(90 * time.Minute)

	fields := map[string]string{}
	addClaimFields(fields, &session.Claims{
		Subject:   "resident@example.com",
		UserID:    "42",
		ExpiresAt: &expires,
	}, now)

	assert.Equal(t, "resident@example.com", fields["subject"])
	assert.Equal(t, "42", fields["user_id"])
	assert.Contains(t, fields["expires_at"], "1 hour, 30 minutes")
	assert.NotContains(t, fields, "token_type")
}
