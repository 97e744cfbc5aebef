// Package fakeapi serves an in-memory stand-in for the URBANFLOW backend
// over httptest, recording every request it receives.
package fakeapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/urbanflow/client/internal/models"
)

const (
	APIPrefix = "/api"

	DefaultEmail    = "resident@example.com"
	DefaultPassword = "secret-password"

	ProjectApproved = "6f1c2b0e-2f7a-4d3b-9a51-0c7e1d2f3a40"
	ProjectProposed = "a3d9e8f1-5b6c-4e7d-8f90-1a2b3c4d5e6f"
	BuildingID      = "d2e4f6a8-1b3c-4d5e-8f70-9a1b2c3d4e5f"
)

// RecordedRequest is a copy of a request the server received.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

type account struct {
	password string
	user     models.User
}

type Server struct {
	*httptest.Server

	lock      sync.Mutex
	secret    []byte
	accounts  map[string]*account
	projects  []gin.H
	requests  []RecordedRequest
	overrides map[string]gin.HandlerFunc
	nextID    int
}

// New starts a server seeded with one resident account and a few projects.
// It is closed when the test ends.
func New(t testing.TB) *Server {

	gin.SetMode(gin.TestMode)

	s := &Server{
		secret:    []byte("fakeapi-signing-secret"),
		accounts:  map[string]*account{},
		overrides: map[string]gin.HandlerFunc{},
		nextID:    1,
		projects: []gin.H{
			{
				"id":           ProjectApproved,
				"title":        "Riverside bike lanes",
				"status":       models.ProjectStatusApproved,
				"district":     "north",
				"project_type": "transport",
			},
			{
				"id":           ProjectProposed,
				"title":        "Community garden",
				"status":       models.ProjectStatusProposed,
				"district":     "south",
				"project_type": "green",
			},
		},
	}

	s.addAccount(DefaultEmail, DefaultPassword, models.User{
		Username:  "resident",
		FirstName: "Rita",
		LastName:  "Resident",
		Role:      models.RoleResident,
	})

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)

	return s
}

// BaseURL is the API root clients should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

// Override replaces the handler for method and path, where path excludes the
// API prefix. Overrides apply whether or not the route exists.
func (s *Server) Override(method string, path string, handler gin.HandlerFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.overrides[overrideKey(method, APIPrefix+path)] = handler
}

// Respond makes method and path answer with a fixed status and raw body.
func (s *Server) Respond(method string, path string, status int, contentType string, body string) {
	s.Override(method, path, func(c *gin.Context) {
		c.Data(status, contentType, []byte(body))
	})
}

func (s *Server) Requests() []RecordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request, or false if none arrived.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// IssueToken signs an access token for the seeded account.
func (s *Server) IssueToken() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	token, _ := s.issueToken(s.accounts[DefaultEmail].user)
	return token
}

func (s *Server) routes() http.Handler {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.recordMiddleware())
	router.Use(s.overrideMiddleware())

	api := router.Group(APIPrefix)
	{
		auth := api.Group("/v1/auth")
		auth.POST("/login/", s.postLogin)
		auth.POST("/register/", s.postRegister)
		auth.GET("/profile/", s.requireAuth(), s.getProfile)

		suggestions := api.Group("/v1/suggestions")
		suggestions.GET("/projects/", s.getProjects)
		suggestions.POST("/projects/create/", s.requireAuth(), s.postProject)
		suggestions.GET("/projects/:id/", s.getProject)
		suggestions.GET("/projects/:id/sentiment/", s.getProjectSentiment)
		suggestions.GET("/projects/:id/dashboard/", s.getProjectDashboard)
		suggestions.GET("/projects/:id/feedback/", s.getProjectFeedback)
		suggestions.POST("/feedback/", s.requireAuth(), s.postFeedback)
		suggestions.GET("/dashboard/", s.getDashboard)
		suggestions.GET("/statistics/", s.getStatistics)
		suggestions.GET("/payments/", s.requireAuth(), s.getPayments)

		buildings := api.Group("/v1/buildings")
		buildings.GET("/", s.getBuildings)
		buildings.GET("/:id/", s.getBuilding)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
	})

	return router
}

func (s *Server) recordMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.lock.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		s.lock.Unlock()

		c.Next()
	}
}

func (s *Server) overrideMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		s.lock.Lock()
		handler, ok := s.overrides[overrideKey(c.Request.Method, c.Request.URL.Path)]
		s.lock.Unlock()

		if !ok {
			c.Next()
			return
		}

		handler(c)
		c.Abort()
	}
}

// requireAuth accepts only bearer tokens signed by this server.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {

		header := c.GetHeader("Authorization")
		if len(header) == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}

		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
			return s.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		email, _ := claims.GetSubject()

		s.lock.Lock()
		acct, ok := s.accounts[email]
		s.lock.Unlock()

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set("user", acct.user)
		c.Next()
	}
}

func (s *Server) addAccount(email string, password string, user models.User) models.User {
	user.ID = models.ID(fmt.Sprint(s.nextID))
	user.Email = email
	s.nextID++
	s.accounts[email] = &account{
		password: password,
		user:     user,
	}
	return user
}

func (s *Server) issueToken(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        user.Email,
		"user_id":    string(user.ID),
		"token_type": "access",
		"iat":        now.Unix(),
		"exp":        now.Add(time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}

func overrideKey(method string, path string) string {
	return strings.ToUpper(method) + " " + path
}
