package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/urbanflow/client/internal/common"
	"github.com/urbanflow/client/internal/session"
)

const timestampLayout = "2006-01-02 15:04:05"

func newStatusCommand() *cobra.Command {

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE:  runStatus,
	}

	statusCmd.Flags().Bool("check", false, "Verify the session against the API")

	return statusCmd
}

func runStatus(cmd *cobra.Command, _ []string) error {

	out := cmd.OutOrStdout()
	sess := apiClient.Session()

	fmt.Fprintln(out, titleStyle.Render("URBANFLOW Session"))

	fields := map[string]string{
		"base_url": apiClient.BaseURL(),
		"storage":  cfg.Storage.Driver,
	}

	if !sess.IsAuthenticated() {
		fields["state"] = infoStyle.Render(string(session.StateAnonymous))
		printFields(out, fields)
		return nil
	}

	fields["state"] = activeStyle.Render(string(session.StateAuthenticated))

	claims, err := sess.Claims()
	if err != nil {
		fields["token"] = "opaque"
	} else {
		addClaimFields(fields, claims, time.Now())
	}

	printFields(out, fields)

	check, _ := cmd.Flags().GetBool("check")
	if !check {
		return nil
	}

	resp := apiClient.GetProfile(cmd.Context())
	if err := resp.Err(); err != nil {
		fmt.Fprintln(out, warningStyle.Render("Session rejected by the API"))
		return err
	}

	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Session valid for %s", resp.Data.GetName())))

	return nil
}

func addClaimFields(fields map[string]string, claims *session.Claims, now time.Time) {

	if len(claims.Subject) > 0 {
		fields["subject"] = claims.Subject
	}
	if len(claims.UserID) > 0 {
		fields["user_id"] = claims.UserID
	}
	if len(claims.TokenType) > 0 {
		fields["token_type"] = claims.TokenType
	}
	if claims.IssuedAt != nil {
		fields["issued_at"] = claims.IssuedAt.Local().Format(timestampLayout)
	}
	if claims.ExpiresAt != nil {
		expiry := claims.ExpiresAt.Local().Format(timestampLayout)
		if claims.IsExpired(now) {
			fields["expires_at"] = expiredStyle.Render(expiry)
		} else {
			fields["expires_at"] = activeStyle.Render(fmt.Sprintf("%s (%s)",
				expiry, common.FormatDurationRemaining(claims.ExpiresAt.Sub(now))))
		}
	}
}
