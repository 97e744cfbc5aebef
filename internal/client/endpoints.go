package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/urbanflow/client/internal/models"
)

func (c *Client) Login(ctx context.Context, credentials any) Response[models.AuthResponse] {
	return Do[models.AuthResponse](ctx, c, "/v1/auth/login/", RequestOptions{
		Method: http.MethodPost,
		Body:   credentials,
	})
}

func (c *Client) Register(ctx context.Context, payload any) Response[models.AuthResponse] {
	return Do[models.AuthResponse](ctx, c, "/v1/auth/register/", RequestOptions{
		Method: http.MethodPost,
		Body:   payload,
	})
}

func (c *Client) GetProfile(ctx context.Context) Response[models.User] {
	return Do[models.User](ctx, c, "/v1/auth/profile/", RequestOptions{})
}

// GetProjects lists projects, forwarding filter as query parameters.
func (c *Client) GetProjects(ctx context.Context, filter Query) Response[any] {
	return c.Request(ctx, "/v1/suggestions/projects/", RequestOptions{
		Query: filter,
	})
}

func (c *Client) GetProject(ctx context.Context, id string) Response[any] {
	return c.Request(ctx, projectPath(id, ""), RequestOptions{})
}

func (c *Client) CreateProject(ctx context.Context, payload any) Response[any] {
	return c.Request(ctx, "/v1/suggestions/projects/create/", RequestOptions{
		Method: http.MethodPost,
		Body:   payload,
	})
}

func (c *Client) GetProjectSentiment(ctx context.Context, id string) Response[any] {
	return c.Request(ctx, projectPath(id, "sentiment/"), RequestOptions{})
}

func (c *Client) GetProjectDashboard(ctx context.Context, id string) Response[any] {
	return c.Request(ctx, projectPath(id, "dashboard/"), RequestOptions{})
}

func (c *Client) SubmitFeedback(ctx context.Context, payload any) Response[any] {
	return c.Request(ctx, "/v1/suggestions/feedback/", RequestOptions{
		Method: http.MethodPost,
		Body:   payload,
	})
}

func (c *Client) GetProjectFeedback(ctx context.Context, id string) Response[any] {
	return c.Request(ctx, projectPath(id, "feedback/"), RequestOptions{})
}

func (c *Client) GetBuildings(ctx context.Context) Response[any] {
	return c.Request(ctx, "/v1/buildings/", RequestOptions{})
}

func (c *Client) GetBuilding(ctx context.Context, id string) Response[any] {
	return c.Request(ctx, fmt.Sprintf("/v1/buildings/%s/", url.PathEscape(id)), RequestOptions{})
}

// GetDashboard fetches aggregate dashboard data, forwarding filter as query
// parameters.
func (c *Client) GetDashboard(ctx context.Context, filter Query) Response[any] {
	return c.Request(ctx, "/v1/suggestions/dashboard/", RequestOptions{
		Query: filter,
	})
}

func (c *Client) GetStatistics(ctx context.Context) Response[any] {
	return c.Request(ctx, "/v1/suggestions/statistics/", RequestOptions{})
}

func (c *Client) GetPayments(ctx context.Context) Response[any] {
	return c.Request(ctx, "/v1/suggestions/payments/", RequestOptions{})
}

func projectPath(id string, suffix string) string {
	return fmt.Sprintf("/v1/suggestions/projects/%s/%s", url.PathEscape(id), suffix)
}
