package models

// Project lifecycle states used when filtering project listings.
const (
	ProjectStatusProposed    = "proposed"
	ProjectStatusUnderReview = "under_review"
	ProjectStatusApproved    = "approved"
	ProjectStatusRejected    = "rejected"
	ProjectStatusCompleted   = "completed"
)

// ProjectFilter narrows GET /v1/suggestions/projects/. Empty fields are
// left out of the query string.
type ProjectFilter struct {
	Status      string
	District    string
	ProjectType string
	Search      string
	Page        string
}

func (f ProjectFilter) Values() map[string]string {
	return map[string]string{
		"status":       f.Status,
		"district":     f.District,
		"project_type": f.ProjectType,
		"search":       f.Search,
		"page":         f.Page,
	}
}

// FeedbackRequest is the payload for POST /v1/suggestions/feedback/.
type FeedbackRequest struct {
	Project  string `json:"project"`
	Comment  string `json:"comment"`
	Rating   int    `json:"rating,omitempty"`
	Category string `json:"category,omitempty"`
}
