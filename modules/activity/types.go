package activity

import "context"

// Entry types.
const (
	TypeCreated   = "todo_created"
	TypeCompleted = "todo_completed"
	TypeReopened  = "todo_reopened"
	TypeRenamed   = "todo_renamed"
	TypeDeleted   = "todo_deleted"
	TypeCleared   = "todos_cleared"
)

// DefaultLimit is used when a request carries no limit.
const DefaultLimit = 20

// RecentRequest is the request for recent activity.
type RecentRequest struct {
	Limit int `json:"limit,omitempty"`
}

// RecentResponse is the response for recent activity.
type RecentResponse struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
}

// ActivityPort is the contract driving adapters use to read the feed.
type ActivityPort interface {
	Recent(ctx context.Context, limit int) (*RecentResponse, error)
}
