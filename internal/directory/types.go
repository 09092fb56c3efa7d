// Package directory defines core types shared across subsystems.
package directory

import "time"

// Status represents the moderation state of a submitted link.
type Status string

// Link statuses persisted in the link store.
const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three moderation states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Role identifies the privilege level of a caller.
type Role string

// Roles consumed from the authenticator.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the caller identity produced by the authenticator. The service
// never creates or mutates users, it only reads id, role and display name.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Link is the record persisted for each submitted website reference.
type Link struct {
	ID          string     `json:"id"`
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Favicon     string     `json:"favicon,omitempty"`
	CategoryID  string     `json:"category_id"`
	SubmittedBy string     `json:"submitted_by"`
	Status      Status     `json:"status"`
	Views       int64      `json:"views"`
	Clicks      int64      `json:"clicks"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  string     `json:"approved_by,omitempty"`
}

// Score is the popularity measure used by the featured ranking.
func (l Link) Score() int64 {
	return l.Views + l.Clicks
}

// LinkView is a Link joined with display fields from its category and
// submitter. The join is a read-time projection, never stored.
type LinkView struct {
	Link
	CategoryName  string `json:"category_name"`
	CategoryIcon  string `json:"category_icon,omitempty"`
	CategoryColor string `json:"category_color,omitempty"`
	SubmitterName string `json:"submitter_name"`
}

// Category is a named grouping with display metadata. Mutated only by
// administrators.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
}

// Metadata is the tuple scraped from a target page. It is ephemeral and
// consumed once to seed a new link.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Favicon     string `json:"favicon"`
}

// SubmitRequest carries the client-supplied fields for a new link.
type SubmitRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Favicon     string   `json:"favicon"`
	CategoryID  string   `json:"category_id"`
	Tags        []string `json:"tags"`
}

// ListFilter narrows a link listing. Zero values mean "no restriction"
// except Status, which defaults to approved in the service.
type ListFilter struct {
	Status     Status
	CategoryID string
	Search     string
}

// Stats aggregates directory-wide totals for the public stats endpoint.
type Stats struct {
	TotalLinks    int64 `json:"total_links"`
	ApprovedLinks int64 `json:"approved_links"`
	PendingLinks  int64 `json:"pending_links"`
	TotalViews    int64 `json:"total_views"`
	TotalClicks   int64 `json:"total_clicks"`
}

// Event is published on moderation state changes.
type Event struct {
	Type    string    `json:"type"`
	LinkID  string    `json:"link_id"`
	ActorID string    `json:"actor_id,omitempty"`
	At      time.Time `json:"at"`
}

// Event types emitted by the service.
const (
	EventLinkSubmitted = "link.submitted"
	EventLinkApproved  = "link.approved"
	EventLinkRejected  = "link.rejected"
	EventLinkDeleted   = "link.deleted"
)
