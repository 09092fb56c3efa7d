package directory

import (
	"context"
	"time"
)

// LinkUpdate carries the mutable fields applied by a moderation action.
// Nil pointers leave the stored value untouched.
type LinkUpdate struct {
	Status     *Status
	ApprovedAt *time.Time
	ApprovedBy *string
}

// LinkStore persists links. Counter increments must be atomic on the store
// side: two concurrent calls for the same id may never lose an update.
type LinkStore interface {
	Insert(ctx context.Context, link Link) error
	Get(ctx context.Context, id string) (Link, error)
	Update(ctx context.Context, id string, upd LinkUpdate) (Link, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
	IncrementClicks(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]LinkView, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	Insert(ctx context.Context, category Category) error
	Get(ctx context.Context, id string) (Category, error)
	Update(ctx context.Context, category Category) (Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Category, error)
}

// UserStore reads caller identities. Identities originate outside this
// service; only lookups are exposed.
type UserStore interface {
	Get(ctx context.Context, id string) (User, error)
	GetByToken(ctx context.Context, token string) (User, error)
}

// Authenticator resolves a bearer token to a caller identity.
type Authenticator interface {
	Identify(ctx context.Context, token string) (User, error)
}

// Extractor fetches a URL and scrapes its page metadata.
type Extractor interface {
	Extract(ctx context.Context, url string) (Metadata, error)
}

// Publisher pushes moderation events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces record IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
