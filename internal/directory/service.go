package directory

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// defaultCategoryColor matches the blue-500 display default.
const defaultCategoryColor = "#3b82f6"

// Service owns the link lifecycle: submission, moderation transitions,
// analytics counters and category management. All store access goes through
// the injected interfaces so tests can substitute doubles.
type Service struct {
	links      LinkStore
	categories CategoryStore
	clock      Clock
	ids        IDGenerator
	publisher  Publisher
	topic      string
	logger     *zap.Logger
}

// NewService constructs a Service. Publisher may be nil when event
// publishing is disabled.
func NewService(
	links LinkStore,
	categories CategoryStore,
	clock Clock,
	ids IDGenerator,
	publisher Publisher,
	topic string,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		links:      links,
		categories: categories,
		clock:      clock,
		ids:        ids,
		publisher:  publisher,
		topic:      topic,
		logger:     logger,
	}
}

// Submit validates and creates a link. Admin submissions are approved
// immediately with the approval fields stamped; everyone else starts pending.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, submitter User) (Link, error) {
	if req.URL == "" {
		return Link{}, MissingField("url")
	}
	if req.Title == "" {
		return Link{}, MissingField("title")
	}
	if req.CategoryID == "" {
		return Link{}, MissingField("category")
	}
	origin, err := originOf(req.URL)
	if err != nil {
		return Link{}, InvalidField("url", "must be an absolute URL")
	}
	if _, err := s.categories.Get(ctx, req.CategoryID); err != nil {
		return Link{}, fmt.Errorf("resolve category: %w", err)
	}

	id, err := s.ids.NewID()
	if err != nil {
		return Link{}, fmt.Errorf("generate link id: %w", err)
	}
	favicon := req.Favicon
	if favicon == "" {
		favicon = origin + "/favicon.ico"
	}
	now := s.clock.Now()
	link := Link{
		ID:          id,
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Favicon:     favicon,
		CategoryID:  req.CategoryID,
		SubmittedBy: submitter.ID,
		Status:      StatusPending,
		Tags:        req.Tags,
		CreatedAt:   now,
	}
	if submitter.IsAdmin() {
		link.Status = StatusApproved
		approvedAt := now
		link.ApprovedAt = &approvedAt
		link.ApprovedBy = submitter.ID
	}

	if err := s.links.Insert(ctx, link); err != nil {
		return Link{}, fmt.Errorf("insert link: %w", err)
	}
	s.publish(ctx, EventLinkSubmitted, link.ID, submitter.ID)
	s.logger.Info("link submitted",
		zap.String("link_id", link.ID),
		zap.String("status", string(link.Status)),
		zap.String("submitted_by", submitter.ID),
	)
	return link, nil
}

// Transition moves a link to a new moderation status. Transitions are
// admin-gated, not state-gated: any of the three states may be set by an
// administrator. Approval fields, once stamped, are kept as an audit trail
// when the link later leaves the approved state.
func (s *Service) Transition(ctx context.Context, id string, newStatus Status, actor User) (Link, error) {
	return s.transitionAt(ctx, id, newStatus, actor, nil)
}

// TransitionAt is Transition with an explicit approval timestamp supplied by
// the caller. The timestamp is only consulted when newStatus is approved.
func (s *Service) TransitionAt(ctx context.Context, id string, newStatus Status, actor User, approvedAt *time.Time) (Link, error) {
	return s.transitionAt(ctx, id, newStatus, actor, approvedAt)
}

func (s *Service) transitionAt(ctx context.Context, id string, newStatus Status, actor User, explicitAt *time.Time) (Link, error) {
	if !actor.IsAdmin() {
		return Link{}, ErrUnauthorized
	}
	if !newStatus.Valid() {
		return Link{}, InvalidField("status", "must be pending, approved or rejected")
	}

	upd := LinkUpdate{Status: &newStatus}
	if newStatus == StatusApproved {
		at := s.clock.Now()
		if explicitAt != nil {
			at = *explicitAt
		}
		upd.ApprovedAt = &at
		actorID := actor.ID
		upd.ApprovedBy = &actorID
	}
	link, err := s.links.Update(ctx, id, upd)
	if err != nil {
		return Link{}, fmt.Errorf("update link %s: %w", id, err)
	}

	switch newStatus {
	case StatusApproved:
		s.publish(ctx, EventLinkApproved, id, actor.ID)
	case StatusRejected:
		s.publish(ctx, EventLinkRejected, id, actor.ID)
	}
	s.logger.Info("link transitioned",
		zap.String("link_id", id),
		zap.String("status", string(newStatus)),
		zap.String("actor", actor.ID),
	)
	return link, nil
}

// RecordView adds one view and returns the resulting count. The increment is
// performed by the store itself so concurrent calls never lose updates.
func (s *Service) RecordView(ctx context.Context, id string) (int64, error) {
	views, err := s.links.IncrementViews(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("increment views for %s: %w", id, err)
	}
	return views, nil
}

// RecordClick adds one click and returns the resulting count.
func (s *Service) RecordClick(ctx context.Context, id string) (int64, error) {
	clicks, err := s.links.IncrementClicks(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("increment clicks for %s: %w", id, err)
	}
	return clicks, nil
}

// Delete removes a link regardless of status. Admin only.
func (s *Service) Delete(ctx context.Context, id string, actor User) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	if err := s.links.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete link %s: %w", id, err)
	}
	s.publish(ctx, EventLinkDeleted, id, actor.ID)
	return nil
}

// Stats returns directory-wide aggregate totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.links.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return stats, nil
}

// CreateCategory creates a category with a slug derived from its name.
// Admin only.
func (s *Service) CreateCategory(ctx context.Context, category Category, actor User) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, ErrUnauthorized
	}
	if category.Name == "" {
		return Category{}, MissingField("name")
	}
	id, err := s.ids.NewID()
	if err != nil {
		return Category{}, fmt.Errorf("generate category id: %w", err)
	}
	category.ID = id
	category.Slug = Slugify(category.Name)
	if category.Color == "" {
		category.Color = defaultCategoryColor
	}
	category.CreatedAt = s.clock.Now()
	if err := s.categories.Insert(ctx, category); err != nil {
		return Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

// UpdateCategory replaces a category's display fields, re-deriving the slug
// when the name changes. Admin only.
func (s *Service) UpdateCategory(ctx context.Context, category Category, actor User) (Category, error) {
	if !actor.IsAdmin() {
		return Category{}, ErrUnauthorized
	}
	if category.ID == "" {
		return Category{}, MissingField("id")
	}
	if category.Name != "" {
		category.Slug = Slugify(category.Name)
	}
	updated, err := s.categories.Update(ctx, category)
	if err != nil {
		return Category{}, fmt.Errorf("update category %s: %w", category.ID, err)
	}
	return updated, nil
}

// DeleteCategory removes a category unless links still reference it. Admin
// only.
func (s *Service) DeleteCategory(ctx context.Context, id string, actor User) error {
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	count, err := s.links.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count links for category %s: %w", id, err)
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	return nil
}

// ListCategories returns all categories sorted by name.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// publish sends a moderation event. Publish failures are logged and never
// surfaced: events are advisory, the user operation already succeeded.
func (s *Service) publish(ctx context.Context, eventType, linkID, actorID string) {
	if s.publisher == nil {
		return
	}
	event := Event{Type: eventType, LinkID: linkID, ActorID: actorID, At: s.clock.Now()}
	if _, err := s.publisher.Publish(ctx, s.topic, event); err != nil {
		s.logger.Warn("publish event failed",
			zap.String("type", eventType),
			zap.String("link_id", linkID),
			zap.Error(err),
		)
	}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Slugify lowercases a name and collapses whitespace runs into dashes.
func Slugify(name string) string {
	return whitespaceRE.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// originOf returns scheme://host for an absolute URL, or an error when the
// URL is not absolute.
func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
