package directory

import (
	"context"
	"fmt"
	"sort"
)

// CategoryAll is the sentinel meaning "no category restriction".
const CategoryAll = "all"

// DefaultFeaturedLimit is the featured ranking size when the caller
// supplies none.
const DefaultFeaturedLimit = 6

// NormalizeFilter applies the listing defaults: absent status means
// approved, and the "all" sentinel lifts the category restriction.
func NormalizeFilter(filter ListFilter) ListFilter {
	if filter.Status == "" {
		filter.Status = StatusApproved
	}
	if filter.CategoryID == CategoryAll {
		filter.CategoryID = ""
	}
	return filter
}

// List returns links matching the filter, newest first, each joined with its
// category display fields and submitter name. Listing anything other than
// approved links requires the admin role: pending and rejected submissions
// are moderation queue material, not public content.
func (s *Service) List(ctx context.Context, filter ListFilter, actor User) ([]LinkView, error) {
	filter = NormalizeFilter(filter)
	if filter.Status != StatusApproved && !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	if !filter.Status.Valid() {
		return nil, InvalidField("status", "must be pending, approved or rejected")
	}
	links, err := s.links.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return links, nil
}

// Featured returns the top-k approved links ranked by views+clicks.
func (s *Service) Featured(ctx context.Context, k int) ([]LinkView, error) {
	if k <= 0 {
		k = DefaultFeaturedLimit
	}
	links, err := s.links.List(ctx, ListFilter{Status: StatusApproved})
	if err != nil {
		return nil, fmt.Errorf("list approved links: %w", err)
	}
	return RankFeatured(links, k), nil
}

// RankFeatured orders links by popularity score (views + clicks) descending
// and truncates to the top k. Ties keep their incoming order.
func RankFeatured(links []LinkView, k int) []LinkView {
	ranked := make([]LinkView, len(links))
	copy(ranked, links)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
