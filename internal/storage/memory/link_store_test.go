package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/linkboard/linkboard/internal/directory"
)

func seededStores(t *testing.T) (*LinkStore, *CategoryStore, *UserStore) {
	t.Helper()
	categories := NewCategoryStore()
	users := NewUserStore()
	if err := categories.Insert(context.Background(), directory.Category{
		ID:    "cat-1",
		Name:  "Tools",
		Slug:  "tools",
		Icon:  "wrench",
		Color: "#3b82f6",
	}); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	users.Seed(directory.User{ID: "u-1", Name: "Alice", Role: directory.RoleUser}, "tok-alice")
	return NewLinkStore(categories, users), categories, users
}

func makeLink(id string, status directory.Status, createdAt time.Time) directory.Link {
	return directory.Link{
		ID:          id,
		URL:         "https://example.com/" + id,
		Title:       "Link " + id,
		CategoryID:  "cat-1",
		SubmittedBy: "u-1",
		Status:      status,
		CreatedAt:   createdAt,
	}
}

func TestLinkStoreInsertGet(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()

	link := makeLink("l-1", directory.StatusPending, time.Now())
	if err := store.Insert(ctx, link); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, link); err == nil {
		t.Fatal("duplicate Insert succeeded")
	}

	got, err := store.Get(ctx, "l-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != link.Title {
		t.Errorf("title = %q, want %q", got.Title, link.Title)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestLinkStoreUpdatePartial(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	if err := store.Insert(ctx, makeLink("l-1", directory.StatusPending, time.Now())); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	status := directory.StatusApproved
	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	by := "u-admin"
	updated, err := store.Update(ctx, "l-1", directory.LinkUpdate{Status: &status, ApprovedAt: &at, ApprovedBy: &by})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != directory.StatusApproved || updated.ApprovedBy != by {
		t.Errorf("updated = %+v", updated)
	}
	if updated.ApprovedAt == nil || !updated.ApprovedAt.Equal(at) {
		t.Errorf("approved_at = %v, want %v", updated.ApprovedAt, at)
	}

	// nil fields leave approval data untouched
	rejected := directory.StatusRejected
	updated, err = store.Update(ctx, "l-1", directory.LinkUpdate{Status: &rejected})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ApprovedAt == nil || updated.ApprovedBy != by {
		t.Errorf("approval fields dropped: %+v", updated)
	}

	if _, err := store.Update(ctx, "missing", directory.LinkUpdate{}); !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("Update(missing) = %v, want ErrNotFound", err)
	}
}

func TestLinkStoreConcurrentIncrements(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	if err := store.Insert(ctx, makeLink("l-1", directory.StatusApproved, time.Now())); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.IncrementViews(ctx, "l-1"); err != nil {
				t.Errorf("IncrementViews: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := store.IncrementClicks(ctx, "l-1"); err != nil {
				t.Errorf("IncrementClicks: %v", err)
			}
		}()
	}
	wg.Wait()

	link, err := store.Get(ctx, "l-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if link.Views != n || link.Clicks != n {
		t.Errorf("views = %d, clicks = %d, want %d each", link.Views, link.Clicks, n)
	}
}

func TestLinkStoreIncrementReturnsNewCount(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	if err := store.Insert(ctx, makeLink("l-1", directory.StatusApproved, time.Now())); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := store.IncrementViews(ctx, "l-1")
		if err != nil {
			t.Fatalf("IncrementViews: %v", err)
		}
		if got != want {
			t.Errorf("views = %d, want %d", got, want)
		}
	}
	if _, err := store.IncrementViews(ctx, "missing"); !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("IncrementViews(missing) = %v, want ErrNotFound", err)
	}
}

func TestLinkStoreListFiltersAndJoins(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	older := makeLink("l-old", directory.StatusApproved, base)
	older.Title = "Go performance guide"
	newer := makeLink("l-new", directory.StatusApproved, base.Add(time.Hour))
	newer.Title = "Rust primer"
	newer.Description = "systems programming"
	pending := makeLink("l-pending", directory.StatusPending, base.Add(2*time.Hour))
	for _, link := range []directory.Link{older, newer, pending} {
		if err := store.Insert(ctx, link); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	views, err := store.List(ctx, directory.ListFilter{Status: directory.StatusApproved})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("len = %d, want 2", len(views))
	}
	if views[0].ID != "l-new" || views[1].ID != "l-old" {
		t.Errorf("order = [%s %s], want newest first", views[0].ID, views[1].ID)
	}
	if views[0].CategoryName != "Tools" || views[0].CategoryColor != "#3b82f6" {
		t.Errorf("category join missing: %+v", views[0])
	}
	if views[0].SubmitterName != "Alice" {
		t.Errorf("submitter join missing: %+v", views[0])
	}

	// case-insensitive search over title and description
	views, err = store.List(ctx, directory.ListFilter{Status: directory.StatusApproved, Search: "GO PERF"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != "l-old" {
		t.Errorf("search by title = %+v, want l-old", views)
	}

	views, err = store.List(ctx, directory.ListFilter{Status: directory.StatusApproved, Search: "systems"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != "l-new" {
		t.Errorf("search by description = %+v, want l-new", views)
	}

	views, err = store.List(ctx, directory.ListFilter{Status: directory.StatusPending})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != "l-pending" {
		t.Errorf("pending filter = %+v", views)
	}
}

func TestLinkStoreDelete(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	if err := store.Insert(ctx, makeLink("l-1", directory.StatusApproved, time.Now())); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := store.Delete(ctx, "l-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "l-1"); !errors.Is(err, directory.ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
	views, err := store.List(ctx, directory.ListFilter{Status: directory.StatusApproved})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 0 {
		t.Errorf("deleted link still listed: %+v", views)
	}
}

func TestLinkStoreCountByCategoryAndStats(t *testing.T) {
	t.Parallel()
	store, _, _ := seededStores(t)
	ctx := context.Background()
	base := time.Now()

	approved := makeLink("l-1", directory.StatusApproved, base)
	approved.Views = 5
	approved.Clicks = 2
	pending := makeLink("l-2", directory.StatusPending, base)
	rejected := makeLink("l-3", directory.StatusRejected, base)
	for _, link := range []directory.Link{approved, pending, rejected} {
		if err := store.Insert(ctx, link); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	count, err := store.CountByCategory(ctx, "cat-1")
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
	count, err = store.CountByCategory(ctx, "cat-other")
	if err != nil {
		t.Fatalf("CountByCategory: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	want := directory.Stats{TotalLinks: 3, ApprovedLinks: 1, PendingLinks: 1, TotalViews: 5, TotalClicks: 2}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
