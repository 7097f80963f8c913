package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/civicdesk/complaint-service/internal/domain"
	"github.com/civicdesk/complaint-service/internal/repository"
)

func TestMaskTrackingCode(t *testing.T) {
	tests := map[string]string{
		"TRK-AB12CD34": "TRK****34",
		"ABCDEFG":      "ABC****FG",
		"ABCDEF":       "****",
		"":             "****",
	}
	for in, want := range tests {
		if got := MaskTrackingCode(in); got != want {
			t.Errorf("MaskTrackingCode(%q) = %q, want %q", in, got, want)
		}
	}
}

// mapFeedCache stores JSON in generations like the Redis cache does.
type mapFeedCache struct {
	entries     map[string][]byte
	version     int64
	invalidated int
}

func (c *mapFeedCache) entryKey(version int64, key string) string {
	return fmt.Sprintf("v%d|%s", version, key)
}

func (c *mapFeedCache) Get(_ context.Context, key string, dest any) (int64, bool, error) {
	raw, ok := c.entries[c.entryKey(c.version, key)]
	if !ok {
		return c.version, false, nil
	}
	return c.version, true, json.Unmarshal(raw, dest)
}

func (c *mapFeedCache) Set(_ context.Context, version int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[c.entryKey(version, key)] = raw
	return nil
}

func (c *mapFeedCache) Invalidate(context.Context) error {
	c.invalidated++
	c.version++
	return nil
}

// invalidatingComplaints runs hook after the feed query, before the page is cached.
type invalidatingComplaints struct {
	repository.ComplaintRepository
	hook func()
}

func (r invalidatingComplaints) ListPublicFeed(ctx context.Context, filter repository.PublicFeedFilter) ([]domain.PublicFeedRow, int, error) {
	rows, total, err := r.ComplaintRepository.ListPublicFeed(ctx, filter)
	if r.hook != nil {
		r.hook()
	}
	return rows, total, err
}

func TestPublicFeedShowsOnlyResolvedAndMasks(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	resolved := f.resolved(t)
	closed := f.resolved(t)
	if _, err := f.change(f.agent, closed.ID, domain.ComplaintStatusClosed, "", ""); err != nil {
		t.Fatal(err)
	}

	projector := NewPublicFeedProjector(f.store.repos().Complaints, nil, 0, 0, nil, nil)
	page, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("feed = %+v", page)
	}
	item := page.Items[0]
	if item.ID != resolved.ID || item.PublicAnswer != "Fixed" || item.ResolvedAt == nil {
		t.Fatalf("item = %+v", item)
	}
	if item.MaskedTrackingCode != MaskTrackingCode(resolved.TrackingCode) {
		t.Fatalf("masked = %q", item.MaskedTrackingCode)
	}

	raw, _ := json.Marshal(page)
	if strings.Contains(string(raw), resolved.TrackingCode) {
		t.Fatal("feed payload leaks the full tracking code")
	}
}

func TestPublicFeedFilters(t *testing.T) {
	f := newFixture(t)
	f.resolved(t)
	projector := NewPublicFeedProjector(f.store.repos().Complaints, nil, 0, 0, nil, nil)

	page, err := projector.Feed(context.Background(), PublicFeedQuery{DepartmentID: f.otherDept.ID})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 0 {
		t.Fatalf("other department total = %d", page.Total)
	}
	page, err = projector.Feed(context.Background(), PublicFeedQuery{CategoryID: "junk"})
	if err != nil || len(page.Items) != 0 {
		t.Fatalf("malformed filter = %+v, %v", page, err)
	}
	page, err = projector.Feed(context.Background(), PublicFeedQuery{CategoryID: f.category.ID})
	if err != nil || page.Total != 1 {
		t.Fatalf("category filter = %+v, %v", page, err)
	}
}

func TestPublicFeedCache(t *testing.T) {
	f := newFixture(t)
	f.resolved(t)
	cache := &mapFeedCache{entries: map[string][]byte{}}
	projector := NewPublicFeedProjector(f.store.repos().Complaints, cache, 10, 50, nil, nil)

	first, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cache.entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(cache.entries))
	}

	f.resolved(t)
	stale, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if stale.Total != first.Total {
		t.Fatal("second read should be served from cache")
	}

	if err := projector.Invalidate(context.Background()); err != nil {
		t.Fatal(err)
	}
	fresh, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Total != 2 || fresh.Size != 10 {
		t.Fatalf("fresh page = %+v", fresh)
	}
}

func TestPublicFeedPageLoadedBeforeInvalidateIsNotServed(t *testing.T) {
	f := newFixture(t)
	c := f.resolved(t)
	cache := &mapFeedCache{entries: map[string][]byte{}}

	// The complaint is closed and the feed invalidated while the first read is
	// between its cache miss and its cache write.
	var projector *PublicFeedProjector
	repo := invalidatingComplaints{ComplaintRepository: f.store.repos().Complaints}
	repo.hook = func() {
		repo.hook = nil
		if _, err := f.change(f.agent, c.ID, domain.ComplaintStatusClosed, "", ""); err != nil {
			t.Fatal(err)
		}
		if err := projector.Invalidate(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	projector = NewPublicFeedProjector(&repo, cache, 10, 50, nil, nil)

	first, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if first.Total != 1 {
		t.Fatalf("first read total = %d, want 1", first.Total)
	}

	second, err := projector.Feed(context.Background(), PublicFeedQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if second.Total != 0 || len(second.Items) != 0 {
		t.Fatalf("closed complaint served from a stale page: %+v", second)
	}
}
