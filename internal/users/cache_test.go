package users

import (
	"context"
	"testing"
	"time"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// fakeDirectory counts lookups and serves a fixed set of users.
type fakeDirectory struct {
	users   map[string]models.User
	lookups int
}

func (f *fakeDirectory) Lookup(_ context.Context, userID string) (*models.User, error) {
	f.lookups++
	if u, ok := f.users[userID]; ok {
		user := u
		return &user, nil
	}
	return nil, storage.ErrNotFound
}

func TestCachedDirectoryServesFromCache(t *testing.T) {
	inner := &fakeDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Name: "Alice"},
	}}
	cache := NewCachedDirectory(inner, time.Minute, 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := cache.Lookup(ctx, "u1")
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if user.Name != "Alice" {
			t.Fatalf("got name %q, want Alice", user.Name)
		}
	}
	if inner.lookups != 1 {
		t.Errorf("inner lookups = %d, want 1", inner.lookups)
	}
}

func TestCachedDirectoryTTLExpiry(t *testing.T) {
	inner := &fakeDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Name: "Alice"},
	}}
	cache := NewCachedDirectory(inner, time.Minute, 10)

	current := time.Now()
	cache.now = func() time.Time { return current }

	ctx := context.Background()
	if _, err := cache.Lookup(ctx, "u1"); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := cache.Lookup(ctx, "u1"); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if inner.lookups != 2 {
		t.Errorf("inner lookups = %d, want 2 after TTL expiry", inner.lookups)
	}
}

func TestCachedDirectoryNoNegativeCaching(t *testing.T) {
	inner := &fakeDirectory{users: map[string]models.User{}}
	cache := NewCachedDirectory(inner, time.Minute, 10)
	ctx := context.Background()

	if _, err := cache.Lookup(ctx, "ghost"); err == nil {
		t.Fatal("expected an error for unknown user")
	}

	// The user appears later, e.g. after a sync pull.
	inner.users["ghost"] = models.User{ID: "ghost", Name: "Ghost"}
	user, err := cache.Lookup(ctx, "ghost")
	if err != nil {
		t.Fatalf("Lookup after user appeared failed: %v", err)
	}
	if user.Name != "Ghost" {
		t.Errorf("got name %q, want Ghost", user.Name)
	}
}

func TestCachedDirectoryBound(t *testing.T) {
	inner := &fakeDirectory{users: map[string]models.User{
		"u1": {ID: "u1"}, "u2": {ID: "u2"}, "u3": {ID: "u3"},
	}}
	cache := NewCachedDirectory(inner, time.Minute, 2)
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if _, err := cache.Lookup(ctx, id); err != nil {
			t.Fatalf("Lookup(%s) failed: %v", id, err)
		}
	}
	if len(cache.entries) > 2 {
		t.Errorf("cache holds %d entries, want at most 2", len(cache.entries))
	}
}

func TestCachedDirectoryInvalidate(t *testing.T) {
	inner := &fakeDirectory{users: map[string]models.User{
		"u1": {ID: "u1", Name: "Alice"},
	}}
	cache := NewCachedDirectory(inner, time.Minute, 10)
	ctx := context.Background()

	if _, err := cache.Lookup(ctx, "u1"); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	cache.Invalidate("u1")
	if _, err := cache.Lookup(ctx, "u1"); err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if inner.lookups != 2 {
		t.Errorf("inner lookups = %d, want 2 after Invalidate", inner.lookups)
	}
}
