package provost

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/provost/cache"
)

func TestResolverMembersCached(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.names["operators"] = 100
	dir.members[100] = []int64{1, 2}

	now := time.Now()
	clock := func() time.Time { return now }
	r := NewResolver(dir, cache.NewTTL(time.Minute, clock), DefaultConfig())

	m, err := r.Members(ctx, "operators")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Fatalf("expected 2 members, got %d", len(m))
	}

	// A directory change is invisible while the cache entry is fresh.
	dir.members[100] = []int64{1, 2, 3}
	m, err = r.Members(ctx, "operators")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Fatalf("expected cached 2 members, got %d", len(m))
	}

	// After the TTL the entry is refetched.
	now = now.Add(61 * time.Second)
	m, err = r.Members(ctx, "operators")
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 3 {
		t.Fatalf("expected refreshed 3 members, got %d", len(m))
	}
}

func TestResolverIsMemberAbsentGroup(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), DefaultConfig())

	// An absent group simply has no members.
	ok, err := r.IsMember(ctx, "nonexistent", 1)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false for absent group")
	}
}

func TestResolverIsSuperuser(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.names["superusers"] = 100
	dir.members[100] = []int64{9}
	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), DefaultConfig())

	ok, err := r.IsSuperuser(ctx, 9)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected 9 to be superuser")
	}
	ok, err = r.IsSuperuser(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected 10 not to be superuser")
	}
}

func TestResolverIsGuestOwner(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.names["guest-owners"] = 110
	dir.members[110] = []int64{5}

	cfg := DefaultConfig()
	cfg.GuestOwnerGroups = []string{"guest-owners", "missing-group"}
	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), cfg)

	ok, err := r.IsGuestOwner(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected 5 to be guest owner")
	}
	ok, err = r.IsGuestOwner(ctx, 6)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected 6 not to be guest owner")
	}
}

func TestEffectivePrincipalsDirect(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.groups[10] = []int64{200, 201}
	dir.groups[200] = []int64{300} // invisible without transitive membership

	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), DefaultConfig())
	principals, err := r.EffectivePrincipals(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{10, 200, 201}
	if len(principals) != len(want) {
		t.Fatalf("expected %v, got %v", want, principals)
	}
	for i := range want {
		if principals[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, principals)
		}
	}
}

func TestEffectivePrincipalsTransitiveDepthBound(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	// Chain 10 -> 200 -> 201 -> ... deeper than the depth bound.
	dir.groups[10] = []int64{200}
	for i := int64(0); i < 20; i++ {
		dir.groups[200+i] = []int64{201 + i}
	}

	cfg := DefaultConfig()
	cfg.TransitiveMembership = true
	cfg.MaxMembershipDepth = 3
	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), cfg)

	principals, err := r.EffectivePrincipals(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	// Self, the direct group, and two expansion rounds.
	if len(principals) != 4 {
		t.Fatalf("expected 4 principals at depth 3, got %v", principals)
	}
}

func TestEffectivePrincipalsCycle(t *testing.T) {
	ctx := context.Background()
	dir := newFakeDirectory()
	dir.groups[10] = []int64{200}
	dir.groups[200] = []int64{201}
	dir.groups[201] = []int64{200} // cycle

	cfg := DefaultConfig()
	cfg.TransitiveMembership = true
	r := NewResolver(dir, cache.NewTTL(time.Minute, nil), cfg)

	principals, err := r.EffectivePrincipals(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(principals) != 3 {
		t.Fatalf("expected 3 principals despite cycle, got %v", principals)
	}
}
