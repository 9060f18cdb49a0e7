package provost

import (
	"context"
	"errors"
	"fmt"
)

// Resolver answers membership questions on top of the Directory: the
// operator's effective principal set, named-group membership behind the TTL
// member cache, and the superuser and guest-owner predicates built on it.
type Resolver struct {
	dir     Directory
	members MemberCache
	config  Config
}

// NewResolver returns a Resolver over the directory and member cache.
func NewResolver(dir Directory, members MemberCache, cfg Config) *Resolver {
	return &Resolver{dir: dir, members: members, config: cfg}
}

// EffectivePrincipals returns the entity ids whose grants apply to the
// operator: the operator itself plus the groups it belongs to. By default
// only direct memberships count; with TransitiveMembership enabled the set
// is expanded breadth-first through nested groups, bounded by
// MaxMembershipDepth.
func (r *Resolver) EffectivePrincipals(ctx context.Context, entityID int64) ([]int64, error) {
	groups, err := r.dir.GroupsForEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("provost: resolve groups for entity %d: %w", entityID, err)
	}

	principals := make([]int64, 0, len(groups)+1)
	principals = append(principals, entityID)
	seen := map[int64]bool{entityID: true}

	frontier := make([]int64, 0, len(groups))
	for _, g := range groups {
		if !seen[g] {
			seen[g] = true
			principals = append(principals, g)
			frontier = append(frontier, g)
		}
	}

	if !r.config.TransitiveMembership {
		return principals, nil
	}

	for depth := 1; depth < r.config.membershipDepth() && len(frontier) > 0; depth++ {
		var next []int64
		for _, g := range frontier {
			parents, err := r.dir.GroupsForEntity(ctx, g)
			if err != nil {
				return nil, fmt.Errorf("provost: resolve groups for entity %d: %w", g, err)
			}
			for _, p := range parents {
				if !seen[p] {
					seen[p] = true
					principals = append(principals, p)
					next = append(next, p)
				}
			}
		}
		frontier = next
	}
	return principals, nil
}

// Members returns the direct member ids of a named group, served from the
// TTL cache when fresh.
func (r *Resolver) Members(ctx context.Context, group string) ([]int64, error) {
	if m, ok := r.members.Get(group); ok {
		return m, nil
	}
	gid, err := r.dir.GroupByName(ctx, group)
	if err != nil {
		return nil, err
	}
	m, err := r.dir.GroupMembers(ctx, gid)
	if err != nil {
		return nil, err
	}
	r.members.Set(group, m)
	return m, nil
}

// IsMember reports whether the entity is a direct member of the named group.
// An absent group simply has no members.
func (r *Resolver) IsMember(ctx context.Context, group string, entityID int64) (bool, error) {
	m, err := r.Members(ctx, group)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	for _, id := range m {
		if id == entityID {
			return true, nil
		}
	}
	return false, nil
}

// IsSuperuser reports whether the entity is a member of the configured
// superuser group.
func (r *Resolver) IsSuperuser(ctx context.Context, entityID int64) (bool, error) {
	return r.IsMember(ctx, r.config.SuperuserGroup, entityID)
}

// IsGuestOwner reports whether the entity is a member of any configured
// guest-owner group.
func (r *Resolver) IsGuestOwner(ctx context.Context, entityID int64) (bool, error) {
	for _, g := range r.config.GuestOwnerGroups {
		ok, err := r.IsMember(ctx, g, entityID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// SuperuserGroupID resolves the configured superuser group to its entity id.
func (r *Resolver) SuperuserGroupID(ctx context.Context) (int64, error) {
	return r.dir.GroupByName(ctx, r.config.SuperuserGroup)
}
