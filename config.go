package provost

import "time"

// Config holds configuration for the provost engine.
type Config struct {
	// SuperuserGroup is the name of the group whose members bypass all
	// checks and are shielded from being acted upon via global grants.
	SuperuserGroup string `json:"superuser_group"`

	// GuestOwnerGroups are groups whose members may administer guest
	// accounts. Resolved through the same member cache as the superuser
	// group.
	GuestOwnerGroups []string `json:"guest_owner_groups,omitempty"`

	// MemberCacheTTL bounds the staleness of named-group member lists.
	// Defaults to 60 seconds.
	MemberCacheTTL time.Duration `json:"member_cache_ttl,omitempty"`

	// AnyPermCacheSize caps the "operation held anywhere" cache.
	// Defaults to 500 entries.
	AnyPermCacheSize int `json:"any_perm_cache_size,omitempty"`

	// TransitiveMembership expands the effective principal set through
	// nested groups when true. The default (false) includes only the groups
	// the operator is a direct member of.
	TransitiveMembership bool `json:"transitive_membership,omitempty"`

	// MaxMembershipDepth bounds transitive expansion. Defaults to 10.
	MaxMembershipDepth int `json:"max_membership_depth,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SuperuserGroup:     "superusers",
		MemberCacheTTL:     60 * time.Second,
		AnyPermCacheSize:   500,
		MaxMembershipDepth: 10,
	}
}

func (c Config) memberTTL() time.Duration {
	if c.MemberCacheTTL > 0 {
		return c.MemberCacheTTL
	}
	return 60 * time.Second
}

func (c Config) anyPermSize() int {
	if c.AnyPermCacheSize > 0 {
		return c.AnyPermCacheSize
	}
	return 500
}

func (c Config) membershipDepth() int {
	if c.MaxMembershipDepth > 0 {
		return c.MaxMembershipDepth
	}
	return 10
}
