package provost

// MemberCache caches named-group member lists for a bounded time. Superuser
// and guest-owner checks run on nearly every evaluation while membership
// changes are rare, so bounded staleness beats a group expansion per call.
type MemberCache interface {
	// Get returns the cached member list for a group name, if fresh.
	Get(group string) ([]int64, bool)

	// Set stores a member list for a group name.
	Set(group string, members []int64)

	// Purge drops all entries.
	Purge()
}

// AnyPermCache caches "does this operator hold this operation anywhere"
// answers under a bounded capacity with LRU eviction. Entries carry no TTL:
// the answer changes only when grants change, and the engine purges the
// cache on its grant/revoke code path.
type AnyPermCache interface {
	// Get returns the cached answer for a key.
	Get(key string) (bool, bool)

	// Set stores an answer, evicting the least recently used entry when at
	// capacity.
	Set(key string, held bool)

	// Purge drops all entries.
	Purge()
}
