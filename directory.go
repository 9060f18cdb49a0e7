package provost

import "context"

// Disk is the directory's view of a disk entity: where home directories live.
// Path is the full directory path; HostID is the machine the disk belongs to.
type Disk struct {
	ID     int64  `json:"id"`
	HostID int64  `json:"host_id"`
	Path   string `json:"path"`
}

// Directory resolves identity data the engine does not own: group
// membership and disk/host topology. The surrounding daemon supplies an
// implementation backed by its entity tables.
//
// Lookups that find nothing must return an error wrapping ErrNotFound.
type Directory interface {
	// GroupsForEntity returns the ids of the groups the entity is a direct
	// member of.
	GroupsForEntity(ctx context.Context, entityID int64) ([]int64, error)

	// GroupByName resolves a group name to its entity id.
	GroupByName(ctx context.Context, name string) (int64, error)

	// GroupMembers returns the direct member entity ids of a group.
	GroupMembers(ctx context.Context, groupID int64) ([]int64, error)

	// Disk returns the disk record for a disk entity id.
	Disk(ctx context.Context, diskID int64) (*Disk, error)
}
