// Package grant defines the role-grant relation: which entity holds which
// operation set on which operation target.
package grant

import "errors"

// ErrDuplicate is returned when an identical grant row already exists.
// Duplicate grants carry no extra authority, so the store rejects them.
var ErrDuplicate = errors.New("provost: duplicate grant")

// Grant links a grantee entity (an account or a group) to an operation set
// on an operation target. Rows never expire; they are created by "grant"
// commands and destroyed by "revoke" commands.
type Grant struct {
	EntityID int64 `json:"entity_id"`
	SetID    int64 `json:"set_id"`
	TargetID int64 `json:"target_id"`
}

// ListFilter narrows ListGrants. Zero-valued fields are ignored.
type ListFilter struct {
	EntityIDs []int64 `json:"entity_ids,omitempty"`
	SetID     *int64  `json:"set_id,omitempty"`
	TargetID  *int64  `json:"target_id,omitempty"`
}
