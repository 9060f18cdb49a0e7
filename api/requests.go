package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	OperatorID   int64   `json:"operator_id" description:"Entity attempting the action"`
	Operation    string  `json:"operation" description:"Operation code name"`
	TargetType   string  `json:"target_type,omitempty" description:"Target type (disk, host, group, ou, maildomain, spread)"`
	TargetEntity int64   `json:"target_entity,omitempty" description:"Target entity identifier"`
	VictimID     *int64  `json:"victim_id,omitempty" description:"Entity the action would act upon"`
	Attr         *string `json:"attr,omitempty" description:"Requested operation attribute"`
}

// QueryAnyRequest asks whether the operator holds an operation anywhere.
type QueryAnyRequest struct {
	OperatorID int64  `json:"operator_id" description:"Entity attempting the action"`
	Operation  string `json:"operation" description:"Operation code name"`
}

// ──────────────────────────────────────────────────
// Operation-set requests
// ──────────────────────────────────────────────────

// CreateSetRequest is the body for creating an operation set.
type CreateSetRequest struct {
	Name string `json:"name" description:"Operation set name"`
}

// RenameSetRequest is the body for renaming an operation set.
type RenameSetRequest struct {
	Name string `json:"name" description:"New operation set name"`
}

// GetSetRequest is the path parameter for getting an operation set.
type GetSetRequest struct {
	SetID string `path:"setId" description:"Operation set ID"`
}

// AddOperationRequest is the body for adding an operation to a set.
type AddOperationRequest struct {
	Operation string `json:"operation" description:"Operation code name"`
}

// AttrRequest is the body for adding an attribute to an operation whitelist.
type AttrRequest struct {
	Attr string `json:"attr" description:"Attribute value"`
}

// CreateCodeRequest is the body for registering an operation code.
type CreateCodeRequest struct {
	Code        int32  `json:"code" description:"Numeric operation code"`
	Name        string `json:"name" description:"Operation code name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// ──────────────────────────────────────────────────
// Target requests
// ──────────────────────────────────────────────────

// CreateTargetRequest is the body for creating an operation target.
type CreateTargetRequest struct {
	Type     string `json:"type" description:"Target type"`
	EntityID *int64 `json:"entity_id,omitempty" description:"Concrete entity identifier; omitted for global targets"`
}

// GetTargetRequest is the path parameter for getting a target.
type GetTargetRequest struct {
	TargetID string `path:"targetId" description:"Target ID"`
}

// ListTargetsRequest holds query parameters for listing targets.
type ListTargetsRequest struct {
	Type     string `query:"type" description:"Filter by target type"`
	EntityID *int64 `query:"entity_id" description:"Filter by entity ID"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// GrantRequest is the body for creating or revoking a grant.
type GrantRequest struct {
	EntityID int64 `json:"entity_id" description:"Entity holding the authority"`
	SetID    int64 `json:"set_id" description:"Operation set ID"`
	TargetID int64 `json:"target_id" description:"Operation target ID"`
}

// ListGrantsRequest holds query parameters for listing grants.
type ListGrantsRequest struct {
	EntityID *int64 `query:"entity_id" description:"Filter by holding entity"`
	SetID    *int64 `query:"set_id" description:"Filter by operation set"`
	TargetID *int64 `query:"target_id" description:"Filter by target"`
}
