package api

// CheckResponse is the response for an authorization check.
type CheckResponse struct {
	Allowed    bool        `json:"allowed" description:"Whether the request is allowed"`
	Decision   string      `json:"decision" description:"Decision code"`
	Reason     string      `json:"reason,omitempty" description:"Human-readable reason"`
	MatchedBy  []MatchInfo `json:"matched_by,omitempty" description:"Matched rules"`
	EvalTimeNs int64       `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// MatchInfo identifies a matched rule.
type MatchInfo struct {
	Source string `json:"source" description:"Match source (superuser, global, direct, host, disk_pattern, anywhere)"`
	RuleID string `json:"rule_id,omitempty" description:"Rule identifier"`
	Detail string `json:"detail,omitempty" description:"Match detail"`
}

// QueryAnyResponse reports whether an operation is held anywhere.
type QueryAnyResponse struct {
	Held bool `json:"held" description:"Whether the operator holds the operation anywhere"`
}

// SetResponse describes an operation set.
type SetResponse struct {
	ID   int64  `json:"id" description:"Operation set ID"`
	Name string `json:"name" description:"Operation set name"`
}

// OperationResponse describes one operation within a set.
type OperationResponse struct {
	ID   int64  `json:"id" description:"Operation row ID"`
	Code int32  `json:"code" description:"Numeric operation code"`
	Name string `json:"name,omitempty" description:"Operation code name, when registered"`
}

// CodeResponse describes a registered operation code.
type CodeResponse struct {
	Code        int32  `json:"code" description:"Numeric operation code"`
	Name        string `json:"name" description:"Operation code name"`
	Description string `json:"description,omitempty" description:"Human-readable description"`
}

// TargetResponse describes an operation target.
type TargetResponse struct {
	ID       int64  `json:"id" description:"Target ID"`
	Type     string `json:"type" description:"Target type"`
	EntityID *int64 `json:"entity_id,omitempty" description:"Concrete entity identifier"`
	HasAttr  bool   `json:"has_attr" description:"Whether attribute rows exist for this target"`
}

// GrantResponse describes one grant row.
type GrantResponse struct {
	EntityID int64 `json:"entity_id" description:"Entity holding the authority"`
	SetID    int64 `json:"set_id" description:"Operation set ID"`
	TargetID int64 `json:"target_id" description:"Operation target ID"`
}

// AttrsResponse wraps an attribute list.
type AttrsResponse struct {
	Attrs []string `json:"attrs" description:"Attribute values"`
}

// SweepResponse reports an orphan sweep.
type SweepResponse struct {
	Pruned int64 `json:"pruned" description:"Orphan grants removed"`
}
