// Package provost implements the authorization core of an
// identity-administration daemon: a target/operation/role permission model
// deciding whether an operator may perform a named operation against a
// target entity.
//
// Authority is expressed as grants: an entity (an account or a group) holds
// a named operation set on an operation target. Targets are either concrete
// (one disk, host, group, OU, or mail domain) or global categories covering
// every entity of a type. The engine resolves the operator's effective
// principal set, applies the superuser bypass and protection rules, and
// walks the disk→host→pattern hierarchy for disk targets.
//
//	eng, err := provost.NewEngine(
//	    provost.WithStore(memStore),
//	    provost.WithDirectory(dir),
//	)
//	result, err := eng.Evaluate(ctx, &provost.CheckRequest{
//	    OperatorID: 42,
//	    Operation:  createUser,
//	    Target:     &provost.TargetRef{Type: target.TypeDisk, EntityID: 17},
//	})
package provost

import (
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/target"
)

// OperationCode is a registry-defined operation capability.
type OperationCode = opset.Code

// TargetType classifies an operation target.
type TargetType = target.Type

// TargetRef names the concrete resource an evaluation is checked against.
type TargetRef struct {
	Type     TargetType `json:"type"`
	EntityID int64      `json:"entity_id"`
}

// Mode selects how a denial is surfaced.
type Mode string

const (
	// ModeEnforce is the authoritative mode: a denial carries a reason and
	// is surfaced as an error by Enforce.
	ModeEnforce Mode = "enforce"

	// ModeQueryAny asks whether the operator holds the operation anywhere
	// at all. It exists so command-listing logic can hide inapplicable
	// commands; it is NOT a security boundary and must never authorize a
	// mutating action.
	ModeQueryAny Mode = "query_any"
)

// CheckRequest is the input to an authorization evaluation.
type CheckRequest struct {
	// OperatorID is the entity attempting the action.
	OperatorID int64 `json:"operator_id"`

	// Operation is the capability being checked.
	Operation OperationCode `json:"operation"`

	// Target is the resource checked against. Nil switches the evaluation
	// to "holds the operation anywhere", a coarse capability test for
	// trimming command lists or gating whole routes. Callers authorizing a
	// concrete mutation must always supply the target.
	Target *TargetRef `json:"target,omitempty"`

	// VictimID is the entity the action would act upon, distinct from the
	// target. Used only for the superuser-protection guard.
	VictimID *int64 `json:"victim_id,omitempty"`

	// Attr is the requested operation attribute (e.g. a spread or contact
	// type name), matched against the operation's attribute whitelist.
	Attr *string `json:"attr,omitempty"`

	// Mode defaults to ModeEnforce when empty.
	Mode Mode `json:"mode,omitempty"`
}

// CheckResult is the outcome of an evaluation.
type CheckResult struct {
	Allowed    bool        `json:"allowed"`
	Decision   Decision    `json:"decision"`
	Reason     string      `json:"reason,omitempty"`
	MatchedBy  []MatchInfo `json:"matched_by,omitempty"`
	EvalTimeNs int64       `json:"eval_time_ns"`
}

// Decision is the evaluation outcome code.
type Decision string

const (
	// DecisionAllow means a grant authorized the request.
	DecisionAllow Decision = "allow"

	// DecisionAllowSuperuser means the operator is a superuser-group member.
	DecisionAllowSuperuser Decision = "allow_superuser"

	// DecisionDenyDefault means no matching grant was found.
	DecisionDenyDefault Decision = "deny_default"

	// DecisionDenyNoGrant means no grant in the effective principal set
	// carries the operation at all.
	DecisionDenyNoGrant Decision = "deny_no_grant"

	// DecisionDenyAttr means a grant matched but its attribute whitelist
	// excluded the requested attribute.
	DecisionDenyAttr Decision = "deny_attr"

	// DecisionDenyProtected means the only matching grants were global ones
	// blocked by the superuser-protection guard.
	DecisionDenyProtected Decision = "deny_protected"
)

// MatchInfo describes what rule matched during evaluation.
type MatchInfo struct {
	Source string `json:"source"` // "superuser", "global", "direct", "host", "disk_pattern", "anywhere"
	RuleID string `json:"rule_id,omitempty"`
	Detail string `json:"detail,omitempty"`
}
