package postgres

import (
	"github.com/xraph/grove"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/target"
)

// ──────────────────────────────────────────────────
// Operation-code model
// ──────────────────────────────────────────────────

type codeModel struct {
	grove.BaseModel `grove:"table:provost_op_codes"`
	Code            int32  `grove:"code,pk"`
	Name            string `grove:"name,notnull"`
	Description     string `grove:"description"`
}

func codeToModel(c *opset.CodeInfo) *codeModel {
	return &codeModel{
		Code:        int32(c.Code),
		Name:        c.Name,
		Description: c.Description,
	}
}

func codeFromModel(m *codeModel) *opset.CodeInfo {
	return &opset.CodeInfo{
		Code:        opset.Code(m.Code),
		Name:        m.Name,
		Description: m.Description,
	}
}

// ──────────────────────────────────────────────────
// Operation-set models
// ──────────────────────────────────────────────────

type setModel struct {
	grove.BaseModel `grove:"table:provost_op_sets"`
	ID              int64  `grove:"id,pk"`
	Name            string `grove:"name,notnull"`
}

func setFromModel(m *setModel) *opset.Set {
	return opset.Hydrate(m.ID, m.Name)
}

type operationModel struct {
	grove.BaseModel `grove:"table:provost_operations"`
	ID              int64 `grove:"id,pk"`
	SetID           int64 `grove:"set_id,notnull"`
	Code            int32 `grove:"code,notnull"`
}

func operationFromModel(m *operationModel) opset.Operation {
	return opset.Operation{ID: m.ID, SetID: m.SetID, Code: opset.Code(m.Code)}
}

type operationAttrModel struct {
	grove.BaseModel `grove:"table:provost_operation_attrs"`
	OpID            int64  `grove:"op_id,notnull"`
	Attr            string `grove:"attr,notnull"`
}

// ──────────────────────────────────────────────────
// Target models
// ──────────────────────────────────────────────────

type targetModel struct {
	grove.BaseModel `grove:"table:provost_targets"`
	ID              int64  `grove:"id,pk"`
	TargetType      string `grove:"target_type,notnull"`
	EntityID        *int64 `grove:"entity_id"`
	HasAttr         bool   `grove:"has_attr,notnull"`
}

func targetFromModel(m *targetModel) *target.Target {
	return target.Hydrate(m.ID, target.Type(m.TargetType), m.EntityID, m.HasAttr)
}

type targetAttrModel struct {
	grove.BaseModel `grove:"table:provost_target_attrs"`
	TargetID        int64  `grove:"target_id,notnull"`
	Attr            string `grove:"attr,notnull"`
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:provost_grants"`
	EntityID        int64 `grove:"entity_id,notnull"`
	SetID           int64 `grove:"set_id,notnull"`
	TargetID        int64 `grove:"target_id,notnull"`
}

func grantFromModel(m *grantModel) *grant.Grant {
	return &grant.Grant{EntityID: m.EntityID, SetID: m.SetID, TargetID: m.TargetID}
}

// ──────────────────────────────────────────────────
// Shared id sequence
// ──────────────────────────────────────────────────

// sequenceModel is a single-row table holding the last allocated id for
// sets, operations, and targets.
type sequenceModel struct {
	grove.BaseModel `grove:"table:provost_sequence"`
	ID              int64 `grove:"id,notnull"`
}
