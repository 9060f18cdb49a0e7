package mongo

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
	Code            int32  `grove:"code,pk"     bson:"_id"`
	Name            string `grove:"name"        bson:"name"`
	Description     string `grove:"description" bson:"description"`
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
	ID              int64  `grove:"id,pk" bson:"_id"`
	Name            string `grove:"name"  bson:"name"`
}

func setFromModel(m *setModel) *opset.Set {
	return opset.Hydrate(m.ID, m.Name)
}

type operationModel struct {
	grove.BaseModel `grove:"table:provost_operations"`
	ID              int64 `grove:"id,pk"  bson:"_id"`
	SetID           int64 `grove:"set_id" bson:"set_id"`
	Code            int32 `grove:"code"   bson:"code"`
}

func operationFromModel(m *operationModel) opset.Operation {
	return opset.Operation{ID: m.ID, SetID: m.SetID, Code: opset.Code(m.Code)}
}

type operationAttrModel struct {
	grove.BaseModel `grove:"table:provost_operation_attrs"`
	OpID            int64  `grove:"op_id" bson:"op_id"`
	Attr            string `grove:"attr"  bson:"attr"`
}

// ──────────────────────────────────────────────────
// Target models
// ──────────────────────────────────────────────────

type targetModel struct {
	grove.BaseModel `grove:"table:provost_targets"`
	ID              int64  `grove:"id,pk"       bson:"_id"`
	TargetType      string `grove:"target_type" bson:"target_type"`
	EntityID        *int64 `grove:"entity_id"   bson:"entity_id,omitempty"`
	HasAttr         bool   `grove:"has_attr"    bson:"has_attr"`
}

func targetFromModel(m *targetModel) *target.Target {
	return target.Hydrate(m.ID, target.Type(m.TargetType), m.EntityID, m.HasAttr)
}

type targetAttrModel struct {
	grove.BaseModel `grove:"table:provost_target_attrs"`
	TargetID        int64  `grove:"target_id" bson:"target_id"`
	Attr            string `grove:"attr"      bson:"attr"`
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:provost_grants"`
	EntityID        int64 `grove:"entity_id" bson:"entity_id"`
	SetID           int64 `grove:"set_id"    bson:"set_id"`
	TargetID        int64 `grove:"target_id" bson:"target_id"`
}

func grantFromModel(m *grantModel) *grant.Grant {
	return &grant.Grant{EntityID: m.EntityID, SetID: m.SetID, TargetID: m.TargetID}
}
