package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store"
	"github.com/xraph/provost/target"
)

func TestSetCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	set := opset.NewSet("local-admin")

	// Save (insert)
	created, err := s.SaveSet(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("expected insert on first save")
	}
	if set.ID() == 0 || !set.Found() || set.Changed() {
		t.Fatalf("record state after save: id=%d found=%v changed=%v", set.ID(), set.Found(), set.Changed())
	}

	// Save again without changes is a no-op.
	created, err = s.SaveSet(ctx, set)
	if err != nil || created {
		t.Fatalf("unchanged save: created=%v err=%v", created, err)
	}

	// Get
	got, err := s.GetSet(ctx, set.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.Name() != "local-admin" {
		t.Fatalf("expected local-admin, got %s", got.Name())
	}

	// GetByName
	got, err = s.GetSetByName(ctx, "local-admin")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID() != set.ID() {
		t.Fatal("name lookup mismatch")
	}

	// Rename + update
	set.Rename("group-owner")
	created, err = s.SaveSet(ctx, set)
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Fatal("expected update, not insert")
	}
	got, _ = s.GetSet(ctx, set.ID())
	if got.Name() != "group-owner" {
		t.Fatal("rename not persisted")
	}

	// List
	list, _ := s.ListSets(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 set, got %d", len(list))
	}

	// Delete
	if err := s.DeleteSet(ctx, set.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetSet(ctx, set.ID()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestOperations(t *testing.T) {
	ctx := context.Background()
	s := New()

	set := opset.NewSet("ops")
	if _, err := s.SaveSet(ctx, set); err != nil {
		t.Fatal(err)
	}

	const createUser opset.Code = 101
	opID, err := s.AddOperation(ctx, set.ID(), createUser)
	if err != nil {
		t.Fatal(err)
	}

	// Duplicate code in the same set is rejected.
	if _, err := s.AddOperation(ctx, set.ID(), createUser); err == nil {
		t.Fatal("expected error on duplicate operation")
	}

	ops, err := s.ListOperations(ctx, set.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].ID != opID || ops[0].Code != createUser {
		t.Fatalf("unexpected operations: %+v", ops)
	}

	byCode, err := s.ListOperationsByCode(ctx, createUser)
	if err != nil {
		t.Fatal(err)
	}
	if len(byCode) != 1 || byCode[0].SetID != set.ID() {
		t.Fatalf("unexpected by-code operations: %+v", byCode)
	}

	// Attr whitelist
	if err := s.AddOperationAttr(ctx, opID, "NIS_user@uio"); err != nil {
		t.Fatal(err)
	}
	attrs, _ := s.ListOperationAttrs(ctx, opID)
	if len(attrs) != 1 || attrs[0] != "NIS_user@uio" {
		t.Fatalf("unexpected attrs: %v", attrs)
	}
	if err := s.RemoveOperationAttr(ctx, opID, "NIS_user@uio"); err != nil {
		t.Fatal(err)
	}
	attrs, _ = s.ListOperationAttrs(ctx, opID)
	if len(attrs) != 0 {
		t.Fatalf("attrs survived removal: %v", attrs)
	}

	// Removing the operation drops its row.
	if err := s.RemoveOperation(ctx, set.ID(), createUser); err != nil {
		t.Fatal(err)
	}
	byCode, _ = s.ListOperationsByCode(ctx, createUser)
	if len(byCode) != 0 {
		t.Fatal("operation survived removal")
	}
}

func TestCodes(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateCode(ctx, &opset.CodeInfo{Code: 1, Name: "set_password"}); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCode(ctx, &opset.CodeInfo{Code: 1, Name: "other"}); err == nil {
		t.Fatal("expected error on duplicate code value")
	}
	if err := s.CreateCode(ctx, &opset.CodeInfo{Code: 2, Name: "set_password"}); err == nil {
		t.Fatal("expected error on duplicate code name")
	}

	c, err := s.GetCodeByName(ctx, "set_password")
	if err != nil {
		t.Fatal(err)
	}
	if c.Code != 1 {
		t.Fatalf("expected code 1, got %d", c.Code)
	}

	list, _ := s.ListCodes(ctx)
	if len(list) != 1 {
		t.Fatalf("expected 1 code, got %d", len(list))
	}
}

func TestTargetCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	disk := int64(700)
	tgt, err := target.New(target.TypeDisk, &disk)
	if err != nil {
		t.Fatal(err)
	}
	created, err := s.SaveTarget(ctx, tgt)
	if err != nil {
		t.Fatal(err)
	}
	if !created || tgt.ID() == 0 {
		t.Fatalf("insert: created=%v id=%d", created, tgt.ID())
	}

	got, err := s.GetTarget(ctx, tgt.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.Type() != target.TypeDisk || got.EntityID() == nil || *got.EntityID() != disk {
		t.Fatalf("unexpected target: %v %v", got.Type(), got.EntityID())
	}
	if got.HasAttr() {
		t.Fatal("fresh target should have no attrs")
	}

	// Attr patterns flip has_attr.
	if err := s.AddTargetAttr(ctx, tgt.ID(), "stud.*"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTarget(ctx, tgt.ID())
	if !got.HasAttr() {
		t.Fatal("has_attr not set after AddTargetAttr")
	}
	if err := s.RemoveTargetAttr(ctx, tgt.ID(), "stud.*"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetTarget(ctx, tgt.ID())
	if got.HasAttr() {
		t.Fatal("has_attr not cleared after last RemoveTargetAttr")
	}

	// List by type and entity.
	list, _ := s.ListTargets(ctx, &target.ListFilter{Type: target.TypeDisk, EntityID: &disk})
	if len(list) != 1 {
		t.Fatalf("expected 1 target, got %d", len(list))
	}

	// Global target carries no entity id.
	global, err := target.New(target.TypeGlobalHost, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveTarget(ctx, global); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListTargets(ctx, &target.ListFilter{IDs: []int64{tgt.ID(), global.ID()}})
	if len(list) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(list))
	}

	if err := s.DeleteTarget(ctx, tgt.ID()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTarget(ctx, tgt.ID()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestGrants(t *testing.T) {
	ctx := context.Background()
	s := New()

	set := opset.NewSet("ops")
	if _, err := s.SaveSet(ctx, set); err != nil {
		t.Fatal(err)
	}
	tgt, _ := target.New(target.TypeGlobalGroup, nil)
	if _, err := s.SaveTarget(ctx, tgt); err != nil {
		t.Fatal(err)
	}

	g := &grant.Grant{EntityID: 10, SetID: set.ID(), TargetID: tgt.ID()}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateGrant(ctx, g); !errors.Is(err, grant.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	list, _ := s.ListGrantsByEntities(ctx, []int64{10, 11})
	if len(list) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(list))
	}
	list, _ = s.ListGrantsByTargets(ctx, []int64{tgt.ID()})
	if len(list) != 1 {
		t.Fatalf("expected 1 grant by target, got %d", len(list))
	}

	// Revoking twice is a no-op, not an error.
	if err := s.DeleteGrant(ctx, g); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteGrant(ctx, g); err != nil {
		t.Fatal(err)
	}
	list, _ = s.ListGrants(ctx, nil)
	if len(list) != 0 {
		t.Fatalf("expected no grants, got %d", len(list))
	}
}

func TestOrphanSweep(t *testing.T) {
	ctx := context.Background()
	s := New()

	set := opset.NewSet("ops")
	if _, err := s.SaveSet(ctx, set); err != nil {
		t.Fatal(err)
	}
	tgt, _ := target.New(target.TypeGlobalOU, nil)
	if _, err := s.SaveTarget(ctx, tgt); err != nil {
		t.Fatal(err)
	}

	live := &grant.Grant{EntityID: 1, SetID: set.ID(), TargetID: tgt.ID()}
	if err := s.CreateGrant(ctx, live); err != nil {
		t.Fatal(err)
	}
	orphan := &grant.Grant{EntityID: 2, SetID: set.ID(), TargetID: tgt.ID()}
	if err := s.CreateGrant(ctx, orphan); err != nil {
		t.Fatal(err)
	}

	// Deleting the target orphans both grants; deleting the set would too.
	if err := s.DeleteTarget(ctx, tgt.ID()); err != nil {
		t.Fatal(err)
	}

	n, err := s.CountOrphanGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 orphans, got %d", n)
	}

	pruned, err := s.PruneOrphanGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 2 {
		t.Fatalf("expected 2 pruned, got %d", pruned)
	}
	list, _ := s.ListGrants(ctx, nil)
	if len(list) != 0 {
		t.Fatalf("orphans survived prune: %d", len(list))
	}
}

func TestNextID(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.NextID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.NextID(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if b <= a {
		t.Fatalf("sequence not monotonic: %d then %d", a, b)
	}
}
