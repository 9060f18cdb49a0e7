package provost

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store/memory"
	"github.com/xraph/provost/target"
)

const (
	opCreateUser  opset.Code = 1
	opDeleteUser  opset.Code = 2
	opAlterGroup  opset.Code = 3
	opSetPassword opset.Code = 4
)

// fakeDirectory is an in-memory Directory for tests.
type fakeDirectory struct {
	groups  map[int64][]int64 // entity -> direct group ids
	names   map[string]int64  // group name -> group id
	members map[int64][]int64 // group id -> member ids
	disks   map[int64]*Disk
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		groups:  map[int64][]int64{},
		names:   map[string]int64{},
		members: map[int64][]int64{},
		disks:   map[int64]*Disk{},
	}
}

func (d *fakeDirectory) GroupsForEntity(_ context.Context, entityID int64) ([]int64, error) {
	return d.groups[entityID], nil
}

func (d *fakeDirectory) GroupByName(_ context.Context, name string) (int64, error) {
	id, ok := d.names[name]
	if !ok {
		return 0, fmt.Errorf("group %q: %w", name, ErrNotFound)
	}
	return id, nil
}

func (d *fakeDirectory) GroupMembers(_ context.Context, groupID int64) ([]int64, error) {
	m, ok := d.members[groupID]
	if !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, ErrNotFound)
	}
	return m, nil
}

func (d *fakeDirectory) Disk(_ context.Context, diskID int64) (*Disk, error) {
	disk, ok := d.disks[diskID]
	if !ok {
		return nil, fmt.Errorf("disk %d: %w", diskID, ErrNotFound)
	}
	return disk, nil
}

func newTestEngine(t *testing.T) (*Engine, *memory.Store, *fakeDirectory) {
	t.Helper()
	s := memory.New()
	dir := newFakeDirectory()
	dir.names["superusers"] = 100
	dir.members[100] = []int64{9}
	eng, err := NewEngine(WithStore(s), WithDirectory(dir))
	if err != nil {
		t.Fatal(err)
	}
	return eng, s, dir
}

// grantOperation creates a set carrying the operation, a target, and a grant
// for the entity, returning the set, target and operation row ids.
func grantOperation(t *testing.T, eng *Engine, entityID int64, code opset.Code, typ target.Type, targetEntity *int64) (setID, targetID, opID int64) {
	t.Helper()
	ctx := context.Background()

	set, err := eng.CreateSet(ctx, fmt.Sprintf("set-%d-%d", entityID, code))
	if err != nil {
		t.Fatal(err)
	}
	opID, err = eng.AddOperation(ctx, set.ID(), code)
	if err != nil {
		t.Fatal(err)
	}
	tgt, err := eng.CreateTarget(ctx, typ, targetEntity)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Grant(ctx, entityID, set.ID(), tgt.ID()); err != nil {
		t.Fatal(err)
	}
	return set.ID(), tgt.ID(), opID
}

func int64p(v int64) *int64 { return &v }
func strp(s string) *string { return &s }

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	if _, err := NewEngine(); err == nil {
		t.Fatal("expected error when store is nil")
	}
	if _, err := NewEngine(WithStore(memory.New())); !errors.Is(err, ErrDirectoryRequired) {
		t.Fatalf("expected ErrDirectoryRequired, got %v", err)
	}
}

func TestSuperuserBypass(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// Entity 9 is a member of the superusers group; no grants exist at all.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 9,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionAllowSuperuser {
		t.Fatalf("expected superuser allow, got %s: %s", result.Decision, result.Reason)
	}
	if len(result.MatchedBy) != 1 || result.MatchedBy[0].Source != "superuser" {
		t.Fatalf("expected superuser match, got %+v", result.MatchedBy)
	}
}

func TestDirectTargetGrant(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))

	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionAllow {
		t.Fatalf("expected allow, got %s: %s", result.Decision, result.Reason)
	}
	if result.MatchedBy[0].Source != "direct" {
		t.Fatalf("expected direct match, got %+v", result.MatchedBy)
	}

	// Same grant, different group: denied.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 501},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyDefault {
		t.Fatalf("expected deny_default, got %s", result.Decision)
	}

	// Operation the operator never held: denied earlier in the pipeline.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyNoGrant {
		t.Fatalf("expected deny_no_grant, got %s", result.Decision)
	}
}

func TestGrantViaGroupMembership(t *testing.T) {
	ctx := context.Background()
	eng, _, dir := newTestEngine(t)

	// Operator 10 is a member of group 200; the grant is held by the group.
	dir.groups[10] = []int64{200}
	grantOperation(t, eng, 200, opAlterGroup, target.TypeGroup, int64p(500))

	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow via group grant, got %s: %s", result.Decision, result.Reason)
	}

	// Entity 11 is not a member: denied.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 11,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied for non-member")
	}
}

func TestTransitiveMembership(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	dir := newFakeDirectory()
	dir.names["superusers"] = 100
	dir.members[100] = []int64{9}
	// 10 -> 200 -> 300: the grant sits on the outer group.
	dir.groups[10] = []int64{200}
	dir.groups[200] = []int64{300}

	cfg := DefaultConfig()
	cfg.TransitiveMembership = true
	eng, err := NewEngine(WithStore(s), WithDirectory(dir), WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	grantOperation(t, eng, 300, opAlterGroup, target.TypeGroup, int64p(500))

	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow via nested group, got %s: %s", result.Decision, result.Reason)
	}

	// Without transitive membership the nested grant is invisible.
	flatEng, err := NewEngine(WithStore(s), WithDirectory(dir))
	if err != nil {
		t.Fatal(err)
	}
	result, err = flatEng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied without transitive membership")
	}
}

func TestAttrWhitelist(t *testing.T) {
	ctx := context.Background()
	eng, s, _ := newTestEngine(t)

	_, _, opID := grantOperation(t, eng, 10, opSetPassword, target.TypeSpread, int64p(600))
	if err := s.AddOperationAttr(ctx, opID, "student"); err != nil {
		t.Fatal(err)
	}

	// Whitelisted attribute: allowed.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opSetPassword,
		Target:     &TargetRef{Type: target.TypeSpread, EntityID: 600},
		Attr:       strp("student"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow for whitelisted attr, got %s: %s", result.Decision, result.Reason)
	}

	// Attribute outside the whitelist: deny_attr.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opSetPassword,
		Target:     &TargetRef{Type: target.TypeSpread, EntityID: 600},
		Attr:       strp("employee"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyAttr {
		t.Fatalf("expected deny_attr, got %s", result.Decision)
	}

	// No attribute requested against a non-empty whitelist: deny_attr.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opSetPassword,
		Target:     &TargetRef{Type: target.TypeSpread, EntityID: 600},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyAttr {
		t.Fatalf("expected deny_attr for nil attr, got %s", result.Decision)
	}
}

func TestAttrWildcard(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// An operation with no attribute rows allows any requested attribute.
	grantOperation(t, eng, 10, opSetPassword, target.TypeSpread, int64p(600))

	for _, attr := range []*string{nil, strp("student"), strp("anything")} {
		result, err := eng.Evaluate(ctx, &CheckRequest{
			OperatorID: 10,
			Operation:  opSetPassword,
			Target:     &TargetRef{Type: target.TypeSpread, EntityID: 600},
			Attr:       attr,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !result.Allowed {
			t.Fatalf("expected allow for attr %v, got %s", attr, result.Decision)
		}
	}
}

func TestGlobalGrant(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// A global_group grant covers every group.
	grantOperation(t, eng, 10, opAlterGroup, target.TypeGlobalGroup, nil)

	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 777},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.MatchedBy[0].Source != "global" {
		t.Fatalf("expected global allow, got %s: %+v", result.Decision, result.MatchedBy)
	}
}

func TestGlobalGrantProtectsSuperusers(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// Entity 9 is a superuser; 42 is not.
	grantOperation(t, eng, 10, opDeleteUser, target.TypeGlobalHost, nil)

	// Acting on an ordinary victim through a global grant is fine.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeHost, EntityID: 300},
		VictimID:   int64p(42),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed {
		t.Fatalf("expected allow for ordinary victim, got %s: %s", result.Decision, result.Reason)
	}

	// A superuser victim blocks the global grant.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeHost, EntityID: 300},
		VictimID:   int64p(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyProtected {
		t.Fatalf("expected deny_protected, got %s", result.Decision)
	}
}

func TestGlobalGroupGrantProtectsSuperuserGroup(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	grantOperation(t, eng, 10, opAlterGroup, target.TypeGlobalGroup, nil)

	// The superuser group itself (id 100) is never reachable via global_group.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opAlterGroup,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 100},
		VictimID:   int64p(100),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyProtected {
		t.Fatalf("expected deny_protected for superuser group victim, got %s", result.Decision)
	}
}

func TestBlockedGlobalFallsThroughToDirectGrant(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// Operator 10 holds the same set both globally and on host 300. A
	// superuser victim blocks the global candidate, but it is a non-match,
	// not a veto: the concrete grant still authorizes.
	setID, _, _ := grantOperation(t, eng, 10, opDeleteUser, target.TypeGlobalHost, nil)
	tgt, err := eng.CreateTarget(ctx, target.TypeHost, int64p(300))
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Grant(ctx, 10, setID, tgt.ID()); err != nil {
		t.Fatal(err)
	}

	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeHost, EntityID: 300},
		VictimID:   int64p(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.MatchedBy[0].Source != "direct" {
		t.Fatalf("expected direct allow past the blocked global grant, got %s: %+v",
			result.Decision, result.MatchedBy)
	}

	// On a host with no concrete grant the blocked global is all there is.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opDeleteUser,
		Target:     &TargetRef{Type: target.TypeHost, EntityID: 301},
		VictimID:   int64p(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyProtected {
		t.Fatalf("expected deny_protected, got %s", result.Decision)
	}
}

func TestGlobalHostGrantCoversDisks(t *testing.T) {
	ctx := context.Background()
	eng, _, dir := newTestEngine(t)

	dir.disks[700] = &Disk{ID: 700, HostID: 300, Path: "/uio/hume/astro-u1"}
	grantOperation(t, eng, 10, opCreateUser, target.TypeGlobalHost, nil)

	// Disk targets fall under the global_host category.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 700},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.MatchedBy[0].Source != "global" {
		t.Fatalf("expected global allow for disk, got %s: %+v", result.Decision, result.MatchedBy)
	}

	// A superuser victim blocks the global grant and no host-level rule
	// takes over.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 700},
		VictimID:   int64p(9),
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyProtected {
		t.Fatalf("expected deny_protected for disk with superuser victim, got %s", result.Decision)
	}
}

func TestDiskInheritsFromHost(t *testing.T) {
	ctx := context.Background()
	eng, _, dir := newTestEngine(t)

	dir.disks[700] = &Disk{ID: 700, HostID: 300, Path: "/uio/hume/astro-u1"}
	grantOperation(t, eng, 10, opCreateUser, target.TypeHost, int64p(300))

	// A host grant without patterns covers every disk on the host.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 700},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.MatchedBy[0].Source != "host" {
		t.Fatalf("expected host allow, got %s: %+v", result.Decision, result.MatchedBy)
	}

	// A disk on a different host is not covered.
	dir.disks[701] = &Disk{ID: 701, HostID: 301, Path: "/uio/kant/phys-u2"}
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 701},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied for disk on other host")
	}
}

func TestDiskPatternGrant(t *testing.T) {
	ctx := context.Background()
	eng, s, dir := newTestEngine(t)

	dir.disks[700] = &Disk{ID: 700, HostID: 300, Path: "/uio/hume/astro-u1"}
	dir.disks[701] = &Disk{ID: 701, HostID: 300, Path: "/uio/hume/phys-l2"}

	_, targetID, _ := grantOperation(t, eng, 10, opCreateUser, target.TypeHost, int64p(300))
	if err := s.AddTargetAttr(ctx, targetID, `astro-u\d+`); err != nil {
		t.Fatal(err)
	}

	// The pattern matches the last path component.
	result, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 700},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.MatchedBy[0].Source != "disk_pattern" {
		t.Fatalf("expected disk_pattern allow, got %s: %+v", result.Decision, result.MatchedBy)
	}

	// A disk on the same host outside the pattern is not covered.
	result, err = eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 701},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("expected denied for disk outside pattern")
	}
}

func TestUnknownDiskFailsEvaluation(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	grantOperation(t, eng, 10, opCreateUser, target.TypeHost, int64p(300))

	_, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeDisk, EntityID: 999},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown disk, got %v", err)
	}
}

func TestQueryAnyWithCachePurge(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	held, err := eng.QueryAny(ctx, 10, opCreateUser)
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("expected not held before any grant")
	}

	// Granting purges the cached negative.
	setID, targetID, _ := grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))

	held, err = eng.QueryAny(ctx, 10, opCreateUser)
	if err != nil {
		t.Fatal(err)
	}
	if !held {
		t.Fatal("expected held after grant")
	}

	// Revoking purges the cached positive.
	if err := eng.Revoke(ctx, 10, setID, targetID); err != nil {
		t.Fatal(err)
	}
	held, err = eng.QueryAny(ctx, 10, opCreateUser)
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("expected not held after revoke")
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	err := eng.Enforce(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))
	if err := eng.Enforce(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	}); err != nil {
		t.Fatal(err)
	}
}

func TestEnforceWithoutTarget(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	// A nil target is the coarse "held anywhere" gate used by route
	// middleware; it passes once any grant carries the operation.
	err := eng.Enforce(ctx, &CheckRequest{OperatorID: 10, Operation: opCreateUser})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))
	if err := eng.Enforce(ctx, &CheckRequest{OperatorID: 10, Operation: opCreateUser}); err != nil {
		t.Fatal(err)
	}
}

func TestDuplicateGrant(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	setID, targetID, _ := grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))
	if err := eng.Grant(ctx, 10, setID, targetID); !errors.Is(err, ErrDuplicateGrant) {
		t.Fatalf("expected ErrDuplicateGrant, got %v", err)
	}
}

func TestGrantValidatesReferences(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	setID, targetID, _ := grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))

	if err := eng.Grant(ctx, 11, 9999, targetID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing set, got %v", err)
	}
	if err := eng.Grant(ctx, 11, setID, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing target, got %v", err)
	}
}

func TestDeleteSetOrphansGrants(t *testing.T) {
	ctx := context.Background()
	eng, s, _ := newTestEngine(t)

	setID, _, _ := grantOperation(t, eng, 10, opCreateUser, target.TypeGroup, int64p(500))

	if err := eng.DeleteSet(ctx, setID); err != nil {
		t.Fatal(err)
	}

	n, err := s.CountOrphanGrants(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 orphan grant, got %d", n)
	}

	pruned, err := eng.SweepOrphans(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pruned != 1 {
		t.Fatalf("expected 1 pruned, got %d", pruned)
	}

	held, err := eng.QueryAny(ctx, 10, opCreateUser)
	if err != nil {
		t.Fatal(err)
	}
	if held {
		t.Fatal("expected not held after sweep")
	}
}

func TestEvaluateRejectsUnknownTargetType(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	_, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opCreateUser,
		Target:     &TargetRef{Type: "printer", EntityID: 1},
	})
	if !errors.Is(err, ErrUnknownTargetType) {
		t.Fatalf("expected ErrUnknownTargetType, got %v", err)
	}
}

func TestEvaluateValidatesLoadedCodes(t *testing.T) {
	ctx := context.Background()
	eng, s, _ := newTestEngine(t)

	if err := s.CreateCode(ctx, &opset.CodeInfo{Code: opCreateUser, Name: "account_create"}); err != nil {
		t.Fatal(err)
	}
	if err := eng.LoadCodes(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := eng.Evaluate(ctx, &CheckRequest{
		OperatorID: 10,
		Operation:  opset.Code(9999),
		Target:     &TargetRef{Type: target.TypeGroup, EntityID: 500},
	})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
}
