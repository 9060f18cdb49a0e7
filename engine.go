package provost

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/provost/cache"
	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/plugin"
	"github.com/xraph/provost/store"
	"github.com/xraph/provost/target"
)

// Engine is the authorization decision point. Evaluation is an ordered
// short-circuit pipeline:
//
//  1. superuser bypass
//  2. "held anywhere" lookup for requests without a target
//  3. global-category grants, guarded against superuser victims
//  4. exact-target grants, filtered by the operation attribute whitelist
//  5. disk hierarchy: owning host, then host disk-pattern rules
//  6. default deny
//
// All methods are safe for concurrent use once the engine is constructed.
type Engine struct {
	store      store.Store
	dir        Directory
	resolver   *Resolver
	members    MemberCache
	anyPerm    AnyPermCache
	plugins    *plugin.Registry
	pluginList []plugin.Plugin
	logger     *slog.Logger
	config     Config
	codes      *CodeRegistry
	now        func() time.Time
}

// NewEngine builds an Engine. WithStore and WithDirectory are required.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		return nil, errors.New("provost: store is required")
	}
	if e.dir == nil {
		return nil, ErrDirectoryRequired
	}
	if e.members == nil {
		e.members = cache.NewTTL(e.config.memberTTL(), e.now)
	}
	if e.anyPerm == nil {
		e.anyPerm = cache.NewLRU(e.config.anyPermSize())
	}
	e.resolver = NewResolver(e.dir, e.members, e.config)
	e.plugins = plugin.NewRegistry(e.logger)
	for _, p := range e.pluginList {
		e.plugins.Register(p)
	}
	return e, nil
}

// LoadCodes reads the operation-code registry from the store. Call once at
// startup; evaluations validate codes only after this has run.
func (e *Engine) LoadCodes(ctx context.Context) error {
	codes, err := LoadCodes(ctx, e.store)
	if err != nil {
		return err
	}
	e.codes = codes
	e.logger.Info("operation codes loaded", "count", codes.Len())
	return nil
}

// Store returns the underlying persistence backend.
func (e *Engine) Store() store.Store { return e.store }

// Resolver returns the membership resolver.
func (e *Engine) Resolver() *Resolver { return e.resolver }

// Codes returns the loaded code registry, nil before LoadCodes.
func (e *Engine) Codes() *CodeRegistry { return e.codes }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Close shuts down registered plugins.
func (e *Engine) Close(ctx context.Context) {
	e.plugins.EmitShutdown(ctx)
}

// Evaluate runs the decision pipeline. A deny is a normal result, not an
// error; errors mean the evaluation itself could not be carried out.
func (e *Engine) Evaluate(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	start := e.now()

	if e.codes != nil && !e.codes.Known(req.Operation) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, req.Operation)
	}
	if req.Target != nil && !req.Target.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTargetType, req.Target.Type)
	}

	e.plugins.EmitBeforeEvaluate(ctx, req)
	res, err := e.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	res.EvalTimeNs = e.now().Sub(start).Nanoseconds()
	e.plugins.EmitAfterEvaluate(ctx, req, res)

	e.logger.Debug("evaluated",
		"operator", req.OperatorID,
		"operation", req.Operation,
		"decision", res.Decision,
		"eval_ns", res.EvalTimeNs)
	return res, nil
}

func (e *Engine) evaluate(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	// Step 1: superuser bypass.
	super, err := e.resolver.IsSuperuser(ctx, req.OperatorID)
	if err != nil {
		return nil, err
	}
	if super {
		return &CheckResult{
			Allowed:   true,
			Decision:  DecisionAllowSuperuser,
			MatchedBy: []MatchInfo{{Source: "superuser", Detail: e.config.SuperuserGroup}},
		}, nil
	}

	// Step 2: no target means "does the operator hold this anywhere".
	if req.Target == nil {
		var held bool
		if req.Mode == ModeQueryAny {
			held, err = e.heldAnywhereCached(ctx, req.OperatorID, req.Operation)
		} else {
			held, err = e.heldAnywhere(ctx, req.OperatorID, req.Operation)
		}
		if err != nil {
			return nil, err
		}
		if held {
			return &CheckResult{
				Allowed:   true,
				Decision:  DecisionAllow,
				MatchedBy: []MatchInfo{{Source: "anywhere"}},
			}, nil
		}
		return &CheckResult{
			Allowed:  false,
			Decision: DecisionDenyDefault,
			Reason:   "operation not granted anywhere",
		}, nil
	}

	// Steps 3-5.
	return e.evaluateTarget(ctx, req)
}

// evaluateTarget resolves the operator's principals, narrows their grants to
// those whose set carries the operation, and matches the surviving grants
// against the requested target.
func (e *Engine) evaluateTarget(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	principals, err := e.resolver.EffectivePrincipals(ctx, req.OperatorID)
	if err != nil {
		return nil, err
	}
	grants, err := e.store.ListGrantsByEntities(ctx, principals)
	if err != nil {
		return nil, err
	}

	ops, err := e.store.ListOperationsByCode(ctx, req.Operation)
	if err != nil {
		return nil, err
	}
	opBySet := make(map[int64]int64, len(ops))
	for _, op := range ops {
		opBySet[op.SetID] = op.ID
	}

	var candidates []*grant.Grant
	for _, g := range grants {
		if _, ok := opBySet[g.SetID]; ok {
			candidates = append(candidates, g)
		}
	}
	if len(candidates) == 0 {
		return e.deny(req, DecisionDenyNoGrant)
	}

	targetIDs := make([]int64, 0, len(candidates))
	for _, g := range candidates {
		targetIDs = append(targetIDs, g.TargetID)
	}
	targets, err := e.store.ListTargets(ctx, &target.ListFilter{IDs: targetIDs})
	if err != nil {
		return nil, err
	}
	tgtByID := make(map[int64]*target.Target, len(targets))
	for _, t := range targets {
		tgtByID[t.ID()] = t
	}

	// Step 3: global-category grants short-circuit all per-entity rules.
	// A candidate blocked by the victim guard is a non-match, not a deny:
	// the concrete steps below may still authorize.
	protected := false
	globalType, _ := req.Target.Type.GlobalCategory()
	if req.Target.Type.Global() {
		globalType = req.Target.Type
	}
	if globalType != "" {
		for _, g := range candidates {
			t, ok := tgtByID[g.TargetID]
			if !ok || t.Type() != globalType {
				continue
			}
			blocked, err := e.globalBlocked(ctx, globalType, req.VictimID)
			if err != nil {
				return nil, err
			}
			if blocked {
				protected = true
				continue
			}
			return e.allow("global", g, string(globalType)), nil
		}
	}

	// Step 4: exact-target grants, with the operation attribute whitelist.
	attrDenied := false
	for _, g := range candidates {
		t, ok := tgtByID[g.TargetID]
		if !ok || t.Type() != req.Target.Type {
			continue
		}
		if t.EntityID() == nil || *t.EntityID() != req.Target.EntityID {
			continue
		}
		attrs, err := e.store.ListOperationAttrs(ctx, opBySet[g.SetID])
		if err != nil {
			return nil, err
		}
		if !attrMatch(attrs, req.Attr) {
			attrDenied = true
			continue
		}
		return e.allow("direct", g, fmt.Sprintf("%s %d", t.Type(), req.Target.EntityID)), nil
	}

	// Step 5: disks inherit from their owning host.
	if req.Target.Type == target.TypeDisk {
		res, err := e.evaluateDisk(ctx, req, candidates, tgtByID, opBySet)
		if err != nil || res != nil {
			return res, err
		}
	}

	if attrDenied {
		return e.deny(req, DecisionDenyAttr)
	}
	if protected {
		return e.deny(req, DecisionDenyProtected)
	}
	return e.deny(req, DecisionDenyDefault)
}

// evaluateDisk walks the host level of the disk hierarchy: a host grant
// without attribute patterns covers every disk on the host, a host grant
// with patterns covers the disks whose path matches one. Returns nil when
// nothing at the host level applies.
func (e *Engine) evaluateDisk(ctx context.Context, req *CheckRequest, candidates []*grant.Grant, tgtByID map[int64]*target.Target, opBySet map[int64]int64) (*CheckResult, error) {
	disk, err := e.dir.Disk(ctx, req.Target.EntityID)
	if err != nil {
		return nil, fmt.Errorf("provost: resolve disk %d: %w", req.Target.EntityID, err)
	}

	for _, g := range candidates {
		t, ok := tgtByID[g.TargetID]
		if !ok || t.Type() != target.TypeHost {
			continue
		}
		if t.EntityID() == nil || *t.EntityID() != disk.HostID {
			continue
		}
		if !t.HasAttr() {
			attrs, err := e.store.ListOperationAttrs(ctx, opBySet[g.SetID])
			if err != nil {
				return nil, err
			}
			if !attrMatch(attrs, req.Attr) {
				continue
			}
			return e.allow("host", g, fmt.Sprintf("host %d", disk.HostID)), nil
		}
		patterns, err := e.store.ListTargetAttrs(ctx, t.ID())
		if err != nil {
			return nil, err
		}
		for _, p := range patterns {
			matched, err := matchDiskPattern(p, disk.Path)
			if err != nil {
				e.logger.Warn("skipping malformed disk pattern",
					"target", t.ID(), "pattern", p, "error", err)
				continue
			}
			if matched {
				return e.allow("disk_pattern", g, p), nil
			}
		}
	}
	return nil, nil
}

// globalBlocked applies the superuser-protection guard to a global grant: a
// global group grant never reaches the superuser group itself, and other
// global grants never reach a superuser member.
func (e *Engine) globalBlocked(ctx context.Context, globalType target.Type, victimID *int64) (bool, error) {
	if victimID == nil {
		return false, nil
	}
	if globalType == target.TypeGlobalGroup {
		gid, err := e.resolver.SuperuserGroupID(ctx)
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return *victimID == gid, nil
	}
	return e.resolver.IsSuperuser(ctx, *victimID)
}

func (e *Engine) allow(source string, g *grant.Grant, detail string) *CheckResult {
	return &CheckResult{
		Allowed:  true,
		Decision: DecisionAllow,
		MatchedBy: []MatchInfo{{
			Source: source,
			RuleID: fmt.Sprintf("%d/%d/%d", g.EntityID, g.SetID, g.TargetID),
			Detail: detail,
		}},
	}
}

func (e *Engine) deny(req *CheckRequest, d Decision) (*CheckResult, error) {
	reason := fmt.Sprintf("no access to %s %d", req.Target.Type, req.Target.EntityID)
	switch d {
	case DecisionDenyAttr:
		reason = fmt.Sprintf("operation attribute not permitted on %s %d", req.Target.Type, req.Target.EntityID)
	case DecisionDenyProtected:
		reason = fmt.Sprintf("victim is protected, global grant does not reach %s %d", req.Target.Type, req.Target.EntityID)
	}
	return &CheckResult{Allowed: false, Decision: d, Reason: reason}, nil
}

// heldAnywhere reports whether any grant in the operator's principal set
// carries the operation, regardless of target.
func (e *Engine) heldAnywhere(ctx context.Context, operatorID int64, code opset.Code) (bool, error) {
	principals, err := e.resolver.EffectivePrincipals(ctx, operatorID)
	if err != nil {
		return false, err
	}
	grants, err := e.store.ListGrantsByEntities(ctx, principals)
	if err != nil {
		return false, err
	}
	if len(grants) == 0 {
		return false, nil
	}
	ops, err := e.store.ListOperationsByCode(ctx, code)
	if err != nil {
		return false, err
	}
	setsWithOp := make(map[int64]bool, len(ops))
	for _, op := range ops {
		setsWithOp[op.SetID] = true
	}
	for _, g := range grants {
		if setsWithOp[g.SetID] {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) heldAnywhereCached(ctx context.Context, operatorID int64, code opset.Code) (bool, error) {
	key := fmt.Sprintf("%d:%d", operatorID, code)
	if held, ok := e.anyPerm.Get(key); ok {
		return held, nil
	}
	held, err := e.heldAnywhere(ctx, operatorID, code)
	if err != nil {
		return false, err
	}
	e.anyPerm.Set(key, held)
	return held, nil
}

// Enforce evaluates in enforce mode and converts a deny into
// ErrPermissionDenied carrying the reason.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	req.Mode = ModeEnforce
	res, err := e.Evaluate(ctx, req)
	if err != nil {
		return err
	}
	if !res.Allowed {
		return fmt.Errorf("%w: %s", ErrPermissionDenied, res.Reason)
	}
	return nil
}

// CanDo is the boolean convenience form of Evaluate.
func (e *Engine) CanDo(ctx context.Context, operatorID int64, code opset.Code, tgt *TargetRef, attr *string) (bool, error) {
	res, err := e.Evaluate(ctx, &CheckRequest{
		OperatorID: operatorID,
		Operation:  code,
		Target:     tgt,
		Attr:       attr,
	})
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// QueryAny reports whether the operator holds the operation on any target.
// Used to trim command lists; never a basis for authorizing a mutation.
func (e *Engine) QueryAny(ctx context.Context, operatorID int64, code opset.Code) (bool, error) {
	res, err := e.Evaluate(ctx, &CheckRequest{
		OperatorID: operatorID,
		Operation:  code,
		Mode:       ModeQueryAny,
	})
	if err != nil {
		return false, err
	}
	return res.Allowed, nil
}

// Grant records that an entity holds an operation set on a target. The set
// and target must exist; the any-permission cache is purged since cached
// negatives may have become stale.
func (e *Engine) Grant(ctx context.Context, entityID, setID, targetID int64) error {
	if _, err := e.store.GetSet(ctx, setID); err != nil {
		return err
	}
	if _, err := e.store.GetTarget(ctx, targetID); err != nil {
		return err
	}
	g := &grant.Grant{EntityID: entityID, SetID: setID, TargetID: targetID}
	if err := e.store.CreateGrant(ctx, g); err != nil {
		return err
	}
	e.anyPerm.Purge()
	e.plugins.EmitGranted(ctx, g)
	e.logger.Info("grant created", "entity", entityID, "set", setID, "target", targetID)
	return nil
}

// Revoke removes a grant. Revoking an absent grant is a no-op.
func (e *Engine) Revoke(ctx context.Context, entityID, setID, targetID int64) error {
	g := &grant.Grant{EntityID: entityID, SetID: setID, TargetID: targetID}
	if err := e.store.DeleteGrant(ctx, g); err != nil {
		return err
	}
	e.anyPerm.Purge()
	e.plugins.EmitRevoked(ctx, g)
	e.logger.Info("grant revoked", "entity", entityID, "set", setID, "target", targetID)
	return nil
}

// CreateSet creates and persists a named operation set.
func (e *Engine) CreateSet(ctx context.Context, name string) (*opset.Set, error) {
	s := opset.NewSet(name)
	if _, err := e.store.SaveSet(ctx, s); err != nil {
		return nil, err
	}
	e.plugins.EmitSetSaved(ctx, s)
	return s, nil
}

// DeleteSet removes an operation set. Grants referencing it become orphans
// until the next SweepOrphans.
func (e *Engine) DeleteSet(ctx context.Context, setID int64) error {
	if err := e.store.DeleteSet(ctx, setID); err != nil {
		return err
	}
	e.anyPerm.Purge()
	e.plugins.EmitSetDeleted(ctx, setID)
	return nil
}

// AddOperation adds an operation code to a set.
func (e *Engine) AddOperation(ctx context.Context, setID int64, code opset.Code) (int64, error) {
	if e.codes != nil && !e.codes.Known(code) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownOperation, code)
	}
	opID, err := e.store.AddOperation(ctx, setID, code)
	if err != nil {
		return 0, err
	}
	e.anyPerm.Purge()
	return opID, nil
}

// RemoveOperation removes an operation code from a set.
func (e *Engine) RemoveOperation(ctx context.Context, setID int64, code opset.Code) error {
	if err := e.store.RemoveOperation(ctx, setID, code); err != nil {
		return err
	}
	e.anyPerm.Purge()
	return nil
}

// CreateTarget creates and persists an operation target.
func (e *Engine) CreateTarget(ctx context.Context, typ target.Type, entityID *int64) (*target.Target, error) {
	t, err := target.New(typ, entityID)
	if err != nil {
		return nil, err
	}
	if _, err := e.store.SaveTarget(ctx, t); err != nil {
		return nil, err
	}
	e.plugins.EmitTargetSaved(ctx, t)
	return t, nil
}

// DeleteTarget removes a target. Grants referencing it become orphans until
// the next SweepOrphans.
func (e *Engine) DeleteTarget(ctx context.Context, targetID int64) error {
	if err := e.store.DeleteTarget(ctx, targetID); err != nil {
		return err
	}
	e.anyPerm.Purge()
	e.plugins.EmitTargetDeleted(ctx, targetID)
	return nil
}

// SweepOrphans deletes grant rows whose set or target has been removed and
// returns how many were pruned.
func (e *Engine) SweepOrphans(ctx context.Context) (int64, error) {
	pruned, err := e.store.PruneOrphanGrants(ctx)
	if err != nil {
		return 0, err
	}
	if pruned > 0 {
		e.anyPerm.Purge()
		e.logger.Info("orphaned grants pruned", "count", pruned)
	}
	return pruned, nil
}
