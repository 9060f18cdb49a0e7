// Package sqlite provides a SQLite implementation of the provost composite
// store using grove.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store"
	"github.com/xraph/provost/target"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

var errNotFound = store.ErrNotFound

// Store is a SQLite implementation of the composite provost store.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("provost/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("provost/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// NextID allocates the next value of the shared id sequence.
func (s *Store) NextID(ctx context.Context) (int64, error) {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("provost: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	m := new(sequenceModel)
	if err := tx.NewSelect(m).Scan(ctx); err != nil {
		return 0, fmt.Errorf("provost: read sequence: %w", err)
	}
	next := m.ID + 1
	if _, err := tx.NewUpdate(&sequenceModel{ID: next}).Where("id = ?", m.ID).Exec(ctx); err != nil {
		return 0, fmt.Errorf("provost: advance sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("provost: commit tx: %w", err)
	}
	return next, nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// placeholders builds a "?,?,..." list for IN clauses.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// ──────────────────────────────────────────────────
// Operation-set operations
// ──────────────────────────────────────────────────

func (s *Store) SaveSet(ctx context.Context, set *opset.Set) (bool, error) {
	if set.Found() && !set.Changed() {
		return false, nil
	}
	if !set.Found() {
		id, err := s.NextID(ctx)
		if err != nil {
			return false, err
		}
		m := &setModel{ID: id, Name: set.Name()}
		if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
			return false, fmt.Errorf("provost: create operation set: %w", err)
		}
		set.MarkSaved(id)
		return true, nil
	}
	m := &setModel{ID: set.ID(), Name: set.Name()}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return false, fmt.Errorf("provost: update operation set: %w", err)
	}
	set.MarkSaved(set.ID())
	return false, nil
}

func (s *Store) GetSet(ctx context.Context, setID int64) (*opset.Set, error) {
	m := new(setModel)
	err := s.sdb.NewSelect(m).Where("id = ?", setID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("operation set %d: %w", setID, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation set: %w", err)
	}
	return setFromModel(m), nil
}

func (s *Store) GetSetByName(ctx context.Context, name string) (*opset.Set, error) {
	m := new(setModel)
	err := s.sdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("operation set %q: %w", name, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation set by name: %w", err)
	}
	return setFromModel(m), nil
}

func (s *Store) DeleteSet(ctx context.Context, setID int64) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("provost: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	_, err = tx.NewDelete((*operationAttrModel)(nil)).
		Where("op_id IN (SELECT id FROM provost_operations WHERE set_id = ?)", setID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete operation attrs: %w", err)
	}
	_, err = tx.NewDelete((*operationModel)(nil)).
		Where("set_id = ?", setID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete operations: %w", err)
	}
	res, err := tx.NewDelete((*setModel)(nil)).
		Where("id = ?", setID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete operation set: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("operation set %d: %w", setID, errNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("provost: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListSets(ctx context.Context) ([]*opset.Set, error) {
	var models []setModel
	if err := s.sdb.NewSelect(&models).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: list operation sets: %w", err)
	}
	result := make([]*opset.Set, len(models))
	for i := range models {
		result[i] = setFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddOperation(ctx context.Context, setID int64, code opset.Code) (int64, error) {
	if _, err := s.GetSet(ctx, setID); err != nil {
		return 0, err
	}
	existing := new(operationModel)
	err := s.sdb.NewSelect(existing).
		Where("set_id = ?", setID).
		Where("code = ?", int32(code)).
		Scan(ctx)
	if err == nil {
		return 0, fmt.Errorf("provost: operation %d already in set %d", code, setID)
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("provost: add operation: %w", err)
	}

	id, err := s.NextID(ctx)
	if err != nil {
		return 0, err
	}
	m := &operationModel{ID: id, SetID: setID, Code: int32(code)}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return 0, fmt.Errorf("provost: add operation: %w", err)
	}
	return id, nil
}

func (s *Store) RemoveOperation(ctx context.Context, setID int64, code opset.Code) error {
	m := new(operationModel)
	err := s.sdb.NewSelect(m).
		Where("set_id = ?", setID).
		Where("code = ?", int32(code)).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("operation %d in set %d: %w", code, setID, errNotFound)
		}
		return fmt.Errorf("provost: remove operation: %w", err)
	}
	_, err = s.sdb.NewDelete((*operationAttrModel)(nil)).
		Where("op_id = ?", m.ID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation attrs: %w", err)
	}
	_, err = s.sdb.NewDelete((*operationModel)(nil)).
		Where("id = ?", m.ID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation: %w", err)
	}
	return nil
}

func (s *Store) ListOperations(ctx context.Context, setID int64) ([]opset.Operation, error) {
	var models []operationModel
	err := s.sdb.NewSelect(&models).
		Where("set_id = ?", setID).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list operations: %w", err)
	}
	result := make([]opset.Operation, len(models))
	for i := range models {
		result[i] = operationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListOperationsByCode(ctx context.Context, code opset.Code) ([]opset.Operation, error) {
	var models []operationModel
	err := s.sdb.NewSelect(&models).
		Where("code = ?", int32(code)).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list operations by code: %w", err)
	}
	result := make([]opset.Operation, len(models))
	for i := range models {
		result[i] = operationFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddOperationAttr(ctx context.Context, opID int64, attr string) error {
	m := new(operationModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", opID).Scan(ctx); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("operation %d: %w", opID, errNotFound)
		}
		return fmt.Errorf("provost: add operation attr: %w", err)
	}
	am := &operationAttrModel{OpID: opID, Attr: attr}
	_, err := s.sdb.NewInsert(am).
		OnConflict("(op_id, attr) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: add operation attr: %w", err)
	}
	return nil
}

func (s *Store) RemoveOperationAttr(ctx context.Context, opID int64, attr string) error {
	res, err := s.sdb.NewDelete((*operationAttrModel)(nil)).
		Where("op_id = ?", opID).
		Where("attr = ?", attr).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation attr: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attr %q on operation %d: %w", attr, opID, errNotFound)
	}
	return nil
}

func (s *Store) ListOperationAttrs(ctx context.Context, opID int64) ([]string, error) {
	var models []operationAttrModel
	err := s.sdb.NewSelect(&models).
		Where("op_id = ?", opID).
		OrderExpr("attr ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list operation attrs: %w", err)
	}
	attrs := make([]string, len(models))
	for i := range models {
		attrs[i] = models[i].Attr
	}
	return attrs, nil
}

func (s *Store) CreateCode(ctx context.Context, c *opset.CodeInfo) error {
	if _, err := s.sdb.NewInsert(codeToModel(c)).Exec(ctx); err != nil {
		return fmt.Errorf("provost: create operation code: %w", err)
	}
	return nil
}

func (s *Store) GetCodeByName(ctx context.Context, name string) (*opset.CodeInfo, error) {
	m := new(codeModel)
	err := s.sdb.NewSelect(m).Where("name = ?", name).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("operation code %q: %w", name, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation code: %w", err)
	}
	return codeFromModel(m), nil
}

func (s *Store) ListCodes(ctx context.Context) ([]*opset.CodeInfo, error) {
	var models []codeModel
	if err := s.sdb.NewSelect(&models).OrderExpr("code ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: list operation codes: %w", err)
	}
	result := make([]*opset.CodeInfo, len(models))
	for i := range models {
		result[i] = codeFromModel(&models[i])
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Target operations
// ──────────────────────────────────────────────────

func (s *Store) SaveTarget(ctx context.Context, t *target.Target) (bool, error) {
	if t.Found() && !t.Changed() {
		return false, nil
	}
	if !t.Found() {
		id, err := s.NextID(ctx)
		if err != nil {
			return false, err
		}
		m := &targetModel{ID: id, TargetType: string(t.Type()), EntityID: t.EntityID()}
		if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
			return false, fmt.Errorf("provost: create target: %w", err)
		}
		t.MarkSaved(id, false)
		return true, nil
	}
	hasAttr, err := s.targetHasAttr(ctx, t.ID())
	if err != nil {
		return false, err
	}
	m := &targetModel{ID: t.ID(), TargetType: string(t.Type()), EntityID: t.EntityID(), HasAttr: hasAttr}
	if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
		return false, fmt.Errorf("provost: update target: %w", err)
	}
	t.MarkSaved(t.ID(), hasAttr)
	return false, nil
}

func (s *Store) GetTarget(ctx context.Context, targetID int64) (*target.Target, error) {
	m := new(targetModel)
	err := s.sdb.NewSelect(m).Where("id = ?", targetID).Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("target %d: %w", targetID, errNotFound)
		}
		return nil, fmt.Errorf("provost: get target: %w", err)
	}
	return targetFromModel(m), nil
}

func (s *Store) DeleteTarget(ctx context.Context, targetID int64) error {
	tx, err := s.sdb.BeginTxQuery(ctx, nil)
	if err != nil {
		return fmt.Errorf("provost: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback on error is intentional

	_, err = tx.NewDelete((*targetAttrModel)(nil)).
		Where("target_id = ?", targetID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete target attrs: %w", err)
	}
	res, err := tx.NewDelete((*targetModel)(nil)).
		Where("id = ?", targetID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete target: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("target %d: %w", targetID, errNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("provost: commit tx: %w", err)
	}
	return nil
}

func (s *Store) ListTargets(ctx context.Context, filter *target.ListFilter) ([]*target.Target, error) {
	var models []targetModel
	q := s.sdb.NewSelect(&models).OrderExpr("id ASC")
	if filter != nil {
		if len(filter.IDs) > 0 {
			q = q.Where("id IN ("+placeholders(len(filter.IDs))+")", int64Args(filter.IDs)...)
		}
		if filter.Type != "" {
			q = q.Where("target_type = ?", string(filter.Type))
		}
		if filter.EntityID != nil {
			q = q.Where("entity_id = ?", *filter.EntityID)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: list targets: %w", err)
	}
	result := make([]*target.Target, len(models))
	for i := range models {
		result[i] = targetFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddTargetAttr(ctx context.Context, targetID int64, attr string) error {
	m := new(targetModel)
	if err := s.sdb.NewSelect(m).Where("id = ?", targetID).Scan(ctx); err != nil {
		if isNoRows(err) {
			return fmt.Errorf("target %d: %w", targetID, errNotFound)
		}
		return fmt.Errorf("provost: add target attr: %w", err)
	}
	am := &targetAttrModel{TargetID: targetID, Attr: attr}
	_, err := s.sdb.NewInsert(am).
		OnConflict("(target_id, attr) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: add target attr: %w", err)
	}
	if !m.HasAttr {
		m.HasAttr = true
		if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("provost: flag target attrs: %w", err)
		}
	}
	return nil
}

func (s *Store) RemoveTargetAttr(ctx context.Context, targetID int64, attr string) error {
	res, err := s.sdb.NewDelete((*targetAttrModel)(nil)).
		Where("target_id = ?", targetID).
		Where("attr = ?", attr).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove target attr: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attr %q on target %d: %w", attr, targetID, errNotFound)
	}
	hasAttr, err := s.targetHasAttr(ctx, targetID)
	if err != nil {
		return err
	}
	if !hasAttr {
		m := new(targetModel)
		if err := s.sdb.NewSelect(m).Where("id = ?", targetID).Scan(ctx); err != nil {
			return fmt.Errorf("provost: unflag target attrs: %w", err)
		}
		m.HasAttr = false
		if _, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx); err != nil {
			return fmt.Errorf("provost: unflag target attrs: %w", err)
		}
	}
	return nil
}

func (s *Store) ListTargetAttrs(ctx context.Context, targetID int64) ([]string, error) {
	var models []targetAttrModel
	err := s.sdb.NewSelect(&models).
		Where("target_id = ?", targetID).
		OrderExpr("attr ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list target attrs: %w", err)
	}
	attrs := make([]string, len(models))
	for i := range models {
		attrs[i] = models[i].Attr
	}
	return attrs, nil
}

func (s *Store) targetHasAttr(ctx context.Context, targetID int64) (bool, error) {
	count, err := s.sdb.NewSelect((*targetAttrModel)(nil)).
		Where("target_id = ?", targetID).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("provost: count target attrs: %w", err)
	}
	return count > 0, nil
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *grant.Grant) error {
	count, err := s.sdb.NewSelect((*grantModel)(nil)).
		Where("entity_id = ?", g.EntityID).
		Where("set_id = ?", g.SetID).
		Where("target_id = ?", g.TargetID).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("provost: create grant: %w", err)
	}
	if count > 0 {
		return grant.ErrDuplicate
	}
	m := &grantModel{EntityID: g.EntityID, SetID: g.SetID, TargetID: g.TargetID}
	if _, err := s.sdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("provost: create grant: %w", err)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, g *grant.Grant) error {
	_, err := s.sdb.NewDelete((*grantModel)(nil)).
		Where("entity_id = ?", g.EntityID).
		Where("set_id = ?", g.SetID).
		Where("target_id = ?", g.TargetID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	var models []grantModel
	q := s.sdb.NewSelect(&models).OrderExpr("entity_id ASC, set_id ASC, target_id ASC")
	if filter != nil {
		if len(filter.EntityIDs) > 0 {
			q = q.Where("entity_id IN ("+placeholders(len(filter.EntityIDs))+")", int64Args(filter.EntityIDs)...)
		}
		if filter.SetID != nil {
			q = q.Where("set_id = ?", *filter.SetID)
		}
		if filter.TargetID != nil {
			q = q.Where("target_id = ?", *filter.TargetID)
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: list grants: %w", err)
	}
	result := make([]*grant.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) ListGrantsByEntities(ctx context.Context, entityIDs []int64) ([]*grant.Grant, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	return s.ListGrants(ctx, &grant.ListFilter{EntityIDs: entityIDs})
}

func (s *Store) ListGrantsByTargets(ctx context.Context, targetIDs []int64) ([]*grant.Grant, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	var models []grantModel
	err := s.sdb.NewSelect(&models).
		Where("target_id IN ("+placeholders(len(targetIDs))+")", int64Args(targetIDs)...).
		OrderExpr("entity_id ASC, set_id ASC, target_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list grants by targets: %w", err)
	}
	result := make([]*grant.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountOrphanGrants(ctx context.Context) (int64, error) {
	count, err := s.sdb.NewSelect((*grantModel)(nil)).
		Where("set_id NOT IN (SELECT id FROM provost_op_sets) OR target_id NOT IN (SELECT id FROM provost_targets)").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("provost: count orphan grants: %w", err)
	}
	return count, nil
}

func (s *Store) PruneOrphanGrants(ctx context.Context) (int64, error) {
	res, err := s.sdb.NewDelete((*grantModel)(nil)).
		Where("set_id NOT IN (SELECT id FROM provost_op_sets) OR target_id NOT IN (SELECT id FROM provost_targets)").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("provost: prune orphan grants: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("provost: prune orphan grants: %w", err)
	}
	return n, nil
}
