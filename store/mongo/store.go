// Package mongo provides a MongoDB implementation of the provost composite
// store using grove.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store"
	"github.com/xraph/provost/target"
)

// Collection name constants.
const (
	colOpCodes        = "provost_op_codes"
	colOpSets         = "provost_op_sets"
	colOperations     = "provost_operations"
	colOperationAttrs = "provost_operation_attrs"
	colTargets        = "provost_targets"
	colTargetAttrs    = "provost_target_attrs"
	colGrants         = "provost_grants"
	colSequence       = "provost_sequence"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

var errNotFound = store.ErrNotFound

// Store is a MongoDB implementation of the composite provost store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by grove.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all provost collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("provost/mongo: migrate %s indexes: %w", col, err)
		}
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

// NextID allocates the next value of the shared id sequence via an atomic
// $inc on a single counter document.
func (s *Store) NextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.mdb.Collection(colSequence).FindOneAndUpdate(ctx,
		bson.M{"_id": "provost"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("provost: advance sequence: %w", err)
	}
	return doc.Seq, nil
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all provost collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colOpCodes: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colOpSets: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colOperations: {
			{
				Keys:    bson.D{{Key: "set_id", Value: 1}, {Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "code", Value: 1}}},
		},
		colOperationAttrs: {
			{
				Keys:    bson.D{{Key: "op_id", Value: 1}, {Key: "attr", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colTargets: {
			{Keys: bson.D{{Key: "target_type", Value: 1}, {Key: "entity_id", Value: 1}}},
		},
		colTargetAttrs: {
			{
				Keys:    bson.D{{Key: "target_id", Value: 1}, {Key: "attr", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		colGrants: {
			{
				Keys: bson.D{
					{Key: "entity_id", Value: 1},
					{Key: "set_id", Value: 1},
					{Key: "target_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "entity_id", Value: 1}}},
			{Keys: bson.D{{Key: "target_id", Value: 1}}},
		},
	}
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
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return false, fmt.Errorf("provost: create operation set: %w", err)
		}
		set.MarkSaved(id)
		return true, nil
	}
	m := &setModel{ID: set.ID(), Name: set.Name()}
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("provost: update operation set: %w", err)
	}
	if res.MatchedCount() == 0 {
		return false, fmt.Errorf("operation set %d: %w", set.ID(), errNotFound)
	}
	set.MarkSaved(set.ID())
	return false, nil
}

func (s *Store) GetSet(ctx context.Context, setID int64) (*opset.Set, error) {
	var m setModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": setID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("operation set %d: %w", setID, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation set: %w", err)
	}
	return setFromModel(&m), nil
}

func (s *Store) GetSetByName(ctx context.Context, name string) (*opset.Set, error) {
	var m setModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("operation set %q: %w", name, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation set by name: %w", err)
	}
	return setFromModel(&m), nil
}

func (s *Store) DeleteSet(ctx context.Context, setID int64) error {
	ops, err := s.ListOperations(ctx, setID)
	if err != nil {
		return err
	}
	opIDs := make([]int64, len(ops))
	for i, op := range ops {
		opIDs[i] = op.ID
	}
	if len(opIDs) > 0 {
		_, err = s.mdb.NewDelete((*operationAttrModel)(nil)).
			Filter(bson.M{"op_id": bson.M{"$in": opIDs}}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("provost: delete operation attrs: %w", err)
		}
		_, err = s.mdb.NewDelete((*operationModel)(nil)).
			Filter(bson.M{"set_id": setID}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("provost: delete operations: %w", err)
		}
	}
	res, err := s.mdb.NewDelete((*setModel)(nil)).
		Filter(bson.M{"_id": setID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete operation set: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("operation set %d: %w", setID, errNotFound)
	}
	return nil
}

func (s *Store) ListSets(ctx context.Context) ([]*opset.Set, error) {
	var models []setModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
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
	count, err := s.mdb.NewFind((*operationModel)(nil)).
		Filter(bson.M{"set_id": setID, "code": int32(code)}).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("provost: add operation: %w", err)
	}
	if count > 0 {
		return 0, fmt.Errorf("provost: operation %d already in set %d", code, setID)
	}

	id, err := s.NextID(ctx)
	if err != nil {
		return 0, err
	}
	m := &operationModel{ID: id, SetID: setID, Code: int32(code)}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return 0, fmt.Errorf("provost: add operation: %w", err)
	}
	return id, nil
}

func (s *Store) RemoveOperation(ctx context.Context, setID int64, code opset.Code) error {
	var m operationModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"set_id": setID, "code": int32(code)}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return fmt.Errorf("operation %d in set %d: %w", code, setID, errNotFound)
		}
		return fmt.Errorf("provost: remove operation: %w", err)
	}
	_, err = s.mdb.NewDelete((*operationAttrModel)(nil)).
		Filter(bson.M{"op_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation attrs: %w", err)
	}
	_, err = s.mdb.NewDelete((*operationModel)(nil)).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation: %w", err)
	}
	return nil
}

func (s *Store) ListOperations(ctx context.Context, setID int64) ([]opset.Operation, error) {
	var models []operationModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"set_id": setID}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
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
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"code": int32(code)}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
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
	count, err := s.mdb.NewFind((*operationModel)(nil)).
		Filter(bson.M{"_id": opID}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("provost: add operation attr: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("operation %d: %w", opID, errNotFound)
	}
	existing, err := s.mdb.NewFind((*operationAttrModel)(nil)).
		Filter(bson.M{"op_id": opID, "attr": attr}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("provost: add operation attr: %w", err)
	}
	if existing > 0 {
		return nil
	}
	m := &operationAttrModel{OpID: opID, Attr: attr}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("provost: add operation attr: %w", err)
	}
	return nil
}

func (s *Store) RemoveOperationAttr(ctx context.Context, opID int64, attr string) error {
	res, err := s.mdb.NewDelete((*operationAttrModel)(nil)).
		Filter(bson.M{"op_id": opID, "attr": attr}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove operation attr: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("attr %q on operation %d: %w", attr, opID, errNotFound)
	}
	return nil
}

func (s *Store) ListOperationAttrs(ctx context.Context, opID int64) ([]string, error) {
	var models []operationAttrModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"op_id": opID}).
		Sort(bson.D{{Key: "attr", Value: 1}}).
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
	if _, err := s.mdb.NewInsert(codeToModel(c)).Exec(ctx); err != nil {
		return fmt.Errorf("provost: create operation code: %w", err)
	}
	return nil
}

func (s *Store) GetCodeByName(ctx context.Context, name string) (*opset.CodeInfo, error) {
	var m codeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"name": name}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("operation code %q: %w", name, errNotFound)
		}
		return nil, fmt.Errorf("provost: get operation code: %w", err)
	}
	return codeFromModel(&m), nil
}

func (s *Store) ListCodes(ctx context.Context) ([]*opset.CodeInfo, error) {
	var models []codeModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
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
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
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
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("provost: update target: %w", err)
	}
	if res.MatchedCount() == 0 {
		return false, fmt.Errorf("target %d: %w", t.ID(), errNotFound)
	}
	t.MarkSaved(t.ID(), hasAttr)
	return false, nil
}

func (s *Store) GetTarget(ctx context.Context, targetID int64) (*target.Target, error) {
	var m targetModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": targetID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("target %d: %w", targetID, errNotFound)
		}
		return nil, fmt.Errorf("provost: get target: %w", err)
	}
	return targetFromModel(&m), nil
}

func (s *Store) DeleteTarget(ctx context.Context, targetID int64) error {
	_, err := s.mdb.NewDelete((*targetAttrModel)(nil)).
		Filter(bson.M{"target_id": targetID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete target attrs: %w", err)
	}
	res, err := s.mdb.NewDelete((*targetModel)(nil)).
		Filter(bson.M{"_id": targetID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete target: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("target %d: %w", targetID, errNotFound)
	}
	return nil
}

func (s *Store) ListTargets(ctx context.Context, filter *target.ListFilter) ([]*target.Target, error) {
	f := bson.M{}
	if filter != nil {
		if len(filter.IDs) > 0 {
			f["_id"] = bson.M{"$in": filter.IDs}
		}
		if filter.Type != "" {
			f["target_type"] = string(filter.Type)
		}
		if filter.EntityID != nil {
			f["entity_id"] = *filter.EntityID
		}
	}
	var models []targetModel
	err := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: list targets: %w", err)
	}
	result := make([]*target.Target, len(models))
	for i := range models {
		result[i] = targetFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) AddTargetAttr(ctx context.Context, targetID int64, attr string) error {
	t, err := s.GetTarget(ctx, targetID)
	if err != nil {
		return err
	}
	existing, err := s.mdb.NewFind((*targetAttrModel)(nil)).
		Filter(bson.M{"target_id": targetID, "attr": attr}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("provost: add target attr: %w", err)
	}
	if existing == 0 {
		m := &targetAttrModel{TargetID: targetID, Attr: attr}
		if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
			return fmt.Errorf("provost: add target attr: %w", err)
		}
	}
	if !t.HasAttr() {
		return s.setHasAttr(ctx, targetID, true)
	}
	return nil
}

func (s *Store) RemoveTargetAttr(ctx context.Context, targetID int64, attr string) error {
	res, err := s.mdb.NewDelete((*targetAttrModel)(nil)).
		Filter(bson.M{"target_id": targetID, "attr": attr}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: remove target attr: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("attr %q on target %d: %w", attr, targetID, errNotFound)
	}
	hasAttr, err := s.targetHasAttr(ctx, targetID)
	if err != nil {
		return err
	}
	if !hasAttr {
		return s.setHasAttr(ctx, targetID, false)
	}
	return nil
}

func (s *Store) ListTargetAttrs(ctx context.Context, targetID int64) ([]string, error) {
	var models []targetAttrModel
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"target_id": targetID}).
		Sort(bson.D{{Key: "attr", Value: 1}}).
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
	count, err := s.mdb.NewFind((*targetAttrModel)(nil)).
		Filter(bson.M{"target_id": targetID}).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("provost: count target attrs: %w", err)
	}
	return count > 0, nil
}

func (s *Store) setHasAttr(ctx context.Context, targetID int64, hasAttr bool) error {
	_, err := s.mdb.Collection(colTargets).UpdateOne(ctx,
		bson.M{"_id": targetID},
		bson.M{"$set": bson.M{"has_attr": hasAttr}},
	)
	if err != nil {
		return fmt.Errorf("provost: flag target attrs: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *grant.Grant) error {
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(bson.M{"entity_id": g.EntityID, "set_id": g.SetID, "target_id": g.TargetID}).
		Count(ctx)
	if err != nil {
		return fmt.Errorf("provost: create grant: %w", err)
	}
	if count > 0 {
		return grant.ErrDuplicate
	}
	m := &grantModel{EntityID: g.EntityID, SetID: g.SetID, TargetID: g.TargetID}
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("provost: create grant: %w", err)
	}
	return nil
}

func (s *Store) DeleteGrant(ctx context.Context, g *grant.Grant) error {
	_, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(bson.M{"entity_id": g.EntityID, "set_id": g.SetID, "target_id": g.TargetID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("provost: delete grant: %w", err)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	f := bson.M{}
	if filter != nil {
		if len(filter.EntityIDs) > 0 {
			f["entity_id"] = bson.M{"$in": filter.EntityIDs}
		}
		if filter.SetID != nil {
			f["set_id"] = *filter.SetID
		}
		if filter.TargetID != nil {
			f["target_id"] = *filter.TargetID
		}
	}
	var models []grantModel
	err := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "entity_id", Value: 1}, {Key: "set_id", Value: 1}, {Key: "target_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
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
	err := s.mdb.NewFind(&models).
		Filter(bson.M{"target_id": bson.M{"$in": targetIDs}}).
		Sort(bson.D{{Key: "entity_id", Value: 1}, {Key: "set_id", Value: 1}, {Key: "target_id", Value: 1}}).
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
	f, err := s.orphanFilter(ctx)
	if err != nil {
		return 0, err
	}
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(f).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("provost: count orphan grants: %w", err)
	}
	return count, nil
}

func (s *Store) PruneOrphanGrants(ctx context.Context) (int64, error) {
	f, err := s.orphanFilter(ctx)
	if err != nil {
		return 0, err
	}
	res, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(f).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("provost: prune orphan grants: %w", err)
	}
	return res.DeletedCount(), nil
}

// orphanFilter matches grants whose set or target document no longer exists.
// Mongo has no subqueries, so the live id sets are loaded first.
func (s *Store) orphanFilter(ctx context.Context) (bson.M, error) {
	var sets []setModel
	if err := s.mdb.NewFind(&sets).Filter(bson.M{}).Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: load set ids: %w", err)
	}
	setIDs := make([]int64, len(sets))
	for i := range sets {
		setIDs[i] = sets[i].ID
	}

	var targets []targetModel
	if err := s.mdb.NewFind(&targets).Filter(bson.M{}).Scan(ctx); err != nil {
		return nil, fmt.Errorf("provost: load target ids: %w", err)
	}
	targetIDs := make([]int64, len(targets))
	for i := range targets {
		targetIDs[i] = targets[i].ID
	}

	return bson.M{"$or": []bson.M{
		{"set_id": bson.M{"$nin": setIDs}},
		{"target_id": bson.M{"$nin": targetIDs}},
	}}, nil
}
