// Package memory provides an in-memory implementation of the provost
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xraph/provost/grant"
	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store"
	"github.com/xraph/provost/target"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

var errNotFound = store.ErrNotFound

type setRow struct {
	id   int64
	name string
}

type opRow struct {
	id    int64
	setID int64
	code  opset.Code
}

type targetRow struct {
	id       int64
	typ      target.Type
	entityID *int64
}

// Store is a thread-safe in-memory store for all provost records.
type Store struct {
	mu sync.RWMutex

	seq     int64
	codes   map[opset.Code]*opset.CodeInfo
	sets    map[int64]*setRow
	ops     map[int64]*opRow
	opAttrs map[int64][]string // opID -> whitelist
	targets map[int64]*targetRow
	tgtAttr map[int64][]string // targetID -> patterns
	grants  map[grant.Grant]struct{}
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		codes:   make(map[opset.Code]*opset.CodeInfo),
		sets:    make(map[int64]*setRow),
		ops:     make(map[int64]*opRow),
		opAttrs: make(map[int64][]string),
		targets: make(map[int64]*targetRow),
		tgtAttr: make(map[int64][]string),
		grants:  make(map[grant.Grant]struct{}),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// NextID allocates the next value of the shared id sequence.
func (s *Store) NextID(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *Store) nextIDLocked() int64 {
	s.seq++
	return s.seq
}

// ──────────────────────────────────────────────────
// Operation-set Store
// ──────────────────────────────────────────────────

func (s *Store) SaveSet(_ context.Context, set *opset.Set) (bool, error) {
	if set.Found() && !set.Changed() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !set.Found() {
		id := s.nextIDLocked()
		s.sets[id] = &setRow{id: id, name: set.Name()}
		set.MarkSaved(id)
		return true, nil
	}
	row, ok := s.sets[set.ID()]
	if !ok {
		return false, fmt.Errorf("operation set %d: %w", set.ID(), errNotFound)
	}
	row.name = set.Name()
	set.MarkSaved(set.ID())
	return false, nil
}

func (s *Store) GetSet(_ context.Context, setID int64) (*opset.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.sets[setID]
	if !ok {
		return nil, fmt.Errorf("operation set %d: %w", setID, errNotFound)
	}
	return opset.Hydrate(row.id, row.name), nil
}

func (s *Store) GetSetByName(_ context.Context, name string) (*opset.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.sets {
		if row.name == name {
			return opset.Hydrate(row.id, row.name), nil
		}
	}
	return nil, fmt.Errorf("operation set %q: %w", name, errNotFound)
}

func (s *Store) DeleteSet(_ context.Context, setID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[setID]; !ok {
		return fmt.Errorf("operation set %d: %w", setID, errNotFound)
	}
	delete(s.sets, setID)
	for opID, op := range s.ops {
		if op.setID == setID {
			delete(s.ops, opID)
			delete(s.opAttrs, opID)
		}
	}
	return nil
}

func (s *Store) ListSets(_ context.Context) ([]*opset.Set, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*opset.Set, 0, len(s.sets))
	for _, row := range s.sets {
		result = append(result, opset.Hydrate(row.id, row.name))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result, nil
}

func (s *Store) AddOperation(_ context.Context, setID int64, code opset.Code) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[setID]; !ok {
		return 0, fmt.Errorf("operation set %d: %w", setID, errNotFound)
	}
	for _, op := range s.ops {
		if op.setID == setID && op.code == code {
			return 0, fmt.Errorf("provost: operation %d already in set %d", code, setID)
		}
	}
	id := s.nextIDLocked()
	s.ops[id] = &opRow{id: id, setID: setID, code: code}
	return id, nil
}

func (s *Store) RemoveOperation(_ context.Context, setID int64, code opset.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for opID, op := range s.ops {
		if op.setID == setID && op.code == code {
			delete(s.ops, opID)
			delete(s.opAttrs, opID)
			return nil
		}
	}
	return fmt.Errorf("operation %d in set %d: %w", code, setID, errNotFound)
}

func (s *Store) ListOperations(_ context.Context, setID int64) ([]opset.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []opset.Operation
	for _, op := range s.ops {
		if op.setID == setID {
			result = append(result, opset.Operation{ID: op.id, SetID: op.setID, Code: op.code})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) ListOperationsByCode(_ context.Context, code opset.Code) ([]opset.Operation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []opset.Operation
	for _, op := range s.ops {
		if op.code == code {
			result = append(result, opset.Operation{ID: op.id, SetID: op.setID, Code: op.code})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) AddOperationAttr(_ context.Context, opID int64, attr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ops[opID]; !ok {
		return fmt.Errorf("operation %d: %w", opID, errNotFound)
	}
	for _, a := range s.opAttrs[opID] {
		if a == attr {
			return nil
		}
	}
	s.opAttrs[opID] = append(s.opAttrs[opID], attr)
	return nil
}

func (s *Store) RemoveOperationAttr(_ context.Context, opID int64, attr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs := s.opAttrs[opID]
	for i, a := range attrs {
		if a == attr {
			s.opAttrs[opID] = append(attrs[:i], attrs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("attr %q on operation %d: %w", attr, opID, errNotFound)
}

func (s *Store) ListOperationAttrs(_ context.Context, opID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs := s.opAttrs[opID]
	out := make([]string, len(attrs))
	copy(out, attrs)
	return out, nil
}

func (s *Store) CreateCode(_ context.Context, c *opset.CodeInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[c.Code]; ok {
		return fmt.Errorf("provost: operation code %d already exists", c.Code)
	}
	for _, existing := range s.codes {
		if existing.Name == c.Name {
			return fmt.Errorf("provost: operation code %q already exists", c.Name)
		}
	}
	cp := *c
	s.codes[c.Code] = &cp
	return nil
}

func (s *Store) GetCodeByName(_ context.Context, name string) (*opset.CodeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.codes {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("operation code %q: %w", name, errNotFound)
}

func (s *Store) ListCodes(_ context.Context) ([]*opset.CodeInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*opset.CodeInfo, 0, len(s.codes))
	for _, c := range s.codes {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// ──────────────────────────────────────────────────
// Target Store
// ──────────────────────────────────────────────────

func (s *Store) SaveTarget(_ context.Context, t *target.Target) (bool, error) {
	if t.Found() && !t.Changed() {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !t.Found() {
		id := s.nextIDLocked()
		s.targets[id] = &targetRow{id: id, typ: t.Type(), entityID: copyID(t.EntityID())}
		t.MarkSaved(id, len(s.tgtAttr[id]) > 0)
		return true, nil
	}
	row, ok := s.targets[t.ID()]
	if !ok {
		return false, fmt.Errorf("target %d: %w", t.ID(), errNotFound)
	}
	row.typ = t.Type()
	row.entityID = copyID(t.EntityID())
	t.MarkSaved(t.ID(), len(s.tgtAttr[t.ID()]) > 0)
	return false, nil
}

func (s *Store) GetTarget(_ context.Context, targetID int64) (*target.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.targets[targetID]
	if !ok {
		return nil, fmt.Errorf("target %d: %w", targetID, errNotFound)
	}
	return s.hydrateLocked(row), nil
}

func (s *Store) DeleteTarget(_ context.Context, targetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[targetID]; !ok {
		return fmt.Errorf("target %d: %w", targetID, errNotFound)
	}
	delete(s.targets, targetID)
	delete(s.tgtAttr, targetID)
	return nil
}

func (s *Store) ListTargets(_ context.Context, filter *target.ListFilter) ([]*target.Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var idSet map[int64]bool
	if filter != nil && len(filter.IDs) > 0 {
		idSet = make(map[int64]bool, len(filter.IDs))
		for _, id := range filter.IDs {
			idSet[id] = true
		}
	}
	var result []*target.Target
	for _, row := range s.targets {
		if filter != nil {
			if idSet != nil && !idSet[row.id] {
				continue
			}
			if filter.Type != "" && row.typ != filter.Type {
				continue
			}
			if filter.EntityID != nil && (row.entityID == nil || *row.entityID != *filter.EntityID) {
				continue
			}
		}
		result = append(result, s.hydrateLocked(row))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result, nil
}

func (s *Store) AddTargetAttr(_ context.Context, targetID int64, attr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.targets[targetID]; !ok {
		return fmt.Errorf("target %d: %w", targetID, errNotFound)
	}
	for _, a := range s.tgtAttr[targetID] {
		if a == attr {
			return nil
		}
	}
	s.tgtAttr[targetID] = append(s.tgtAttr[targetID], attr)
	return nil
}

func (s *Store) RemoveTargetAttr(_ context.Context, targetID int64, attr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs := s.tgtAttr[targetID]
	for i, a := range attrs {
		if a == attr {
			attrs = append(attrs[:i], attrs[i+1:]...)
			if len(attrs) == 0 {
				delete(s.tgtAttr, targetID)
			} else {
				s.tgtAttr[targetID] = attrs
			}
			return nil
		}
	}
	return fmt.Errorf("attr %q on target %d: %w", attr, targetID, errNotFound)
}

func (s *Store) ListTargetAttrs(_ context.Context, targetID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs := s.tgtAttr[targetID]
	out := make([]string, len(attrs))
	copy(out, attrs)
	return out, nil
}

func (s *Store) hydrateLocked(row *targetRow) *target.Target {
	return target.Hydrate(row.id, row.typ, copyID(row.entityID), len(s.tgtAttr[row.id]) > 0)
}

// ──────────────────────────────────────────────────
// Grant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[*g]; ok {
		return grant.ErrDuplicate
	}
	s.grants[*g] = struct{}{}
	return nil
}

func (s *Store) DeleteGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, *g)
	return nil
}

func (s *Store) ListGrants(_ context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entitySet map[int64]bool
	if filter != nil && len(filter.EntityIDs) > 0 {
		entitySet = make(map[int64]bool, len(filter.EntityIDs))
		for _, id := range filter.EntityIDs {
			entitySet[id] = true
		}
	}
	var result []*grant.Grant
	for g := range s.grants {
		if filter != nil {
			if entitySet != nil && !entitySet[g.EntityID] {
				continue
			}
			if filter.SetID != nil && g.SetID != *filter.SetID {
				continue
			}
			if filter.TargetID != nil && g.TargetID != *filter.TargetID {
				continue
			}
		}
		cp := g
		result = append(result, &cp)
	}
	sortGrants(result)
	return result, nil
}

func (s *Store) ListGrantsByEntities(ctx context.Context, entityIDs []int64) ([]*grant.Grant, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	return s.ListGrants(ctx, &grant.ListFilter{EntityIDs: entityIDs})
}

func (s *Store) ListGrantsByTargets(_ context.Context, targetIDs []int64) ([]*grant.Grant, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}
	targetSet := make(map[int64]bool, len(targetIDs))
	for _, id := range targetIDs {
		targetSet[id] = true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*grant.Grant
	for g := range s.grants {
		if targetSet[g.TargetID] {
			cp := g
			result = append(result, &cp)
		}
	}
	sortGrants(result)
	return result, nil
}

func (s *Store) CountOrphanGrants(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for g := range s.grants {
		if s.orphanLocked(g) {
			n++
		}
	}
	return n, nil
}

func (s *Store) PruneOrphanGrants(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for g := range s.grants {
		if s.orphanLocked(g) {
			delete(s.grants, g)
			n++
		}
	}
	return n, nil
}

func (s *Store) orphanLocked(g grant.Grant) bool {
	if _, ok := s.sets[g.SetID]; !ok {
		return true
	}
	if _, ok := s.targets[g.TargetID]; !ok {
		return true
	}
	return false
}

func sortGrants(gs []*grant.Grant) {
	sort.Slice(gs, func(i, j int) bool {
		a, b := gs[i], gs[j]
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		if a.SetID != b.SetID {
			return a.SetID < b.SetID
		}
		return a.TargetID < b.TargetID
	})
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
