package provost

import (
	"context"
	"fmt"

	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store"
)

// CodeRegistry is the in-memory index of operation codes. Codes are
// read-only reference data: minted once by import tooling, then loaded
// whole at engine start. The registry maps both directions, symbolic name
// to code and code to descriptor.
type CodeRegistry struct {
	byName map[string]*opset.CodeInfo
	byCode map[opset.Code]*opset.CodeInfo
}

// NewCodeRegistry builds a registry from code descriptors. Duplicate names
// or duplicate code values are rejected.
func NewCodeRegistry(codes []*opset.CodeInfo) (*CodeRegistry, error) {
	r := &CodeRegistry{
		byName: make(map[string]*opset.CodeInfo, len(codes)),
		byCode: make(map[opset.Code]*opset.CodeInfo, len(codes)),
	}
	for _, c := range codes {
		if c.Name == "" {
			return nil, fmt.Errorf("provost: operation code %d has no name", c.Code)
		}
		if _, ok := r.byName[c.Name]; ok {
			return nil, fmt.Errorf("provost: duplicate operation code name %q", c.Name)
		}
		if _, ok := r.byCode[c.Code]; ok {
			return nil, fmt.Errorf("provost: duplicate operation code value %d", c.Code)
		}
		r.byName[c.Name] = c
		r.byCode[c.Code] = c
	}
	return r, nil
}

// LoadCodes reads all code descriptors from the store and builds a registry.
func LoadCodes(ctx context.Context, s store.Store) (*CodeRegistry, error) {
	codes, err := s.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("provost: load operation codes: %w", err)
	}
	return NewCodeRegistry(codes)
}

// Resolve maps a symbolic operation name to its code.
func (r *CodeRegistry) Resolve(name string) (opset.Code, error) {
	c, ok := r.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return c.Code, nil
}

// Known reports whether the code value is registered.
func (r *CodeRegistry) Known(code opset.Code) bool {
	_, ok := r.byCode[code]
	return ok
}

// Describe returns the descriptor for a code value.
func (r *CodeRegistry) Describe(code opset.Code) (*opset.CodeInfo, error) {
	c, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, code)
	}
	return c, nil
}

// Len returns the number of registered codes.
func (r *CodeRegistry) Len() int { return len(r.byCode) }
