package provost

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/provost/opset"
	"github.com/xraph/provost/store/memory"
)

func TestCodeRegistry(t *testing.T) {
	reg, err := NewCodeRegistry([]*opset.CodeInfo{
		{Code: 1, Name: "account_create", Description: "Create accounts"},
		{Code: 2, Name: "account_delete"},
	})
	if err != nil {
		t.Fatal(err)
	}

	code, err := reg.Resolve("account_create")
	if err != nil {
		t.Fatal(err)
	}
	if code != 1 {
		t.Fatalf("expected code 1, got %d", code)
	}
	if _, err := reg.Resolve("nonexistent"); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}

	if !reg.Known(2) || reg.Known(3) {
		t.Fatal("Known misreports registered codes")
	}

	info, err := reg.Describe(1)
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "account_create" {
		t.Fatalf("expected account_create, got %q", info.Name)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 codes, got %d", reg.Len())
	}
}

func TestCodeRegistryRejectsDuplicates(t *testing.T) {
	if _, err := NewCodeRegistry([]*opset.CodeInfo{
		{Code: 1, Name: "account_create"},
		{Code: 2, Name: "account_create"},
	}); err == nil {
		t.Fatal("expected error for duplicate name")
	}
	if _, err := NewCodeRegistry([]*opset.CodeInfo{
		{Code: 1, Name: "account_create"},
		{Code: 1, Name: "account_delete"},
	}); err == nil {
		t.Fatal("expected error for duplicate code value")
	}
	if _, err := NewCodeRegistry([]*opset.CodeInfo{
		{Code: 1},
	}); err == nil {
		t.Fatal("expected error for unnamed code")
	}
}

func TestLoadCodesFromStore(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	_ = s.CreateCode(ctx, &opset.CodeInfo{Code: 1, Name: "account_create"})
	_ = s.CreateCode(ctx, &opset.CodeInfo{Code: 2, Name: "account_delete"})

	reg, err := LoadCodes(ctx, s)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 codes, got %d", reg.Len())
	}
}
