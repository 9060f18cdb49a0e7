package plugin

import (
	"context"
	"log/slog"
	"testing"

	"github.com/xraph/provost/grant"
)

// testPlugin implements Plugin + Granted + AfterEvaluate.
type testPlugin struct {
	grantedCalled       bool
	afterEvaluateCalled bool
}

func (t *testPlugin) Name() string { return "test-plugin" }

func (t *testPlugin) OnGranted(_ context.Context, _ *grant.Grant) error {
	t.grantedCalled = true
	return nil
}

func (t *testPlugin) OnAfterEvaluate(_ context.Context, _, _ any) error {
	t.afterEvaluateCalled = true
	return nil
}

// minimalPlugin only implements Plugin (no hooks).
type minimalPlugin struct{}

func (m *minimalPlugin) Name() string { return "minimal" }

func TestRegistryDispatch(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(slog.Default())

	tp := &testPlugin{}
	reg.Register(tp)
	reg.Register(&minimalPlugin{})

	if len(reg.Plugins()) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(reg.Plugins()))
	}

	// Should dispatch Granted to testPlugin only.
	reg.EmitGranted(ctx, &grant.Grant{EntityID: 1, SetID: 2, TargetID: 3})
	if !tp.grantedCalled {
		t.Fatal("OnGranted was not called")
	}

	// Should dispatch AfterEvaluate.
	reg.EmitAfterEvaluate(ctx, nil, nil)
	if !tp.afterEvaluateCalled {
		t.Fatal("OnAfterEvaluate was not called")
	}

	// Should not panic on hooks with no listeners.
	reg.EmitBeforeEvaluate(ctx, nil)
	reg.EmitSetDeleted(ctx, 42)
	reg.EmitShutdown(ctx)
}
