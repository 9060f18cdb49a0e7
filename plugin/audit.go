package plugin

import (
	"context"
	"log/slog"

	"github.com/xraph/provost/grant"
)

// AuditLogger is a built-in plugin that writes an audit record for every
// evaluation and grant mutation to a structured logger. Surrounding daemons
// that need a persisted trail can replace it with their own plugin against
// the same hooks.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger returns an audit plugin writing to the given logger, or
// slog.Default when nil.
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// Name returns the plugin name.
func (a *AuditLogger) Name() string { return "audit-logger" }

// OnAfterEvaluate records the outcome of an evaluation.
func (a *AuditLogger) OnAfterEvaluate(ctx context.Context, req, result any) error {
	a.logger.InfoContext(ctx, "authorization evaluated", "request", req, "result", result)
	return nil
}

// OnGranted records a grant creation.
func (a *AuditLogger) OnGranted(ctx context.Context, g *grant.Grant) error {
	a.logger.InfoContext(ctx, "authority granted",
		"entity", g.EntityID, "set", g.SetID, "target", g.TargetID)
	return nil
}

// OnRevoked records a grant revocation.
func (a *AuditLogger) OnRevoked(ctx context.Context, g *grant.Grant) error {
	a.logger.InfoContext(ctx, "authority revoked",
		"entity", g.EntityID, "set", g.SetID, "target", g.TargetID)
	return nil
}

// OnSetDeleted records an operation-set deletion.
func (a *AuditLogger) OnSetDeleted(ctx context.Context, setID int64) error {
	a.logger.InfoContext(ctx, "operation set deleted", "set", setID)
	return nil
}

// OnTargetDeleted records a target deletion.
func (a *AuditLogger) OnTargetDeleted(ctx context.Context, targetID int64) error {
	a.logger.InfoContext(ctx, "operation target deleted", "target", targetID)
	return nil
}

var (
	_ AfterEvaluate = (*AuditLogger)(nil)
	_ Granted       = (*AuditLogger)(nil)
	_ Revoked       = (*AuditLogger)(nil)
	_ SetDeleted    = (*AuditLogger)(nil)
	_ TargetDeleted = (*AuditLogger)(nil)
)
