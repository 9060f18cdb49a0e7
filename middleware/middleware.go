// Package middleware provides HTTP authorization middleware for Provost.
package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/provost"
)

// Require enforces that the operator holds the named operation somewhere.
// This is a coarse route gate: the handler behind it must still check the
// concrete target of any mutation (or be wrapped in RequireTarget). The
// operator is resolved from the request context (Authsome user ID, parsed
// as an entity ID).
func Require(eng *provost.Engine, operation string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			operatorID, ok := resolveOperator(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			code, err := resolveCode(eng, operation)
			if err != nil {
				return denyResponse(ctx)
			}

			if err := eng.Enforce(ctx.Context(), &provost.CheckRequest{
				OperatorID: operatorID,
				Operation:  code,
			}); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireTarget enforces the named operation against a concrete target whose
// entity ID is taken from the given path parameter.
func RequireTarget(eng *provost.Engine, operation string, typ provost.TargetType, param string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			operatorID, ok := resolveOperator(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			code, err := resolveCode(eng, operation)
			if err != nil {
				return denyResponse(ctx)
			}
			entityID, err := strconv.ParseInt(ctx.Param(param), 10, 64)
			if err != nil {
				return denyResponse(ctx)
			}

			if err := eng.Enforce(ctx.Context(), &provost.CheckRequest{
				OperatorID: operatorID,
				Operation:  code,
				Target:     &provost.TargetRef{Type: typ, EntityID: entityID},
			}); err != nil {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the checks pass. The operator is
// filled in from the request context.
func RequireAny(eng *provost.Engine, checks ...provost.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			operatorID, ok := resolveOperator(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.OperatorID = operatorID
				result, err := eng.Evaluate(ctx.Context(), &c)
				if err == nil && result.Allowed {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL checks pass.
func RequireAll(eng *provost.Engine, checks ...provost.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			operatorID, ok := resolveOperator(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			for i := range checks {
				c := checks[i]
				c.OperatorID = operatorID
				if err := eng.Enforce(ctx.Context(), &c); err != nil {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// resolveOperator extracts the operator entity ID from context.
func resolveOperator(ctx forge.Context) (int64, bool) {
	userID := forge.UserIDFromContext(ctx.Context())
	if userID == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func resolveCode(eng *provost.Engine, operation string) (provost.OperationCode, error) {
	reg := eng.Codes()
	if reg == nil {
		return 0, provost.ErrUnknownOperation
	}
	return reg.Resolve(operation)
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
