package api

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xraph/forge"

	"github.com/xraph/provost"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, provost.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, provost.ErrDuplicateGrant) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, provost.ErrUnknownOperation) || errors.Is(err, provost.ErrUnknownTargetType) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, provost.ErrPermissionDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

// pathID parses an int64 path parameter.
func pathID(ctx forge.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, forge.BadRequest(fmt.Sprintf("invalid %s: %v", name, err))
	}
	return v, nil
}

// resolveOperation resolves an operation name through the engine's code
// registry.
func (a *API) resolveOperation(name string) (provost.OperationCode, error) {
	if name == "" {
		return 0, forge.BadRequest("operation is required")
	}
	if a.eng.Codes() == nil {
		return 0, forge.BadRequest("operation code registry not loaded")
	}
	code, err := a.eng.Codes().Resolve(name)
	if err != nil {
		return 0, mapError(err)
	}
	return code, nil
}
