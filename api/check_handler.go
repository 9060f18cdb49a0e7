package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/provost"
	"github.com/xraph/provost/target"
)

func (a *API) registerCheckRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/check", a.check,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the operator may perform the operation on the target."),
		forge.WithOperationID("authzCheck"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Check result", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(CheckRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", CheckResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/query-any", a.queryAny,
		forge.WithSummary("Query operation held anywhere"),
		forge.WithDescription("Reports whether the operator holds the operation on any target. Advisory only, never authorizes a mutating action."),
		forge.WithOperationID("authzQueryAny"),
		forge.WithRequestSchema(QueryAnyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Query result", QueryAnyResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) check(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	check, err := a.toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Evaluate(ctx.Context(), check)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *CheckRequest) (*CheckResponse, error) {
	check, err := a.toCheckRequest(req)
	if err != nil {
		return nil, err
	}

	result, err := a.eng.Evaluate(ctx.Context(), check)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toCheckResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) queryAny(ctx forge.Context, req *QueryAnyRequest) (*QueryAnyResponse, error) {
	code, err := a.resolveOperation(req.Operation)
	if err != nil {
		return nil, err
	}

	held, err := a.eng.QueryAny(ctx.Context(), req.OperatorID, code)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &QueryAnyResponse{Held: held}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) toCheckRequest(r *CheckRequest) (*provost.CheckRequest, error) {
	code, err := a.resolveOperation(r.Operation)
	if err != nil {
		return nil, err
	}

	check := &provost.CheckRequest{
		OperatorID: r.OperatorID,
		Operation:  code,
		VictimID:   r.VictimID,
		Attr:       r.Attr,
	}
	if r.TargetType != "" {
		check.Target = &provost.TargetRef{
			Type:     target.Type(r.TargetType),
			EntityID: r.TargetEntity,
		}
	}
	return check, nil
}

func toCheckResponse(r *provost.CheckResult) *CheckResponse {
	resp := &CheckResponse{
		Allowed:    r.Allowed,
		Decision:   string(r.Decision),
		Reason:     r.Reason,
		EvalTimeNs: r.EvalTimeNs,
	}
	for _, m := range r.MatchedBy {
		resp.MatchedBy = append(resp.MatchedBy, MatchInfo{
			Source: m.Source,
			RuleID: m.RuleID,
			Detail: m.Detail,
		})
	}
	return resp
}
