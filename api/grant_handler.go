package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/provost/grant"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("grants"))

	if err := g.POST("/grants", a.createGrant,
		forge.WithSummary("Create grant"),
		forge.WithDescription("Grants an entity an operation set on a target."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(GrantRequest{}),
		forge.WithCreatedResponse(GrantResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/grants/revoke", a.revokeGrant,
		forge.WithSummary("Revoke grant"),
		forge.WithDescription("Revokes a grant. Revoking an absent grant is a no-op."),
		forge.WithOperationID("revokeGrant"),
		forge.WithRequestSchema(GrantRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/grants", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithDescription("Lists grants with optional filters."),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", []GrantResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/grants/sweep", a.sweepOrphans,
		forge.WithSummary("Sweep orphan grants"),
		forge.WithDescription("Removes grants whose operation set or target no longer exists."),
		forge.WithOperationID("sweepOrphanGrants"),
		forge.WithResponseSchema(http.StatusOK, "Sweep result", SweepResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGrant(ctx forge.Context, req *GrantRequest) (*GrantResponse, error) {
	if err := a.eng.Grant(ctx.Context(), req.EntityID, req.SetID, req.TargetID); err != nil {
		return nil, mapError(err)
	}

	resp := &GrantResponse{EntityID: req.EntityID, SetID: req.SetID, TargetID: req.TargetID}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) revokeGrant(ctx forge.Context, req *GrantRequest) (*struct{}, error) {
	if err := a.eng.Revoke(ctx.Context(), req.EntityID, req.SetID, req.TargetID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) ([]GrantResponse, error) {
	filter := &grant.ListFilter{
		SetID:    req.SetID,
		TargetID: req.TargetID,
	}
	if req.EntityID != nil {
		filter.EntityIDs = []int64{*req.EntityID}
	}

	grants, err := a.eng.Store().ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]GrantResponse, len(grants))
	for i, g := range grants {
		resp[i] = GrantResponse{EntityID: g.EntityID, SetID: g.SetID, TargetID: g.TargetID}
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) sweepOrphans(ctx forge.Context, _ *struct{}) (*SweepResponse, error) {
	pruned, err := a.eng.SweepOrphans(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	resp := &SweepResponse{Pruned: pruned}
	return resp, ctx.JSON(http.StatusOK, resp)
}
