package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/provost/target"
)

func (a *API) registerTargetRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("targets"))

	if err := g.POST("/targets", a.createTarget,
		forge.WithSummary("Create operation target"),
		forge.WithDescription("Creates a concrete or global operation target."),
		forge.WithOperationID("createTarget"),
		forge.WithRequestSchema(CreateTargetRequest{}),
		forge.WithCreatedResponse(TargetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/targets/:targetId", a.getTarget,
		forge.WithSummary("Get operation target"),
		forge.WithDescription("Returns details of a specific target."),
		forge.WithOperationID("getTarget"),
		forge.WithResponseSchema(http.StatusOK, "Target details", TargetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/targets/:targetId", a.deleteTarget,
		forge.WithSummary("Delete operation target"),
		forge.WithDescription("Deletes a target and its attribute rows."),
		forge.WithOperationID("deleteTarget"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/targets", a.listTargets,
		forge.WithSummary("List operation targets"),
		forge.WithDescription("Lists targets with optional filters."),
		forge.WithOperationID("listTargets"),
		forge.WithRequestSchema(ListTargetsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Target list", []TargetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/targets/:targetId/attrs", a.addTargetAttr,
		forge.WithSummary("Add target attribute"),
		forge.WithDescription("Adds an attribute row (e.g. a disk-path pattern) to a target."),
		forge.WithOperationID("addTargetAttr"),
		forge.WithRequestSchema(AttrRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/targets/:targetId/attrs/:attr", a.removeTargetAttr,
		forge.WithSummary("Remove target attribute"),
		forge.WithDescription("Removes an attribute row from a target."),
		forge.WithOperationID("removeTargetAttr"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/targets/:targetId/attrs", a.listTargetAttrs,
		forge.WithSummary("List target attributes"),
		forge.WithDescription("Lists a target's attribute rows."),
		forge.WithOperationID("listTargetAttrs"),
		forge.WithResponseSchema(http.StatusOK, "Attribute list", AttrsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createTarget(ctx forge.Context, req *CreateTargetRequest) (*TargetResponse, error) {
	if req.Type == "" {
		return nil, forge.BadRequest("type is required")
	}

	t, err := a.eng.CreateTarget(ctx.Context(), target.Type(req.Type), req.EntityID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toTargetResponse(t)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) getTarget(ctx forge.Context, _ *GetTargetRequest) (*TargetResponse, error) {
	targetID, err := pathID(ctx, "targetId")
	if err != nil {
		return nil, err
	}

	t, err := a.eng.Store().GetTarget(ctx.Context(), targetID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toTargetResponse(t)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) deleteTarget(ctx forge.Context, _ *GetTargetRequest) (*struct{}, error) {
	targetID, err := pathID(ctx, "targetId")
	if err != nil {
		return nil, err
	}

	if err := a.eng.DeleteTarget(ctx.Context(), targetID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listTargets(ctx forge.Context, req *ListTargetsRequest) ([]TargetResponse, error) {
	filter := &target.ListFilter{EntityID: req.EntityID}
	if req.Type != "" {
		typ := target.Type(req.Type)
		if !typ.Valid() {
			return nil, forge.BadRequest("invalid target type: " + req.Type)
		}
		filter.Type = typ
	}

	targets, err := a.eng.Store().ListTargets(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]TargetResponse, len(targets))
	for i, t := range targets {
		resp[i] = *toTargetResponse(t)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) addTargetAttr(ctx forge.Context, req *AttrRequest) (*struct{}, error) {
	targetID, err := pathID(ctx, "targetId")
	if err != nil {
		return nil, err
	}
	if req.Attr == "" {
		return nil, forge.BadRequest("attr is required")
	}

	if err := a.eng.Store().AddTargetAttr(ctx.Context(), targetID, req.Attr); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) removeTargetAttr(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	targetID, err := pathID(ctx, "targetId")
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().RemoveTargetAttr(ctx.Context(), targetID, ctx.Param("attr")); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listTargetAttrs(ctx forge.Context, _ *GetTargetRequest) (*AttrsResponse, error) {
	targetID, err := pathID(ctx, "targetId")
	if err != nil {
		return nil, err
	}

	attrs, err := a.eng.Store().ListTargetAttrs(ctx.Context(), targetID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &AttrsResponse{Attrs: attrs}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toTargetResponse(t *target.Target) *TargetResponse {
	return &TargetResponse{
		ID:       t.ID(),
		Type:     string(t.Type()),
		EntityID: t.EntityID(),
		HasAttr:  t.HasAttr(),
	}
}
