package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/provost/opset"
)

func (a *API) registerOpSetRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("operation-sets"))

	if err := g.POST("/op-sets", a.createSet,
		forge.WithSummary("Create operation set"),
		forge.WithDescription("Creates a new named operation set."),
		forge.WithOperationID("createOpSet"),
		forge.WithRequestSchema(CreateSetRequest{}),
		forge.WithCreatedResponse(SetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/op-sets/:setId", a.getSet,
		forge.WithSummary("Get operation set"),
		forge.WithDescription("Returns details of a specific operation set."),
		forge.WithOperationID("getOpSet"),
		forge.WithResponseSchema(http.StatusOK, "Operation set details", SetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/op-sets/:setId", a.renameSet,
		forge.WithSummary("Rename operation set"),
		forge.WithDescription("Renames an existing operation set."),
		forge.WithOperationID("renameOpSet"),
		forge.WithRequestSchema(RenameSetRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Renamed operation set", SetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/op-sets/:setId", a.deleteSet,
		forge.WithSummary("Delete operation set"),
		forge.WithDescription("Deletes an operation set and its operations."),
		forge.WithOperationID("deleteOpSet"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/op-sets", a.listSets,
		forge.WithSummary("List operation sets"),
		forge.WithDescription("Lists all operation sets."),
		forge.WithOperationID("listOpSets"),
		forge.WithResponseSchema(http.StatusOK, "Operation set list", []SetResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/op-sets/:setId/operations", a.addOperation,
		forge.WithSummary("Add operation to set"),
		forge.WithDescription("Adds an operation code to a set."),
		forge.WithOperationID("addOperation"),
		forge.WithRequestSchema(AddOperationRequest{}),
		forge.WithCreatedResponse(OperationResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/op-sets/:setId/operations/:operation", a.removeOperation,
		forge.WithSummary("Remove operation from set"),
		forge.WithDescription("Removes an operation code from a set."),
		forge.WithOperationID("removeOperation"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/op-sets/:setId/operations", a.listOperations,
		forge.WithSummary("List operations in set"),
		forge.WithDescription("Lists the operations a set carries."),
		forge.WithOperationID("listOperations"),
		forge.WithResponseSchema(http.StatusOK, "Operation list", []OperationResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/operations/:opId/attrs", a.addOperationAttr,
		forge.WithSummary("Add operation attribute"),
		forge.WithDescription("Adds a value to an operation's attribute whitelist."),
		forge.WithOperationID("addOperationAttr"),
		forge.WithRequestSchema(AttrRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/operations/:opId/attrs/:attr", a.removeOperationAttr,
		forge.WithSummary("Remove operation attribute"),
		forge.WithDescription("Removes a value from an operation's attribute whitelist."),
		forge.WithOperationID("removeOperationAttr"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/operations/:opId/attrs", a.listOperationAttrs,
		forge.WithSummary("List operation attributes"),
		forge.WithDescription("Lists an operation's attribute whitelist."),
		forge.WithOperationID("listOperationAttrs"),
		forge.WithResponseSchema(http.StatusOK, "Attribute list", AttrsResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/op-codes", a.createCode,
		forge.WithSummary("Register operation code"),
		forge.WithDescription("Registers a new operation code."),
		forge.WithOperationID("createOpCode"),
		forge.WithRequestSchema(CreateCodeRequest{}),
		forge.WithCreatedResponse(CodeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/op-codes", a.listCodes,
		forge.WithSummary("List operation codes"),
		forge.WithDescription("Lists all registered operation codes."),
		forge.WithOperationID("listOpCodes"),
		forge.WithResponseSchema(http.StatusOK, "Operation code list", []CodeResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createSet(ctx forge.Context, req *CreateSetRequest) (*SetResponse, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	set, err := a.eng.CreateSet(ctx.Context(), req.Name)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toSetResponse(set)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) getSet(ctx forge.Context, _ *GetSetRequest) (*SetResponse, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}

	set, err := a.eng.Store().GetSet(ctx.Context(), setID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toSetResponse(set)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) renameSet(ctx forge.Context, req *RenameSetRequest) (*SetResponse, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	set, err := a.eng.Store().GetSet(ctx.Context(), setID)
	if err != nil {
		return nil, mapError(err)
	}
	set.Rename(req.Name)
	if _, err := a.eng.Store().SaveSet(ctx.Context(), set); err != nil {
		return nil, mapError(err)
	}

	resp := toSetResponse(set)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) deleteSet(ctx forge.Context, _ *GetSetRequest) (*struct{}, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}

	if err := a.eng.DeleteSet(ctx.Context(), setID); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listSets(ctx forge.Context, _ *struct{}) ([]SetResponse, error) {
	sets, err := a.eng.Store().ListSets(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]SetResponse, len(sets))
	for i, s := range sets {
		resp[i] = *toSetResponse(s)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) addOperation(ctx forge.Context, req *AddOperationRequest) (*OperationResponse, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}
	code, err := a.resolveOperation(req.Operation)
	if err != nil {
		return nil, err
	}

	opID, err := a.eng.AddOperation(ctx.Context(), setID, code)
	if err != nil {
		return nil, mapError(err)
	}

	resp := a.toOperationResponse(opset.Operation{ID: opID, SetID: setID, Code: code})
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) removeOperation(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}
	code, err := a.resolveOperation(ctx.Param("operation"))
	if err != nil {
		return nil, err
	}

	if err := a.eng.RemoveOperation(ctx.Context(), setID, code); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listOperations(ctx forge.Context, _ *GetSetRequest) ([]OperationResponse, error) {
	setID, err := pathID(ctx, "setId")
	if err != nil {
		return nil, err
	}

	ops, err := a.eng.Store().ListOperations(ctx.Context(), setID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]OperationResponse, len(ops))
	for i, op := range ops {
		resp[i] = *a.toOperationResponse(op)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) addOperationAttr(ctx forge.Context, req *AttrRequest) (*struct{}, error) {
	opID, err := pathID(ctx, "opId")
	if err != nil {
		return nil, err
	}
	if req.Attr == "" {
		return nil, forge.BadRequest("attr is required")
	}

	if err := a.eng.Store().AddOperationAttr(ctx.Context(), opID, req.Attr); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) removeOperationAttr(ctx forge.Context, _ *struct{}) (*struct{}, error) {
	opID, err := pathID(ctx, "opId")
	if err != nil {
		return nil, err
	}

	if err := a.eng.Store().RemoveOperationAttr(ctx.Context(), opID, ctx.Param("attr")); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listOperationAttrs(ctx forge.Context, _ *struct{}) (*AttrsResponse, error) {
	opID, err := pathID(ctx, "opId")
	if err != nil {
		return nil, err
	}

	attrs, err := a.eng.Store().ListOperationAttrs(ctx.Context(), opID)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &AttrsResponse{Attrs: attrs}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) createCode(ctx forge.Context, req *CreateCodeRequest) (*CodeResponse, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}

	info := &opset.CodeInfo{
		Code:        opset.Code(req.Code),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := a.eng.Store().CreateCode(ctx.Context(), info); err != nil {
		return nil, mapError(err)
	}

	resp := toCodeResponse(info)
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) listCodes(ctx forge.Context, _ *struct{}) ([]CodeResponse, error) {
	codes, err := a.eng.Store().ListCodes(ctx.Context())
	if err != nil {
		return nil, mapError(err)
	}

	resp := make([]CodeResponse, len(codes))
	for i, c := range codes {
		resp[i] = *toCodeResponse(c)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func toSetResponse(s *opset.Set) *SetResponse {
	return &SetResponse{ID: s.ID(), Name: s.Name()}
}

func (a *API) toOperationResponse(op opset.Operation) *OperationResponse {
	resp := &OperationResponse{ID: op.ID, Code: int32(op.Code)}
	if reg := a.eng.Codes(); reg != nil {
		if info, err := reg.Describe(op.Code); err == nil {
			resp.Name = info.Name
		}
	}
	return resp
}

func toCodeResponse(c *opset.CodeInfo) *CodeResponse {
	return &CodeResponse{Code: int32(c.Code), Name: c.Name, Description: c.Description}
}
