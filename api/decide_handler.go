package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/doorman"
)

func (a *API) registerDecideRoutes(router forge.Router) error {
	g := router.Group("/v1/access", forge.WithGroupTags("access"))

	if err := g.POST("/decide", a.decide,
		forge.WithSummary("Access decision"),
		forge.WithDescription("Evaluates whether the identity may perform the action on the resource."),
		forge.WithOperationID("accessDecide"),
		forge.WithRequestSchema(DecideRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision", DecideResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce access"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("accessEnforce"),
		forge.WithRequestSchema(DecideRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", DecideResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) decide(ctx forge.Context, req *DecideRequest) (*DecideResponse, error) {
	decision, err := a.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := toDecideResponse(decision)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *DecideRequest) (*DecideResponse, error) {
	decision, err := a.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := toDecideResponse(decision)
	if !decision.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) evaluate(ctx forge.Context, req *DecideRequest) (*doorman.Decision, error) {
	if req.Resource == "" || req.Action == "" || req.IdentityID == "" {
		return nil, forge.BadRequest("resource, action, and identity_id are required")
	}
	guard, ok := a.guards[req.Resource]
	if !ok {
		return nil, forge.NotFound("unknown resource " + req.Resource)
	}

	identity := doorman.Identity{
		Kind:       doorman.IdentityKind(req.IdentityKind),
		ID:         req.IdentityID,
		Attributes: req.Attributes,
	}
	if identity.Kind == "" {
		identity.Kind = doorman.IdentityUser
	}

	ec := doorman.NewExecContext(identity, req.Resource, req.Action,
		doorman.WithParams(req.Params),
	)
	return guard.Decide(ctx.Context(), req.Action, ec), nil
}

func toDecideResponse(d *doorman.Decision) *DecideResponse {
	resp := &DecideResponse{
		Allowed:    d.Allowed,
		Reason:     string(d.Reason),
		Cause:      d.Cause,
		EvalTimeNs: d.EvalTimeNs,
	}
	for _, m := range d.MatchedBy {
		resp.MatchedBy = append(resp.MatchedBy, RuleInfo{
			RuleID:    m.RuleID,
			Privilege: m.Privilege,
			Allowed:   m.Allowed,
		})
	}
	return resp
}
