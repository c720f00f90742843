package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/id"
)

func (a *API) registerLogRoutes(router forge.Router) error {
	g := router.Group("/v1/access", forge.WithGroupTags("decision-logs"))

	if err := g.GET("/logs", a.listLogs,
		forge.WithSummary("Query decision logs"),
		forge.WithDescription("Returns access decision audit logs with optional filters."),
		forge.WithOperationID("listDecisionLogs"),
		forge.WithRequestSchema(ListLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision log list", []*decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/logs/:logId", a.getLog,
		forge.WithSummary("Get a decision log entry"),
		forge.WithDescription("Returns one access decision audit log entry by ID."),
		forge.WithOperationID("getDecisionLog"),
		forge.WithRequestSchema(GetLogRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision log entry", decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/logs", a.purgeLogs,
		forge.WithSummary("Purge old decision logs"),
		forge.WithDescription("Removes audit log entries created before the given timestamp."),
		forge.WithOperationID("purgeDecisionLogs"),
		forge.WithRequestSchema(PurgeLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Purge result", PurgeLogsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listLogs(ctx forge.Context, req *ListLogsRequest) ([]*decisionlog.Entry, error) {
	if a.logs == nil {
		return nil, forge.NotFound("decision logging is not configured")
	}

	filter := &decisionlog.QueryFilter{
		IdentityKind: req.IdentityKind,
		IdentityID:   req.IdentityID,
		Resource:     req.Resource,
		Action:       req.Action,
		Reason:       req.Reason,
		Limit:        defaultLimit(req.Limit),
		Offset:       req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.logs.ListEntries(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return logs, ctx.JSON(http.StatusOK, logs)
}

func (a *API) getLog(ctx forge.Context, _ *GetLogRequest) (*decisionlog.Entry, error) {
	if a.logs == nil {
		return nil, forge.NotFound("decision logging is not configured")
	}

	logID, err := id.ParseDecisionLogID(ctx.Param("logId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid log ID: %v", err))
	}

	entry, err := a.logs.GetEntry(ctx.Context(), logID)
	if err != nil {
		return nil, mapError(err)
	}

	return entry, ctx.JSON(http.StatusOK, entry)
}

func (a *API) purgeLogs(ctx forge.Context, req *PurgeLogsRequest) (*PurgeLogsResponse, error) {
	if a.logs == nil {
		return nil, forge.NotFound("decision logging is not configured")
	}

	if req.Before == "" {
		return nil, forge.BadRequest("before timestamp is required")
	}
	cutoff, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, forge.BadRequest("invalid before timestamp")
	}

	purged, err := a.logs.PurgeEntries(ctx.Context(), cutoff)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &PurgeLogsResponse{Purged: purged}
	return resp, ctx.JSON(http.StatusOK, resp)
}
