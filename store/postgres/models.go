package postgres

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/id"
)

type entryModel struct {
	grove.BaseModel `grove:"table:doorman_decision_logs"`
	ID              string         `grove:"id,pk"`
	TenantID        string         `grove:"tenant_id,notnull"`
	AppID           string         `grove:"app_id,notnull"`
	IdentityKind    string         `grove:"identity_kind,notnull"`
	IdentityID      string         `grove:"identity_id,notnull"`
	Resource        string         `grove:"resource,notnull"`
	Action          string         `grove:"action,notnull"`
	Allowed         bool           `grove:"allowed,notnull"`
	Reason          string         `grove:"reason"`
	Cause           string         `grove:"cause"`
	MatchedRules    string         `grove:"matched_rules"`
	EvalTimeNs      int64          `grove:"eval_time_ns,notnull"`
	RequestIP       string         `grove:"request_ip"`
	Metadata        map[string]any `grove:"metadata,type:jsonb"`
	CreatedAt       time.Time      `grove:"created_at,notnull"`
}

func entryToModel(e *decisionlog.Entry) *entryModel {
	return &entryModel{
		ID:           e.ID.String(),
		TenantID:     e.TenantID,
		AppID:        e.AppID,
		IdentityKind: e.IdentityKind,
		IdentityID:   e.IdentityID,
		Resource:     e.Resource,
		Action:       e.Action,
		Allowed:      e.Allowed,
		Reason:       e.Reason,
		Cause:        e.Cause,
		MatchedRules: e.MatchedRules,
		EvalTimeNs:   e.EvalTimeNs,
		RequestIP:    e.RequestIP,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}

func entryFromModel(m *entryModel) *decisionlog.Entry {
	dlid, _ := id.ParseDecisionLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &decisionlog.Entry{
		ID:           dlid,
		TenantID:     m.TenantID,
		AppID:        m.AppID,
		IdentityKind: m.IdentityKind,
		IdentityID:   m.IdentityID,
		Resource:     m.Resource,
		Action:       m.Action,
		Allowed:      m.Allowed,
		Reason:       m.Reason,
		Cause:        m.Cause,
		MatchedRules: m.MatchedRules,
		EvalTimeNs:   m.EvalTimeNs,
		RequestIP:    m.RequestIP,
		Metadata:     m.Metadata,
		CreatedAt:    m.CreatedAt,
	}
}
