package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/xraph/grove"

	"github.com/xraph/doorman/decisionlog"
	"github.com/xraph/doorman/id"
)

type entryModel struct {
	grove.BaseModel `grove:"table:doorman_decision_logs"`
	ID              string         `grove:"id,pk"           bson:"_id"`
	TenantID        string         `grove:"tenant_id"       bson:"tenant_id"`
	AppID           string         `grove:"app_id"          bson:"app_id"`
	IdentityKind    string         `grove:"identity_kind"   bson:"identity_kind"`
	IdentityID      string         `grove:"identity_id"     bson:"identity_id"`
	Resource        string         `grove:"resource"        bson:"resource"`
	Action          string         `grove:"action"          bson:"action"`
	Allowed         bool           `grove:"allowed"         bson:"allowed"`
	Reason          string         `grove:"reason"          bson:"reason"`
	Cause           string         `grove:"cause"           bson:"cause"`
	MatchedRules    string         `grove:"matched_rules"   bson:"matched_rules"`
	EvalTimeNs      int64          `grove:"eval_time_ns"    bson:"eval_time_ns"`
	RequestIP       string         `grove:"request_ip"      bson:"request_ip"`
	Metadata        map[string]any `grove:"metadata"        bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"      bson:"created_at"`
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

// migrationIndexes returns the index definitions for all doorman collections.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colDecisionLogs: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "identity_kind", Value: 1}, {Key: "identity_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "resource", Value: 1}, {Key: "action", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "allowed", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
}
