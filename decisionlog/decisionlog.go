// Package decisionlog defines the access decision audit Entry entity.
package decisionlog

import (
	"time"

	"github.com/xraph/doorman/id"
)

// Entry is a single access decision audit record.
type Entry struct {
	ID           id.DecisionLogID `json:"id" db:"id"`
	TenantID     string           `json:"tenant_id" db:"tenant_id"`
	AppID        string           `json:"app_id" db:"app_id"`
	IdentityKind string           `json:"identity_kind" db:"identity_kind"`
	IdentityID   string           `json:"identity_id" db:"identity_id"`
	Resource     string           `json:"resource" db:"resource"`
	Action       string           `json:"action" db:"action"`
	Allowed      bool             `json:"allowed" db:"allowed"`
	Reason       string           `json:"reason,omitempty" db:"reason"`
	Cause        string           `json:"cause,omitempty" db:"cause"`
	MatchedRules string           `json:"matched_rules,omitempty" db:"matched_rules"`
	EvalTimeNs   int64            `json:"eval_time_ns" db:"eval_time_ns"`
	RequestIP    string           `json:"request_ip,omitempty" db:"request_ip"`
	Metadata     map[string]any   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// QueryFilter contains filters for querying decision logs.
type QueryFilter struct {
	TenantID     string     `json:"tenant_id,omitempty"`
	IdentityKind string     `json:"identity_kind,omitempty"`
	IdentityID   string     `json:"identity_id,omitempty"`
	Resource     string     `json:"resource,omitempty"`
	Action       string     `json:"action,omitempty"`
	Reason       string     `json:"reason,omitempty"`
	Allowed      *bool      `json:"allowed,omitempty"`
	After        *time.Time `json:"after,omitempty"`
	Before       *time.Time `json:"before,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}
