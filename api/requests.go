package api

// DecideRequest is the request body for an access decision.
type DecideRequest struct {
	Resource     string            `json:"resource" description:"Protected resource name"`
	Action       string            `json:"action" description:"Action name"`
	IdentityKind string            `json:"identity_kind" description:"Identity type (user, api_key, service)"`
	IdentityID   string            `json:"identity_id" description:"Identity identifier"`
	Attributes   map[string]any    `json:"attributes,omitempty" description:"Identity attributes"`
	Params       map[string]string `json:"params,omitempty" description:"Request parameters (e.g. object ID)"`
}

// GetLogRequest identifies one decision log entry.
type GetLogRequest struct {
	LogID string `path:"logId" description:"Decision log entry ID"`
}

// PurgeLogsRequest holds the cutoff for purging old decision logs.
type PurgeLogsRequest struct {
	Before string `query:"before" description:"Purge entries created before this timestamp (RFC3339)"`
}

// ListLogsRequest holds query parameters for querying decision logs.
type ListLogsRequest struct {
	IdentityKind string `query:"identity_kind" description:"Filter by identity type"`
	IdentityID   string `query:"identity_id" description:"Filter by identity ID"`
	Resource     string `query:"resource" description:"Filter by resource"`
	Action       string `query:"action" description:"Filter by action"`
	Reason       string `query:"reason" description:"Filter by decision reason"`
	After        string `query:"after" description:"After timestamp (RFC3339)"`
	Before       string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}
