package api

// DecideResponse is the response for an access decision.
type DecideResponse struct {
	Allowed    bool       `json:"allowed" description:"Whether the request is allowed"`
	Reason     string     `json:"reason" description:"Decision reason code"`
	Cause      string     `json:"cause,omitempty" description:"Human-readable cause"`
	MatchedBy  []RuleInfo `json:"matched_by,omitempty" description:"Rules that were evaluated"`
	EvalTimeNs int64      `json:"eval_time_ns" description:"Evaluation time in nanoseconds"`
}

// PurgeLogsResponse reports how many decision log entries were removed.
type PurgeLogsResponse struct {
	Purged int64 `json:"purged" description:"Number of entries removed"`
}

// RuleInfo identifies an evaluated rule.
type RuleInfo struct {
	RuleID    string `json:"rule_id" description:"Rule identifier"`
	Privilege string `json:"privilege,omitempty" description:"Privilege the rule demanded"`
	Allowed   bool   `json:"allowed" description:"The rule's individual verdict"`
}
