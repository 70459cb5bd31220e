package models

// ResultPayload is the bounded, structured form of a successful query
// execution. RowCount always equals len(Rows), and every row has the same
// arity as Columns.
type ResultPayload struct {
	SQLGenerated    string     `json:"sql_generated"`
	Columns         []string   `json:"columns"`
	Rows            [][]string `json:"rows"`
	RowCount        int        `json:"row_count"`
	DataScannedMB   float64    `json:"data_scanned_mb"`
	ExecutionTimeMS int64      `json:"execution_time_ms"`
}

// QueryError is the structured terminal failure of an NL query request:
// a safety rejection, an execution failure, or a timeout. The rejected or
// failed SQL is carried for audit.
type QueryError struct {
	Message string `json:"error"`
	SQL     string `json:"sql,omitempty"`
	QueryID string `json:"query_id,omitempty"`
}

// TraceStep is one opaque reasoning step emitted by the decision engine.
// Steps are counted for telemetry, never parsed.
type TraceStep struct {
	Payload any
}

// DecisionResult is the outcome of one triage decision invocation.
// Resolved is always the negation of Escalate.
type DecisionResult struct {
	Text     string
	Traces   []TraceStep
	Escalate bool
	Resolved bool
}

// RoutingOutcome summarizes one completed triage for the caller.
type RoutingOutcome struct {
	JobName    string `json:"job_name"`
	RunID      string `json:"run_id"`
	AgentSteps int    `json:"agent_steps"`
	Resolved   bool   `json:"resolved"`
	Summary    string `json:"summary"`
}
