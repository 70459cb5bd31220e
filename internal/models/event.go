// Package models defines the domain records shared across the dataheal
// pipelines.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FailureEvent describes a single job-failure transition. It is immutable
// for the duration of one triage.
type FailureEvent struct {
	JobName      string `json:"job_name"`
	RunID        string `json:"run_id"`
	ErrorMessage string `json:"error_message"`
}

// glueStateChange is the EventBridge envelope for a Glue job state change
// (source=aws.glue, detail-type=Glue Job State Change).
type glueStateChange struct {
	Detail struct {
		JobName  string `json:"jobName"`
		JobRunID string `json:"jobRunId"`
		Message  string `json:"message"`
	} `json:"detail"`
}

// ParseFailureEvent decodes an EventBridge Glue state-change event. Absent
// fields get placeholder values so a malformed event still produces a
// triageable record.
func ParseFailureEvent(data []byte) (FailureEvent, error) {
	var raw glueStateChange
	if err := json.Unmarshal(data, &raw); err != nil {
		return FailureEvent{}, fmt.Errorf("decode failure event: %w", err)
	}

	ev := FailureEvent{
		JobName:      raw.Detail.JobName,
		RunID:        raw.Detail.JobRunID,
		ErrorMessage: raw.Detail.Message,
	}
	if ev.JobName == "" {
		ev.JobName = "unknown"
	}
	if ev.RunID == "" {
		ev.RunID = "unknown"
	}
	if ev.ErrorMessage == "" {
		ev.ErrorMessage = "No error message provided"
	}
	return ev, nil
}

// RunRecord is one prior run of a job, used for failure-pattern detection.
type RunRecord struct {
	RunID   string `json:"run_id"`
	State   string `json:"state"`
	Started string `json:"started"`
	Error   string `json:"error"`
}

// Evidence is the best-effort context gathered for one failed run. Either
// part may be empty when its source was unreachable; collection never fails.
type Evidence struct {
	LogLines   []string
	RunHistory []RunRecord
}

// LogContext renders the log lines for prompt embedding, with an explicit
// placeholder when nothing was retrieved.
func (e Evidence) LogContext() string {
	if len(e.LogLines) == 0 {
		return "No log events found"
	}
	return strings.Join(e.LogLines, "\n")
}

// SessionID derives the triage session identifier for a run. Replayed
// events for the same run share a session.
func (f FailureEvent) SessionID() string {
	return "heal-" + f.RunID
}

// FormatStartTime renders a run start time the way run history embeds it.
func FormatStartTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
