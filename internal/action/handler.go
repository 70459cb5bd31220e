// Package action implements the Bedrock agent action-group event envelope:
// it decodes a function-invocation event, dispatches it to the NL query
// pipeline, and encodes the function response the agent runtime expects.
package action

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dataheal/dataheal/internal/models"
)

// Event is one action-group function invocation.
type Event struct {
	ActionGroup string      `json:"actionGroup"`
	Function    string      `json:"function"`
	Parameters  []Parameter `json:"parameters"`
}

// Parameter is a named function argument.
type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Response is the messageVersion 1.0 function response envelope.
type Response struct {
	MessageVersion string       `json:"messageVersion"`
	Response       FunctionCall `json:"response"`
}

// FunctionCall echoes the invoked action group and function.
type FunctionCall struct {
	ActionGroup      string           `json:"actionGroup"`
	Function         string           `json:"function"`
	FunctionResponse FunctionResponse `json:"functionResponse"`
}

// FunctionResponse wraps the result body.
type FunctionResponse struct {
	ResponseBody ResponseBody `json:"responseBody"`
}

// ResponseBody carries the JSON-encoded result as agent-readable text.
type ResponseBody struct {
	Text TextBody `json:"TEXT"`
}

// TextBody is the innermost body wrapper.
type TextBody struct {
	Body string `json:"body"`
}

// QueryRunner answers one natural-language question. Exactly one return
// value is non-nil.
type QueryRunner interface {
	Answer(ctx context.Context, question, database string) (*models.ResultPayload, *models.QueryError)
}

// Handler dispatches action-group events.
type Handler struct {
	runner          QueryRunner
	defaultDatabase string
	logger          *slog.Logger
}

// NewHandler creates an action-group handler.
func NewHandler(runner QueryRunner, defaultDatabase string, logger *slog.Logger) *Handler {
	return &Handler{
		runner:          runner,
		defaultDatabase: defaultDatabase,
		logger:          logger,
	}
}

// Handle processes one event and returns the response envelope. Unknown
// functions yield an error body, never a Go error: the agent runtime needs
// a well-formed response either way.
func (h *Handler) Handle(ctx context.Context, event Event) (Response, error) {
	params := make(map[string]string, len(event.Parameters))
	for _, p := range event.Parameters {
		params[p.Name] = p.Value
	}

	var body any
	switch event.Function {
	case "execute_nl_query":
		database := params["database"]
		if database == "" {
			database = h.defaultDatabase
		}
		result, qerr := h.runner.Answer(ctx, params["question"], database)
		if qerr != nil {
			body = qerr
		} else {
			body = result
		}
	default:
		h.logger.Warn("unknown action-group function", "function", event.Function)
		body = models.QueryError{Message: fmt.Sprintf("Unknown function: %s", event.Function)}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("encode response body: %w", err)
	}

	return Response{
		MessageVersion: "1.0",
		Response: FunctionCall{
			ActionGroup: event.ActionGroup,
			Function:    event.Function,
			FunctionResponse: FunctionResponse{
				ResponseBody: ResponseBody{
					Text: TextBody{Body: string(encoded)},
				},
			},
		},
	}, nil
}

// ParseEvent decodes an action-group event from raw JSON.
func ParseEvent(data []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		return Event{}, fmt.Errorf("decode action event: %w", err)
	}
	return event, nil
}
