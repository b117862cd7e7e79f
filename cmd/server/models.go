package main

import (
	"time"

	"github.com/liamcoop/drills/checks"
	"github.com/liamcoop/drills/exercises"
	"github.com/liamcoop/drills/suites"
)

// ExerciseResponse describes one invocable exercise.
type ExerciseResponse struct {
	Name     string `json:"name"`
	Arity    int    `json:"arity"`
	Variadic bool   `json:"variadic"`
	Usage    string `json:"usage"`
}

// InvokeRequest is the body of POST /exercises/{name}.
type InvokeRequest struct {
	Args []exercises.Value `json:"args"`
}

// InvokeResponse carries the result both as JSON and as console text.
type InvokeResponse struct {
	Exercise string `json:"exercise"`
	Result   any    `json:"result"`
	Text     string `json:"text"`
}

// CreateSuiteRequest is the body of POST /suites. ID defaults to a new UUID
// and Schema to the builtin schema.
type CreateSuiteRequest struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Schema suites.Schema `json:"schema,omitempty"`
}

// SuiteResponse represents a suite in API responses.
type SuiteResponse struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Schema        suites.Schema `json:"schema"`
	SchemaVersion int           `json:"schemaVersion"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func suiteResponse(s *suites.Suite) SuiteResponse {
	return SuiteResponse{
		ID:            s.ID,
		Name:          s.Name,
		Schema:        s.Schema,
		SchemaVersion: s.SchemaVersion,
		CreatedAt:     s.CreatedAt,
	}
}

// SchemaRequest is the body of POST /suites/{suiteId}/schema.
type SchemaRequest struct {
	Definition suites.Schema `json:"definition"`
}

// SchemaResponse represents a suite's active schema.
type SchemaResponse struct {
	Version        int           `json:"version"`
	Definition     suites.Schema `json:"definition"`
	ChecksCompiled int           `json:"checksCompiled,omitempty"`
}

// CreateCheckRequest is the body of POST /suites/{suiteId}/checks. Active
// defaults to true.
type CreateCheckRequest struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Active     *bool  `json:"active,omitempty"`
}

// UpdateCheckRequest changes only the fields that are set.
type UpdateCheckRequest struct {
	Name       *string `json:"name,omitempty"`
	Expression *string `json:"expression,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// EvaluateRequest evaluates a suite's active checks, or only the listed
// ones, against facts.
type EvaluateRequest struct {
	SuiteID string         `json:"suiteId"`
	Facts   map[string]any `json:"facts"`
	Checks  []string       `json:"checks,omitempty"`
}

// ResultResponse is one check outcome.
type ResultResponse struct {
	CheckID   string `json:"checkId,omitempty"`
	CheckName string `json:"checkName"`
	Passed    bool   `json:"passed"`
	Output    any    `json:"output"`
	Error     string `json:"error,omitempty"`
}

func resultResponse(r *checks.EvaluationResult) ResultResponse {
	out := ResultResponse{
		CheckID:   r.CheckID,
		CheckName: r.CheckName,
		Passed:    r.Passed,
		Output:    r.Output,
	}
	if r.Error != nil {
		out.Error = r.Error.Error()
	}
	return out
}

// EvaluateResponse lists outcomes in check order.
type EvaluateResponse struct {
	SuiteID        string           `json:"suiteId"`
	Results        []ResultResponse `json:"results"`
	Passed         int              `json:"passed"`
	Failed         int              `json:"failed"`
	EvaluationTime string           `json:"evaluationTime"`
}

// ExpressionRequest evaluates an ad-hoc expression in a suite's
// environment, the builtin suite by default.
type ExpressionRequest struct {
	Expression string         `json:"expression"`
	Facts      map[string]any `json:"facts,omitempty"`
	SuiteID    string         `json:"suiteId,omitempty"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status       string `json:"status"`
	Storage      string `json:"storage"`
	SuitesLoaded int    `json:"suitesLoaded"`
	Error        string `json:"error,omitempty"`
}
