package results

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aretw0/pageflow/pkg/domain"
)

// JSONResult encodes Value as the response body.
type JSONResult struct {
	Value       any
	ContentType string
	StatusCode  int
}

// JSON creates a JSON result.
func JSON(value any) *JSONResult {
	return &JSONResult{Value: value}
}

// ExecuteResult implements domain.Result.
func (r *JSONResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	data, err := json.Marshal(r.Value)
	if err != nil {
		return fmt.Errorf("failed to encode json result: %w", err)
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	return writeBody(pc, contentType, r.StatusCode, data)
}

// Problem is an RFC 7807 problem document.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// InvocationID correlates the problem with server logs.
	InvocationID string `json:"invocation_id,omitempty"`
}

// ProblemResult writes a problem document with its status code.
type ProblemResult struct {
	Problem Problem
}

// NewProblem creates a problem result for status, titled with the status text.
func NewProblem(status int, detail string) *ProblemResult {
	return &ProblemResult{Problem: Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}}
}

// ExecuteResult implements domain.Result.
func (r *ProblemResult) ExecuteResult(ctx context.Context, pc *domain.PageContext) error {
	problem := r.Problem
	if problem.InvocationID == "" {
		problem.InvocationID = pc.InvocationID
	}
	if problem.Instance == "" && pc.Request != nil && pc.Request.URL != nil {
		problem.Instance = pc.Request.URL.Path
	}
	return (&JSONResult{
		Value:       problem,
		ContentType: "application/problem+json",
		StatusCode:  problem.Status,
	}).ExecuteResult(ctx, pc)
}
