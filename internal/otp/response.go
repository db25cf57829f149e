package otp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidResponse indicates the engine body was not a JSON object.
var ErrInvalidResponse = errors.New("invalid engine response")

// EngineError is the error block the engine returns instead of a plan.
type EngineError struct {
	ID      int    `json:"id"`
	Msg     string `json:"msg"`
	Message string `json:"message,omitempty"`
	NoPath  bool   `json:"noPath,omitempty"`
}

// Response is a decoded /plan response.
type Response struct {
	// Plan is the plan root, nil when the engine returned no plan.
	Plan Fragment

	// Error is set when the engine reported a planning failure.
	Error *EngineError

	// RequestParameters echoes the query the engine planned.
	RequestParameters Fragment
}

// DecodeResponse reads an engine response body.
func DecodeResponse(r io.Reader) (*Response, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if root == nil {
		return nil, ErrInvalidResponse
	}
	return NewResponse(Fragment(root)), nil
}

// NewResponse splits an already decoded root object into its parts.
func NewResponse(root Fragment) *Response {
	resp := &Response{
		RequestParameters: root.At("requestParameters"),
	}
	if plan, ok := root.Object("plan"); ok {
		resp.Plan = plan
	}
	if e, ok := root.Object("error"); ok {
		resp.Error = parseEngineError(e)
	}
	return resp
}

func parseEngineError(f Fragment) *EngineError {
	e := &EngineError{}
	if id, ok := f.Int64("id"); ok {
		e.ID = int(id)
	}
	e.Msg, _ = f.String("msg")
	e.Message, _ = f.String("message")
	e.NoPath, _ = f.Bool("noPath")
	return e
}
