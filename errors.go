package graphql

import (
	"fmt"
	"net/http"
	"strings"
)

const (
	ErrRequestError  = "request_error"
	ErrJsonEncode    = "json_encode_error"
	ErrJsonDecode    = "json_decode_error"
	ErrGraphQLEncode = "graphql_encode_error"
	ErrGraphQLDecode = "graphql_decode_error"
)

// Errors is the "errors" array of a GraphQL response. Used as an error it
// holds at least one element.
//
// Specification: https://spec.graphql.org/October2021/#sec-Errors.
type Errors []Error

// Error is a GraphQL error, either reported by the server or synthesized
// for a request that did not produce a response.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the operation text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

func (e Error) Error() string {
	if len(e.Locations) == 0 {
		return e.Message
	}
	at := make([]string, len(e.Locations))
	for i, l := range e.Locations {
		at[i] = l.String()
	}
	return fmt.Sprintf("%s (at %s)", e.Message, strings.Join(at, ", "))
}

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Code returns extensions.code, or "" when absent.
func (e Error) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Exchange is one side of an HTTP round trip kept for debugging.
type Exchange struct {
	Headers http.Header `json:"headers"`
	Body    string      `json:"body"`
}

// DebugInfo is attached under extensions.internal in debug mode.
type DebugInfo struct {
	Request  *Exchange `json:"request,omitempty"`
	Response *Exchange `json:"response,omitempty"`
}

// Debug returns the debug information of e, or nil outside debug mode.
func (e Error) Debug() *DebugInfo {
	info, _ := e.Extensions["internal"].(*DebugInfo)
	return info
}

func newError(code string, err error) Error {
	return Error{
		Message:    err.Error(),
		Extensions: map[string]any{"code": code},
	}
}

// DecorateError attaches the raw request and response to err when the client
// runs in debug mode. Errors that already carry debug information are
// returned unchanged.
func (c *Client) DecorateError(err Error, req *http.Request, resp *http.Response, reqBody, respBody []byte) Error {
	if !c.debug || err.Debug() != nil {
		return err
	}
	info := &DebugInfo{}
	if req != nil {
		info.Request = &Exchange{Headers: req.Header, Body: string(reqBody)}
	}
	if resp != nil {
		info.Response = &Exchange{Headers: resp.Header, Body: string(respBody)}
	}
	ext := make(map[string]any, len(err.Extensions)+1)
	for k, v := range err.Extensions {
		ext[k] = v
	}
	ext["internal"] = info
	err.Extensions = ext
	return err
}

// NewRequestError builds the synthetic error of a failed request.
func (c *Client) NewRequestError(code string, err error, req *http.Request, resp *http.Response, reqBody, respBody []byte) Error {
	return c.DecorateError(newError(code, err), req, resp, reqBody, respBody)
}
