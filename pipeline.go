package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jensneuse/abstractlogger"

	"github.com/llehouerou/gqlselect/compiler"
	"github.com/llehouerou/gqlselect/document"
	"github.com/llehouerou/gqlselect/selection"
)

// RequestIDHeader carries the id of an execution. Every HTTP request of
// one execution, the persisted fallback included, shares the id.
const RequestIDHeader = "X-Request-Id"

// State is a step of an execution.
type State string

const (
	StateIdle                    State = "idle"
	StateSending                 State = "sending"
	StateAwaitingResponse        State = "awaiting_response"
	StateSucceeded               State = "succeeded"
	StateServerRejectedPersisted State = "server_rejected_persisted"
	StateFailed                  State = "failed"
)

// Result is the outcome of an execution.
//
// Errors holds the GraphQL errors of the response, or a single synthetic
// error when the request failed (code request_error or json_decode_error).
type Result struct {
	Data       json.RawMessage
	Errors     Errors
	Extensions json.RawMessage
	// Query is the document text for full-document requests and
	// "<hash>:<text>" for persisted ones.
	Query     string
	RequestID string
	// States lists every state the execution went through, in order.
	States []State
}

// Err returns the result errors as an error, or nil.
func (r *Result) Err() error {
	if len(r.Errors) > 0 {
		return r.Errors
	}
	return nil
}

// Decode unmarshals the response data into v.
func (r *Result) Decode(v any) error {
	if len(r.Data) == 0 {
		return r.Err()
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		errs := append(Errors(nil), r.Errors...)
		return append(errs, newError(ErrGraphQLDecode, err))
	}
	return r.Err()
}

// Final returns the last state of the execution.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return StateIdle
	}
	return r.States[len(r.States)-1]
}

// Compile returns the document for root, compiled against the client schema.
// With a document cache, a root is compiled once per normalized key.
func (c *Client) Compile(root *selection.Root, options ...Option) (*document.Document, error) {
	if c.schema == nil {
		return nil, errors.New("compile: client has no schema")
	}
	s := c.schema
	if c.uploadScalar != "" {
		s = s.Clone().WithUploadScalar(c.uploadScalar)
	}
	compile := func() (*document.Document, error) {
		return compiler.Compile(s, root, c.fragments, options...)
	}
	if c.documents == nil {
		return compile()
	}
	key, err := compiler.Key(root, options...)
	if err != nil {
		return nil, err
	}
	return c.documents.GetOrCompile(key, compile)
}

// Query compiles the query selection root, executes it with args and
// unmarshals the response data into v.
func (c *Client) Query(
	ctx context.Context,
	v any,
	root *selection.Root,
	args any,
	options ...Option,
) error {
	return c.do(ctx, selection.Query, v, root, args, options...)
}

// Mutate compiles the mutation selection root, executes it with args and
// unmarshals the response data into v.
func (c *Client) Mutate(
	ctx context.Context,
	v any,
	root *selection.Root,
	args any,
	options ...Option,
) error {
	return c.do(ctx, selection.Mutation, v, root, args, options...)
}

func (c *Client) do(
	ctx context.Context,
	op selection.OperationKind,
	v any,
	root *selection.Root,
	args any,
	options ...Option,
) error {
	if root != nil {
		kind := root.Operation
		if kind == "" {
			kind = selection.Query
		}
		if kind != op {
			return fmt.Errorf("expected a %s selection, got %q", op, kind)
		}
	}
	res, err := c.Run(ctx, root, args, nil, options...)
	if err != nil {
		return err
	}
	if v == nil {
		return res.Err()
	}
	return res.Decode(v)
}

// Run compiles root and executes it.
func (c *Client) Run(
	ctx context.Context,
	root *selection.Root,
	args any,
	locals map[string]any,
	options ...Option,
) (*Result, error) {
	doc, err := c.Compile(root, options...)
	if err != nil {
		return nil, err
	}
	return c.Execute(ctx, doc, args, locals)
}

// Execute sends doc with variables bound from the live args and locals.
//
// Request failures are reported in Result.Errors. A Go error is returned
// only when ctx is done or the variables cannot be bound or encoded.
func (c *Client) Execute(
	ctx context.Context,
	doc *document.Document,
	args any,
	locals map[string]any,
) (*Result, error) {
	if doc == nil {
		return nil, errors.New("execute: nil document")
	}
	variables, err := doc.Values(args, locals)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	entries, err := doc.Uploads.Collect(variables)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}
	files, err := loadUploads(entries)
	if err != nil {
		return nil, fmt.Errorf("execute: %w", err)
	}

	ex := &execution{
		client:    c,
		doc:       doc,
		variables: variables,
		files:     files,
		result:    &Result{RequestID: uuid.NewString()},
	}
	ex.transition(StateIdle)
	if c.persisted {
		err = ex.persisted(ctx)
	} else {
		err = ex.full(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ex.result, nil
}

type execution struct {
	client    *Client
	doc       *document.Document
	variables map[string]any
	files     []uploadFile
	result    *Result
}

// attempt is one HTTP round trip. failure is set when no GraphQL response
// could be read.
type attempt struct {
	body     []byte
	response *Response
	failure  Errors
}

func (ex *execution) transition(s State) {
	ex.result.States = append(ex.result.States, s)
	ex.client.logger.Debug("graphql.execution",
		abstractlogger.String("id", ex.result.RequestID),
		abstractlogger.String("state", string(s)),
	)
}

func (ex *execution) full(ctx context.Context) error {
	ex.result.Query = ex.doc.Text
	a, err := ex.send(ctx, Request{
		Query:         ex.doc.Text,
		Variables:     ex.variables,
		OperationName: ex.doc.Name,
	})
	if err != nil {
		return err
	}
	ex.finish(a)
	return nil
}

func (ex *execution) persisted(ctx context.Context) error {
	hash := ex.doc.ContentHash
	ex.result.Query = hash + ":" + ex.doc.Text
	extensions := &RequestExtensions{
		PersistedQuery: &PersistedQuery{Version: 1, Sha256Hash: hash},
	}
	a, err := ex.send(ctx, Request{
		Variables:     ex.variables,
		OperationName: ex.doc.Name,
		Extensions:    extensions,
	})
	if err != nil {
		return err
	}
	if !ex.client.notFound(a.body) {
		ex.finish(a)
		return nil
	}

	ex.transition(StateServerRejectedPersisted)
	if !ex.client.persistedRetry {
		ex.record(a)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	ex.client.logger.Info("graphql.execution: persisted document not found, sending full text",
		abstractlogger.String("id", ex.result.RequestID),
		abstractlogger.String("hash", hash),
	)
	a, err = ex.send(ctx, Request{
		Query:         ex.doc.Text,
		Variables:     ex.variables,
		OperationName: ex.doc.Name,
		Extensions:    extensions,
	})
	if err != nil {
		return err
	}
	ex.finish(a)
	return nil
}

// record copies the attempt outcome into the result.
func (ex *execution) record(a *attempt) {
	if a.failure != nil {
		ex.result.Errors = a.failure
		return
	}
	ex.result.Data = a.response.Data
	ex.result.Errors = a.response.Errors
	ex.result.Extensions = a.response.Extensions
}

func (ex *execution) finish(a *attempt) {
	ex.record(a)
	if a.failure != nil {
		ex.transition(StateFailed)
		return
	}
	ex.transition(StateSucceeded)
}

func (ex *execution) build(ctx context.Context, in Request) (*http.Request, []byte, error) {
	if len(ex.files) > 0 {
		return ex.client.buildMultipartRequest(ctx, in, ex.files)
	}
	return ex.client.BuildRequest(ctx, in)
}

// send performs one round trip. It returns an error only for a done
// context or an unencodable request.
func (ex *execution) send(ctx context.Context, in Request) (*attempt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := ex.client
	ex.transition(StateSending)
	request, reqBody, err := ex.build(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("problem constructing request: %w", err)
	}
	if request.Header.Get(RequestIDHeader) == "" {
		request.Header.Set(RequestIDHeader, ex.result.RequestID)
	}

	ex.transition(StateAwaitingResponse)
	resp, body, err := c.ExecuteRequest(request)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Error("graphql.execution: request failed",
			abstractlogger.String("id", ex.result.RequestID),
			abstractlogger.Error(err),
		)
		e := c.NewRequestError(ErrRequestError, err, request, resp, reqBody, body)
		var status *StatusError
		if errors.As(err, &status) {
			e.Extensions["statusCode"] = status.StatusCode
			e.Extensions["body"] = string(status.Body)
		}
		return &attempt{body: body, failure: Errors{e}}, nil
	}

	decoded, err := c.DecodeResponse(body)
	if err != nil {
		e := c.NewRequestError(ErrJsonDecode, err, request, resp, reqBody, body)
		return &attempt{body: body, failure: Errors{e}}, nil
	}

	if len(decoded.Errors) > 0 {
		decoded.Errors[0] = c.DecorateError(decoded.Errors[0], request, resp, reqBody, body)
	}
	return &attempt{body: body, response: decoded}, nil
}
