package graphql

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/buger/jsonparser"
	"github.com/jensneuse/abstractlogger"

	"github.com/llehouerou/gqlselect/cache"
	"github.com/llehouerou/gqlselect/schema"
	"github.com/llehouerou/gqlselect/selection"
)

// RequestModifier adjusts every outgoing HTTP request, e.g. to add
// authentication headers.
type RequestModifier func(*http.Request)

// PersistedQueryNotFoundFunc reports whether a raw response body tells that
// the server does not know a persisted document hash.
type PersistedQueryNotFoundFunc func(body []byte) bool

// Client compiles selections and executes the resulting documents against
// one GraphQL endpoint.
//
// With* methods never modify the receiver. They return a configured copy:
//
//	client = client.WithSchema(s, nil).WithPersistedQueries(true)
type Client struct {
	url             string // GraphQL server URL.
	httpClient      *http.Client
	requestModifier RequestModifier
	debug           bool
	logger          abstractlogger.Logger

	schema       *schema.Schema
	fragments    selection.Fragments
	uploadScalar string
	documents    *cache.Documents

	persisted      bool
	persistedRetry bool
	notFound       PersistedQueryNotFoundFunc
}

// NewClient returns a client posting to url. A nil httpClient means
// http.DefaultClient.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     abstractlogger.NoopLogger,
		notFound:   IsPersistedQueryNotFound,
	}
}

// Request is the GraphQL-over-HTTP POST body.
type Request struct {
	Query         string             `json:"query,omitempty"`
	Variables     map[string]any     `json:"variables,omitempty"`
	OperationName string             `json:"operationName,omitempty"`
	Extensions    *RequestExtensions `json:"extensions,omitempty"`
}

// RequestExtensions is the extensions object of a request.
type RequestExtensions struct {
	PersistedQuery *PersistedQuery `json:"persistedQuery,omitempty"`
}

// PersistedQuery is the persisted document extension.
type PersistedQuery struct {
	Version    int    `json:"version"`
	Sha256Hash string `json:"sha256Hash"`
}

// Response is a decoded GraphQL response envelope.
type Response struct {
	Data       json.RawMessage
	Errors     Errors
	Extensions json.RawMessage
}

// decompress wraps the response body reader with a decompressor matching
// the Content-Encoding header (gzip, deflate or br).
func decompress(
	resp *http.Response,
	bodyReader io.Reader,
) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		gr, err := gzip.NewReader(bodyReader)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		return gr, nil
	case "deflate":
		return flate.NewReader(bodyReader), nil
	case "br":
		return io.NopCloser(brotli.NewReader(bodyReader)), nil
	}
	return io.NopCloser(bodyReader), nil
}

// BuildRequest encodes in as a JSON POST request. The encoded body is
// returned alongside for debug decoration.
func (c *Client) BuildRequest(
	ctx context.Context,
	in Request,
) (*http.Request, []byte, error) {
	if len(in.Variables) == 0 {
		in.Variables = nil
	}
	var buf bytes.Buffer
	err := json.NewEncoder(&buf).Encode(in)
	if err != nil {
		return nil, nil, err
	}

	reqBody := buf.Bytes()
	request, err := c.newHTTPRequest(ctx, bytes.NewReader(reqBody), "application/json")
	if err != nil {
		return nil, reqBody, err
	}
	return request, reqBody, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, body io.Reader, contentType string) (*http.Request, error) {
	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		body,
	)
	if err != nil {
		return nil, err
	}
	request.Header.Add("Content-Type", contentType)
	request.Header.Set("Accept-Encoding", "gzip, deflate, br")

	if c.requestModifier != nil {
		c.requestModifier(request)
	}
	return request, nil
}

// StatusError is returned by ExecuteRequest for non-200 responses.
type StatusError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v; body: %q", e.Status, e.Body)
}

// ExecuteRequest executes an HTTP request and handles response decompression.
// It returns the HTTP response and the (decompressed) body. Responses with a
// status other than 200 yield a *StatusError.
func (c *Client) ExecuteRequest(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	r, err := decompress(resp, resp.Body)
	if err != nil {
		return resp, nil, err
	}
	defer func() { _ = r.Close() }()

	body, err := io.ReadAll(r)
	if err != nil {
		return resp, nil, err
	}

	// Check status code
	if resp.StatusCode != http.StatusOK {
		return resp, body, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}

	return resp, body, nil
}

// DecodeResponse decodes a GraphQL JSON response envelope into raw data,
// extensions and errors.
func (c *Client) DecodeResponse(body []byte) (*Response, error) {
	out := &Response{}
	err := jsonparser.ObjectEach(body, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType == jsonparser.Null {
			return nil
		}
		switch string(key) {
		case "data":
			out.Data = append(json.RawMessage(nil), value...)
		case "extensions":
			out.Extensions = append(json.RawMessage(nil), value...)
		case "errors":
			if err := json.Unmarshal(value, &out.Errors); err != nil {
				return fmt.Errorf("errors: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) clone() *Client {
	clone := *c
	return &clone
}

// WithRequestModifier returns a new Client applying f to every request.
// Clients derived this way share the underlying http.Client and its
// connections.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client that attaches raw requests and responses
// to errors (see Error.Debug).
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithLogger returns a new Client logging through logger. A nil logger
// disables logging.
func (c *Client) WithLogger(logger abstractlogger.Logger) *Client {
	clone := c.clone()
	if logger == nil {
		logger = abstractlogger.NoopLogger
	}
	clone.logger = logger
	return clone
}

// WithSchema returns a new Client compiling selections against s, with
// fragments available to fragment calls.
func (c *Client) WithSchema(s *schema.Schema, fragments selection.Fragments) *Client {
	clone := c.clone()
	clone.schema = s
	clone.fragments = fragments
	return clone
}

// WithUploadScalar returns a new Client treating the named scalar as the
// upload marker type when compiling.
func (c *Client) WithUploadScalar(name string) *Client {
	clone := c.clone()
	clone.uploadScalar = name
	return clone
}

// WithDocumentCache returns a new Client storing compiled documents in
// documents. Clients sharing a cache share compiled documents.
func (c *Client) WithDocumentCache(documents *cache.Documents) *Client {
	clone := c.clone()
	clone.documents = documents
	return clone
}

// WithPersistedQueries returns a new Client sending document hashes instead
// of document texts. When retry is set, a request the server rejects as an
// unknown hash is sent once more with the full text.
func (c *Client) WithPersistedQueries(retry bool) *Client {
	clone := c.clone()
	clone.persisted = true
	clone.persistedRetry = retry
	return clone
}

// WithPersistedQueryNotFound returns a new Client recognizing unknown
// persisted hashes with f instead of IsPersistedQueryNotFound.
func (c *Client) WithPersistedQueryNotFound(f PersistedQueryNotFoundFunc) *Client {
	clone := c.clone()
	if f == nil {
		f = IsPersistedQueryNotFound
	}
	clone.notFound = f
	return clone
}
