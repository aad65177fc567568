package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Its-donkey/signup-board/internal/ui/model"
)

// ErrorKind classifies why an activities API call failed.
type ErrorKind int

const (
	// KindTransport covers failures before any response arrived.
	KindTransport ErrorKind = iota
	// KindStatus is a non-2xx response whose body parsed as JSON.
	KindStatus
	// KindDecode is a response body that could not be parsed as JSON.
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error describes a failed activities API call.
type Error struct {
	Kind   ErrorKind
	Op     string
	Status int
	// Detail is the server-supplied error text, empty when absent.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

var errInvalidJSON = errors.New("response body is not valid JSON")

// Client talks to the activities API. The zero value uses relative URLs and
// http.DefaultClient, which is what the browser build wants.
type Client struct {
	// BaseURL is prefixed to every path. Empty means same origin.
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client for the API rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		HTTP:    httpClient,
	}
}

// ListActivities fetches the full activity collection.
func (c *Client) ListActivities(ctx context.Context) (model.Activities, error) {
	const op = "list activities"
	status, body, err := c.do(ctx, op, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		detail, err := decodeDetail(body)
		if err != nil {
			return nil, &Error{Kind: KindDecode, Op: op, Status: status, Err: err}
		}
		return nil, &Error{Kind: KindStatus, Op: op, Status: status, Detail: detail}
	}
	var out model.Activities
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{Kind: KindDecode, Op: op, Status: status, Err: err}
	}
	return out, nil
}

// Signup registers email for the named activity and returns the server message.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, "signup", http.MethodPost, activity, email)
}

// Unregister removes email from the named activity and returns the server message.
func (c *Client) Unregister(ctx context.Context, activity, email string) (string, error) {
	return c.mutate(ctx, "unregister", http.MethodDelete, activity, email)
}

// SignupPath builds the percent-encoded signup endpoint for an activity and email.
func SignupPath(activity, email string) string {
	return "/activities/" + url.PathEscape(activity) + "/signup?email=" + url.QueryEscape(email)
}

func (c *Client) mutate(ctx context.Context, op, method, activity, email string) (string, error) {
	status, body, err := c.do(ctx, op, method, SignupPath(activity, email))
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		detail, err := decodeDetail(body)
		if err != nil {
			return "", &Error{Kind: KindDecode, Op: op, Status: status, Err: err}
		}
		return "", &Error{Kind: KindStatus, Op: op, Status: status, Detail: detail}
	}
	var resp model.MessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{Kind: KindDecode, Op: op, Status: status, Err: err}
	}
	return resp.Message, nil
}

func (c *Client) do(ctx context.Context, op, method, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, nil)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return resp.StatusCode, nil, &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: err}
	}
	return resp.StatusCode, body, nil
}

// decodeDetail pulls the detail text out of an error body. Non-string details
// (validation error lists) are returned as their raw JSON.
func decodeDetail(body []byte) (string, error) {
	if !json.Valid(body) {
		return "", errInvalidJSON
	}
	var payload model.ErrorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	raw := strings.TrimSpace(string(payload.Detail))
	if raw == "" || raw == "null" {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return text, nil
	}
	return raw, nil
}
