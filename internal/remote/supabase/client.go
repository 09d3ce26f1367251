// Package supabase talks to a hosted Supabase project: PostgREST for table
// rows and the Storage API for image objects.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expensesync/internal/middleware/trace"
	"expensesync/internal/remote"
)

const (
	tableCategories = "categories"
	tableExpenses   = "expenses"
	tableImages     = "expense_images"

	// DefaultBucket holds expense image objects.
	DefaultBucket = "expense_images"
)

var (
	_ remote.Service     = (*Client)(nil)
	_ remote.ObjectStore = (*Client)(nil)
)

type Options struct {
	URL         string
	Key         string // project API key (anon or service role)
	AccessToken string // user session JWT; defaults to Key
	Bucket      string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

type Client struct {
	baseURL string
	apiKey  string
	token   string
	bucket  string
	userID  string
	http    *http.Client
}

// APIError is a non-2xx response from PostgREST or Storage.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.URL), "/")
	if base == "" {
		return nil, errors.New("missing supabase URL")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("parse supabase URL: %w", err)
	}
	if strings.TrimSpace(opts.Key) == "" {
		return nil, errors.New("missing supabase API key")
	}

	token := opts.AccessToken
	var userID string
	if token != "" {
		id, err := UserIDFromToken(token)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		userID = id
	} else {
		token = opts.Key
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = DefaultBucket
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = newHTTPClientWithPooling(opts.Timeout)
	}
	hc = &http.Client{
		Transport:     trace.NewTransport(hc.Transport),
		Timeout:       hc.Timeout,
		CheckRedirect: hc.CheckRedirect,
		Jar:           hc.Jar,
	}

	return &Client{
		baseURL: base,
		apiKey:  opts.Key,
		token:   token,
		bucket:  bucket,
		userID:  userID,
		http:    hc,
	}, nil
}

// UserID is the authenticated user's id, empty for anonymous clients.
func (c *Client) UserID() string { return c.userID }

// UserIDFromToken extracts the subject claim from a session JWT. The token is
// not verified; the backend does that on every request.
func UserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("parse jwt: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("read sub claim: %w", err)
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

// newHTTPClientWithPooling creates an HTTP client with connection pooling and
// keep-alive tuned for a single API host.
func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: timeout}
}

type request struct {
	method  string
	path    string
	query   url.Values
	header  http.Header
	body    io.Reader
	jsonIn  any
	jsonOut any
}

func (c *Client) do(ctx context.Context, r request) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	body := r.body
	if r.jsonIn != nil {
		buf, err := json.Marshal(r.jsonIn)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if r.jsonIn != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if r.jsonOut == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(r.jsonOut); err != nil {
		return fmt.Errorf("decode %s response: %w", r.path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	// PostgREST sends {code, message}; Storage sends {statusCode, error, message}.
	var payload struct {
		Code    string `json:"code"`
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		apiErr.Code = payload.Code
		if apiErr.Code == "" {
			apiErr.Code = payload.Error
		}
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func restPath(table string) string { return "/rest/v1/" + table }

func eq(value string) string { return "eq." + value }

var returnRepresentation = http.Header{"Prefer": []string{"return=representation"}}
