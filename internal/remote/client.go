package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/osse101/TillSync_Go/internal/domain"
	"github.com/osse101/TillSync_Go/internal/logger"
	"github.com/osse101/TillSync_Go/internal/repository"
)

// Client talks to a PostgREST-style backend: collections under /rest/v1 and
// the transactional sale endpoint under /functions/v1.
type Client struct {
	baseURL    string
	gatewayKey string
	sessions   repository.SessionProvider
	http       *http.Client
}

// NewClient creates a REST remote. sessions may be nil, in which case every
// call is authorized with the gateway key alone.
func NewClient(baseURL, gatewayKey string, sessions repository.SessionProvider) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		gatewayKey: gatewayKey,
		sessions:   sessions,
		http:       &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

func (c *Client) userToken(ctx context.Context) string {
	if c.sessions == nil {
		return ""
	}
	s, err := c.sessions.Session(ctx)
	if err != nil || s.AccessToken == "" {
		logger.FromContext(ctx).Debug(LogMsgNoSession, "error", err)
		return ""
	}
	return s.AccessToken
}

// do sends a request and decodes a successful JSON response into out
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers map[string]string, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgEncodeBody, err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgBuildRequest, err)
	}
	req.Header.Set(headerContent, contentTypeJSON)
	if c.gatewayKey != "" {
		req.Header.Set(headerAPIKey, c.gatewayKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.FromContext(ctx).Debug(LogMsgRequestFailed, "method", method, "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDecodeResponse, err)
	}
	if err := statusError(resp.StatusCode, payload); err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDecodeResponse, err)
	}
	return nil
}

// statusError maps HTTP status codes onto domain errors
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	msg := remoteMessage(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %d %s", domain.ErrUnauthorized, status, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrRecordNotFound, msg)
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %d %s", domain.ErrRemoteRejected, status, msg)
	default:
		return fmt.Errorf("%s %d: %s", ErrMsgUnexpected, status, msg)
	}
}

func remoteMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		switch {
		case parsed.Message != "":
			return strings.TrimSpace(parsed.Code + " " + parsed.Message)
		case parsed.Error != "":
			return parsed.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) restHeaders(ctx context.Context) map[string]string {
	h := map[string]string{headerPrefer: preferRepresentation}
	if token := c.userToken(ctx); token != "" {
		h[headerAuth] = "Bearer " + token
	} else if c.gatewayKey != "" {
		h[headerAuth] = "Bearer " + c.gatewayKey
	}
	return h
}

func byID(id string) url.Values {
	return url.Values{"id": {"eq." + id}}
}

func first(rows []domain.Record, resource, id string) (domain.Record, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrRecordNotFound, resource, id)
	}
	return rows[0], nil
}

// Fetch reads one record by id
func (c *Client) Fetch(ctx context.Context, resource, id string) (domain.Record, error) {
	q := byID(id)
	q.Set("limit", "1")
	var rows []domain.Record
	if err := c.do(ctx, http.MethodGet, restPrefix+resource, q, nil, c.restHeaders(ctx), &rows); err != nil {
		return nil, err
	}
	return first(rows, resource, id)
}

// Insert creates a record and returns the stored row
func (c *Client) Insert(ctx context.Context, resource string, data domain.Record) (domain.Record, error) {
	var rows []domain.Record
	if err := c.do(ctx, http.MethodPost, restPrefix+resource, nil, data, c.restHeaders(ctx), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return data, nil
	}
	return rows[0], nil
}

// Update patches a record and returns the stored row
func (c *Client) Update(ctx context.Context, resource, id string, patch domain.Record) (domain.Record, error) {
	var rows []domain.Record
	if err := c.do(ctx, http.MethodPatch, restPrefix+resource, byID(id), patch, c.restHeaders(ctx), &rows); err != nil {
		return nil, err
	}
	return first(rows, resource, id)
}

// Delete removes a record
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	var rows []domain.Record
	if err := c.do(ctx, http.MethodDelete, restPrefix+resource, byID(id), nil, c.restHeaders(ctx), &rows); err != nil {
		return err
	}
	_, err := first(rows, resource, id)
	return err
}

// List reads the records matching filter
func (c *Client) List(ctx context.Context, resource string, filter repository.Filter) ([]domain.Record, error) {
	var rows []domain.Record
	if err := c.do(ctx, http.MethodGet, restPrefix+resource, filterQuery(filter), nil, c.restHeaders(ctx), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CompleteSale calls the transactional sale endpoint. The gateway is satisfied
// by the gateway key; the endpoint itself verifies the user token.
func (c *Client) CompleteSale(ctx context.Context, payload domain.Record) (domain.Record, error) {
	token := c.userToken(ctx)
	if token == "" {
		return nil, fmt.Errorf("%w: no user session for sale completion", domain.ErrUnauthorized)
	}
	headers := map[string]string{
		headerAuth:      "Bearer " + c.gatewayKey,
		headerUserToken: token,
	}

	var out domain.Record
	if err := c.do(ctx, http.MethodPost, completeSaleRoute, nil, payload, headers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks the gateway is reachable. An auth rejection is returned as such.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, restPrefix, nil, nil, c.restHeaders(ctx), nil)
	if errors.Is(err, domain.ErrRecordNotFound) || errors.Is(err, domain.ErrRemoteRejected) {
		return nil
	}
	return err
}

// filterQuery renders a filter in PostgREST query syntax
func filterQuery(f repository.Filter) url.Values {
	q := url.Values{}
	for _, c := range f.Conditions {
		q.Add(c.Field, string(c.Op)+"."+formatValue(c.Op, c.Value))
	}
	if f.OrderBy != "" {
		dir := "asc"
		if f.Descending {
			dir = "desc"
		}
		q.Set("order", f.OrderBy+"."+dir)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func formatValue(op repository.FilterOp, v any) string {
	if op != repository.OpIn {
		return fmt.Sprint(v)
	}
	var parts []string
	switch vals := v.(type) {
	case []string:
		parts = vals
	case []any:
		for _, x := range vals {
			parts = append(parts, fmt.Sprint(x))
		}
	default:
		parts = []string{fmt.Sprint(v)}
	}
	return "(" + strings.Join(parts, ",") + ")"
}
