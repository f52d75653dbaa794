// Package cpm is a client for the Connecting Party Manager product and
// product team API.
package cpm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/nhsdigital/cpmflow/internal/logger"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultDomain        = "api.service.nhs.uk"
	DefaultPath          = "connecting-party-manager"
	DefaultAuthorization = "letmein"
	DefaultVersion       = "1"

	correlationPrefix = "CPMFLOW:"
)

// Options configures a Client.
type Options struct {
	// Domain and Path build https://{environment}.{Domain}/{Path}.
	Domain string
	Path   string
	// BaseURL replaces the templated host when set. The environment name is
	// then ignored for addressing.
	BaseURL string

	Authorization string
	Version       string

	HTTPClient *http.Client
	// NewID generates request ids. Defaults to uuid.NewString.
	NewID func() string
}

// Reply is a decoded response together with what was received on the wire.
type Reply[T any] struct {
	Value         T
	Status        int
	Raw           []byte
	CorrelationID string
}

// Client issues one request per call. It never retries.
type Client struct {
	opts Options
	http *http.Client
}

// New creates a client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Domain == "" {
		opts.Domain = DefaultDomain
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Authorization == "" {
		opts.Authorization = DefaultAuthorization
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{opts: opts, http: hc}
}

// BaseURL returns the API root for env, without a trailing slash.
func (c *Client) BaseURL(env Environment) string {
	if c.opts.BaseURL != "" {
		return strings.TrimRight(c.opts.BaseURL, "/")
	}
	return fmt.Sprintf("https://%s.%s/%s",
		strings.TrimSpace(env.Name),
		strings.Trim(c.opts.Domain, "/"),
		strings.Trim(c.opts.Path, "/"))
}

// CreateProductTeam issues POST /ProductTeam.
func (c *Client) CreateProductTeam(ctx context.Context, env Environment, in TeamInput) (Reply[ProductTeam], error) {
	return call[ProductTeam](ctx, c, env, http.MethodPost, "/ProductTeam", nil, in)
}

// CreateProduct issues POST /ProductTeam/{teamID}/Product.
func (c *Client) CreateProduct(ctx context.Context, env Environment, teamID string, in ProductInput) (Reply[Product], error) {
	path := "/ProductTeam/" + url.PathEscape(teamID) + "/Product"
	return call[Product](ctx, c, env, http.MethodPost, path, nil, in)
}

// DeleteProduct issues DELETE /ProductTeam/{teamID}/Product/{productID}.
func (c *Client) DeleteProduct(ctx context.Context, env Environment, teamID, productID string) (Reply[DeleteResult], error) {
	path := "/ProductTeam/" + url.PathEscape(teamID) + "/Product/" + url.PathEscape(productID)
	return call[DeleteResult](ctx, c, env, http.MethodDelete, path, nil, nil)
}

// DeleteProductTeam issues DELETE /ProductTeam/{teamID}.
func (c *Client) DeleteProductTeam(ctx context.Context, env Environment, teamID string) (Reply[DeleteResult], error) {
	return call[DeleteResult](ctx, c, env, http.MethodDelete, "/ProductTeam/"+url.PathEscape(teamID), nil, nil)
}

// ReadProductTeam issues GET /ProductTeam/{teamID}.
func (c *Client) ReadProductTeam(ctx context.Context, env Environment, teamID string) (Reply[ProductTeam], error) {
	return call[ProductTeam](ctx, c, env, http.MethodGet, "/ProductTeam/"+url.PathEscape(teamID), nil, nil)
}

// ReadProduct issues GET /Product/{productID}.
func (c *Client) ReadProduct(ctx context.Context, env Environment, productID string) (Reply[ProductRead], error) {
	return call[ProductRead](ctx, c, env, http.MethodGet, "/Product/"+url.PathEscape(productID), nil, nil)
}

// SearchProducts issues GET /Product with only the non-empty filters.
func (c *Client) SearchProducts(ctx context.Context, env Environment, q SearchQuery) (Reply[SearchResponse], error) {
	return call[SearchResponse](ctx, c, env, http.MethodGet, "/Product", q.Values(), nil)
}

// Values encodes the non-empty filters.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	if q.OrganisationCode != "" {
		v.Set("organisation_code", q.OrganisationCode)
	}
	if q.ProductTeamID != "" {
		v.Set("product_team_id", q.ProductTeamID)
	}
	return v
}

func call[T any](ctx context.Context, c *Client, env Environment, method, path string, query url.Values, body any) (Reply[T], error) {
	var reply Reply[T]

	target := c.BaseURL(env) + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return reply, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return reply, &TransportError{Method: method, URL: target, Err: err}
	}

	requestID := c.opts.NewID()
	reply.CorrelationID = correlationPrefix + requestID
	req.Header.Set("Authorization", c.opts.Authorization)
	req.Header.Set("apikey", env.APIKey)
	req.Header.Set("version", c.opts.Version)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", reply.CorrelationID)
	req.Header.Set("X-Request-ID", requestID)

	logger.Debug("cpm: %s %s correlation=%s", method, target, reply.CorrelationID)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Error("cpm: %s %s failed: %v", method, target, err)
		return reply, &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("cpm: reading %s %s response: %v", method, target, err)
		return reply, &TransportError{Method: method, URL: target, Err: err}
	}
	reply.Status = resp.StatusCode
	reply.Raw = raw

	logger.Debug("cpm: %s %s -> %d (%d bytes) correlation=%s", method, target, resp.StatusCode, len(raw), reply.CorrelationID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return reply, &HTTPError{Method: method, URL: target, Status: resp.StatusCode, Body: string(raw)}
	}

	if err := json.Unmarshal(raw, &reply.Value); err != nil {
		logger.Error("cpm: decoding %s %s response: %v", method, target, err)
		return reply, &DecodeError{Status: resp.StatusCode, Body: string(raw), Err: err}
	}

	if r, ok := any(reply.Value).(record); ok && r.recordID() == "" {
		logger.Warn("cpm: %s %s returned a record without an id", method, target)
	}

	return reply, nil
}
