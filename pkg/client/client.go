// Package client is a Go client for the BlocNiti HTTP API. Reads of the
// repair-issue and harassment-report lists go through a read-through cache
// keyed by session subject and resource path; every mutation invalidates the
// affected path.
package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blocniti/blocniti/internal/cache"
	"github.com/blocniti/blocniti/internal/report"
	"github.com/blocniti/blocniti/internal/schema"
	"github.com/blocniti/blocniti/pkg/models"
)

const (
	pathUser              = "/api/auth/user"
	pathProfile           = "/api/user/profile"
	pathRepairIssues      = "/api/repair-issues"
	pathReport            = "/api/repair-issues/report.pdf"
	pathHarassmentReports = "/api/harassment-reports"
)

// ErrNotFound is returned for 404 responses.
var ErrNotFound = errors.New("client: not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Details    []schema.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	scope   string
	cache   *cache.ReadThrough
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets the session token sent as a Bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithCache replaces the default in-memory response cache.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) { c.cache = cache.NewReadThrough(store, ttl, c.logger) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.cache == nil {
		c.cache = cache.NewReadThrough(cache.NewMemory(), time.Minute, c.logger)
	}
	c.scope = cacheScope(c.token)
	return c
}

// cacheScope names whose responses a token sees, so clients with different
// sessions never share entries in a common cache. The signature is not
// checked here; the server does that on every request.
func cacheScope(token string) string {
	if token == "" {
		return "anonymous"
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.Subject != "" {
		return claims.Subject
	}
	sum := sha256.Sum256([]byte(token))
	return "token-" + hex.EncodeToString(sum[:8])
}

func (c *Client) key(path string) string {
	return cache.Key(c.scope, path)
}

// Invalidate drops cached responses for the given paths.
func (c *Client) Invalidate(ctx context.Context, paths ...string) {
	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = c.key(p)
	}
	_ = c.cache.Invalidate(ctx, keys...)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do performs the request and decodes a JSON response into out when out is
// not nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &APIError{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Message string              `json:"message"`
		Details []schema.FieldError `json:"details"`
	}
	if json.Unmarshal(b, &body) == nil {
		apiErr.Message, apiErr.Details = body.Message, body.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(b))
	}
	return apiErr
}

func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, pathUser, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p *models.ProfileUpdate) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodPut, pathProfile, p, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListRepairIssues(ctx context.Context) ([]models.RepairIssue, error) {
	return cache.Fetch(ctx, c.cache, c.key(pathRepairIssues), func(ctx context.Context) ([]models.RepairIssue, error) {
		var out []models.RepairIssue
		err := c.do(ctx, http.MethodGet, pathRepairIssues, nil, &out)
		return out, err
	})
}

func (c *Client) GetRepairIssue(ctx context.Context, id int64) (*models.RepairIssue, error) {
	var ri models.RepairIssue
	if err := c.do(ctx, http.MethodGet, pathRepairIssues+"/"+strconv.FormatInt(id, 10), nil, &ri); err != nil {
		return nil, err
	}
	return &ri, nil
}

// CreateRepairIssue submits an issue. The server classifies it before
// answering, so the call can take as long as the classifier timeout.
func (c *Client) CreateRepairIssue(ctx context.Context, in *models.NewRepairIssue) (*models.RepairIssue, error) {
	var ri models.RepairIssue
	err := c.do(ctx, http.MethodPost, pathRepairIssues, in, &ri)
	c.Invalidate(ctx, pathRepairIssues)
	if err != nil {
		return nil, err
	}
	return &ri, nil
}

func (c *Client) DeleteRepairIssue(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, pathRepairIssues+"/"+strconv.FormatInt(id, 10), nil, nil)
	c.Invalidate(ctx, pathRepairIssues)
	return err
}

func (c *Client) ListHarassmentReports(ctx context.Context) ([]models.HarassmentReport, error) {
	return cache.Fetch(ctx, c.cache, c.key(pathHarassmentReports), func(ctx context.Context) ([]models.HarassmentReport, error) {
		var out []models.HarassmentReport
		err := c.do(ctx, http.MethodGet, pathHarassmentReports, nil, &out)
		return out, err
	})
}

func (c *Client) CreateHarassmentReport(ctx context.Context, in *models.NewHarassmentReport) (*models.HarassmentReport, error) {
	var hr models.HarassmentReport
	err := c.do(ctx, http.MethodPost, pathHarassmentReports, in, &hr)
	c.Invalidate(ctx, pathHarassmentReports)
	if err != nil {
		return nil, err
	}
	return &hr, nil
}

// DownloadRepairReport streams the server-rendered PDF into w.
func (c *Client) DownloadRepairReport(ctx context.Context, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, pathReport, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", pathReport, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// ExportRepairReport renders the PDF locally from the (possibly cached)
// repair-issue list. It returns report.ErrNoIssues when there is nothing to
// export.
func (c *Client) ExportRepairReport(ctx context.Context, w io.Writer) error {
	issues, err := c.ListRepairIssues(ctx)
	if err != nil {
		return err
	}
	return report.Render(w, issues, time.Now())
}
