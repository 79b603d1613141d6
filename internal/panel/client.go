package panel

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
	"time"

	"github.com/dndstore/panel-store/internal/domain"
)

var (
	ErrNotFound = errors.New("panel: not found")
	ErrConflict = errors.New("panel: already exists")
)

// APIError is a non-2xx reply from the panel, body kept verbatim so the
// operator can see what the remote actually said.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("panel: status %d: %s", e.Status, e.Body)
}

const (
	readTimeout  = 20 * time.Second
	writeTimeout = 25 * time.Second
)

type Config struct {
	Domain      string
	APIKey      string
	DockerImage string
	EggID       int
	NestID      int
	LocationID  int
}

// Client wraps the Pterodactyl application API. No retries: a failed call
// surfaces immediately to the orchestrator.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg: Config{
			Domain:      strings.TrimRight(cfg.Domain, "/"),
			APIKey:      cfg.APIKey,
			DockerImage: cfg.DockerImage,
			EggID:       cfg.EggID,
			NestID:      cfg.NestID,
			LocationID:  cfg.LocationID,
		},
		http: &http.Client{},
	}
}

// PanelURL is the public base shown to buyers in fulfillment results.
func (c *Client) PanelURL() string {
	return c.cfg.Domain
}

// FindUserByUsername returns nil without error when no user matches.
func (c *Client) FindUserByUsername(ctx context.Context, username string) (*domain.PanelUser, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	q.Set("filter[username]", username)
	return c.firstUser(ctx, q)
}

// FindUserByExternalID returns nil without error when no user matches.
func (c *Client) FindUserByExternalID(ctx context.Context, externalID string) (*domain.PanelUser, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	q.Set("filter[external_id]", externalID)
	return c.firstUser(ctx, q)
}

func (c *Client) firstUser(ctx context.Context, q url.Values) (*domain.PanelUser, error) {
	raw, err := c.do(ctx, http.MethodGet, "/api/application/users?"+q.Encode(), nil, readTimeout)
	if err != nil {
		return nil, err
	}
	var list listEnvelope
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("panel: decode user list: %w", err)
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	var attrs userAttributes
	if err := json.Unmarshal(list.Data[0].Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("panel: decode user: %w", err)
	}
	return userFromAttributes(attrs), nil
}

// CreateUser provisions a panel account. A remote "already exists" reply
// maps to ErrConflict so the orchestrator can recover via re-lookup.
func (c *Client) CreateUser(ctx context.Context, u NewUser) (*domain.PanelUser, error) {
	if u.Language == "" {
		u.Language = "en"
	}
	body, err := json.Marshal(u)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/application/users", body, writeTimeout)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isConflict(apiErr) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, u.Username)
		}
		return nil, err
	}
	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("panel: decode created user: %w", err)
	}
	var attrs userAttributes
	if len(env.Attributes) > 0 {
		if err := json.Unmarshal(env.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("panel: decode created user: %w", err)
		}
	}
	if attrs.ID == 0 {
		return nil, nil
	}
	return userFromAttributes(attrs), nil
}

// FindServerByExternalID is the idempotency lookup. The direct external-id
// endpoint is tried first; a 404 there means genuinely absent. Any other
// failure falls back to a filtered list query, and if the fallback also
// fails the original error is the one propagated.
func (c *Client) FindServerByExternalID(ctx context.Context, externalID string) (*domain.PanelServer, error) {
	raw, err := c.do(ctx, http.MethodGet,
		"/api/application/servers/external/"+url.PathEscape(externalID), nil, readTimeout)
	if err == nil {
		return serverFromObject(raw)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}

	srv, ferr := c.listServerByExternalID(ctx, externalID)
	if ferr != nil {
		return nil, err
	}
	return srv, nil
}

func (c *Client) listServerByExternalID(ctx context.Context, externalID string) (*domain.PanelServer, error) {
	q := url.Values{}
	q.Set("per_page", "1")
	q.Set("filter[external_id]", externalID)
	raw, err := c.do(ctx, http.MethodGet, "/api/application/servers?"+q.Encode(), nil, readTimeout)
	if err != nil {
		return nil, err
	}
	var list listEnvelope
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("panel: decode server list: %w", err)
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	var attrs serverAttributes
	if err := json.Unmarshal(list.Data[0].Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("panel: decode server: %w", err)
	}
	return serverFromAttributes(attrs), nil
}

// GetEggStartup fetches the startup command template for the configured egg.
func (c *Client) GetEggStartup(ctx context.Context) (string, error) {
	path := "/api/application/nests/" + strconv.Itoa(c.cfg.NestID) +
		"/eggs/" + strconv.Itoa(c.cfg.EggID)
	raw, err := c.do(ctx, http.MethodGet, path, nil, readTimeout)
	if err != nil {
		return "", err
	}
	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("panel: decode egg: %w", err)
	}
	var attrs eggAttributes
	if len(env.Attributes) > 0 {
		if err := json.Unmarshal(env.Attributes, &attrs); err != nil {
			return "", fmt.Errorf("panel: decode egg: %w", err)
		}
	}
	return attrs.Startup, nil
}

// CreateServer submits the full creation payload. Returns nil without error
// when the panel replies 2xx with an empty object; the orchestrator treats
// that as a server-side fault.
func (c *Client) CreateServer(ctx context.Context, spec ServerSpec) (*domain.PanelServer, error) {
	payload := createServerRequest{
		ExternalID:  spec.ExternalID,
		Name:        spec.Name,
		Description: spec.Description,
		User:        spec.UserID,
		Egg:         c.cfg.EggID,
		DockerImage: c.cfg.DockerImage,
		Startup:     spec.Startup,
		Environment: map[string]string{
			"INST":        "npm",
			"USER_UPLOAD": "0",
			"AUTO_UPDATE": "0",
			"CMD_RUN":     "npm start",
		},
		Limits: serverLimits{
			Memory: spec.Memory,
			Swap:   0,
			Disk:   spec.Disk,
			IO:     500,
			CPU:    spec.CPU,
		},
		FeatureLimits: serverFeatureLimits{Databases: 5, Backups: 5, Allocations: 5},
		Deploy: serverDeploy{
			Locations:   []int{c.cfg.LocationID},
			DedicatedIP: false,
			PortRange:   []string{},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	raw, err := c.do(ctx, http.MethodPost, "/api/application/servers", body, writeTimeout)
	if err != nil {
		return nil, err
	}
	srv, err := serverFromObject(raw)
	if err != nil {
		return nil, err
	}
	return srv, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Domain+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "Application/vnd.pterodactyl.v1+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

// The panel reports duplicate identities as 422 validation errors with a
// "unique" rule in the detail.
func isConflict(e *APIError) bool {
	if e.Status == http.StatusConflict {
		return true
	}
	if e.Status != http.StatusUnprocessableEntity {
		return false
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "unique") || strings.Contains(body, "already")
}

func serverFromObject(raw []byte) (*domain.PanelServer, error) {
	var env objectEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("panel: decode server: %w", err)
	}
	if len(env.Attributes) == 0 {
		return nil, nil
	}
	var attrs serverAttributes
	if err := json.Unmarshal(env.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("panel: decode server: %w", err)
	}
	if attrs.ID == 0 {
		return nil, nil
	}
	return serverFromAttributes(attrs), nil
}

func userFromAttributes(a userAttributes) *domain.PanelUser {
	return &domain.PanelUser{ID: a.ID, Username: a.Username, Email: a.Email}
}

func serverFromAttributes(a serverAttributes) *domain.PanelServer {
	return &domain.PanelServer{
		ID:          a.ID,
		Identifier:  a.Identifier,
		Name:        a.Name,
		Description: a.Description,
	}
}
