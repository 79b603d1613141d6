package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dndstore/panel-store/internal/domain"
	"github.com/dndstore/panel-store/internal/logger"
	"github.com/dndstore/panel-store/internal/panel"
)

var (
	ErrInvalidUsername     = errors.New("invalid username")
	ErrUnknownPlan         = errors.New("unknown plan")
	ErrMissingStartup      = errors.New("egg startup command is empty")
	ErrEmptyServerResponse = errors.New("create server returned empty response")
)

// PanelAPI is the slice of the panel client the orchestrator needs.
type PanelAPI interface {
	FindServerByExternalID(ctx context.Context, externalID string) (*domain.PanelServer, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.PanelUser, error)
	CreateUser(ctx context.Context, u panel.NewUser) (*domain.PanelUser, error)
	GetEggStartup(ctx context.Context) (string, error)
	CreateServer(ctx context.Context, spec panel.ServerSpec) (*domain.PanelServer, error)
	PanelURL() string
}

// FulfillmentService provisions a panel user and server for a paid order.
// It keeps no state of its own: idempotency is re-derived on every call by
// looking the order up on the panel via external_id.
type FulfillmentService struct {
	panel          PanelAPI
	requireStartup bool
}

func NewFulfillmentService(p PanelAPI, requireStartup bool) *FulfillmentService {
	return &FulfillmentService{
		panel:          p,
		requireStartup: requireStartup,
	}
}

var usernameRe = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// SanitizeUsername lowercases, strips all whitespace and validates the
// requested panel username. Returns "" when the result does not conform.
func SanitizeUsername(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.Join(strings.Fields(u), "")
	if !usernameRe.MatchString(u) {
		return ""
	}
	return u
}

// Fulfill runs the provisioning chain for one paid order. Calling it again
// with the same orderID is safe: the second call short-circuits on the
// external_id lookup and returns the already-created server.
func (s *FulfillmentService) Fulfill(ctx context.Context, orderID, planKey, rawName string) (*domain.Fulfillment, error) {
	username := SanitizeUsername(rawName)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	spec, ok := domain.PlanSpecFor(planKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlan, planKey)
	}

	existing, err := s.panel.FindServerByExternalID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Info("fulfill: server already exists", "order_id", orderID, "server_id", existing.ID)
		return &domain.Fulfillment{
			Type:     "panel",
			Mode:     domain.ModeExisting,
			Server:   *existing,
			Specs:    spec,
			PanelURL: s.panel.PanelURL(),
			Note:     "Server sudah pernah dibuat untuk order ini (idempotent).",
		}, nil
	}

	user, err := s.panel.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	password := ""
	if user == nil {
		password = randomPassword(username)
		created, createErr := s.panel.CreateUser(ctx, panel.NewUser{
			Username:  username,
			Email:     username + "@gmail.com",
			FirstName: capitalize(username) + " Server",
			LastName:  "Server",
			Password:  password,
		})
		if createErr != nil {
			// Lost a create race: someone registered the name between our
			// lookup and the create. One re-lookup, then give up with the
			// original error.
			user, err = s.panel.FindUserByUsername(ctx, username)
			if err != nil || user == nil {
				return nil, createErr
			}
			logger.Warn("fulfill: user create conflict, reusing existing",
				"username", username, "err", createErr)
			password = ""
		} else {
			user = created
		}
	}
	if user == nil {
		return nil, fmt.Errorf("panel returned no user for %q", username)
	}

	startup, err := s.panel.GetEggStartup(ctx)
	if err != nil {
		return nil, err
	}
	if s.requireStartup && strings.TrimSpace(startup) == "" {
		return nil, ErrMissingStartup
	}

	server, err := s.panel.CreateServer(ctx, panel.ServerSpec{
		ExternalID:  orderID,
		Name:        capitalize(username) + " " + spec.Label + " Server",
		Description: time.Now().UTC().Format(time.RFC3339),
		UserID:      user.ID,
		Startup:     startup,
		Memory:      spec.Memory,
		Disk:        spec.Disk,
		CPU:         spec.CPU,
	})
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, ErrEmptyServerResponse
	}

	mode := domain.ModeExistingUser
	note := "Akun panel sudah ada. Server dibuat, password tidak ditampilkan demi keamanan."
	if password != "" {
		mode = domain.ModeCreatedUser
		note = "Akun panel baru dibuat dan server langsung diprovisioning."
	}
	logger.Info("fulfill: server created",
		"order_id", orderID, "server_id", server.ID, "mode", mode)

	return &domain.Fulfillment{
		Type:     "panel",
		Mode:     mode,
		User:     user,
		Password: password,
		Server:   *server,
		Specs:    spec,
		PanelURL: s.panel.PanelURL(),
		Note:     note,
	}, nil
}

// randomPassword is username + 4 lowercase hex chars from a crypto-strong
// source. It is surfaced exactly once, at user creation, and never stored.
func randomPassword(prefix string) string {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return prefix + hex.EncodeToString(b[:])
}

func capitalize(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + t[1:]
}
