package license

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// State is the outcome of the most recent license check
type State string

const (
	StateNoLicense        State = "no_license"
	StateChecking         State = "checking"
	StateValid            State = "valid"
	StateInvalidSignature State = "invalid_signature"
	StateExpired          State = "expired"
	StateHWMismatch       State = "hw_mismatch"
	StateClockRollback    State = "clock_rollback"
)

// CheckInterval is how long a successful check is trusted without re-reading the file
const CheckInterval = 60 * time.Second

// DeniedError is the single access-denied condition; Reason is shown to the user
type DeniedError struct {
	State  State
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// Status summarizes the license for the license page
type Status struct {
	Valid         bool    `json:"valid"`
	State         State   `json:"state"`
	Payload       *Claims `json:"payload,omitempty"`
	ExpiresInDays int     `json:"expires_in_days"`
	Error         string  `json:"error,omitempty"`
}

// Gate decides whether the application may be used. It owns the cached
// verification result; all access goes through mu.
type Gate struct {
	path     string
	verifier TokenVerifier
	store    StateStore
	now      func() time.Time

	mu        sync.Mutex
	state     State
	payload   *Claims
	checkedAt time.Time
}

// Option configures a Gate
type Option func(*Gate)

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

// NewGate creates a gate reading the token from path
func NewGate(path string, verifier TokenVerifier, store StateStore, opts ...Option) *Gate {
	g := &Gate{
		path:     path,
		verifier: verifier,
		store:    store,
		now:      time.Now,
		state:    StateNoLicense,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path is where the license token is stored
func (g *Gate) Path() string {
	return g.path
}

// State returns the outcome of the last check
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Check returns the license payload, using the cached result for up to
// CheckInterval unless force is set. Every failure is a *DeniedError.
func (g *Gate) Check(force bool) (*Claims, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !force && g.payload != nil {
		elapsed := now.Sub(g.checkedAt)
		if elapsed >= 0 && elapsed < CheckInterval {
			return g.payload, nil
		}
	}

	g.state = StateChecking
	claims, err := g.check(now)
	if err != nil {
		g.payload = nil
		var denied *DeniedError
		if errors.As(err, &denied) {
			g.state = denied.State
		}
		return nil, err
	}

	g.state = StateValid
	g.payload = claims
	g.checkedAt = now
	return claims, nil
}

func (g *Gate) check(now time.Time) (*Claims, error) {
	token, err := g.readToken()
	if err != nil {
		return nil, err
	}

	if err := g.store.Observe(now.Unix()); err != nil {
		if errors.Is(err, ErrClockRollback) {
			return nil, &DeniedError{State: StateClockRollback, Reason: "System clock rollback detected. License check failed."}
		}
		return nil, &DeniedError{State: StateClockRollback, Reason: fmt.Sprintf("License clock state unavailable: %v", err)}
	}

	return g.verifier.Verify(token, now)
}

func (g *Gate) readToken() (string, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &DeniedError{State: StateNoLicense, Reason: "No license installed"}
		}
		return "", &DeniedError{State: StateNoLicense, Reason: fmt.Sprintf("License file unreadable: %v", err)}
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", &DeniedError{State: StateNoLicense, Reason: "No license installed"}
	}
	return token, nil
}

// Status forces a check and reports the result
func (g *Gate) Status() Status {
	claims, err := g.Check(true)
	if err != nil {
		status := Status{Valid: false, State: StateNoLicense, Error: err.Error()}
		var denied *DeniedError
		if errors.As(err, &denied) {
			status.State = denied.State
		}
		return status
	}

	days := 0
	if claims.ExpiresAt != nil {
		days = int(claims.ExpiresAt.Time.Sub(g.now()).Hours() / 24)
		if days < 0 {
			days = 0
		}
	}
	return Status{
		Valid:         true,
		State:         StateValid,
		Payload:       claims,
		ExpiresInDays: days,
	}
}

// Install verifies token and only then writes it to the license path
func (g *Gate) Install(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	claims, err := g.verifier.Verify(token, g.now())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create license directory: %w", err)
	}
	if err := os.WriteFile(g.path, []byte(token), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write license file: %w", err)
	}

	g.Invalidate()
	slog.Info("License installed", "path", g.path, "plan", claims.Plan, "subject", claims.Subject)
	return claims, nil
}

// Invalidate drops the cached result so the next Check re-reads the file
func (g *Gate) Invalidate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payload = nil
	g.checkedAt = time.Time{}
}
