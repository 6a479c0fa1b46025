// Package guard decides, for every navigation, whether the browser profile
// may see the target route.
package guard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/uleam/vehicle-gate/internal/auth"
)

// ErrRedirectLoop is returned by Navigate when redirects do not settle.
var ErrRedirectLoop = errors.New("guard: too many redirects")

const maxHops = 8

// Session is the slice of the auth service the guard consults.
type Session interface {
	IsAuthenticated() bool
	CheckSession(ctx context.Context) (bool, error)
	HasPermission(token string) bool
	ShowNotification(message string, severity auth.Severity, d time.Duration)
}

// Outcome classifies a decision.
type Outcome int

// Decision outcomes.
const (
	Allow Outcome = iota
	RedirectLogin
	RedirectHome
	Deny
	Forward
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "login"
	case RedirectHome:
		return "home"
	case Deny:
		return "deny"
	case Forward:
		return "forward"
	}
	return "unknown"
}

// Decision is the result of guarding one navigation.
type Decision struct {
	Outcome    Outcome
	Location   string
	Permission string
}

// Allowed reports whether the navigation proceeds unchanged.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// DecisionRecorder receives every decision, typically for metrics.
type DecisionRecorder interface {
	RecordDecision(outcome string)
}

// Config tunes a Guard.
type Config struct {
	LoginPath string
	HomePath  string
	// ShowPermission embeds the denied token in the denial notification.
	ShowPermission bool
	Logger         *slog.Logger
	Recorder       DecisionRecorder
}

// Guard runs the navigation decision procedure.
type Guard struct {
	table  *Table
	cfg    Config
	logger *slog.Logger
}

// New constructs a Guard over table.
func New(table *Table, cfg Config) *Guard {
	if cfg.LoginPath == "" {
		cfg.LoginPath = PathLogin
	}
	if cfg.HomePath == "" {
		cfg.HomePath = PathDashboard
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guard{table: table, cfg: cfg, logger: logger}
}

// Table returns the route table the guard resolves against.
func (g *Guard) Table() *Table {
	return g.table
}

// Decide resolves path and guards the navigation to it. Redirect routes and
// unknown paths forward to their target without evaluating the session; the
// target is guarded on its own navigation.
func (g *Guard) Decide(ctx context.Context, sess Session, path string) (Route, Decision) {
	rt := g.table.Resolve(path)
	if rt.IsRedirect() {
		d := Decision{Outcome: Forward, Location: rt.Redirect}
		g.record(d)
		return rt, d
	}
	d := g.Check(ctx, sess, rt)
	g.record(d)
	return rt, d
}

// Check evaluates the guard steps for a declared route. The first matching
// step wins.
func (g *Guard) Check(ctx context.Context, sess Session, to Route) Decision {
	authenticated := sess != nil && sess.IsAuthenticated()
	if sess != nil && !authenticated {
		restored, err := sess.CheckSession(ctx)
		if err != nil {
			g.logger.Warn("guard session restore", slog.String("path", to.Path), slog.Any("error", err))
		}
		authenticated = restored && err == nil
	}

	if to.Meta.RequiresAuth && !authenticated {
		return Decision{Outcome: RedirectLogin, Location: g.cfg.LoginPath}
	}

	if to.Path == g.cfg.LoginPath && authenticated {
		return Decision{Outcome: RedirectHome, Location: g.cfg.HomePath}
	}

	if perm := to.Meta.Permission; perm != "" && authenticated && !sess.HasPermission(perm) {
		sess.ShowNotification(g.denialMessage(perm), auth.SeverityError, 0)
		g.logger.Info("guard denied navigation", slog.String("path", to.Path), slog.String("permission", perm))
		return Decision{Outcome: Deny, Location: g.cfg.HomePath, Permission: perm}
	}

	return Decision{Outcome: Allow}
}

// Navigation is the result of following a navigation through every redirect.
type Navigation struct {
	Route Route
	Trail []string
	Last  Decision
}

// Navigate follows decisions from path until one is allowed, the way a
// client router settles a navigation.
func (g *Guard) Navigate(ctx context.Context, sess Session, path string) (Navigation, error) {
	nav := Navigation{}
	current := path
	for hop := 0; hop < maxHops; hop++ {
		rt, d := g.Decide(ctx, sess, current)
		nav.Trail = append(nav.Trail, rt.Path)
		nav.Last = d
		if d.Allowed() {
			nav.Route = rt
			return nav, nil
		}
		current = d.Location
	}
	return nav, fmt.Errorf("%w: %v", ErrRedirectLoop, nav.Trail)
}

func (g *Guard) denialMessage(perm string) string {
	if g.cfg.ShowPermission {
		return "Acceso denegado. No tiene permiso para: " + perm
	}
	return "Acceso denegado."
}

func (g *Guard) record(d Decision) {
	if g.cfg.Recorder != nil {
		g.cfg.Recorder.RecordDecision(d.Outcome.String())
	}
}
