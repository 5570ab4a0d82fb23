package feature

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/biportal/pkg/logger"
)

// Decision is the tri-state outcome of a feature check.
type Decision int

const (
	// Undetermined means plan data is still loading. Callers render neither
	// the feature nor its fallback.
	Undetermined Decision = iota
	Granted
	Denied
)

func (d Decision) String() string {
	switch d {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "undetermined"
}

// FallbackKind describes what a denied feature renders instead.
type FallbackKind string

const (
	FallbackUpgrade FallbackKind = "upgrade"
	FallbackCustom  FallbackKind = "custom"
)

// Fallback is the presentation shown in place of a denied feature.
// It never carries a destructive action.
type Fallback struct {
	Kind    FallbackKind `json:"kind"`
	Title   string       `json:"title,omitempty"`
	Message string       `json:"message,omitempty"`
	URL     string       `json:"url,omitempty"`
}

// DefaultUpgradeURL is where the default fallback points.
const DefaultUpgradeURL = "/plans"

// Gate answers feature checks for one plan. A Gate is safe for concurrent use.
type Gate struct {
	catalog   *Catalog
	planID    string
	pending   bool
	fallbacks map[Key]Fallback
	upgrade   Fallback
	logger    *slog.Logger
	warnOnce  *sync.Once
}

type GateOption func(*Gate)

// WithFallback sets a custom fallback for key.
func WithFallback(key Key, fb Fallback) GateOption {
	return func(g *Gate) {
		if fb.Kind == "" {
			fb.Kind = FallbackCustom
		}
		g.fallbacks[key] = fb
	}
}

// WithUpgradeURL points the default fallback at url.
func WithUpgradeURL(url string) GateOption {
	return func(g *Gate) {
		if url != "" {
			g.upgrade.URL = url
		}
	}
}

// WithoutUpgradeURL drops the link of the default fallback, for callers
// that cannot act on an upgrade.
func WithoutUpgradeURL() GateOption {
	return func(g *Gate) {
		g.upgrade.URL = ""
	}
}

// WithUpgradeText sets the title and message of the default fallback.
func WithUpgradeText(title, message string) GateOption {
	return func(g *Gate) {
		g.upgrade.Title = title
		g.upgrade.Message = message
	}
}

func WithLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGate creates a gate for the resolved planID.
func NewGate(catalog *Catalog, planID string, opts ...GateOption) *Gate {
	g := &Gate{
		catalog:   catalog,
		planID:    planID,
		fallbacks: make(map[Key]Fallback),
		upgrade:   Fallback{Kind: FallbackUpgrade, URL: DefaultUpgradeURL},
		logger:    logger.Discard(),
		warnOnce:  &sync.Once{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pending creates a gate for a plan that is not known yet.
// Every check is Undetermined.
func Pending(opts ...GateOption) *Gate {
	g := NewGate(nil, "", opts...)
	g.pending = true
	return g
}

// Check evaluates key. Unknown plans deny every key.
func (g *Gate) Check(key Key) Decision {
	if g == nil || g.pending {
		return Undetermined
	}
	ok, err := g.catalog.Has(g.planID, key)
	if err != nil {
		g.warnOnce.Do(func() {
			g.logger.Warn("plan has no catalog entry", logger.Plan(g.planID), logger.Error(err))
		})
		return Denied
	}
	if ok {
		return Granted
	}
	return Denied
}

// Has reports whether key is granted. Undetermined counts as not granted.
func (g *Gate) Has(key Key) bool {
	return g.Check(key) == Granted
}

// Fallback returns the presentation for a denied key: the custom fallback
// registered for it, or the default upgrade prompt.
func (g *Gate) Fallback(key Key) Fallback {
	if g == nil {
		return Fallback{Kind: FallbackUpgrade, URL: DefaultUpgradeURL}
	}
	if fb, ok := g.fallbacks[key]; ok {
		return fb
	}
	return g.upgrade
}

// PlanID returns the plan the gate evaluates.
func (g *Gate) PlanID() string {
	if g == nil {
		return ""
	}
	return g.planID
}
