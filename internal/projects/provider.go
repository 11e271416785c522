package projects

import (
	"context"
	"sync"

	"github.com/inkduel/inkduel-go/internal/model"
)

// Provider supplies per-project limits. Project configuration is owned by
// the surrounding product; the game core only reads it.
type Provider interface {
	GetProjectLimits(ctx context.Context, code model.ProjectCode) (model.ProjectLimits, error)
}

// DefaultLimits returns the limits applied when a project has no override
func DefaultLimits() model.ProjectLimits {
	return model.ProjectLimits{
		ReviewTokenLimit: 3,
		CooldownSeconds:  60,
	}
}

// StaticProvider is a Provider backed by an in-memory table of overrides
// plus a default. Unknown projects get the default rather than an error,
// matching lazy project creation elsewhere in the core.
type StaticProvider struct {
	mu       sync.RWMutex
	defaults model.ProjectLimits
	limits   map[model.ProjectCode]model.ProjectLimits
}

// NewStaticProvider creates a StaticProvider with the given defaults
func NewStaticProvider(defaults model.ProjectLimits) *StaticProvider {
	return &StaticProvider{
		defaults: defaults,
		limits:   make(map[model.ProjectCode]model.ProjectLimits),
	}
}

var _ Provider = (*StaticProvider)(nil)

// SetProjectLimits installs or replaces the limits for a project
func (p *StaticProvider) SetProjectLimits(code model.ProjectCode, limits model.ProjectLimits) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limits[code] = limits
}

// GetProjectLimits returns the project's limits, or the defaults
func (p *StaticProvider) GetProjectLimits(ctx context.Context, code model.ProjectCode) (model.ProjectLimits, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if limits, ok := p.limits[code]; ok {
		return limits, nil
	}
	return p.defaults, nil
}
