package planner

import (
	"fmt"

	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/scoring"
)

// MaxIterationsCeiling bounds the optimizer search whatever the configuration.
const MaxIterationsCeiling = 20

// Config tunes the planning pipeline and the sprint count optimizer.
type Config struct {
	// MinSprints is the first sprint count tried by the optimizer.
	MinSprints int `json:"min_sprints"`
	// MaxIterations is the number of sprint counts the optimizer evaluates.
	MaxIterations int `json:"max_iterations"`
	// TargetScore is the score a count must reach, with no overflow, to be
	// recommended immediately.
	TargetScore float64 `json:"target_score"`
	// CriticalThreshold is the headroom fraction under which entries are critical.
	CriticalThreshold float64 `json:"critical_threshold"`
	// Concurrency bounds the optimizer runs evaluated in parallel.
	Concurrency int `json:"concurrency"`
	// RequiredRoles must each have at least one resource in the roster.
	RequiredRoles []string        `json:"required_roles"`
	Weights       scoring.Weights `json:"weights"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.MinSprints == 0 {
		c.MinSprints = 2
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = MaxIterationsCeiling
	}
	if c.TargetScore == 0 {
		c.TargetScore = 0.9
	}
	if c.CriticalThreshold == 0 {
		c.CriticalThreshold = 0.1
	}
	if c.Concurrency == 0 {
		c.Concurrency = 4
	}
	if c.RequiredRoles == nil {
		c.RequiredRoles = []string{model.RoleDev.String()}
	}
	if c.Weights == (scoring.Weights{}) {
		c.Weights = scoring.DefaultWeights()
	}
}

// Validate checks the configured bounds.
func (c Config) Validate() error {
	switch {
	case c.MinSprints < 1:
		return fmt.Errorf("min_sprints must be at least 1")
	case c.MaxIterations < 1 || c.MaxIterations > MaxIterationsCeiling:
		return fmt.Errorf("max_iterations must be within [1, %d]", MaxIterationsCeiling)
	case c.TargetScore <= 0 || c.TargetScore > 1:
		return fmt.Errorf("target_score must be within (0, 1]")
	case c.CriticalThreshold <= 0 || c.CriticalThreshold >= 1:
		return fmt.Errorf("critical_threshold must be within (0, 1)")
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be positive")
	case c.Weights.Completion < 0 || c.Weights.Cost < 0 || c.Weights.Health < 0:
		return fmt.Errorf("weights must not be negative")
	}
	_, err := c.requiredRoles()
	return err
}

func (c Config) requiredRoles() ([]model.Role, error) {
	roles := make([]model.Role, 0, len(c.RequiredRoles))
	for _, name := range c.RequiredRoles {
		r, ok := model.ParseRole(name)
		if !ok || r == model.RoleBacklog {
			return nil, fmt.Errorf("unknown required role %q", name)
		}
		roles = append(roles, r)
	}
	return roles, nil
}
