package plugins

import (
	"fmt"

	"github.com/kilianp07/sprintplan/config"
	"github.com/kilianp07/sprintplan/core/factory"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/phase"
	"github.com/kilianp07/sprintplan/core/planner/logging"
)

func init() {
	RegisterLogStore("jsonl", func(cfg config.LoggingConfig) (logging.Store, error) {
		return logging.NewJSONLStore(cfg.Path)
	})
	RegisterLogStore("rotating", func(cfg config.LoggingConfig) (logging.Store, error) {
		return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	})
	RegisterLogStore("sqlite", func(cfg config.LoggingConfig) (logging.Store, error) {
		return logging.NewSQLiteStore(cfg.Path)
	})
	RegisterLogStore("none", func(config.LoggingConfig) (logging.Store, error) {
		return nil, nil
	})

	RegisterClassifier("keyword", func(conf map[string]any) (phase.Classifier, error) {
		var c struct {
			QA       []string `json:"qa"`
			Excluded []string `json:"excluded"`
			Fallback string   `json:"fallback"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		kc := phase.NewKeywordClassifier()
		if c.QA != nil {
			kc.QA = c.QA
		}
		if c.Excluded != nil {
			kc.Excluded = c.Excluded
		}
		if c.Fallback != "" {
			role, ok := model.ParseRole(c.Fallback)
			if !ok || role == model.RoleBacklog {
				return nil, fmt.Errorf("keyword classifier: unknown fallback role %q", c.Fallback)
			}
			kc.Fallback = role
		}
		return kc, nil
	})
	// "fixed" sends every unhinted row to a single role.
	RegisterClassifier("fixed", func(conf map[string]any) (phase.Classifier, error) {
		var c struct {
			Role string `json:"role"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		role, ok := model.ParseRole(c.Role)
		if !ok || role == model.RoleBacklog {
			return nil, fmt.Errorf("fixed classifier: unknown role %q", c.Role)
		}
		return phase.ClassifierFunc(func(string) (model.Role, bool) { return role, true }), nil
	})
}
