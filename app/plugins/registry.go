package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/sprintplan/config"
	"github.com/kilianp07/sprintplan/core/phase"
	"github.com/kilianp07/sprintplan/core/planner/logging"
)

// LogStoreFactory builds a plan log store from the logging configuration.
// A nil store disables run logging.
type LogStoreFactory func(cfg config.LoggingConfig) (logging.Store, error)

// ClassifierFactory builds a backlog classifier from raw config.
type ClassifierFactory func(conf map[string]any) (phase.Classifier, error)

var (
	LogStores   = map[string]LogStoreFactory{}
	Classifiers = map[string]ClassifierFactory{}
)

func RegisterLogStore(name string, f LogStoreFactory)     { LogStores[name] = f }
func RegisterClassifier(name string, f ClassifierFactory) { Classifiers[name] = f }

// NewLogStore creates the store selected by cfg.
func NewLogStore(cfg config.LoggingConfig) (logging.Store, error) {
	name := cfg.Store()
	f, ok := LogStores[name]
	if !ok {
		return nil, fmt.Errorf("unknown log store %q (known: %v)", name, keys(LogStores))
	}
	return f(cfg)
}

// NewClassifier creates the classifier named by typ. An empty type selects
// the keyword classifier.
func NewClassifier(typ string, conf map[string]any) (phase.Classifier, error) {
	if typ == "" {
		typ = "keyword"
	}
	f, ok := Classifiers[typ]
	if !ok {
		return nil, fmt.Errorf("unknown classifier %q (known: %v)", typ, keys(Classifiers))
	}
	return f(conf)
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
