package phase

import (
	"strings"

	"github.com/kilianp07/sprintplan/core/model"
)

// Classifier derives the role of a backlog label that carries no explicit
// hint. The boolean result is false when the label must be dropped from the
// backlog before allocation.
type Classifier interface {
	Classify(label string) (model.Role, bool)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(label string) (model.Role, bool)

// Classify calls f(label).
func (f ClassifierFunc) Classify(label string) (model.Role, bool) { return f(label) }

// KeywordClassifier matches upper-cased labels against keyword lists.
type KeywordClassifier struct {
	QA       []string
	Excluded []string
	Fallback model.Role
}

// NewKeywordClassifier returns the default effort-sheet classifier: QA
// keywords map to QA, analysis and SRS rows are excluded and everything else
// is development work.
func NewKeywordClassifier() KeywordClassifier {
	return KeywordClassifier{
		QA:       []string{"QA", "TESTING", "TC", "BUG", "UAT"},
		Excluded: []string{"ANALYSIS", "SRS"},
		Fallback: model.RoleDev,
	}
}

// Classify implements Classifier.
func (c KeywordClassifier) Classify(label string) (model.Role, bool) {
	up := strings.ToUpper(label)
	for _, kw := range c.Excluded {
		if strings.Contains(up, strings.ToUpper(kw)) {
			return c.Fallback, false
		}
	}
	for _, kw := range c.QA {
		if strings.Contains(up, strings.ToUpper(kw)) {
			return model.RoleQA, true
		}
	}
	return c.Fallback, true
}
