package plugins

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/sprintplan/config"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/planner/logging"
)

func TestNewLogStore(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		cfg  config.LoggingConfig
		want any
	}{
		{config.LoggingConfig{Backend: "jsonl", Path: filepath.Join(dir, "a.log")}, &logging.JSONLStore{}},
		{config.LoggingConfig{Backend: "jsonl", Path: filepath.Join(dir, "b.log"), MaxSizeMB: 1}, &logging.RotatingJSONLStore{}},
		{config.LoggingConfig{Backend: "sqlite", Path: filepath.Join(dir, "c.db")}, &logging.SQLiteStore{}},
	}
	for _, c := range cases {
		st, err := NewLogStore(c.cfg)
		require.NoError(t, err, c.cfg.Store())
		assert.IsType(t, c.want, st)
		require.NoError(t, st.Append(context.Background(), logging.Record{PlanID: "p1", Kind: logging.KindPlan}))
		recs, err := st.Query(context.Background(), logging.Query{})
		require.NoError(t, err)
		assert.Len(t, recs, 1)
		require.NoError(t, st.Close())
	}

	st, err := NewLogStore(config.LoggingConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, st)

	_, err = NewLogStore(config.LoggingConfig{Backend: "redis"})
	assert.ErrorContains(t, err, "unknown log store")
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier("", nil)
	require.NoError(t, err)
	role, ok := c.Classify("UAT round")
	assert.True(t, ok)
	assert.Equal(t, model.RoleQA, role)

	c, err = NewClassifier("keyword", map[string]any{"qa": []any{"VERIFY"}, "excluded": []any{"SPIKE"}, "fallback": "ops"})
	require.NoError(t, err)
	role, ok = c.Classify("verify login")
	assert.True(t, ok)
	assert.Equal(t, model.RoleQA, role)
	role, ok = c.Classify("Analysis notes")
	assert.True(t, ok)
	assert.Equal(t, model.RoleOps, role)
	_, ok = c.Classify("spike: caching")
	assert.False(t, ok)

	c, err = NewClassifier("fixed", map[string]any{"role": "Lead"})
	require.NoError(t, err)
	role, _ = c.Classify("anything")
	assert.Equal(t, model.RoleLead, role)

	_, err = NewClassifier("fixed", map[string]any{"role": "Pilot"})
	assert.Error(t, err)
	_, err = NewClassifier("keyword", map[string]any{"fallback": "backlog"})
	assert.Error(t, err)
	_, err = NewClassifier("neural", nil)
	assert.ErrorContains(t, err, "unknown classifier")
}
