package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := write(t, "config.yaml", `planner:
  min_sprints: 3
  max_iterations: 8
  target_score: 0.85
  required_roles: ["Dev", "QA"]
  weights:
    completion: 0.5
    cost: 0.25
    health: 0.25
classifier:
  type: fixed
  conf:
    role: QA
metrics:
  prometheus_port: ":9100"
  sinks:
    - type: "nop"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "plans"
logging:
  backend: "jsonl"
  path: "/tmp/plans.log"
  max_size_mb: 5
mqtt:
  broker: "tcp://localhost:1883"
  username: "user"
  password: "pass"
  qos:
    plan: 1
server:
  addr: ":9000"
  token: "secret"
sentry:
  dsn: ""
  environment: "test"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"planner.min_sprints", cfg.Planner.MinSprints, 3},
		{"planner.max_iterations", cfg.Planner.MaxIterations, 8},
		{"planner.target_score", cfg.Planner.TargetScore, 0.85},
		{"planner.critical_threshold", cfg.Planner.CriticalThreshold, 0.1},
		{"planner.weights.completion", cfg.Planner.Weights.Completion, 0.5},
		{"planner.required_roles", len(cfg.Planner.RequiredRoles), 2},
		{"classifier.type", cfg.Classifier.Type, "fixed"},
		{"classifier.conf", cfg.Classifier.Conf["role"], "QA"},
		{"metrics.sinks", len(cfg.Metrics.Sinks), 2},
		{"metrics.sinks.influx", cfg.Metrics.Sinks[1].Conf["bucket"], "plans"},
		{"metrics.prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"logging.store", cfg.Logging.Store(), "rotating"},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"mqtt.client_id", cfg.MQTT.ClientID, "sprintplan"},
		{"mqtt.qos", cfg.MQTT.QoS["plan"], byte(1)},
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.token", cfg.Server.Token, "secret"},
		{"server.max_body_kb", cfg.Server.MaxBodyKB, int64(1024)},
		{"sentry.environment", cfg.Sentry.Environment, "test"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	path := write(t, "config.json", `{"server": {"addr": ":9000"}, "logging": {"backend": "sqlite"}}`)
	t.Setenv("K_SERVER__TOKEN", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Token)
	assert.Equal(t, "plans.db", cfg.Logging.Path)
	assert.Equal(t, "sqlite", cfg.Logging.Store())
	assert.False(t, cfg.MQTT.Enabled())
	assert.Empty(t, cfg.MQTT.ClientID)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(write(t, "config.toml", "x = 1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	cases := map[string]string{
		"backend":        "logging:\n  backend: redis\n",
		"max iterations": "planner:\n  max_iterations: 50\n",
		"required role":  "planner:\n  required_roles: [\"Pilot\"]\n",
		"mqtt auth":      "mqtt:\n  broker: tcp://x:1883\n  auth_method: kerberos\n",
		"server timeout": "server:\n  read_timeout_seconds: -1\n",
		"sentry rate":    "sentry:\n  traces_sample_rate: 2\n",
		"tracing":        "tracing:\n  exporter: jaeger\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(write(t, "config.yaml", data))
			assert.Error(t, err)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "jsonl", cfg.Logging.Store())
	assert.Equal(t, "plans.log", cfg.Logging.Path)
	assert.Equal(t, 2, cfg.Planner.MinSprints)
	assert.Equal(t, "none", cfg.Tracing.Exporter)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
}
