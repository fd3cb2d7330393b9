package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/sprintplan/auth"
	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
)

// WebhookConfig configures a WebhookSink.
type WebhookConfig struct {
	URL     string            `json:"url"`
	Timeout time.Duration     `json:"timeout"`
	Headers map[string]string `json:"headers"`
	// Auth enables OAuth2 client credentials when a client ID is set.
	Auth auth.Conf `json:"auth"`
}

// webhookPayload is the JSON body posted for each plan.
type webhookPayload struct {
	PlanID     string    `json:"plan_id"`
	Source     string    `json:"source,omitempty"`
	Sprints    int       `json:"sprints"`
	Blocks     int       `json:"blocks"`
	Entries    int       `json:"entries"`
	Score      float64   `json:"score"`
	Completion float64   `json:"completion"`
	CostDelta  float64   `json:"cost_delta"`
	Health     float64   `json:"health"`
	Overflow   int       `json:"overflow_count"`
	Unassigned int       `json:"unassigned"`
	Transfers  int       `json:"transfers"`
	DurationMS float64   `json:"duration_ms"`
	Time       time.Time `json:"time"`
}

// WebhookSink posts plan summaries as JSON to an HTTP endpoint.
type WebhookSink struct {
	url     string
	headers map[string]string
	client  *http.Client
	creds   *auth.ClientCred
}

// NewWebhookSink returns a sink posting to cfg.URL.
func NewWebhookSink(cfg WebhookConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	s := &WebhookSink{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.Auth.Enabled() {
		s.creds = auth.NewClientCred(cfg.Auth)
	}
	return s, nil
}

// RecordPlan posts rec. A 401 response triggers one token refresh and retry.
func (s *WebhookSink) RecordPlan(rec coremetrics.PlanRecord) error {
	body, err := json.Marshal(webhookPayload{
		PlanID:     rec.PlanID,
		Source:     rec.Source,
		Sprints:    rec.Sprints,
		Blocks:     rec.Blocks,
		Entries:    rec.Entries,
		Score:      rec.Score,
		Completion: rec.Completion,
		CostDelta:  rec.CostDelta,
		Health:     rec.Health,
		Overflow:   rec.Overflow,
		Unassigned: rec.Unassigned,
		Transfers:  rec.Transfers,
		DurationMS: round3(rec.Duration.Seconds() * 1000),
		Time:       rec.Time,
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()

	status, err := s.post(ctx, body)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized && s.creds != nil {
		if _, err := s.creds.ForceRefresh(ctx); err != nil {
			return err
		}
		if status, err = s.post(ctx, body); err != nil {
			return err
		}
	}
	if status >= 300 {
		return fmt.Errorf("webhook %s: unexpected status %d", s.url, status)
	}
	return nil
}

func (s *WebhookSink) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.creds != nil {
		if err := s.creds.SetAuthHeader(req); err != nil {
			return 0, err
		}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
