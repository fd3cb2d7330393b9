package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/sprintplan/api/plan"
	"github.com/kilianp07/sprintplan/app/plugins"
	"github.com/kilianp07/sprintplan/config"
	coremetrics "github.com/kilianp07/sprintplan/core/metrics"
	coremon "github.com/kilianp07/sprintplan/core/monitoring"
	"github.com/kilianp07/sprintplan/core/phase"
	"github.com/kilianp07/sprintplan/core/planner"
	"github.com/kilianp07/sprintplan/core/planner/logging"
	"github.com/kilianp07/sprintplan/infra/logger"
	"github.com/kilianp07/sprintplan/infra/metrics"
	"github.com/kilianp07/sprintplan/infra/monitoring"
	"github.com/kilianp07/sprintplan/infra/mqtt"
	"github.com/kilianp07/sprintplan/infra/tracing"
	"github.com/kilianp07/sprintplan/internal/eventbus"
)

// Service wires the planner with its stores, sinks, event consumers and the
// HTTP API.
type Service struct {
	Planner    *planner.Planner
	Store      logging.Store
	Sink       coremetrics.PlanSink
	Classifier phase.Classifier
	cfg        *config.Config
	bus        *eventbus.Bus
	mqtt       *mqtt.PahoClient
	tracing    tracing.Shutdown
	log        logger.Logger
}

// New creates a Service from the configuration. Nothing listens until Run.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	shutdown, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	store, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("log store: %w", err)
	}
	sink, err := coremetrics.NewPlanSink(cfg.Metrics.Sinks)
	if err != nil {
		closeStore(store)
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	classifier, err := plugins.NewClassifier(cfg.Classifier.Type, cfg.Classifier.Conf)
	if err != nil {
		closeStore(store)
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("classifier: %w", err)
	}

	bus := eventbus.New(eventbus.WithBuffer(64))
	policy := phase.DefaultPolicy()
	policy.Classifier = classifier
	p, err := planner.New(cfg.Planner,
		planner.WithLogger(logger.New("planner")),
		planner.WithBus(bus),
		planner.WithStore(store),
		planner.WithSink(sink),
		planner.WithPolicy(policy),
	)
	if err != nil {
		closeStore(store)
		_ = shutdown(context.Background())
		return nil, err
	}

	svc := &Service{
		Planner:    p,
		Store:      store,
		Sink:       sink,
		Classifier: classifier,
		cfg:        cfg,
		bus:        bus,
		tracing:    shutdown,
		log:        logg,
	}
	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqtt = client
	}
	return svc, nil
}

// Router builds the gin engine serving the API.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), tracing.Middleware())
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	h := plan.NewHandler(s.Planner,
		plan.WithStore(s.Store),
		plan.WithClassifier(s.Classifier),
		plan.WithToken(s.cfg.Server.Token),
		plan.WithMaxBody(s.cfg.Server.MaxBodyKB*1024),
		plan.WithLogger(logger.New("api")),
	)
	h.RegisterRoutes(r.Group("/api"))
	return r
}

// Start launches the event consumers and the metrics server without
// blocking. They stop when ctx is canceled.
func (s *Service) Start(ctx context.Context) {
	metrics.StartEventCollector(ctx, s.bus, s.Sink)
	if s.mqtt != nil {
		mqtt.StartPlanPublisher(ctx, s.bus, s.mqtt, mqtt.PublisherConfig{
			Topics: s.mqtt.Topics(),
			QoS:    s.cfg.MQTT.QoS,
			Retain: s.cfg.MQTT.Retain,
		})
	}
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Run starts the service and serves the API until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.Start(ctx)
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.Server.ReadTimeout(),
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("api listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if c, ok := s.Sink.(interface{ Close() }); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	if err := s.tracing(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracing shutdown: %w", err))
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeStore(st logging.Store) {
	if st != nil {
		_ = st.Close()
	}
}
