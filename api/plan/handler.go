// Package plan exposes the planner over HTTP.
package plan

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/sprintplan/core/logger"
	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/core/phase"
	"github.com/kilianp07/sprintplan/core/planner"
	"github.com/kilianp07/sprintplan/core/planner/logging"
	"github.com/kilianp07/sprintplan/pkg/scenario"
)

// Handler serves the planning API.
type Handler struct {
	planner    *planner.Planner
	store      logging.Store
	classifier phase.Classifier
	token      string
	maxBody    int64
	log        logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithStore serves run records from store on GET /plan/logs.
func WithStore(s logging.Store) Option { return func(h *Handler) { h.store = s } }

// WithClassifier sets the classifier applied to every request.
func WithClassifier(c phase.Classifier) Option { return func(h *Handler) { h.classifier = c } }

// WithToken requires "Authorization: Bearer <token>" on every route.
func WithToken(token string) Option { return func(h *Handler) { h.token = token } }

// WithMaxBody caps request bodies to n bytes.
func WithMaxBody(n int64) Option { return func(h *Handler) { h.maxBody = n } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(h *Handler) { h.log = logger.OrNop(l) } }

// NewHandler creates the planning API handler.
func NewHandler(p *planner.Planner, opts ...Option) *Handler {
	h := &Handler{planner: p, log: logger.NopLogger{}}
	for _, o := range opts {
		o(h)
	}
	return h
}

// RegisterRoutes mounts the API under router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/plan", h.authorize, h.limitBody)
	g.POST("", h.Plan)
	g.POST("/optimize", h.Optimize)
	g.POST("/revalidate", h.Revalidate)
	g.POST("/export", h.Export)
	g.GET("/logs", h.Logs)
}

func (h *Handler) authorize(c *gin.Context) {
	if h.token == "" {
		c.Next()
		return
	}
	got := c.GetHeader("Authorization")
	if subtle.ConstantTimeCompare([]byte(got), []byte("Bearer "+h.token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (h *Handler) limitBody(c *gin.Context) {
	if h.maxBody > 0 && c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	c.Next()
}

// input binds the request body as a scenario. It writes the error response
// and returns false when the body is unusable.
func (h *Handler) input(c *gin.Context, sc *scenario.Scenario) (planner.Input, bool) {
	in, err := sc.Input()
	if err != nil {
		h.fail(c, err)
		return planner.Input{}, false
	}
	if h.classifier != nil {
		in.Classifier = h.classifier
	}
	return in, true
}

func (h *Handler) bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// fail maps planner errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	var cfgErr *model.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": cfgErr.Field})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.log.Errorf("plan request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
