package plan

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/sprintplan/core/model"
	"github.com/kilianp07/sprintplan/pkg/scenario"
)

// Plan runs the planner on the scenario in the body.
// POST /api/plan
func (h *Handler) Plan(c *gin.Context) {
	var sc scenario.Scenario
	if !h.bind(c, &sc) {
		return
	}
	in, ok := h.input(c, &sc)
	if !ok {
		return
	}
	plan, err := h.planner.Plan(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// Optimize searches the smallest sprint count meeting the target score.
// POST /api/plan/optimize
func (h *Handler) Optimize(c *gin.Context) {
	var sc scenario.Scenario
	if !h.bind(c, &sc) {
		return
	}
	in, ok := h.input(c, &sc)
	if !ok {
		return
	}
	res, err := h.planner.Optimize(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type revalidateRequest struct {
	scenario.Scenario
	Entries []model.Entry `json:"entries" binding:"required"`
}

// Revalidate plans the scenario, then rescores an edited ledger against
// the same roster and calendar.
// POST /api/plan/revalidate
func (h *Handler) Revalidate(c *gin.Context) {
	var req revalidateRequest
	if !h.bind(c, &req) {
		return
	}
	in, ok := h.input(c, &req.Scenario)
	if !ok {
		return
	}
	plan, err := h.planner.Plan(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	edited, err := plan.Revalidate(req.Entries)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, edited)
}
