package plan

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/sprintplan/pkg/export"
	"github.com/kilianp07/sprintplan/pkg/scenario"
)

// Export plans the scenario and returns it as a file.
// POST /api/plan/export?format=json|csv|xlsx|html
func (h *Handler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatJSON)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
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
	var buf bytes.Buffer
	if err := export.Write(&buf, format, export.FromPlan(plan)); err != nil {
		h.fail(c, fmt.Errorf("export %s: %w", format, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"plan-%s.%s\"", plan.ID, format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
