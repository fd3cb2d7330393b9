package plan

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/sprintplan/core/planner/logging"
)

// Logs returns stored run records.
// GET /api/plan/logs?start=&end=&kind=&resource=&limit=
func (h *Handler) Logs(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "plan log store disabled"})
		return
	}
	q := logging.Query{
		Kind:     logging.Kind(c.Query("kind")),
		Resource: c.Query("resource"),
	}
	for name, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		s := c.Query(name)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC3339"})
			return
		}
		*dst = t
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		q.Limit = n
	}
	records, err := h.store.Query(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	if records == nil {
		records = []logging.Record{}
	}
	c.JSON(http.StatusOK, records)
}
