package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/repository"
)

type MetricHandler struct {
	Repo repository.Repository
}

func (h *MetricHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/metrics")
	group.GET("", h.list)
	group.GET("/latest", h.latest)
}

func (h *MetricHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListMetrics(c.Request.Context(), repository.ListMetricsParams{
		Limit:   intQuery(c, "limit", 100),
		Offset:  intQuery(c, "offset", 0),
		Name:    stringQueryPtr(c, "name"),
		Since:   timeQueryPtr(c, "since"),
		OrderBy: "recorded_at",
		Asc:     boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

// latest returns the most recent row of every metric name, one snapshot of
// pipeline health without the caller having to window the series.
func (h *MetricHandler) latest(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.LatestMetrics(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
