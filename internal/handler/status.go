package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/pipeline"
	"github.com/jinank/smart-aqms/internal/repository"
)

type StatusHandler struct {
	Repo     repository.Repository
	Pipeline *pipeline.Pipeline
}

func (h *StatusHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/status", h.status)
	r.GET("/api/v1/runs", h.runs)
}

// status is the operator's one-call overview: pipeline state, current run,
// table counts and the latest value of each metric.
func (h *StatusHandler) status(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	counts, err := h.Repo.TableCounts(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	latest, err := h.Repo.LatestMetrics(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	state := pipeline.StateIdle
	runID := ""
	if h.Pipeline != nil {
		state = h.Pipeline.State()
		runID = h.Pipeline.RunID()
	}
	Ok(c, gin.H{
		"pipeline_state": state,
		"run_id":         runID,
		"counts":         counts,
		"latest_metrics": latest,
	}, nil)
}

func (h *StatusHandler) runs(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListPipelineRuns(c.Request.Context(), intQuery(c, "limit", 20))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
