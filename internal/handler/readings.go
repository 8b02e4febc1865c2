package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/repository"
)

type ReadingHandler struct {
	Repo repository.Repository
}

func (h *ReadingHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/readings")
	group.GET("", h.list)
	group.GET("/latest", h.latest)
}

func (h *ReadingHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListReadings(c.Request.Context(), repository.ListReadingsParams{
		Limit:     intQuery(c, "limit", 100),
		Offset:    intQuery(c, "offset", 0),
		StationID: int64QueryPtr(c, "station_id"),
		Since:     timeQueryPtr(c, "since"),
		OrderBy:   "record_id",
		Asc:       boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}

func (h *ReadingHandler) latest(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListRecentReadings(c.Request.Context(), intQuery(c, "limit", 50))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
