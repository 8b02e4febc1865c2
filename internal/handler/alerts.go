package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/repository"
)

type AlertHandler struct {
	Repo repository.Repository
}

func (h *AlertHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/alerts")
	group.GET("", h.list)
}

func (h *AlertHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	items, err := h.Repo.ListAlerts(c.Request.Context(), repository.ListAlertsParams{
		Limit:     intQuery(c, "limit", 100),
		Offset:    intQuery(c, "offset", 0),
		StationID: int64QueryPtr(c, "station_id"),
		Severity:  stringQueryPtr(c, "severity"),
		AlertType: stringQueryPtr(c, "alert_type"),
		Since:     timeQueryPtr(c, "since"),
		OrderBy:   "created_at",
		Asc:       boolPtr(false),
	})
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, nil)
}
