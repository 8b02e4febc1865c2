package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/repository"
)

type StationHandler struct {
	Repo repository.Repository
}

func (h *StationHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/stations", h.list)
}

// list returns the active station IDs measurements are attributed to.
func (h *StationHandler) list(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	ids, err := h.Repo.ListStationIDs(c.Request.Context(), intQuery(c, "limit", 100))
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, ids, nil)
}
