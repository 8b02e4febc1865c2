package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jinank/smart-aqms/internal/repository"
)

type PredictionHandler struct {
	Repo repository.Repository
}

func (h *PredictionHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/predictions")
	group.GET("/:record_id", h.get)
}

func (h *PredictionHandler) get(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	recordID, err := strconv.ParseInt(c.Param("record_id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid record_id", nil)
		return
	}
	item, err := h.Repo.GetPredictionByRecordID(c.Request.Context(), recordID)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if item == nil {
		Error(c, http.StatusNotFound, "prediction not found", nil)
		return
	}
	Ok(c, item, nil)
}
