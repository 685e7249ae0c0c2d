package handler

import (
	"net/http"

	resolution "anoa.com/lostfound/internal/modules/resolution/service"
	"anoa.com/lostfound/pkg/response"
	"github.com/gin-gonic/gin"
)

type ResolutionHandler struct {
	service resolution.ResolutionService
}

func NewResolutionHandler(service resolution.ResolutionService) *ResolutionHandler {
	return &ResolutionHandler{service: service}
}

func (h *ResolutionHandler) Resolve(c *gin.Context) {
	itemID, ok := response.ParamUUID(c, "item_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Resolve(c.Request.Context(), itemID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item resolved", "resolved": true})
}
