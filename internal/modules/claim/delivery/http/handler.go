package handler

import (
	"net/http"

	claimDto "anoa.com/lostfound/internal/modules/claim/dto"
	claim "anoa.com/lostfound/internal/modules/claim/service"
	"anoa.com/lostfound/pkg/response"
	"anoa.com/lostfound/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ClaimHandler struct {
	service claim.ClaimService
}

func NewClaimHandler(service claim.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	itemID, ok := response.ParamUUID(c, "item_id")
	if !ok {
		return
	}

	var req claimDto.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToAppError(err))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.SubmitClaim(c.Request.Context(), itemID, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ClaimHandler) ListClaims(c *gin.Context) {
	itemID, ok := response.ParamUUID(c, "item_id")
	if !ok {
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	claims, err := h.service.ListClaims(c.Request.Context(), itemID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": claims})
}
