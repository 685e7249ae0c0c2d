package handler

import (
	"net/http"

	itemDto "anoa.com/lostfound/internal/modules/item/dto"
	item "anoa.com/lostfound/internal/modules/item/service"
	"anoa.com/lostfound/pkg/response"
	"anoa.com/lostfound/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ItemHandler struct {
	service item.Service
}

func NewItemHandler(service item.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	var req itemDto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ResponseError(c, validator.ToAppError(err))
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.CreateItem(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID, ok := response.ParamUUID(c, "item_id")
	if !ok {
		return
	}

	res, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ItemHandler) ListActive(c *gin.Context) {
	var filter itemDto.ItemFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.ResponseError(c, validator.ToAppError(err))
		return
	}

	items, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *ItemHandler) Search(c *gin.Context) {
	var query itemDto.SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ResponseError(c, validator.ToAppError(err))
		return
	}

	items, err := h.service.SearchActive(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *ItemHandler) ListArchived(c *gin.Context) {
	items, err := h.service.ListArchived(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}

func (h *ItemHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	items, err := h.service.ListByReporter(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
