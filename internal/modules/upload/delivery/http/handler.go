package handler

import (
	"errors"
	"net/http"

	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/response"
	"anoa.com/lostfound/pkg/storage"
	"github.com/gin-gonic/gin"
)

const maxImageSize = 5 << 20

type UploadHandler struct {
	storage storage.ImageStorage
}

// NewUploadHandler accepts a nil storage; uploads then answer 503.
func NewUploadHandler(storage storage.ImageStorage) *UploadHandler {
	return &UploadHandler{storage: storage}
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.ResponseError(c, apperror.NewValidation("image", "is required"))
		return
	}
	if fileHeader.Size > maxImageSize {
		response.ResponseError(c, apperror.NewValidation("image", "must be at most 5MB"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ResponseError(c, apperror.NewValidation("image", "could not be read"))
		return
	}
	defer file.Close()

	url, err := h.storage.UploadImage(c.Request.Context(), file, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			response.ResponseError(c, apperror.NewValidation("image", "must be a jpg, png, gif, webp or heic file"))
			return
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image_url": url})
}
