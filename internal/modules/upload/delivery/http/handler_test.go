package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/lostfound/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	gotName string
	gotBody []byte
	err     error
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, fileName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.gotName = fileName
	f.gotBody, _ = io.ReadAll(r)
	return "https://res.cloudinary.com/demo/image/upload/items/" + fileName, nil
}

func multipartRequest(t *testing.T, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(h *UploadHandler, req *http.Request) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/uploads", h.UploadImage)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	store := &fakeStorage{}
	w := serve(NewUploadHandler(store), multipartRequest(t, "image", "wallet.jpg", []byte("jpeg-bytes")))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"image_url":"https://res.cloudinary.com/demo/image/upload/items/wallet.jpg"`)
	assert.Equal(t, "wallet.jpg", store.gotName)
	assert.Equal(t, []byte("jpeg-bytes"), store.gotBody)
}

func TestUploadImage_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		w := serve(NewUploadHandler(nil), multipartRequest(t, "image", "a.jpg", []byte("x")))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		w := serve(NewUploadHandler(&fakeStorage{}), multipartRequest(t, "", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"image"`)
	})

	t.Run("unsupported type", func(t *testing.T) {
		w := serve(NewUploadHandler(&fakeStorage{err: storage.ErrUnsupportedImage}), multipartRequest(t, "image", "notes.txt", []byte("x")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "must be a jpg")
	})

	t.Run("too large", func(t *testing.T) {
		big := bytes.Repeat([]byte("a"), maxImageSize+1)
		w := serve(NewUploadHandler(&fakeStorage{}), multipartRequest(t, "image", "big.png", big))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "5MB")
	})
}
