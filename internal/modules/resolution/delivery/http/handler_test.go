package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/lostfound/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeResolutionService struct {
	err    error
	calls  int
	itemID uuid.UUID
	actor  uuid.UUID
}

func (f *fakeResolutionService) Resolve(_ context.Context, itemID, actorID uuid.UUID) error {
	f.calls++
	f.itemID, f.actor = itemID, actorID
	return f.err
}

func TestResolutionHandler_Resolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	actor := uuid.New()
	itemID := uuid.New()

	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCalls  int
	}{
		{"resolved", "/items/" + itemID.String() + "/resolve", nil, http.StatusOK, 1},
		{"not reporter", "/items/" + itemID.String() + "/resolve", fmt.Errorf("only the reporter may resolve this item: %w", apperror.ErrForbidden), http.StatusForbidden, 1},
		{"missing item", "/items/" + itemID.String() + "/resolve", fmt.Errorf("item not found: %w", apperror.ErrNotFound), http.StatusNotFound, 1},
		{"bad id", "/items/123/resolve", nil, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeResolutionService{err: tt.err}
			r := gin.New()
			r.Use(func(c *gin.Context) {
				c.Set("user_id", actor.String())
				c.Next()
			})
			r.PUT("/items/:item_id/resolve", NewResolutionHandler(svc).Resolve)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCalls, svc.calls)
			if tt.wantCalls > 0 {
				assert.Equal(t, itemID, svc.itemID)
				assert.Equal(t, actor, svc.actor)
			}
			if tt.wantStatus == http.StatusOK {
				assert.JSONEq(t, `{"message":"item resolved","resolved":true}`, w.Body.String())
			}
		})
	}
}
