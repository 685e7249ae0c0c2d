package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	claimDto "anoa.com/lostfound/internal/modules/claim/dto"
	"anoa.com/lostfound/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClaimService struct {
	submitErr error
	listErr   error
	gotReq    claimDto.SubmitClaimRequest
	gotActor  uuid.UUID
}

func (f *fakeClaimService) SubmitClaim(_ context.Context, itemID, claimantID uuid.UUID, req claimDto.SubmitClaimRequest) (*claimDto.ClaimResponse, error) {
	f.gotReq, f.gotActor = req, claimantID
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &claimDto.ClaimResponse{ID: uuid.New(), ItemID: itemID, Seq: 1, Message: req.Message, Status: "pending"}, nil
}

func (f *fakeClaimService) ListClaims(_ context.Context, itemID, actorID uuid.UUID) ([]claimDto.ClaimResponse, error) {
	f.gotActor = actorID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []claimDto.ClaimResponse{{ItemID: itemID, Seq: 1, Message: "mine"}}, nil
}

func newRouter(svc *fakeClaimService, actor string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != "" {
			c.Set("user_id", actor)
		}
		c.Next()
	})
	h := NewClaimHandler(svc)
	r.POST("/items/:item_id/claims", h.SubmitClaim)
	r.GET("/items/:item_id/claims", h.ListClaims)
	return r
}

func TestClaimHandler_SubmitClaim(t *testing.T) {
	actor := uuid.New()
	itemID := uuid.New()

	tests := []struct {
		name       string
		path       string
		body       string
		actor      string
		service    *fakeClaimService
		wantStatus int
		wantSubstr string
	}{
		{
			name:       "created",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"message":"It's mine"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{},
			wantStatus: http.StatusCreated,
			wantSubstr: `"seq":1`,
		},
		{
			name:       "bad item id",
			path:       "/items/nope/claims",
			body:       `{"message":"x"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{},
			wantStatus: http.StatusBadRequest,
			wantSubstr: `"field":"item_id"`,
		},
		{
			name:       "missing message",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"response":"blue"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{},
			wantStatus: http.StatusBadRequest,
			wantSubstr: `"field":"message"`,
		},
		{
			name:       "malformed json",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{`,
			actor:      actor.String(),
			service:    &fakeClaimService{},
			wantStatus: http.StatusBadRequest,
			wantSubstr: "malformed request body",
		},
		{
			name:       "unauthenticated",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"message":"x"}`,
			service:    &fakeClaimService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong answer",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"message":"x","response":"red"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{submitErr: fmt.Errorf("incorrect response: %w", apperror.ErrForbidden)},
			wantStatus: http.StatusForbidden,
			wantSubstr: "incorrect response",
		},
		{
			name:       "resolved item",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"message":"x"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{submitErr: fmt.Errorf("item is already resolved: %w", apperror.ErrConflict)},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "storage failure hides detail",
			path:       "/items/" + itemID.String() + "/claims",
			body:       `{"message":"x"}`,
			actor:      actor.String(),
			service:    &fakeClaimService{submitErr: fmt.Errorf("pq: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantSubstr: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(tt.service, tt.actor)
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantSubstr != "" {
				assert.Contains(t, w.Body.String(), tt.wantSubstr)
			}
			assert.NotContains(t, w.Body.String(), "pq:")
		})
	}
}

func TestClaimHandler_SubmitClaim_UsesTokenIdentity(t *testing.T) {
	actor := uuid.New()
	svc := &fakeClaimService{}
	r := newRouter(svc, actor.String())

	body := fmt.Sprintf(`{"message":"mine","claimant_id":"%s"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/items/"+uuid.NewString()+"/claims", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, actor, svc.gotActor)
	assert.Equal(t, "mine", svc.gotReq.Message)
}

func TestClaimHandler_ListClaims(t *testing.T) {
	actor := uuid.New()
	itemID := uuid.New()

	r := newRouter(&fakeClaimService{}, actor.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+itemID.String()+"/claims", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data []claimDto.ClaimResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, itemID, body.Data[0].ItemID)

	r = newRouter(&fakeClaimService{listErr: fmt.Errorf("only the reporter may view claims: %w", apperror.ErrForbidden)}, actor.String())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+itemID.String()+"/claims", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
