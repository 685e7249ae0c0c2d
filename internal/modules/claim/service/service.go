package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"anoa.com/lostfound/internal/entity"
	claimDto "anoa.com/lostfound/internal/modules/claim/dto"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	notifDto "anoa.com/lostfound/internal/modules/notification/dto"
	notification "anoa.com/lostfound/internal/modules/notification/service"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	"anoa.com/lostfound/pkg/apperror"
	"anoa.com/lostfound/pkg/ratelimiter"
	"anoa.com/lostfound/pkg/sanitize"
	"anoa.com/lostfound/pkg/validator"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxChallengeResponse = 72

var (
	errItemResolved    = fmt.Errorf("item is already resolved: %w", apperror.ErrConflict)
	errIncorrectAnswer = fmt.Errorf("incorrect response: %w", apperror.ErrForbidden)
)

type ClaimService interface {
	SubmitClaim(ctx context.Context, itemID, claimantID uuid.UUID, req claimDto.SubmitClaimRequest) (*claimDto.ClaimResponse, error)
	ListClaims(ctx context.Context, itemID, actorID uuid.UUID) ([]claimDto.ClaimResponse, error)
}

type claimService struct {
	itemRepo          itemRepo.Repository
	userRepo          userRepo.UserRepository
	notificationSvc   notification.NotificationService
	redisClient       *redis.Client
	challengeCooldown time.Duration
}

// NewClaimService wires the claim workflow. With a redis client and a
// positive cooldown, repeated wrong challenge responses inside the cooldown
// answer with a rate limit error instead of a plain mismatch. A correct
// response is always accepted and clears the cooldown.
func NewClaimService(itemRepo itemRepo.Repository, userRepo userRepo.UserRepository, notificationSvc notification.NotificationService, redisClient *redis.Client, challengeCooldown time.Duration) ClaimService {
	return &claimService{
		itemRepo:          itemRepo,
		userRepo:          userRepo,
		notificationSvc:   notificationSvc,
		redisClient:       redisClient,
		challengeCooldown: challengeCooldown,
	}
}

func (s *claimService) SubmitClaim(ctx context.Context, itemID, claimantID uuid.UUID, req claimDto.SubmitClaimRequest) (*claimDto.ClaimResponse, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.Response = strings.TrimSpace(req.Response)
	if err := validator.Struct(req); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if item.Resolved {
		return nil, errItemResolved
	}

	if item.HasChallenge() {
		if !matchesChallenge(*item.ChallengeSecretHash, req.Response) {
			if err := s.checkChallengeCooldown(ctx, claimantID, item.ID); err != nil {
				return nil, err
			}
			s.startChallengeCooldown(ctx, claimantID, item.ID)
			return nil, errIncorrectAnswer
		}
		s.clearChallengeCooldown(ctx, claimantID, item.ID)
	}

	claimant, err := s.userRepo.FindByID(ctx, claimantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("claimant not found: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	claim := &entity.Claim{
		ClaimantID: claimant.ID,
		Message:    req.Message,
		Status:     entity.ClaimStatusPending,
	}

	// The resolved flag is re-checked under the row lock: a resolve that
	// committed after the read above still wins.
	err = s.itemRepo.AppendClaim(ctx, item.ID, claim, func(locked *entity.Item) error {
		if locked.Resolved {
			return errItemResolved
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	// Not transactional with the append: a failure here surfaces as an error
	// even though the claim is stored, and a client retry can duplicate it.
	relatedItemID := item.ID
	if _, err := s.notificationSvc.Notify(ctx, notifDto.NotifyInput{
		RecipientID:   item.ReporterID,
		ActorID:       &claimant.ID,
		Type:          entity.NotificationTypeClaim,
		Message:       RenderClaimMessage(item.Name, claimant.Username, claim.Message),
		RelatedItemID: &relatedItemID,
	}); err != nil {
		zap.L().Error("claim stored but notification failed",
			zap.String("item_id", item.ID.String()),
			zap.String("claim_id", claim.ID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("notify reporter: %w", err)
	}

	res := mapClaim(claim, nil)
	return &res, nil
}

func (s *claimService) ListClaims(ctx context.Context, itemID, actorID uuid.UUID) ([]claimDto.ClaimResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if !item.IsReporter(actorID) {
		return nil, fmt.Errorf("only the reporter may view claims: %w", apperror.ErrForbidden)
	}

	claims, err := s.itemRepo.FindClaims(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	out := make([]claimDto.ClaimResponse, 0, len(claims))
	for i := range claims {
		out = append(out, mapClaim(&claims[i], claims[i].Claimant))
	}
	return out, nil
}

func (s *claimService) cooldownEnabled() bool {
	return s.redisClient != nil && s.challengeCooldown > 0
}

// matchesChallenge compares a trimmed response with the stored hash. bcrypt
// cannot hash more than 72 bytes, so longer responses never match.
func matchesChallenge(hash, response string) bool {
	if len(response) > maxChallengeResponse {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(response)) == nil
}

// Redis trouble never blocks a claim; the cooldown just stops applying.
func (s *claimService) checkChallengeCooldown(ctx context.Context, claimantID, itemID uuid.UUID) error {
	if !s.cooldownEnabled() {
		return nil
	}

	key := ratelimiter.Key(claimantID, ratelimiter.ScopeChallenge, itemID)
	ttl, err := ratelimiter.GetRateLimitTTL(ctx, s.redisClient, key)
	if err != nil {
		zap.L().Warn("challenge cooldown check failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if ttl > 0 {
		return &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("too many incorrect responses, please wait %.0f seconds", math.Ceil(ttl.Seconds())),
			RetryAfter: ttl,
		}
	}
	return nil
}

func (s *claimService) startChallengeCooldown(ctx context.Context, claimantID, itemID uuid.UUID) {
	if !s.cooldownEnabled() {
		return
	}

	key := ratelimiter.Key(claimantID, ratelimiter.ScopeChallenge, itemID)
	if _, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redisClient, key, s.challengeCooldown); err != nil {
		zap.L().Warn("failed to start challenge cooldown", zap.String("key", key), zap.Error(err))
	}
}

func (s *claimService) clearChallengeCooldown(ctx context.Context, claimantID, itemID uuid.UUID) {
	if !s.cooldownEnabled() {
		return
	}

	key := ratelimiter.Key(claimantID, ratelimiter.ScopeChallenge, itemID)
	if err := ratelimiter.ClearRateLimit(ctx, s.redisClient, key); err != nil {
		zap.L().Warn("failed to clear challenge cooldown", zap.String("key", key), zap.Error(err))
	}
}

// RenderClaimMessage builds the reporter-facing notification text.
func RenderClaimMessage(itemName, claimant, message string) string {
	return fmt.Sprintf("New claim on your item \"%s\" by %s. Message: %s", itemName, claimant, sanitize.SingleLine(message))
}

func mapClaim(claim *entity.Claim, claimant *entity.User) claimDto.ClaimResponse {
	res := claimDto.ClaimResponse{
		ID:        claim.ID,
		ItemID:    claim.ItemID,
		Seq:       claim.Seq,
		Message:   claim.Message,
		Status:    claim.Status,
		CreatedAt: claim.CreatedAt,
	}
	if claimant != nil {
		res.Claimant = &claimDto.ClaimantResponse{
			ID:       claimant.ID,
			Username: claimant.Username,
			Email:    claimant.Email,
		}
	}
	return res
}
