// Package testutil holds in-memory repository fakes shared by service tests.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"anoa.com/lostfound/internal/entity"
	itemRepo "anoa.com/lostfound/internal/modules/item/repository"
	notifRepo "anoa.com/lostfound/internal/modules/notification/repository"
	userRepo "anoa.com/lostfound/internal/modules/user/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Clock hands out timestamps truncated to the second so items created in
// the same test collide, as they can in production.
var Clock = func() time.Time { return time.Now().Truncate(time.Second) }

type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]entity.User
}

var _ userRepo.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uuid.UUID]entity.User)}
}

// Add stores a user with a fresh id and returns it.
func (s *UserStore) Add(username, email string) *entity.User {
	u := &entity.User{
		ID:       uuid.New(),
		Username: username,
		Email:    email,
		Role:     entity.RoleUser,
	}
	_ = s.Create(context.Background(), u)
	return u
}

func (s *UserStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = Clock()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (s *UserStore) find(match func(entity.User) bool) (*entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return s.find(func(u entity.User) bool { return u.Email == email })
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return s.find(func(u entity.User) bool { return u.Username == username })
}

func (s *UserStore) Update(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cur.Email, cur.Bio, cur.Phone = user.Email, user.Bio, user.Phone
	s.users[user.ID] = cur
	return nil
}

func (s *UserStore) UpdateRole(_ context.Context, email, role string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Email == email {
			u.Role = role
			s.users[id] = u
			return 1, nil
		}
	}
	return 0, nil
}

func (s *UserStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// ItemStore keeps items and claims in memory. AppendClaim holds the store
// lock for the whole guard-and-append step.
type ItemStore struct {
	mu     sync.Mutex
	users  *UserStore
	items  map[uuid.UUID]*entity.Item
	order  map[uuid.UUID]int
	claims map[uuid.UUID][]entity.Claim
	next   int

	// FailAppend, when set, is returned by AppendClaim before anything is stored.
	FailAppend error
}

var _ itemRepo.Repository = (*ItemStore)(nil)

func NewItemStore(users *UserStore) *ItemStore {
	return &ItemStore{
		users:  users,
		items:  make(map[uuid.UUID]*entity.Item),
		order:  make(map[uuid.UUID]int),
		claims: make(map[uuid.UUID][]entity.Claim),
	}
}

func (s *ItemStore) Create(_ context.Context, item *entity.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		item.ID = id
	}
	now := Clock()
	item.CreatedAt, item.UpdatedAt = now, now
	cp := *item
	cp.Reporter = nil
	s.items[item.ID] = &cp
	s.order[item.ID] = s.next
	s.next++
	return nil
}

// copyOf returns a detached item with the reporter attached. Callers hold mu.
func (s *ItemStore) copyOf(it *entity.Item) entity.Item {
	cp := *it
	if s.users != nil {
		if u, err := s.users.FindByID(context.Background(), it.ReporterID); err == nil {
			cp.Reporter = u
		}
	}
	return cp
}

func (s *ItemStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := s.copyOf(it)
	return &cp, nil
}

func (s *ItemStore) collect(match func(*entity.Item) bool, oldest bool) []entity.Item {
	var out []entity.Item
	for _, it := range s.items {
		if match(it) {
			out = append(out, s.copyOf(it))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if oldest {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if oldest {
			return s.order[a.ID] < s.order[b.ID]
		}
		return s.order[a.ID] > s.order[b.ID]
	})
	return out
}

func (s *ItemStore) FindActive(_ context.Context, f itemRepo.ActiveFilter) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(f.Search)
	out := s.collect(func(it *entity.Item) bool {
		if it.Resolved {
			return false
		}
		if f.Kind != "" && it.Kind != f.Kind {
			return false
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(it.Name), needle) &&
			!strings.Contains(strings.ToLower(it.Description), needle) {
			return false
		}
		return true
	}, f.Oldest)

	if f.Limit > 0 {
		if f.Offset >= len(out) {
			return []entity.Item{}, nil
		}
		end := f.Offset + f.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[f.Offset:end]
	}
	return out, nil
}

func (s *ItemStore) FindActiveByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := s.items[id]; ok && !it.Resolved {
			out = append(out, s.copyOf(it))
		}
	}
	return out, nil
}

func (s *ItemStore) FindArchivedByReporter(_ context.Context, reporterID uuid.UUID) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(it *entity.Item) bool {
		return it.Resolved && it.ReporterID == reporterID
	}, false), nil
}

func (s *ItemStore) FindByReporter(_ context.Context, reporterID uuid.UUID) ([]entity.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(it *entity.Item) bool {
		return it.ReporterID == reporterID
	}, false), nil
}

func (s *ItemStore) AppendClaim(_ context.Context, itemID uuid.UUID, claim *entity.Claim, guard itemRepo.ClaimGuard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend != nil {
		return s.FailAppend
	}
	it, ok := s.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	locked := *it
	if guard != nil {
		if err := guard(&locked); err != nil {
			return err
		}
	}

	if claim.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		claim.ID = id
	}
	if claim.Status == "" {
		claim.Status = entity.ClaimStatusPending
	}
	claim.ItemID = itemID
	claim.Seq = it.ClaimCount + 1
	claim.CreatedAt = time.Now()

	stored := *claim
	stored.Claimant = nil
	s.claims[itemID] = append(s.claims[itemID], stored)
	it.ClaimCount = claim.Seq
	return nil
}

func (s *ItemStore) FindClaims(_ context.Context, itemID uuid.UUID) ([]entity.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Claim, 0, len(s.claims[itemID]))
	for _, c := range s.claims[itemID] {
		if s.users != nil {
			if u, err := s.users.FindByID(context.Background(), c.ClaimantID); err == nil {
				c.Claimant = u
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// Claims returns the raw stored sequence for assertions.
func (s *ItemStore) Claims(itemID uuid.UUID) []entity.Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Claim(nil), s.claims[itemID]...)
}

func (s *ItemStore) MarkResolved(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok || it.Resolved {
		return false, nil
	}
	now := time.Now()
	it.Resolved = true
	it.ResolvedAt = &now
	return true, nil
}

func (s *ItemStore) CountByReporter(_ context.Context, reporterID uuid.UUID) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lost, found int64
	for _, it := range s.items {
		if it.ReporterID != reporterID {
			continue
		}
		switch it.Kind {
		case entity.ItemKindLost:
			lost++
		case entity.ItemKindFound:
			found++
		}
	}
	return lost, found, nil
}

func (s *ItemStore) Stats(_ context.Context) (*itemRepo.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st itemRepo.Stats
	for _, it := range s.items {
		st.Total++
		switch it.Kind {
		case entity.ItemKindLost:
			st.Lost++
		case entity.ItemKindFound:
			st.Found++
		}
		if it.Resolved {
			st.Resolved++
		}
	}
	return &st, nil
}

type NotificationStore struct {
	mu    sync.Mutex
	users *UserStore
	items []*entity.Notification

	// FailCreate, when set, is returned by Create.
	FailCreate error
}

var _ notifRepo.NotificationRepository = (*NotificationStore)(nil)

func NewNotificationStore(users *UserStore) *NotificationStore {
	return &NotificationStore{users: users}
}

func (s *NotificationStore) Create(_ context.Context, n *entity.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate != nil {
		return s.FailCreate
	}
	if n.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		n.ID = id
	}
	if n.Type == "" {
		n.Type = entity.NotificationTypeSystem
	}
	n.CreatedAt = time.Now()
	cp := *n
	s.items = append(s.items, &cp)
	return nil
}

func (s *NotificationStore) FindByRecipient(_ context.Context, recipientID uuid.UUID) ([]entity.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Notification
	// newest first: reverse insertion order
	for i := len(s.items) - 1; i >= 0; i-- {
		n := *s.items[i]
		if n.RecipientID != recipientID {
			continue
		}
		if s.users != nil {
			if u, err := s.users.FindByID(context.Background(), n.RecipientID); err == nil {
				n.Recipient = u
			}
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *NotificationStore) MarkAsRead(_ context.Context, id, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id && n.RecipientID == recipientID && !n.IsRead {
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (s *NotificationStore) MarkAllAsRead(_ context.Context, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (s *NotificationStore) CountUnread(_ context.Context, recipientID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// For returns every stored notification addressed to recipientID, oldest first.
func (s *NotificationStore) For(recipientID uuid.UUID) []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Notification
	for _, n := range s.items {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out
}
