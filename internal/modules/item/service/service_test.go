package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"anoa.com/lostfound/internal/entity"
	itemDto "anoa.com/lostfound/internal/modules/item/dto"
	"anoa.com/lostfound/internal/testutil"
	"anoa.com/lostfound/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeSearch struct {
	ids     []uuid.UUID
	err     error
	indexed []uuid.UUID
	removed []uuid.UUID
}

func (f *fakeSearch) IndexItem(item *entity.Item) error {
	f.indexed = append(f.indexed, item.ID)
	return nil
}

func (f *fakeSearch) RemoveItem(id uuid.UUID) error {
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeSearch) SearchItemIDs(query, kind string, limit int) ([]uuid.UUID, error) {
	return f.ids, f.err
}

func newItemRequest(kind, name, description string) itemDto.CreateItemRequest {
	return itemDto.CreateItemRequest{
		Kind:         kind,
		Name:         name,
		Place:        "Cafeteria",
		IncidentTime: "yesterday noon",
		Contact:      "555-0101",
		Description:  description,
	}
}

func setup() (*testutil.UserStore, *testutil.ItemStore, Service) {
	users := testutil.NewUserStore()
	items := testutil.NewItemStore(users)
	return users, items, NewService(items, users, nil, bcrypt.MinCost)
}

func names(items []itemDto.ItemResponse) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func TestCreateItem_StoresChallengeHashOnly(t *testing.T) {
	users, items, svc := setup()
	alice := users.Add("alice", "alice@example.com")

	req := newItemRequest("lost", "Wallet", "brown leather")
	q, a := "What is inside?", "  a library card "
	req.SecurityQuestion, req.SecurityAnswer = &q, &a

	res, err := svc.CreateItem(context.Background(), alice.ID, req)
	require.NoError(t, err)
	assert.True(t, res.HasChallenge)
	assert.False(t, res.Resolved)
	assert.Equal(t, "alice", res.Reporter.Username)

	stored, err := items.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ChallengeSecretHash)
	assert.NotContains(t, *stored.ChallengeSecretHash, "library card")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.ChallengeSecretHash), []byte("a library card")))
}

func TestCreateItem_Validation(t *testing.T) {
	users, _, svc := setup()
	alice := users.Add("alice", "alice@example.com")
	ctx := context.Background()

	tests := []struct {
		name  string
		req   itemDto.CreateItemRequest
		field string
	}{
		{"bad kind", newItemRequest("stolen", "Wallet", "x"), "kind"},
		{"missing name", newItemRequest("lost", "  ", "x"), "name"},
		{"blank description", newItemRequest("found", "Wallet", " \n "), "description"},
		{"answer without question", func() itemDto.CreateItemRequest {
			r := newItemRequest("lost", "Wallet", "x")
			a := "secret"
			r.SecurityAnswer = &a
			return r
		}(), "security_question"},
		{"answer too long", func() itemDto.CreateItemRequest {
			r := newItemRequest("lost", "Wallet", "x")
			q, a := "q?", strings.Repeat("x", 73)
			r.SecurityQuestion, r.SecurityAnswer = &q, &a
			return r
		}(), "security_answer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateItem(ctx, alice.ID, tt.req)
			var ve *apperror.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestCreateItem_StoresTextVerbatim(t *testing.T) {
	users, items, svc := setup()
	alice := users.Add("alice", "alice@example.com")

	req := newItemRequest("lost", "  Keys <blue tag> ", "ring with 3 keys & a <b>fob</b>")
	img := "/uploads/169-keys.jpg"
	req.ImageURL = &img

	res, err := svc.CreateItem(context.Background(), alice.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Keys <blue tag>", res.Name)

	stored, err := items.FindByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Keys <blue tag>", stored.Name)
	assert.Equal(t, "ring with 3 keys & a <b>fob</b>", stored.Description)
	require.NotNil(t, stored.ImageURL)
	assert.Equal(t, "/uploads/169-keys.jpg", *stored.ImageURL)
}

func TestCreateItem_UnknownReporter(t *testing.T) {
	_, _, svc := setup()
	_, err := svc.CreateItem(context.Background(), uuid.New(), newItemRequest("lost", "Wallet", "x"))
	assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
}

func TestGetItem_NotFound(t *testing.T) {
	_, _, svc := setup()
	_, err := svc.GetItem(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListActive_FiltersAndOrder(t *testing.T) {
	users, items, svc := setup()
	ctx := context.Background()
	alice := users.Add("alice", "alice@example.com")

	for _, r := range []itemDto.CreateItemRequest{
		newItemRequest("lost", "Black Wallet", "leather"),
		newItemRequest("found", "Keys", "three keys on a WALLET chain"),
		newItemRequest("lost", "Umbrella", "red"),
		newItemRequest("found", "Glasses", "reading"),
	} {
		_, err := svc.CreateItem(ctx, alice.ID, r)
		require.NoError(t, err)
	}

	all, err := svc.ListActive(ctx, itemDto.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Glasses", "Umbrella", "Keys", "Black Wallet"}, names(all))

	oldest, err := svc.ListActive(ctx, itemDto.ItemFilter{Sort: "oldest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Wallet", "Keys", "Umbrella", "Glasses"}, names(oldest))

	lost, err := svc.ListActive(ctx, itemDto.ItemFilter{Type: "lost"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Umbrella", "Black Wallet"}, names(lost))

	everything, err := svc.ListActive(ctx, itemDto.ItemFilter{Type: "all"})
	require.NoError(t, err)
	assert.Len(t, everything, 4)

	wallet, err := svc.ListActive(ctx, itemDto.ItemFilter{Search: "wallet"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keys", "Black Wallet"}, names(wallet))

	paged, err := svc.ListActive(ctx, itemDto.ItemFilter{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Black Wallet"}, names(paged))

	// resolved items drop out of the dashboard
	_, err = items.MarkResolved(ctx, all[0].ID)
	require.NoError(t, err)
	after, err := svc.ListActive(ctx, itemDto.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Umbrella", "Keys", "Black Wallet"}, names(after))
}

func TestListActive_RejectsUnknownFilter(t *testing.T) {
	_, _, svc := setup()
	_, err := svc.ListActive(context.Background(), itemDto.ItemFilter{Type: "stolen"})
	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "type", ve.Field)
}

func TestListArchived(t *testing.T) {
	users, items, svc := setup()
	ctx := context.Background()
	alice := users.Add("alice", "alice@example.com")
	bob := users.Add("bob", "bob@example.com")

	a1, err := svc.CreateItem(ctx, alice.ID, newItemRequest("lost", "Wallet", "x"))
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, alice.ID, newItemRequest("lost", "Hat", "x"))
	require.NoError(t, err)
	b1, err := svc.CreateItem(ctx, bob.ID, newItemRequest("found", "Ring", "x"))
	require.NoError(t, err)

	_, err = items.MarkResolved(ctx, a1.ID)
	require.NoError(t, err)
	_, err = items.MarkResolved(ctx, b1.ID)
	require.NoError(t, err)

	archived, err := svc.ListArchived(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "Wallet", archived[0].Name)
	assert.True(t, archived[0].Resolved)

	none, err := svc.ListArchived(ctx, "carol")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	assert.Nil(t, none)

	mine, err := svc.ListByReporter(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestSearchActive(t *testing.T) {
	users := testutil.NewUserStore()
	items := testutil.NewItemStore(users)
	search := &fakeSearch{}
	svc := NewService(items, users, search, bcrypt.MinCost)
	ctx := context.Background()
	alice := users.Add("alice", "alice@example.com")

	wallet, err := svc.CreateItem(ctx, alice.ID, newItemRequest("lost", "Wallet", "x"))
	require.NoError(t, err)
	keys, err := svc.CreateItem(ctx, alice.ID, newItemRequest("found", "Keys", "x"))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{wallet.ID, keys.ID}, search.indexed)

	search.ids = []uuid.UUID{keys.ID, uuid.New(), wallet.ID}
	got, err := svc.SearchActive(ctx, itemDto.SearchQuery{Query: "k"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Keys", "Wallet"}, names(got))

	search.err = errors.New("meilisearch down")
	got, err = svc.SearchActive(ctx, itemDto.SearchQuery{Query: "wall"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Wallet"}, names(got))

	_, err = svc.SearchActive(ctx, itemDto.SearchQuery{Query: "  "})
	var ve *apperror.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "q", ve.Field)
}

func TestMapToResponse_HidesHash(t *testing.T) {
	hash := "$2a$04$abcdefghijklmnopqrstuv"
	res := MapToResponse(&entity.Item{ID: uuid.New(), Name: "x", ChallengeSecretHash: &hash})
	assert.True(t, res.HasChallenge)
}
