package service

import (
	"encoding/json"
	"fmt"

	"anoa.com/lostfound/internal/entity"
	"anoa.com/lostfound/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"
)

const itemsIndex = "items"

// SearchService mirrors open items into Meilisearch. The index is a ranking
// aid only; callers re-check every hit against the item store.
type SearchService interface {
	IndexItem(item *entity.Item) error
	RemoveItem(id uuid.UUID) error
	SearchItemIDs(query, kind string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchService {
	s := &meiliSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"kind"}
	if _, err := s.client.Index(itemsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		zap.L().Warn("failed to update items filterable attributes", zap.Error(err))
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(itemsIndex).UpdateSortableAttributes(&sortable); err != nil {
		zap.L().Warn("failed to update items sortable attributes", zap.Error(err))
	}

	searchable := []string{"name", "description", "place"}
	if _, err := s.client.Index(itemsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		zap.L().Warn("failed to update items searchable attributes", zap.Error(err))
	}
}

type meiliItemDoc struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Place       string `json:"place"`
	CreatedAt   int64  `json:"created_at"`
}

func newItemDoc(item *entity.Item) meiliItemDoc {
	return meiliItemDoc{
		ID:          item.ID.String(),
		Kind:        item.Kind,
		Name:        sanitize.SingleLine(item.Name),
		Description: sanitize.SingleLine(item.Description),
		Place:       sanitize.SingleLine(item.Place),
		CreatedAt:   item.CreatedAt.Unix(),
	}
}

func (s *meiliSearchService) IndexItem(item *entity.Item) error {
	doc := newItemDoc(item)
	primaryKey := "id"
	task, err := s.client.Index(itemsIndex).AddDocuments([]meiliItemDoc{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("index item %s: %w", item.ID, err)
	}
	zap.L().Debug("indexed item", zap.String("item_id", doc.ID), zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (s *meiliSearchService) RemoveItem(id uuid.UUID) error {
	if _, err := s.client.Index(itemsIndex).DeleteDocument(id.String()); err != nil {
		return fmt.Errorf("remove item %s: %w", id, err)
	}
	return nil
}

func (s *meiliSearchService) SearchItemIDs(query, kind string, limit int) ([]uuid.UUID, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	if filter := kindFilter(kind); filter != "" {
		req.Filter = filter
	}

	raw, err := s.client.Index(itemsIndex).SearchRaw(query, req)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return decodeHitIDs(*raw)
}

func kindFilter(kind string) string {
	switch kind {
	case entity.ItemKindLost, entity.ItemKindFound:
		return fmt.Sprintf("kind = %q", kind)
	}
	return ""
}

// decodeHitIDs extracts hit ids in ranking order, skipping anything that is
// not a uuid.
func decodeHitIDs(raw []byte) ([]uuid.UUID, error) {
	var resp struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
