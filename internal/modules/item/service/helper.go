package service

import (
	"anoa.com/lostfound/internal/entity"
	itemDto "anoa.com/lostfound/internal/modules/item/dto"
)

// MapToResponse never copies the challenge hash; callers only learn whether
// one is set.
func MapToResponse(item *entity.Item) itemDto.ItemResponse {
	reporter := itemDto.ReporterResponse{ID: item.ReporterID, Username: "unknown"}
	if item.Reporter != nil && item.Reporter.Username != "" {
		reporter.Username = item.Reporter.Username
	}

	return itemDto.ItemResponse{
		ID:               item.ID,
		Kind:             item.Kind,
		Name:             item.Name,
		Place:            item.Place,
		IncidentTime:     item.IncidentTime,
		Contact:          item.Contact,
		Description:      item.Description,
		Reward:           item.Reward,
		Latitude:         item.Latitude,
		Longitude:        item.Longitude,
		ImageURL:         item.ImageURL,
		SecurityQuestion: item.SecurityQuestion,
		HasChallenge:     item.HasChallenge(),
		Resolved:         item.Resolved,
		ResolvedAt:       item.ResolvedAt,
		ClaimCount:       item.ClaimCount,
		Reporter:         reporter,
		CreatedAt:        item.CreatedAt,
	}
}

func mapAll(items []entity.Item) []itemDto.ItemResponse {
	out := make([]itemDto.ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, MapToResponse(&items[i]))
	}
	return out
}
