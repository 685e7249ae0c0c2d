package dto

type StatsResponse struct {
	Users         int64   `json:"users"`
	Items         int64   `json:"items"`
	Lost          int64   `json:"lost"`
	Found         int64   `json:"found"`
	Resolved      int64   `json:"resolved"`
	ActiveItems   int64   `json:"active_items"`
	ResolvedRatio float64 `json:"resolved_ratio"`
}
