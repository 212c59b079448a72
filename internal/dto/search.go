package dto

// AppearanceSearchRequest carries a free-text appearance description to
// the upstream relevance search.
type AppearanceSearchRequest struct {
	Appearance string `json:"appearance" validate:"required"`
	Status     string `json:"status" validate:"omitempty,oneof=searching informed deceased reunited"`
}

// SearchStateResponse reports the remote-search working set state.
type SearchStateResponse struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}
