package types

// Page is the offset/limit envelope returned by paginated list endpoints.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
}

// HasMore reports whether a further page exists. The invariant
// skip + returned_count < total must hold for every window, including the
// final partial page.
func (p Page[T]) HasMore() bool {
	return p.Skip+len(p.Items) < p.Total
}

// HasPrevious reports whether an earlier page exists.
func (p Page[T]) HasPrevious() bool {
	return p.Skip > 0
}
