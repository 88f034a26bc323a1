// Package review drives the evaluation run/score/human-review flow: paging
// through runs and scores, validating run creation, and submitting human
// override scores.
package review

// Pager is an offset/limit window over a paginated listing.
type Pager struct {
	Skip  int
	Limit int
}

// NewPager returns a Pager at the first window.
func NewPager(limit int) Pager {
	if limit < 1 {
		limit = 1
	}
	return Pager{Skip: 0, Limit: limit}
}

// HasMore reports whether a page after the current window exists.
func HasMore(skip, returned, total int) bool {
	return skip+returned < total
}

// HasPrevious reports whether a page before the current window exists.
func HasPrevious(skip int) bool {
	return skip > 0
}

// Next advances the window by exactly one limit when more results exist,
// otherwise returns the pager unchanged.
func (p Pager) Next(returned, total int) Pager {
	if !HasMore(p.Skip, returned, total) {
		return p
	}
	p.Skip += p.Limit
	return p
}

// Prev moves the window back by exactly one limit, clamped at zero.
func (p Pager) Prev() Pager {
	p.Skip -= p.Limit
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}
