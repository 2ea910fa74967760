package resource

// PageInfo is what every list fetch returns. When the contract exposes no
// count, TotalKnown is false and HasMore is inferred from a full page.
type PageInfo[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	HasMore    bool
	TotalKnown bool
	Total      uint64
}

// NewPageInfo builds the page result. fetched is the number of raw records
// the contract returned, before soft-deleted ones were dropped.
func NewPageInfo[T any](items []T, fetched int, q Query, total *uint64) PageInfo[T] {
	q = q.Normalized()
	p := PageInfo[T]{
		Items:    items,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if total != nil {
		p.TotalKnown = true
		p.Total = *total
		p.HasMore = uint64(q.Page)*uint64(q.PageSize) < *total
	} else {
		p.HasMore = fetched == q.PageSize
	}
	return p
}

func (p PageInfo[T]) HasPrev() bool {
	return p.Page > 1
}

func (p PageInfo[T]) HasNext() bool {
	return p.HasMore
}

// Pages is the page count, or 0 when the total is unknown.
func (p PageInfo[T]) Pages() int {
	if !p.TotalKnown || p.PageSize <= 0 {
		return 0
	}
	return int((p.Total + uint64(p.PageSize) - 1) / uint64(p.PageSize))
}

// Window lists the page numbers to render. With a known total it is every
// page when there are few, otherwise radius pages either side of the
// current one. Without a total it stops at the current page, plus the
// next one when a next page exists.
func (p PageInfo[T]) Window(radius int) []int {
	lo := max(1, p.Page-radius)
	var hi int
	if p.TotalKnown {
		pages := p.Pages()
		if pages <= 2*radius+1 {
			lo = 1
			hi = pages
		} else {
			hi = min(pages, p.Page+radius)
		}
	} else {
		hi = p.Page
		if p.HasMore {
			hi++
		}
	}
	var out []int
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
