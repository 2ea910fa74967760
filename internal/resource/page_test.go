package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryNormalized(t *testing.T) {
	q := Query{Page: 0, PageSize: 7}.Normalized()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultPageSize, q.PageSize)

	q = Query{Page: 3, PageSize: 20}
	assert.Equal(t, uint64(40), q.Offset())
}

func TestQueryArgs(t *testing.T) {
	q := NewQuery().WithFilter("spbuId", 4)
	q.Page = 2
	args := q.Args([]Param{Eq("spbuId"), Offset(), Limit(), Eq("statusId")})
	assert.Equal(t, []any{uint64(4), uint64(10), uint64(10), uint64(0)}, args)

	cleared := q.WithFilter("spbuId", 0)
	assert.NotContains(t, cleared.Filters, "spbuId")
	assert.Contains(t, q.Filters, "spbuId", "WithFilter must not mutate the receiver")
}

func TestNextPageSize(t *testing.T) {
	assert.Equal(t, 20, NextPageSize(10))
	assert.Equal(t, 5, NextPageSize(100))
	assert.Equal(t, DefaultPageSize, NextPageSize(3))
}

func TestPageInfoWithTotal(t *testing.T) {
	total := uint64(23)
	q := Query{Page: 3, PageSize: 10}
	p := NewPageInfo([]int{1, 2, 3}, 3, q, &total)
	assert.True(t, p.TotalKnown)
	assert.False(t, p.HasNext())
	assert.True(t, p.HasPrev())
	assert.Equal(t, 3, p.Pages())
	assert.Equal(t, []int{1, 2, 3}, p.Window(2))

	q.Page = 2
	p = NewPageInfo([]int{}, 10, q, &total)
	assert.True(t, p.HasNext())
}

func TestPageInfoWindowLargeTotal(t *testing.T) {
	total := uint64(500)
	p := NewPageInfo([]int{}, 10, Query{Page: 10, PageSize: 10}, &total)
	assert.Equal(t, []int{8, 9, 10, 11, 12}, p.Window(2))

	p = NewPageInfo([]int{}, 10, Query{Page: 50, PageSize: 10}, &total)
	assert.Equal(t, []int{48, 49, 50}, p.Window(2))
}

func TestPageInfoInferred(t *testing.T) {
	q := Query{Page: 1, PageSize: 5}
	full := NewPageInfo([]int{1, 2, 3}, 5, q, nil)
	assert.False(t, full.TotalKnown)
	assert.True(t, full.HasNext(), "a full raw page means there may be more, even after filtering")
	assert.Equal(t, 0, full.Pages())
	assert.Equal(t, []int{1, 2}, full.Window(2))

	short := NewPageInfo([]int{1, 2}, 2, q, nil)
	assert.False(t, short.HasNext())
	assert.False(t, short.HasPrev())
	assert.Equal(t, []int{1}, short.Window(2))
}

func TestSelectionKeepsInsertionOrder(t *testing.T) {
	s := NewSelection()
	s.Toggle(5)
	s.Toggle(2)
	s.Toggle(9)
	s.Toggle(2)
	s.Toggle(2)
	assert.Equal(t, []uint64{5, 9, 2}, s.IDs())

	s.SelectAll([]uint64{1, 5, 7})
	assert.Equal(t, []uint64{5, 9, 2, 1, 7}, s.IDs())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.IDs())
}

func TestQueryArgsDateRange(t *testing.T) {
	q := NewQuery().WithFilter("dateFrom", 100).WithFilter("dateTo", 200)
	args := q.Args([]Param{From("date"), To("date"), Offset(), Limit()})
	assert.Equal(t, []any{uint64(100), uint64(200), uint64(0), uint64(10)}, args)
}

func TestFilterValue(t *testing.T) {
	from := Filter{Key: "dateFrom", Label: "Dari", Kind: KindDate}
	to := Filter{Key: "dateTo", Label: "Sampai", Kind: KindDate}

	start, err := from.Value("2024-03-01")
	assert.NoError(t, err)
	end, err := to.Value("2024-03-01")
	assert.NoError(t, err)
	assert.Equal(t, uint64(86399), end-start, "a To date covers the whole day")

	n, err := Filter{Key: "spbuId", Kind: KindRef}.Value(" 4 ")
	assert.NoError(t, err)
	assert.Equal(t, uint64(4), n)

	n, err = from.Value("")
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = from.Value("01/03/2024")
	assert.ErrorContains(t, err, "Dari")
	_, err = Filter{Key: "spbuId", Label: "SPBU"}.Value("x")
	assert.ErrorContains(t, err, "SPBU")
}
