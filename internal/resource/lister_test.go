package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/models"
)

func shiftResource() *Resource {
	return &Resource{
		Name:     "workHours",
		Title:    "Jam Kerja",
		Singular: "Jam Kerja",
		Fields: []Field{
			{Key: "name", Label: "Nama", Rules: "required,max=50"},
			{Key: "start", Label: "Mulai", Kind: KindClock, Rules: "required,hhmm"},
			{Key: "end", Label: "Selesai", Kind: KindClock, Rules: "required,hhmm"},
		},
		Relations: []Relation{
			{Key: "dayIds", Label: "Hari", Lookup: "days", Get: "getWorkHourDays", Min: 1, MinMessage: "Pilih minimal satu hari"},
		},
		Lookups: []Lookup{
			{Name: "days", Call: "getDays", Args: []any{uint64(0), uint64(100)}, Singular: "Hari"},
		},
		Columns: []Column{
			{Key: "name", Label: "Nama"},
			{Key: "start", Label: "Mulai", Kind: KindClock},
			{Key: "dayIds", Label: "Hari", Kind: KindIDs, Lookup: "days"},
		},
		Calls: Calls{
			List:   "getWorkHours",
			Count:  "getWorkHourCount",
			Get:    "getWorkHour",
			Create: "createWorkHour",
			Update: "updateWorkHour",
			Delete: "deleteWorkHour",
		},
		WriteArgs: []string{"name", "start", "end", "dayIds"},
		Check: func(in Input) error {
			start, err1 := calc.ParseClock(in.Text("start"))
			end, err2 := calc.ParseClock(in.Text("end"))
			if err1 == nil && err2 == nil && end <= start {
				return Rule("Jam selesai harus setelah jam mulai")
			}
			return nil
		},
	}
}

func shiftLedger() *fakeClient {
	c := newFake()
	c.on("getDays", func([]any) (any, error) {
		return []ledger.Record{
			{"id": uint64(1), "name": "Senin"},
			{"id": uint64(2), "name": "Selasa", "deleted": true},
		}, nil
	})
	c.on("getWorkHourCount", func([]any) (any, error) { return uint64(4), nil })
	c.on("getWorkHours", func(args []any) (any, error) {
		return []ledger.Record{
			{"id": uint64(1), "name": "Pagi", "start": uint64(480), "dayIds": []uint64{1, 99}},
			{"id": uint64(2), "name": "Hapus", "deleted": true},
			{"id": uint64(3), "name": "", "start": uint64(1439)},
			{"id": uint64(0)},
		}, nil
	})
	return c
}

func TestListerFetch(t *testing.T) {
	c := shiftLedger()
	var listArgs []any
	list := c.reads["getWorkHours"]
	c.on("getWorkHours", func(args []any) (any, error) {
		listArgs = args
		return list(args)
	})

	l := NewLister(c, shiftResource(), logging.Discard())
	page, err := l.Fetch(context.Background(), Query{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, []any{uint64(0), uint64(10)}, listArgs)
	require.Len(t, page.Items, 2, "deleted and zero-id records are dropped")
	assert.Equal(t, models.Row{
		ID:    1,
		Title: "Pagi",
		Cells: []string{"Pagi", "08:00", "Senin, Hari #99"},
	}, page.Items[0])
	assert.Equal(t, "Jam Kerja #3", page.Items[1].Title)
	assert.Equal(t, []string{"-", "23:59", "-"}, page.Items[1].Cells)

	assert.True(t, page.TotalKnown)
	assert.Equal(t, uint64(4), page.Total)
	assert.False(t, page.HasNext())

	assert.Equal(t, []models.Option{{ID: 1, Label: "Senin"}}, page.Lookups.Options("days"))
}

func TestListerInfersNextPageFromRawLength(t *testing.T) {
	c := shiftLedger()
	res := shiftResource()
	res.Calls.Count = ""

	page, err := NewLister(c, res, logging.Discard()).Fetch(context.Background(), Query{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.False(t, page.TotalKnown)
	assert.False(t, page.HasNext(), "4 raw records on a page of 5")

	c.on("getWorkHours", func([]any) (any, error) {
		recs := make([]ledger.Record, 5)
		for i := range recs {
			recs[i] = ledger.Record{"id": uint64(i + 1), "deleted": i%2 == 0}
		}
		return recs, nil
	})
	page, err = NewLister(c, res, logging.Discard()).Fetch(context.Background(), Query{Page: 1, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext())
}

func TestListerReadFailureIsFatal(t *testing.T) {
	c := shiftLedger()
	boom := errors.New("rpc down")
	c.on("getDays", func([]any) (any, error) { return nil, boom })

	_, err := NewLister(c, shiftResource(), logging.Discard()).Fetch(context.Background(), NewQuery())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestListerDelete(t *testing.T) {
	c := shiftLedger()
	l := NewLister(c, shiftResource(), logging.Discard())

	tx, err := l.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", tx.Hash)
	assert.Equal(t, []ledger.Call{{Function: "deleteWorkHour", Args: []any{uint64(3)}}}, c.written())

	c.werr = &ledger.RevertError{Function: "deleteWorkHour", Reason: "not found"}
	_, err = l.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, ledger.ErrReverted)
}

func TestFilterRows(t *testing.T) {
	rows := []models.Row{
		{ID: 1, Title: "Pertamax", Cells: []string{"Liter"}},
		{ID: 2, Title: "Solar", Cells: []string{"Liter"}},
		{ID: 3, Title: "Oli", Cells: []string{"Botol"}},
	}
	assert.Len(t, FilterRows(rows, ""), 3)
	assert.Len(t, FilterRows(rows, "liter"), 2)
	got := FilterRows(rows, "SOL")
	require.Len(t, got, 1)
	assert.Equal(t, uint64(2), got[0].ID)
}
