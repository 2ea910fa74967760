package devnet

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/catalog"
	"github.com/emilianohg/spbuadmin/internal/db"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

func newTestContract(t *testing.T) *Contract {
	t.Helper()
	database, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "devnet.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	c, err := New(database, catalog.Resources(), logging.Discard())
	require.NoError(t, err)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	n, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 10)

	again, err := c.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again, "seeding twice is a no-op")

	raw, err := c.Read(ctx, ledger.NewCall("getDays", uint64(0), uint64(10)))
	require.NoError(t, err)
	recs, err := ledger.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, recs, 7)
	assert.Equal(t, "Senin", recs[0].String("name"))
	assert.Equal(t, "Minggu", recs[6].String("name"))

	head, err := c.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(n), head)
}

func TestLifecycleWithRelations(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	tx, err := c.Write(ctx, ledger.NewCall("createWorkHour", "Pagi", uint64(510), uint64(960), []uint64{2, 5, 9}))
	require.NoError(t, err)
	assert.Len(t, tx.Hash, 66)
	assert.Equal(t, uint64(1), tx.Block)

	raw, err := c.Read(ctx, ledger.NewCall("getWorkHour", uint64(1)))
	require.NoError(t, err)
	rec, ok, err := ledger.NormalizeOne(raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.Exists())
	assert.Equal(t, "Pagi", rec.String("name"))
	assert.Equal(t, uint64(510), rec.Uint("start"))
	assert.Equal(t, int64(1700000000), rec.CreatedAt().Unix())

	raw, err = c.Read(ctx, ledger.NewCall("getWorkHourDays", uint64(1)))
	require.NoError(t, err)
	ids, err := ledger.IDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 5, 9}, ids, "relation order is preserved")

	_, err = c.Write(ctx, ledger.NewCall("updateWorkHour", uint64(1), "Pagi", uint64(480), uint64(960), []uint64{9, 1}))
	require.NoError(t, err)
	raw, err = c.Read(ctx, ledger.NewCall("getWorkHourDays", uint64(1)))
	require.NoError(t, err)
	ids, err = ledger.IDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []uint64{9, 1}, ids, "updates replace the whole set")

	_, err = c.Write(ctx, ledger.NewCall("deleteWorkHour", uint64(1)))
	require.NoError(t, err)

	raw, err = c.Read(ctx, ledger.NewCall("getWorkHour", uint64(1)))
	require.NoError(t, err)
	rec, _, err = ledger.NormalizeOne(raw)
	require.NoError(t, err)
	assert.True(t, rec.Deleted())
	assert.False(t, rec.Exists())

	_, err = c.Write(ctx, ledger.NewCall("deleteWorkHour", uint64(1)))
	var revert *ledger.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "Jam Kerja tidak ditemukan", revert.Reason)

	_, err = c.Write(ctx, ledger.NewCall("updateWorkHour", uint64(1), "x", uint64(1), uint64(2), []uint64{1}))
	assert.ErrorIs(t, err, ledger.ErrReverted)
}

func TestMissingRecordIsZeroStruct(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	raw, err := c.Read(ctx, ledger.NewCall("getProduct", uint64(999)))
	require.NoError(t, err)
	rec, _, err := ledger.NormalizeOne(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.ID())
	assert.False(t, rec.Deleted())

	_, err = resource.NewLoader(c, catalog.Products()).Load(ctx, 999)
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestCallErrors(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	_, err := c.Read(ctx, ledger.NewCall("getNothing"))
	assert.ErrorIs(t, err, ledger.ErrUnknownFunction)

	_, err = c.Read(ctx, ledger.NewCall("createUnit", "Liter", "L"))
	assert.ErrorIs(t, err, ledger.ErrBadArguments)

	_, err = c.Write(ctx, ledger.NewCall("getUnits", uint64(0), uint64(1)))
	assert.ErrorIs(t, err, ledger.ErrBadArguments)

	_, err = c.Write(ctx, ledger.NewCall("createUnit", "Liter"))
	assert.ErrorIs(t, err, ledger.ErrBadArguments)

	_, err = c.Read(ctx, ledger.NewCall("getUnits", "zero", uint64(1)))
	assert.ErrorIs(t, err, ledger.ErrBadArguments)
}

func TestSimulateDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)

	err := c.Simulate(ctx, ledger.NewCall("createUnit", "Liter", "L"))
	require.NoError(t, err)
	head, err := c.Head(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), head)

	err = c.Simulate(ctx, ledger.NewCall("deleteUnit", uint64(3)))
	assert.ErrorIs(t, err, ledger.ErrReverted)

	tx, err := c.SimulateThenWrite(ctx, ledger.NewCall("createUnit", "Liter", "L"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tx.Block)
}

func TestListerOverDevnet(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := c.Write(ctx, ledger.NewCall("createTag", name))
		require.NoError(t, err)
	}
	_, err := c.Write(ctx, ledger.NewCall("deleteTag", uint64(2)))
	require.NoError(t, err)

	l := resource.NewLister(c, catalog.Tags(), logging.Discard())
	page, err := l.Fetch(ctx, resource.Query{Page: 1, PageSize: 5})
	require.NoError(t, err)

	titles := make([]string, len(page.Items))
	for i, row := range page.Items {
		titles[i] = row.Title
	}
	assert.Equal(t, []string{"A", "C", "D", "E"}, titles)
	assert.True(t, page.TotalKnown)
	assert.Equal(t, uint64(6), page.Total)
	assert.True(t, page.HasNext())

	page, err = l.Fetch(ctx, resource.Query{Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "F", page.Items[0].Title)
	assert.False(t, page.HasNext())
}

func TestFilteredListing(t *testing.T) {
	ctx := context.Background()
	c := newTestContract(t)
	_, err := c.Seed(ctx)
	require.NoError(t, err)

	_, err = c.Write(ctx, ledger.NewCall("createMeterReading",
		uint64(2), uint64(1), uint64(1), uint64(1700000000), uint64(0), uint64(100), uint64(100)))
	require.NoError(t, err)

	l := resource.NewLister(c, catalog.MeterReadings(), logging.Discard())
	q := resource.NewQuery().WithFilter("spbuId", 1)
	page, err := l.Fetch(ctx, q)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint64(1), page.Total)
	assert.Equal(t, "SPBU Cibubur", page.Items[0].Cells[1])

	page, err = l.Fetch(ctx, resource.NewQuery())
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, "SPBU #2", page.Items[1].Cells[1], "unknown station falls back to a placeholder")
}
