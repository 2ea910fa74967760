package httpledger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/catalog"
	"github.com/emilianohg/spbuadmin/internal/db"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/ledger/devnet"
	"github.com/emilianohg/spbuadmin/internal/ledger/httpledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

func newServer(t *testing.T) *httpledger.Client {
	t.Helper()
	database, err := db.OpenAndMigrate(filepath.Join(t.TempDir(), "devnet.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	contract, err := devnet.New(database, catalog.Resources(), logging.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(devnet.NewHandler(contract, logging.Discard()))
	t.Cleanup(srv.Close)
	return httpledger.New(srv.URL+"/", srv.Client(), logging.Discard())
}

func TestReadWriteOverHTTP(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	head, err := c.Ping(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), head)

	tx, err := c.Write(ctx, ledger.NewCall("createWorkHour", "Pagi", uint64(510), uint64(960), []uint64{3, 1}))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tx.Block)
	assert.Len(t, tx.Hash, 66)

	raw, err := c.Read(ctx, ledger.NewCall("getWorkHour", uint64(1)))
	require.NoError(t, err)
	rec, ok, err := ledger.NormalizeOne(raw)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Pagi", rec.String("name"))
	assert.Equal(t, uint64(960), rec.Uint("end"))

	raw, err = c.Read(ctx, ledger.NewCall("getWorkHourDays", uint64(1)))
	require.NoError(t, err)
	ids, err := ledger.IDs(raw)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, ids)

	raw, err = c.Read(ctx, ledger.NewCall("getWorkHourCount"))
	require.NoError(t, err)
	n, err := ledger.Scalar(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestErrorMapping(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	_, err := c.SimulateThenWrite(ctx, ledger.NewCall("deleteUnit", uint64(9)))
	var revert *ledger.RevertError
	require.ErrorAs(t, err, &revert)
	assert.Equal(t, "Satuan tidak ditemukan", revert.Reason)

	_, err = c.Read(ctx, ledger.NewCall("getNothing"))
	assert.ErrorIs(t, err, ledger.ErrUnknownFunction)

	_, err = c.Write(ctx, ledger.NewCall("createUnit", "Liter"))
	assert.ErrorIs(t, err, ledger.ErrBadArguments)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := httpledger.New(url, nil, logging.Discard())
	_, err := c.Ping(context.Background())
	assert.Error(t, err)
}

func TestFormSubmitOverHTTP(t *testing.T) {
	ctx := context.Background()
	c := newServer(t)

	f := resource.NewForm(c, catalog.Tags(), logging.Discard())
	f.Set("name", "promo")
	tx, err := f.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tx.Block)
	assert.Equal(t, resource.StateSucceeded, f.State())

	page, err := resource.NewLister(c, catalog.Tags(), logging.Discard()).Fetch(ctx, resource.NewQuery())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "promo", page.Items[0].Title)
}
