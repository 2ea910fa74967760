package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

type recorder struct {
	calls []ledger.Call
}

func (r *recorder) Read(context.Context, ledger.Call) (any, error) {
	return nil, ledger.ErrUnknownFunction
}

func (r *recorder) Write(_ context.Context, call ledger.Call) (ledger.TxResult, error) {
	r.calls = append(r.calls, call)
	return ledger.TxResult{Hash: "0x1", Block: 1}, nil
}

func (r *recorder) SimulateThenWrite(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	return r.Write(ctx, call)
}

func submit(t *testing.T, res *resource.Resource, values map[string]string, selected map[string][]uint64) ledger.Call {
	t.Helper()
	rec := &recorder{}
	f := resource.NewForm(rec, res, logging.Discard())
	for k, v := range values {
		f.Set(k, v)
	}
	for rel, ids := range selected {
		for _, id := range ids {
			f.Toggle(rel, id)
		}
	}
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	return rec.calls[0]
}

func TestRegistry(t *testing.T) {
	reg, err := New()
	require.NoError(t, err)
	assert.Len(t, reg.All(), 14)

	sections, groups := reg.Sections()
	assert.Equal(t, []string{SectionOperations, SectionProcurement, SectionMaster, SectionContent}, sections)
	assert.Len(t, groups[SectionProcurement], 2)

	for _, res := range reg.All() {
		if res.Child != nil {
			_, ok := reg.Get(res.Child.Resource)
			assert.True(t, ok, "%s links to unknown %s", res.Name, res.Child.Resource)
		}
	}
}

func TestWorkHoursSerialize(t *testing.T) {
	call := submit(t, WorkHours(), map[string]string{
		"name":  "Pagi",
		"start": "08:30",
		"end":   "23:59",
	}, map[string][]uint64{"dayIds": {2, 5, 9}})

	assert.Equal(t, "createWorkHour", call.Function)
	assert.Equal(t, []any{"Pagi", uint64(510), uint64(1439), []uint64{2, 5, 9}}, call.Args)
}

func TestWorkHoursRequiresADay(t *testing.T) {
	f := resource.NewForm(&recorder{}, WorkHours(), logging.Discard())
	f.Set("name", "Pagi")
	f.Set("start", "06:00")
	f.Set("end", "14:00")
	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, resource.ErrInvalid)
	assert.Equal(t, "Pilih minimal satu hari", f.RuleError())
}

func TestProcurementPlanSplitsIntoTankers(t *testing.T) {
	call := submit(t, ProcurementPlans(), map[string]string{
		"spbuId":    "1",
		"productId": "2",
		"date":      "2024-03-01",
		"totalQty":  "20.000,00",
		"note":      "Maret",
	}, nil)

	require.Len(t, call.Args, 5)
	assert.Equal(t, uint64(1), call.Args[0])
	assert.Equal(t, uint64(2), call.Args[1])
	assert.Equal(t, []uint64{800000, 800000, 400000}, call.Args[3])
	assert.Equal(t, "Maret", call.Args[4])
}

func TestProcurementPlanPlaceholderVolume(t *testing.T) {
	var placeholder string
	for _, f := range ProcurementPlans().Fields {
		if f.Key == "totalQty" {
			placeholder = f.Placeholder
		}
	}
	require.NotEmpty(t, placeholder)

	call := submit(t, ProcurementPlans(), map[string]string{
		"spbuId":    "1",
		"productId": "2",
		"date":      "2024-03-01",
		"totalQty":  placeholder,
	}, nil)
	assert.Equal(t, []uint64{800000, 800000, 400000}, call.Args[3], "%q is twenty thousand litres", placeholder)
}

func TestProcurementPlanPreview(t *testing.T) {
	res := ProcurementPlans()
	lines := res.Derive(resource.Input{Values: resource.Values{"totalQty": "16000"}})
	require.Len(t, lines, 3)
	assert.Equal(t, "2", lines[0].Value)
	assert.Equal(t, "8.000,00 L", lines[2].Value)
}

func TestPurchaseTaxes(t *testing.T) {
	call := submit(t, Purchases(), map[string]string{
		"invoice":   "INV-001",
		"date":      "2024-03-01",
		"spbuId":    "1",
		"productId": "2",
		"statusId":  "1",
		"totalQty":  "1000",
		"unitPrice": "100",
	}, nil)

	assert.Equal(t, "createPurchase", call.Function)
	require.Len(t, call.Args, 10)
	assert.Equal(t, []uint64{100000}, call.Args[5])
	assert.Equal(t, []uint64{10000}, call.Args[6])
	assert.Equal(t, uint64(1100000), call.Args[7], "ppn 11% of 100000")
	assert.Equal(t, uint64(545000), call.Args[8], "ppbkb 5.45%")
	assert.Equal(t, uint64(25000), call.Args[9], "pph 0.25%")

	lines := Purchases().Derive(resource.Input{Values: resource.Values{"totalQty": "1000", "unitPrice": "100"}})
	require.NotEmpty(t, lines)
	assert.Equal(t, "Rp 116.700,00", lines[len(lines)-1].Value)
}

func TestPurchaseEditDerivesRates(t *testing.T) {
	res := Purchases()
	rec := ledger.Record{
		"id":         uint64(4),
		"invoice":    "INV-004",
		"quantities": []uint64{800000, 200000},
		"unitPrices": []uint64{1000000, 1000000},
		"ppn":        uint64(1200000000),
		"ppbkb":      uint64(0),
		"pph":        uint64(3000000),
	}
	f := resource.NewEditForm(&recorder{}, res, logging.Discard(), 4)
	require.True(t, f.Populate(resource.Entry{Record: rec}))

	assert.Equal(t, "10000", f.Value("totalQty"))
	assert.Equal(t, "10000", f.Value("unitPrice"))
	assert.Equal(t, "12", f.Value("ppnRate"))
	assert.Equal(t, "0", f.Value("ppbkbRate"))
	assert.Equal(t, "0.03", f.Value("pphRate"))
}

func TestPurchaseEditZeroNetUsesDefaults(t *testing.T) {
	f := resource.NewEditForm(&recorder{}, Purchases(), logging.Discard(), 5)
	f.Populate(resource.Entry{Record: ledger.Record{"id": uint64(5)}})
	assert.Equal(t, "11", f.Value("ppnRate"))
	assert.Equal(t, "5.45", f.Value("ppbkbRate"))
	assert.Equal(t, "0.25", f.Value("pphRate"))
}

func TestMeterReadingVolume(t *testing.T) {
	values := map[string]string{
		"spbuId":     "1",
		"nozzle":     "3",
		"productId":  "2",
		"date":       "2024-03-01",
		"startMeter": "1000,50",
		"endMeter":   "1250,75",
	}
	call := submit(t, MeterReadings(), values, nil)
	assert.Equal(t, uint64(25025), call.Args[6])

	f := resource.NewForm(&recorder{}, MeterReadings(), logging.Discard())
	for k, v := range values {
		f.Set(k, v)
	}
	f.Set("endMeter", "900")
	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Meter akhir tidak boleh lebih kecil dari meter awal", f.RuleError())
}

func TestStockClosing(t *testing.T) {
	call := submit(t, StockMonitoring(), map[string]string{
		"date":      "2024-03-01",
		"spbuId":    "1",
		"productId": "2",
		"opening":   "5000",
		"received":  "8000",
		"sold":      "6500,5",
	}, nil)
	assert.Equal(t, uint64(649950), call.Args[6])
}

func TestMemberValidation(t *testing.T) {
	f := resource.NewForm(&recorder{}, Members(), logging.Discard())
	f.Set("name", "Budi")
	f.Set("nik", "12345")
	f.Set("phone", "12345")
	f.Set("wallet", "0xZZ")
	f.Set("spbuId", "1")
	_, err := f.Submit(context.Background())
	require.ErrorIs(t, err, resource.ErrInvalid)
	assert.NotEmpty(t, f.FieldError("nik"))
	assert.NotEmpty(t, f.FieldError("phone"))
	assert.NotEmpty(t, f.FieldError("wallet"))
	assert.Empty(t, f.FieldError("name"))
}
