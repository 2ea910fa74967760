package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

// maxChunkLines caps how many tanker lines the form preview lists.
const maxChunkLines = 8

func ProcurementPlans() *resource.Resource {
	res := &resource.Resource{
		Name:     "procurementPlans",
		Title:    "Rencana Pengadaan",
		Singular: "Rencana",
		Section:  SectionProcurement,
		TitleKey: "note",
		Fields: []resource.Field{
			stationField(),
			productField(),
			{Key: "date", Label: "Tanggal Rencana", Kind: resource.KindDate, Rules: "required", Placeholder: "2024-01-31"},
			{Key: "totalQty", Label: "Total Volume (L)", Kind: resource.KindScaled, Rules: "required", NumRules: "gt=0", Virtual: true, Placeholder: "20.000"},
			{Key: "note", Label: "Catatan", Rules: "max=200"},
		},
		Lookups: []resource.Lookup{stationLookup, productLookup},
		Columns: []resource.Column{
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate},
			{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"},
			{Key: "productId", Label: "Produk", Kind: resource.KindRef, Lookup: "products"},
			{Key: "quantities", Label: "Total", Format: func(rec ledger.Record, _ resource.Lookups) string {
				return calc.FormatLiters(int64(calc.SumChunks(rec.Uints("quantities"))))
			}},
			{Key: "quantities", Label: "Tangki", Format: func(rec ledger.Record, _ resource.Lookups) string {
				return calc.FormatCount(uint64(len(rec.Uints("quantities"))))
			}},
		},
		Calls:     crud("ProcurementPlan", "ProcurementPlans"),
		WriteArgs: []string{"spbuId", "productId", "date", "quantities", "note"},
		Populate: func(e resource.Entry, v resource.Values) {
			v["totalQty"] = calc.FormatScaled(int64(calc.SumChunks(e.Record.Uints("quantities"))))
		},
		Derive: func(in resource.Input) []models.Derived {
			total, err := in.Scaled("totalQty")
			if err != nil || total == 0 {
				return nil
			}
			return chunkLines(calc.SplitChunks(total, calc.TankerUnit))
		},
	}
	res.Serialize = func(in resource.Input) ([]any, error) {
		args, err := fieldArgs(res, in, "spbuId", "productId", "date")
		if err != nil {
			return nil, err
		}
		total, err := in.Scaled("totalQty")
		if err != nil {
			return nil, err
		}
		return append(args, calc.SplitChunks(total, calc.TankerUnit), in.Text("note")), nil
	}
	return res
}

func chunkLines(chunks []uint64) []models.Derived {
	out := []models.Derived{{Label: "Jumlah Tangki", Value: calc.FormatCount(uint64(len(chunks))), Emphasis: true}}
	for i, c := range chunks {
		if i == maxChunkLines {
			out = append(out, models.Derived{Label: "...", Value: fmt.Sprintf("%d tangki lagi", len(chunks)-i)})
			break
		}
		out = append(out, models.Derived{Label: fmt.Sprintf("Tangki %d", i+1), Value: calc.FormatLiters(int64(c))})
	}
	return out
}

func Purchases() *resource.Resource {
	calls := crud("Purchase", "Purchases")
	calls.Count = ""
	calls.ListParams = []resource.Param{resource.Offset(), resource.Limit(), resource.Eq("statusId")}
	calls.Simulate = true

	res := &resource.Resource{
		Name:     "purchases",
		Title:    "Pembelian",
		Singular: "Pembelian",
		Section:  SectionProcurement,
		TitleKey: "invoice",
		Fields: []resource.Field{
			{Key: "invoice", Label: "No. Faktur", Rules: "required,max=50"},
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate, Rules: "required", Placeholder: "2024-01-31"},
			stationField(),
			productField(),
			{Key: "statusId", Label: "Status", Kind: resource.KindRef, Lookup: "purchaseStatuses", Rules: "required"},
			{Key: "totalQty", Label: "Total Volume (L)", Kind: resource.KindScaled, Rules: "required", NumRules: "gt=0", Virtual: true},
			{Key: "unitPrice", Label: "Harga per Liter", Kind: resource.KindMoney, Rules: "required", NumRules: "gt=0", Virtual: true},
			{Key: "ppnRate", Label: "PPN (%)", Kind: resource.KindScaled, NumRules: "gte=0,lte=100", Virtual: true, Default: calc.DefaultTaxRates.PPN.String()},
			{Key: "ppbkbRate", Label: "PPBKB (%)", Kind: resource.KindScaled, NumRules: "gte=0,lte=100", Virtual: true, Default: calc.DefaultTaxRates.PPBKB.String()},
			{Key: "pphRate", Label: "PPh (%)", Kind: resource.KindScaled, NumRules: "gte=0,lte=100", Virtual: true, Default: calc.DefaultTaxRates.PPh.String()},
		},
		Lookups: []resource.Lookup{stationLookup, productLookup, statusLookup},
		Filters: []resource.Filter{
			{Key: "statusId", Label: "Status", Kind: resource.KindRef, Lookup: "purchaseStatuses"},
		},
		Columns: []resource.Column{
			{Key: "invoice", Label: "Faktur"},
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate},
			{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"},
			{Key: "statusId", Label: "Status", Kind: resource.KindRef, Lookup: "purchaseStatuses"},
			{Key: "gross", Label: "Total", Format: func(rec ledger.Record, _ resource.Lookups) string {
				gross := calc.NetPrice(recordLines(rec)).
					Add(calc.Descale(rec.Int("ppn"))).
					Add(calc.Descale(rec.Int("ppbkb"))).
					Add(calc.Descale(rec.Int("pph")))
				return calc.FormatRupiah(calc.Scale(gross))
			}},
		},
		Calls:     calls,
		WriteArgs: []string{"spbuId", "productId", "statusId", "date", "invoice", "quantities", "unitPrices", "ppn", "ppbkb", "pph"},
		Populate:  populatePurchase,
		Derive: func(in resource.Input) []models.Derived {
			lines, err := purchaseLines(in)
			if err != nil || len(lines) == 0 {
				return nil
			}
			rates := inputRates(in)
			s := calc.Summarize(calc.NetPrice(lines), rates)
			return []models.Derived{
				{Label: "Harga Bersih", Value: rupiah(s.Net)},
				{Label: "PPN " + rates.PPN.String() + "%", Value: rupiah(s.PPN)},
				{Label: "PPBKB " + rates.PPBKB.String() + "%", Value: rupiah(s.PPBKB)},
				{Label: "PPh " + rates.PPh.String() + "%", Value: rupiah(s.PPh)},
				{Label: "Total", Value: rupiah(s.Gross), Emphasis: true},
			}
		},
	}
	res.Serialize = func(in resource.Input) ([]any, error) {
		args, err := fieldArgs(res, in, "spbuId", "productId", "statusId", "date", "invoice")
		if err != nil {
			return nil, err
		}
		lines, err := purchaseLines(in)
		if err != nil {
			return nil, err
		}
		quantities := make([]uint64, len(lines))
		prices := make([]uint64, len(lines))
		for i, l := range lines {
			quantities[i] = uint64(calc.Scale(l.Quantity))
			prices[i] = uint64(calc.Scale(l.UnitPrice))
		}
		s := calc.Summarize(calc.NetPrice(lines), inputRates(in))
		return append(args,
			quantities,
			prices,
			uint64(calc.Scale(s.PPN)),
			uint64(calc.Scale(s.PPBKB)),
			uint64(calc.Scale(s.PPh)),
		), nil
	}
	return res
}

// purchaseLines splits the ordered volume into tanker loads at one price.
func purchaseLines(in resource.Input) ([]calc.Line, error) {
	total, err := in.Scaled("totalQty")
	if err != nil {
		return nil, err
	}
	price, err := in.Scaled("unitPrice")
	if err != nil {
		return nil, err
	}
	chunks := calc.SplitChunks(total, calc.TankerUnit)
	lines := make([]calc.Line, len(chunks))
	for i, c := range chunks {
		lines[i] = calc.Line{Quantity: calc.Descale(int64(c)), UnitPrice: calc.Descale(int64(price))}
	}
	return lines, nil
}

func inputRates(in resource.Input) calc.TaxRates {
	rate := func(key string, def decimal.Decimal) decimal.Decimal {
		if in.Text(key) == "" {
			return def
		}
		return in.Decimal(key)
	}
	return calc.TaxRates{
		PPN:   rate("ppnRate", calc.DefaultTaxRates.PPN),
		PPBKB: rate("ppbkbRate", calc.DefaultTaxRates.PPBKB),
		PPh:   rate("pphRate", calc.DefaultTaxRates.PPh),
	}
}

func recordLines(rec ledger.Record) []calc.Line {
	qty := rec.Uints("quantities")
	prices := rec.Uints("unitPrices")
	n := min(len(qty), len(prices))
	lines := make([]calc.Line, n)
	for i := 0; i < n; i++ {
		lines[i] = calc.Line{Quantity: calc.Descale(int64(qty[i])), UnitPrice: calc.Descale(int64(prices[i]))}
	}
	return lines
}

// populatePurchase rebuilds the virtual inputs of an edit form. Rates come
// from the stored nominal taxes relative to the stored net price.
func populatePurchase(e resource.Entry, v resource.Values) {
	rec := e.Record
	v["totalQty"] = calc.FormatScaled(int64(calc.SumChunks(rec.Uints("quantities"))))
	if prices := rec.Uints("unitPrices"); len(prices) > 0 {
		v["unitPrice"] = calc.FormatScaled(int64(prices[0]))
	}
	rates := calc.DeriveRates(
		calc.NetPrice(recordLines(rec)),
		calc.Descale(rec.Int("ppn")),
		calc.Descale(rec.Int("ppbkb")),
		calc.Descale(rec.Int("pph")),
	)
	v["ppnRate"] = rates.PPN.String()
	v["ppbkbRate"] = rates.PPBKB.String()
	v["pphRate"] = rates.PPh.String()
}

func rupiah(d decimal.Decimal) string {
	return calc.FormatRupiah(calc.Scale(d))
}
