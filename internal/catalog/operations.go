package catalog

import (
	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

func Stations() *resource.Resource {
	return &resource.Resource{
		Name:     "stations",
		Title:    "SPBU",
		Singular: "SPBU",
		Section:  SectionOperations,
		Fields: []resource.Field{
			{Key: "code", Label: "Nomor SPBU", Rules: "required,max=20", Placeholder: "34.17101"},
			{Key: "name", Label: "Nama", Rules: "required,max=100"},
			{Key: "address", Label: "Alamat", Rules: "required,max=200"},
			{Key: "phone", Label: "Telepon", Rules: "required,phone_id", Placeholder: "081234567890"},
			{Key: "wallet", Label: "Wallet", Kind: resource.KindAddress, Rules: "eth_addr", Placeholder: "0x..."},
			{Key: "active", Label: "Aktif", Kind: resource.KindBool, Default: "true"},
		},
		Columns: []resource.Column{
			{Key: "code", Label: "Nomor"},
			{Key: "name", Label: "Nama"},
			{Key: "phone", Label: "Telepon"},
			{Key: "active", Label: "Aktif", Kind: resource.KindBool},
		},
		Calls:     crud("Station", "Stations"),
		WriteArgs: []string{"code", "name", "address", "phone", "wallet", "active"},
		Child:     &resource.ChildLink{Resource: "meterReadings", Key: "spbuId", Label: "Meter"},
	}
}

func Members() *resource.Resource {
	calls := crud("Member", "Members")
	calls.ListParams = []resource.Param{resource.Offset(), resource.Limit(), resource.Eq("spbuId")}
	calls.CountParams = []resource.Param{resource.Eq("spbuId")}
	calls.Simulate = true
	return &resource.Resource{
		Name:     "members",
		Title:    "Anggota",
		Singular: "Anggota",
		Section:  SectionOperations,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=100"},
			{Key: "nik", Label: "NIK", Rules: "required,nik", Placeholder: "16 digit"},
			{Key: "phone", Label: "Telepon", Rules: "required,phone_id", Placeholder: "081234567890"},
			{Key: "wallet", Label: "Wallet", Kind: resource.KindAddress, Rules: "required,eth_addr", Placeholder: "0x..."},
			stationField(),
		},
		Lookups: []resource.Lookup{stationLookup},
		Filters: []resource.Filter{stationFilter()},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
			{Key: "nik", Label: "NIK"},
			{Key: "phone", Label: "Telepon"},
			{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"},
		},
		Calls:     calls,
		WriteArgs: []string{"name", "nik", "phone", "wallet", "spbuId"},
	}
}

func Products() *resource.Resource {
	return &resource.Resource{
		Name:     "products",
		Title:    "Produk",
		Singular: "Produk",
		Section:  SectionOperations,
		Fields: []resource.Field{
			{Key: "code", Label: "Kode", Rules: "required,max=20", Placeholder: "PERTALITE"},
			{Key: "name", Label: "Nama", Rules: "required,max=100"},
			{Key: "unitId", Label: "Satuan", Kind: resource.KindRef, Lookup: "units", Rules: "required"},
			{Key: "price", Label: "Harga", Kind: resource.KindMoney, Rules: "required", NumRules: "gt=0", Placeholder: "10.000,00"},
			{Key: "active", Label: "Aktif", Kind: resource.KindBool, Default: "true"},
		},
		Lookups: []resource.Lookup{unitLookup},
		Columns: []resource.Column{
			{Key: "code", Label: "Kode"},
			{Key: "name", Label: "Nama"},
			{Key: "unitId", Label: "Satuan", Kind: resource.KindRef, Lookup: "units"},
			{Key: "price", Label: "Harga", Kind: resource.KindMoney},
		},
		Calls:     crud("Product", "Products"),
		WriteArgs: []string{"code", "name", "unitId", "price", "active"},
	}
}

func StockMonitoring() *resource.Resource {
	calls := crud("StockMonitoring", "StockMonitorings")
	calls.ListParams = []resource.Param{
		resource.Eq("spbuId"), resource.From("date"), resource.To("date"),
		resource.Offset(), resource.Limit(),
	}
	calls.CountParams = []resource.Param{resource.Eq("spbuId"), resource.From("date"), resource.To("date")}

	res := &resource.Resource{
		Name:     "stockMonitoring",
		Title:    "Monitoring Stok",
		Singular: "Stok",
		Section:  SectionOperations,
		TitleKey: "note",
		Fields: []resource.Field{
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate, Rules: "required", Placeholder: "2024-01-31"},
			stationField(),
			productField(),
			{Key: "opening", Label: "Stok Awal (L)", Kind: resource.KindScaled, Rules: "required"},
			{Key: "received", Label: "Penerimaan (L)", Kind: resource.KindScaled},
			{Key: "sold", Label: "Penjualan (L)", Kind: resource.KindScaled, Rules: "required"},
			{Key: "note", Label: "Catatan", Rules: "max=200"},
		},
		Lookups: []resource.Lookup{stationLookup, productLookup},
		Filters: []resource.Filter{
			stationFilter(),
			{Key: "dateFrom", Label: "Dari", Kind: resource.KindDate},
			{Key: "dateTo", Label: "Sampai", Kind: resource.KindDate},
		},
		Columns: []resource.Column{
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate},
			{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"},
			{Key: "productId", Label: "Produk", Kind: resource.KindRef, Lookup: "products"},
			liters("opening", "Awal"),
			liters("received", "Terima"),
			liters("sold", "Jual"),
			liters("closing", "Akhir"),
		},
		Calls:     calls,
		WriteArgs: []string{"spbuId", "productId", "date", "opening", "received", "sold", "closing"},
		Check: func(in resource.Input) error {
			_, err := closingStock(in)
			return err
		},
		Derive: func(in resource.Input) []models.Derived {
			closing, err := closingStock(in)
			if err != nil {
				return []models.Derived{{Label: "Stok Akhir", Value: err.Error()}}
			}
			return []models.Derived{{Label: "Stok Akhir", Value: calc.FormatLiters(int64(closing)), Emphasis: true}}
		},
	}
	res.Serialize = func(in resource.Input) ([]any, error) {
		args, err := fieldArgs(res, in, "spbuId", "productId", "date", "opening", "received", "sold")
		if err != nil {
			return nil, err
		}
		closing, err := closingStock(in)
		if err != nil {
			return nil, err
		}
		return append(args, closing), nil
	}
	return res
}

// closingStock is opening + received - sold, all scaled.
func closingStock(in resource.Input) (uint64, error) {
	opening, err := in.Scaled("opening")
	if err != nil {
		return 0, err
	}
	received, err := in.Scaled("received")
	if err != nil {
		return 0, err
	}
	sold, err := in.Scaled("sold")
	if err != nil {
		return 0, err
	}
	if sold > opening+received {
		return 0, resource.Rule("Penjualan melebihi stok awal ditambah penerimaan")
	}
	return opening + received - sold, nil
}

func MeterReadings() *resource.Resource {
	calls := crud("MeterReading", "MeterReadings")
	calls.ListParams = []resource.Param{resource.Eq("spbuId"), resource.Offset(), resource.Limit()}
	calls.CountParams = []resource.Param{resource.Eq("spbuId")}

	res := &resource.Resource{
		Name:     "meterReadings",
		Title:    "Pembacaan Meter",
		Singular: "Pembacaan",
		Section:  SectionOperations,
		Fields: []resource.Field{
			stationField(),
			{Key: "nozzle", Label: "Nozzle", Kind: resource.KindNumber, Rules: "required", NumRules: "gte=1,lte=99"},
			productField(),
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate, Rules: "required", Placeholder: "2024-01-31"},
			{Key: "startMeter", Label: "Meter Awal", Kind: resource.KindScaled, Rules: "required"},
			{Key: "endMeter", Label: "Meter Akhir", Kind: resource.KindScaled, Rules: "required"},
		},
		Lookups: []resource.Lookup{stationLookup, productLookup},
		Filters: []resource.Filter{stationFilter()},
		Columns: []resource.Column{
			{Key: "date", Label: "Tanggal", Kind: resource.KindDate},
			{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"},
			{Key: "nozzle", Label: "Nozzle", Kind: resource.KindNumber},
			{Key: "productId", Label: "Produk", Kind: resource.KindRef, Lookup: "products"},
			liters("volume", "Volume"),
		},
		Calls:     calls,
		WriteArgs: []string{"spbuId", "nozzle", "productId", "date", "startMeter", "endMeter", "volume"},
		Check: func(in resource.Input) error {
			_, err := meterVolume(in)
			return err
		},
		Derive: func(in resource.Input) []models.Derived {
			v, err := meterVolume(in)
			if err != nil {
				return []models.Derived{{Label: "Volume", Value: err.Error()}}
			}
			return []models.Derived{{Label: "Volume", Value: calc.FormatLiters(int64(v)), Emphasis: true}}
		},
	}
	res.Serialize = func(in resource.Input) ([]any, error) {
		args, err := fieldArgs(res, in, "spbuId", "nozzle", "productId", "date", "startMeter", "endMeter")
		if err != nil {
			return nil, err
		}
		v, err := meterVolume(in)
		if err != nil {
			return nil, err
		}
		return append(args, v), nil
	}
	return res
}

func meterVolume(in resource.Input) (uint64, error) {
	start, err := in.Scaled("startMeter")
	if err != nil {
		return 0, err
	}
	end, err := in.Scaled("endMeter")
	if err != nil {
		return 0, err
	}
	if end < start {
		return 0, resource.Rule("Meter akhir tidak boleh lebih kecil dari meter awal")
	}
	return end - start, nil
}

func liters(key, label string) resource.Column {
	return resource.Column{
		Key:   key,
		Label: label,
		Format: func(rec ledger.Record, _ resource.Lookups) string {
			return calc.FormatLiters(rec.Int(key))
		},
	}
}

// fieldArgs converts the named fields in order.
func fieldArgs(res *resource.Resource, in resource.Input, keys ...string) ([]any, error) {
	args := make([]any, 0, len(keys)+4)
	for _, key := range keys {
		f, ok := res.Field(key)
		if !ok {
			return nil, resource.Rule("unknown field " + key)
		}
		v, err := f.Arg(in.Values[key])
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}
