// Package catalog binds every dashboard entity to the contract ABI. Each
// descriptor names the contract functions and the positional order of their
// arguments, so this package is the only place argument order is decided.
package catalog

import (
	"github.com/emilianohg/spbuadmin/internal/resource"
)

const (
	SectionMaster      = "Master Data"
	SectionOperations  = "Operasional"
	SectionProcurement = "Pengadaan"
	SectionContent     = "Konten"
)

// LookupLimit bounds auxiliary list reads used for name resolution.
const LookupLimit = 1000

// Resources returns fresh descriptors for every entity, in menu order.
func Resources() []*resource.Resource {
	return []*resource.Resource{
		Stations(),
		Members(),
		Products(),
		StockMonitoring(),
		MeterReadings(),
		ProcurementPlans(),
		Purchases(),
		Days(),
		WorkHours(),
		Units(),
		PurchaseStatuses(),
		Articles(),
		Categories(),
		Tags(),
	}
}

// New builds the registry of every entity.
func New() (*resource.Registry, error) {
	return resource.NewRegistry(Resources()...)
}

func lookup(name, call, singular string) resource.Lookup {
	return resource.Lookup{
		Name:     name,
		Call:     call,
		Args:     []any{uint64(0), uint64(LookupLimit)},
		Singular: singular,
	}
}

var (
	stationLookup  = lookup("stations", "getStations", "SPBU")
	productLookup  = lookup("products", "getProducts", "Produk")
	unitLookup     = lookup("units", "getUnits", "Satuan")
	dayLookup      = lookup("days", "getDays", "Hari")
	statusLookup   = lookup("purchaseStatuses", "getPurchaseStatuses", "Status")
	categoryLookup = lookup("categories", "getCategories", "Kategori")
	tagLookup      = lookup("tags", "getTags", "Tag")
)

// crud names the usual function set: get<Plural>, get<Singular>Count,
// get<Singular> and create/update/delete<Singular>.
func crud(singular, plural string) resource.Calls {
	return resource.Calls{
		List:   "get" + plural,
		Count:  "get" + singular + "Count",
		Get:    "get" + singular,
		Create: "create" + singular,
		Update: "update" + singular,
		Delete: "delete" + singular,
	}
}

func stationField() resource.Field {
	return resource.Field{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations", Rules: "required"}
}

func productField() resource.Field {
	return resource.Field{Key: "productId", Label: "Produk", Kind: resource.KindRef, Lookup: "products", Rules: "required"}
}

func stationFilter() resource.Filter {
	return resource.Filter{Key: "spbuId", Label: "SPBU", Kind: resource.KindRef, Lookup: "stations"}
}
