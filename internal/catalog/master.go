package catalog

import (
	"strconv"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

func Days() *resource.Resource {
	return &resource.Resource{
		Name:     "days",
		Title:    "Hari",
		Singular: "Hari",
		Section:  SectionMaster,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=20", Placeholder: "Senin"},
		},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
		},
		Calls:     crud("Day", "Days"),
		WriteArgs: []string{"name"},
	}
}

func WorkHours() *resource.Resource {
	return &resource.Resource{
		Name:     "workHours",
		Title:    "Jam Kerja",
		Singular: "Jam Kerja",
		Section:  SectionMaster,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama Shift", Rules: "required,max=50", Placeholder: "Shift Pagi"},
			{Key: "start", Label: "Jam Mulai", Kind: resource.KindClock, Rules: "required,hhmm", Placeholder: "06:00"},
			{Key: "end", Label: "Jam Selesai", Kind: resource.KindClock, Rules: "required,hhmm", Placeholder: "14:00"},
		},
		Relations: []resource.Relation{
			{Key: "dayIds", Label: "Hari", Lookup: "days", Get: "getWorkHourDays", Min: 1, MinMessage: "Pilih minimal satu hari"},
		},
		Lookups: []resource.Lookup{dayLookup},
		Columns: []resource.Column{
			{Key: "name", Label: "Shift"},
			{Key: "start", Label: "Mulai", Kind: resource.KindClock},
			{Key: "end", Label: "Selesai", Kind: resource.KindClock},
			{Key: "dayIds", Label: "Hari", Kind: resource.KindIDs, Lookup: "days"},
		},
		Calls:     crud("WorkHour", "WorkHours"),
		WriteArgs: []string{"name", "start", "end", "dayIds"},
		Check:     checkShift,
		Derive: func(in resource.Input) []models.Derived {
			start, err1 := calc.ParseClock(in.Text("start"))
			end, err2 := calc.ParseClock(in.Text("end"))
			if err1 != nil || err2 != nil || end <= start {
				return nil
			}
			return []models.Derived{
				{Label: "Mulai (menit)", Value: strconv.Itoa(start)},
				{Label: "Selesai (menit)", Value: strconv.Itoa(end)},
				{Label: "Durasi", Value: calc.FormatClock(end - start), Emphasis: true},
			}
		},
	}
}

func checkShift(in resource.Input) error {
	start, err1 := calc.ParseClock(in.Text("start"))
	end, err2 := calc.ParseClock(in.Text("end"))
	if err1 == nil && err2 == nil && end <= start {
		return resource.Rule("Jam selesai harus setelah jam mulai")
	}
	return nil
}

func Units() *resource.Resource {
	return &resource.Resource{
		Name:     "units",
		Title:    "Satuan",
		Singular: "Satuan",
		Section:  SectionMaster,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=30", Placeholder: "Liter"},
			{Key: "symbol", Label: "Simbol", Rules: "required,max=10", Placeholder: "L"},
		},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
			{Key: "symbol", Label: "Simbol"},
		},
		Calls:     crud("Unit", "Units"),
		WriteArgs: []string{"name", "symbol"},
	}
}

func PurchaseStatuses() *resource.Resource {
	return &resource.Resource{
		Name:     "purchaseStatuses",
		Title:    "Status Pembelian",
		Singular: "Status",
		Section:  SectionMaster,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=30", Placeholder: "Dipesan"},
			{Key: "description", Label: "Keterangan", Rules: "max=200"},
		},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
			{Key: "description", Label: "Keterangan"},
		},
		Calls:     crud("PurchaseStatus", "PurchaseStatuses"),
		WriteArgs: []string{"name", "description"},
	}
}

func Categories() *resource.Resource {
	return &resource.Resource{
		Name:     "categories",
		Title:    "Kategori",
		Singular: "Kategori",
		Section:  SectionContent,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=50"},
			{Key: "description", Label: "Deskripsi", Rules: "max=200"},
		},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
			{Key: "description", Label: "Deskripsi"},
		},
		Calls:     crud("Category", "Categories"),
		WriteArgs: []string{"name", "description"},
	}
}

func Tags() *resource.Resource {
	return &resource.Resource{
		Name:     "tags",
		Title:    "Tag",
		Singular: "Tag",
		Section:  SectionContent,
		Fields: []resource.Field{
			{Key: "name", Label: "Nama", Rules: "required,max=30"},
		},
		Columns: []resource.Column{
			{Key: "name", Label: "Nama"},
		},
		Calls:     crud("Tag", "Tags"),
		WriteArgs: []string{"name"},
	}
}

func Articles() *resource.Resource {
	return &resource.Resource{
		Name:     "articles",
		Title:    "Artikel",
		Singular: "Artikel",
		Section:  SectionContent,
		TitleKey: "title",
		Fields: []resource.Field{
			{Key: "title", Label: "Judul", Rules: "required,min=3,max=120"},
			{Key: "author", Label: "Penulis", Rules: "required,max=60"},
			{Key: "content", Label: "Isi", Rules: "required,max=5000"},
			{Key: "published", Label: "Terbit", Kind: resource.KindBool, Default: "false"},
		},
		Relations: []resource.Relation{
			{Key: "categoryIds", Label: "Kategori", Lookup: "categories", Get: "getArticleCategoryIds"},
			{Key: "tagIds", Label: "Tag", Lookup: "tags", Get: "getArticleTagIds"},
		},
		Lookups: []resource.Lookup{categoryLookup, tagLookup},
		Columns: []resource.Column{
			{Key: "title", Label: "Judul"},
			{Key: "author", Label: "Penulis"},
			{Key: "published", Label: "Terbit", Kind: resource.KindBool},
			{Key: "categoryIds", Label: "Kategori", Kind: resource.KindIDs, Lookup: "categories"},
		},
		Calls:     crud("Article", "Articles"),
		WriteArgs: []string{"title", "author", "content", "published", "categoryIds", "tagIds"},
	}
}
