package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

// Detail shows every field of one record.
type Detail struct {
	deps   Deps
	res    *resource.Resource
	id     uint64
	width  int
	height int

	gen      uint64
	loading  bool
	err      error
	notFound bool
	details  []models.Detail

	spinner spinner.Model
}

func NewDetail(deps Deps, res *resource.Resource, id uint64) *Detail {
	return &Detail{
		deps:    deps,
		res:     res,
		id:      id,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (d *Detail) SetSize(width, height int) {
	d.width = width
	d.height = height
}

type detailDataMsg struct {
	gen     uint64
	details []models.Detail
	err     error
}

func (d *Detail) Init() tea.Cmd {
	d.gen = nextGen()
	d.loading = true
	d.err = nil
	d.notFound = false
	return tea.Batch(d.load(d.gen), d.spinner.Tick)
}

func (d *Detail) load(gen uint64) tea.Cmd {
	loader := resource.NewLoader(d.deps.Client, d.res)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()

		var entry resource.Entry
		var lk resource.Lookups
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			entry, err = loader.Load(gctx, d.id)
			return err
		})
		g.Go(func() error {
			var err error
			lk, err = resource.LoadLookups(gctx, d.deps.Client, d.res.Lookups)
			return err
		})
		if err := g.Wait(); err != nil {
			return detailDataMsg{gen: gen, err: err}
		}
		return detailDataMsg{gen: gen, details: d.res.Details(entry, lk)}
	}
}

func (d *Detail) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case detailDataMsg:
		if msg.gen != d.gen {
			return nil
		}
		d.loading = false
		switch {
		case errors.Is(msg.err, resource.ErrNotFound):
			d.notFound = true
		case msg.err != nil:
			d.err = msg.err
		default:
			d.details = msg.details
		}
		return nil

	case spinner.TickMsg:
		if !d.loading {
			return nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return NavigateList(d.res.Name, nil)
		case "r":
			return d.Init()
		case "e":
			if !d.loading && d.err == nil && !d.notFound && d.res.Calls.Update != "" {
				return NavigateForm(d.res.Name, d.id)
			}
		}
	}
	return nil
}

func (d *Detail) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(strings.ToUpper(fmt.Sprintf("%s #%d", d.res.Singular, d.id))))
	b.WriteString("\n\n")

	switch {
	case d.loading:
		b.WriteString(d.spinner.View() + " Memuat data...\n")
		return b.String()
	case d.notFound:
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%s #%d tidak ditemukan.", d.res.Singular, d.id)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[esc] Kembali ke daftar"))
		return b.String()
	case d.err != nil:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Gagal memuat data: %v", d.err)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[r] Coba Lagi  [esc] Kembali"))
		return b.String()
	}

	width := 0
	for _, det := range d.details {
		width = max(width, len(det.Label))
	}
	var body strings.Builder
	for i, det := range d.details {
		if i > 0 {
			body.WriteString("\n")
		}
		body.WriteString(DimStyle.Render(pad(det.Label, width)))
		body.WriteString("  ")
		body.WriteString(det.Value)
	}
	b.WriteString(BoxStyle.Render(body.String()))
	b.WriteString("\n")

	help := "[esc] Kembali  [r] Muat ulang"
	if d.res.Calls.Update != "" {
		help = "[e] Ubah  " + help
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}
