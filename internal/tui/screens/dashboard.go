package screens

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

type Dashboard struct {
	deps   Deps
	width  int
	height int

	sections []string
	groups   map[string][]*resource.Resource
	flat     []*resource.Resource
	cursor   int

	gen    uint64
	counts map[string]string
}

func NewDashboard(deps Deps) *Dashboard {
	d := &Dashboard{deps: deps, counts: map[string]string{}}
	d.sections, d.groups = deps.Registry.Sections()
	for _, s := range d.sections {
		d.flat = append(d.flat, d.groups[s]...)
	}
	return d
}

func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

type dashboardCountMsg struct {
	gen   uint64
	name  string
	count string
}

// Init reads every resource count in the background. Counts are cosmetic:
// a failed read shows "?".
func (d *Dashboard) Init() tea.Cmd {
	d.gen = nextGen()
	var cmds []tea.Cmd
	for _, res := range d.flat {
		if res.Calls.Count == "" || len(res.Calls.CountParams) > 0 {
			continue
		}
		cmds = append(cmds, d.loadCount(d.gen, res))
	}
	return tea.Batch(cmds...)
}

func (d *Dashboard) loadCount(gen uint64, res *resource.Resource) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		raw, err := d.deps.Client.Read(ctx, ledger.NewCall(res.Calls.Count))
		if err != nil {
			return dashboardCountMsg{gen: gen, name: res.Name, count: "?"}
		}
		n, err := ledger.Scalar(raw)
		if err != nil {
			return dashboardCountMsg{gen: gen, name: res.Name, count: "?"}
		}
		return dashboardCountMsg{gen: gen, name: res.Name, count: fmt.Sprintf("%d", n)}
	}
}

func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case dashboardCountMsg:
		if msg.gen == d.gen {
			d.counts[msg.name] = msg.count
		}
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if d.cursor > 0 {
				d.cursor--
			}
		case "down", "j":
			if d.cursor < len(d.flat)-1 {
				d.cursor++
			}
		case "enter":
			if len(d.flat) > 0 {
				return NavigateList(d.flat[d.cursor].Name, nil)
			}
		case "a":
			if len(d.flat) > 0 && d.flat[d.cursor].Calls.Create != "" {
				return NavigateForm(d.flat[d.cursor].Name, 0)
			}
		case "r":
			return d.Init()
		}
	}
	return nil
}

// Selected is the resource under the cursor.
func (d *Dashboard) Selected() *resource.Resource {
	if len(d.flat) == 0 {
		return nil
	}
	return d.flat[d.cursor]
}

func (d *Dashboard) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("SPBU ADMIN"))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render("Dashboard administrasi SPBU"))
	b.WriteString("\n\n")

	signer := d.deps.Signer
	if signer == "" {
		signer = DimStyle.Render("hanya baca")
	}
	b.WriteString(BoxStyle.Render(fmt.Sprintf("Ledger: %s\nSigner: %s", d.deps.Endpoint, signer)))
	b.WriteString("\n\n")

	i := 0
	for _, section := range d.sections {
		b.WriteString(HeaderStyle.Render(section))
		b.WriteString("\n")
		for _, res := range d.groups[section] {
			cursor := "  "
			style := NormalStyle
			if i == d.cursor {
				cursor = "> "
				style = SelectedStyle
			}
			line := cursor + res.Title
			if n, ok := d.counts[res.Name]; ok {
				line += DimStyle.Render(fmt.Sprintf(" (%s)", n))
			}
			b.WriteString(style.Render(line))
			b.WriteString("\n")
			i++
		}
		b.WriteString("\n")
	}

	help := "[enter] Buka  [a] Tambah  [r] Muat ulang  [q] Keluar"
	b.WriteString(HelpStyle.Render(help))

	return b.String()
}
