package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

type listMode int

const (
	listModeBrowse listMode = iota
	listModeSearch
	listModeFilter
	listModeDelete
)

const (
	gridColumns      = 3
	maxCellWidth     = 28
	paginationRadius = 2
)

// List is the paginated view of one resource.
type List struct {
	deps   Deps
	res    *resource.Resource
	lister *resource.Lister
	width  int
	height int

	query   resource.Query
	page    resource.Page
	rows    []models.Row // page rows after the text filter
	cursor  int
	grid    bool
	mode    listMode
	gen     uint64
	loading bool
	err     error
	message string

	search  textinput.Model
	filters *filterEditor

	deleting  bool
	deleteErr string

	spinner spinner.Model
}

func NewList(deps Deps, res *resource.Resource, filters map[string]uint64) *List {
	q := resource.NewQuery()
	if deps.PageSize > 0 {
		q.PageSize = deps.PageSize
	}
	for k, v := range filters {
		q = q.WithFilter(k, v)
	}

	search := textinput.New()
	search.Placeholder = "Cari di halaman ini"
	search.CharLimit = 60
	search.Width = 40

	return &List{
		deps:    deps,
		res:     res,
		lister:  resource.NewLister(deps.Client, res, deps.Log),
		query:   q.Normalized(),
		search:  search,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
}

func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

type listDataMsg struct {
	gen  uint64
	page resource.Page
	err  error
}

type deleteDoneMsg struct {
	gen uint64
	id  uint64
	err error
}

func (l *List) Init() tea.Cmd {
	l.gen = nextGen()
	l.loading = true
	l.err = nil
	return tea.Batch(l.load(l.gen, l.query), l.spinner.Tick)
}

func (l *List) load(gen uint64, q resource.Query) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		page, err := l.lister.Fetch(ctx, q)
		return listDataMsg{gen: gen, page: page, err: err}
	}
}

func (l *List) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listDataMsg:
		if msg.gen != l.gen {
			return nil
		}
		l.loading = false
		l.err = msg.err
		if msg.err == nil {
			l.page = msg.page
			l.applySearch()
		}
		return nil

	case deleteDoneMsg:
		if msg.gen != l.gen {
			return nil
		}
		l.deleting = false
		if msg.err != nil {
			l.deleteErr = msg.err.Error()
			return nil
		}
		l.mode = listModeBrowse
		l.deleteErr = ""
		l.message = fmt.Sprintf("%s #%d dihapus", l.res.Singular, msg.id)
		return l.Init()

	case spinner.TickMsg:
		if !l.loading && !l.deleting {
			return nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return l.handleKey(msg)
	}

	if l.mode == listModeSearch {
		var cmd tea.Cmd
		l.search, cmd = l.search.Update(msg)
		return cmd
	}
	return nil
}

func (l *List) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch l.mode {
	case listModeSearch:
		return l.handleSearchKey(msg)
	case listModeFilter:
		return l.handleFilterKey(msg)
	case listModeDelete:
		return l.handleDeleteKey(msg)
	}
	return l.handleBrowseKey(msg)
}

func (l *List) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	step := 1
	if l.grid {
		step = gridColumns
	}

	switch msg.String() {
	case "q", "esc":
		return Navigate(ScreenDashboard)
	case "r":
		l.message = ""
		return l.Init()
	}

	if l.loading || l.err != nil {
		return nil
	}

	switch msg.String() {
	case "up", "k":
		l.cursor = max(0, l.cursor-step)
	case "down", "j":
		l.cursor = min(max(0, len(l.rows)-1), l.cursor+step)
	case "left", "h":
		if l.grid && l.cursor%gridColumns > 0 {
			l.cursor--
			return nil
		}
		return l.prevPage()
	case "right", "l":
		if l.grid && l.cursor%gridColumns < gridColumns-1 && l.cursor < len(l.rows)-1 {
			l.cursor++
			return nil
		}
		return l.nextPage()
	case "[":
		return l.prevPage()
	case "]":
		return l.nextPage()
	case "g":
		l.grid = !l.grid
	case "s":
		l.query.PageSize = resource.NextPageSize(l.query.PageSize)
		l.query.Page = 1
		l.cursor = 0
		return l.Init()
	case "/":
		l.mode = listModeSearch
		l.search.Focus()
		return textinput.Blink
	case "f":
		if len(l.res.Filters) > 0 {
			l.filters = newFilterEditor(l.res.Filters, l.query, l.page.Lookups)
			l.mode = listModeFilter
		}
	case "a":
		if l.res.Calls.Create != "" {
			return NavigateForm(l.res.Name, 0)
		}
	case "enter":
		if row, ok := l.selected(); ok {
			return NavigateDetail(l.res.Name, row.ID)
		}
	case "e":
		if row, ok := l.selected(); ok && l.res.Calls.Update != "" {
			return NavigateForm(l.res.Name, row.ID)
		}
	case "d":
		if _, ok := l.selected(); ok && l.res.Calls.Delete != "" {
			l.mode = listModeDelete
			l.deleteErr = ""
		}
	case "c":
		if row, ok := l.selected(); ok && l.res.Child != nil {
			return NavigateList(l.res.Child.Resource, map[string]uint64{l.res.Child.Key: row.ID})
		}
	}
	return nil
}

func (l *List) prevPage() tea.Cmd {
	if !l.page.HasPrev() {
		return nil
	}
	l.query.Page--
	l.cursor = 0
	return l.Init()
}

func (l *List) nextPage() tea.Cmd {
	if !l.page.HasNext() {
		return nil
	}
	l.query.Page++
	l.cursor = 0
	return l.Init()
}

func (l *List) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		l.mode = listModeBrowse
		l.search.Blur()
		return nil
	case "esc":
		l.mode = listModeBrowse
		l.search.SetValue("")
		l.search.Blur()
		l.applySearch()
		return nil
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	l.applySearch()
	return cmd
}

func (l *List) handleFilterKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		l.mode = listModeBrowse
		l.filters = nil
		return nil
	case "enter":
		q, err := l.filters.apply(l.query)
		if err != nil {
			l.filters.err = err.Error()
			return nil
		}
		l.query = q
		l.query.Page = 1
		l.cursor = 0
		l.mode = listModeBrowse
		l.filters = nil
		return l.Init()
	}
	return l.filters.update(msg)
}

func (l *List) handleDeleteKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		if l.deleting {
			return nil
		}
		row, ok := l.selected()
		if !ok {
			l.mode = listModeBrowse
			return nil
		}
		l.deleting = true
		l.deleteErr = ""
		gen := l.gen
		return tea.Batch(func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
			defer cancel()
			_, err := l.lister.Delete(ctx, row.ID)
			return deleteDoneMsg{gen: gen, id: row.ID, err: err}
		}, l.spinner.Tick)
	case "n", "N", "esc":
		if l.deleting {
			return nil
		}
		l.mode = listModeBrowse
		l.deleteErr = ""
	}
	return nil
}

func (l *List) applySearch() {
	l.rows = resource.FilterRows(l.page.Items, l.search.Value())
	if l.cursor >= len(l.rows) {
		l.cursor = max(0, len(l.rows)-1)
	}
}

func (l *List) selected() (models.Row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return models.Row{}, false
	}
	return l.rows[l.cursor], true
}

func (l *List) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(strings.ToUpper(l.res.Title)))
	b.WriteString("\n")
	if active := l.activeFilters(); active != "" {
		b.WriteString(SubtitleStyle.Render("Filter: " + active))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if l.loading {
		b.WriteString(l.spinner.View() + " Memuat data...\n")
		return b.String()
	}

	if l.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Gagal memuat data: %v", l.err)))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Coba Lagi  [q] Kembali"))
		return b.String()
	}

	if l.message != "" {
		b.WriteString(SuccessStyle.Render(l.message))
		b.WriteString("\n\n")
	}

	switch l.mode {
	case listModeSearch:
		b.WriteString("Cari: " + l.search.View())
		b.WriteString("\n\n")
	case listModeFilter:
		b.WriteString(l.filters.view())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[tab] Pindah  [←/→] Pilih  [enter] Terapkan  [esc] Batal"))
		return b.String()
	default:
		if v := l.search.Value(); v != "" {
			b.WriteString(DimStyle.Render(fmt.Sprintf("Cari: %q", v)))
			b.WriteString("\n\n")
		}
	}

	if len(l.page.Items) == 0 && (l.page.Page > 1 || l.page.HasNext()) {
		// Every row on this page was deleted, but other pages may still hold data.
		b.WriteString(DimStyle.Render("Halaman ini kosong."))
		b.WriteString("\n")
	} else if len(l.page.Items) == 0 {
		b.WriteString(DimStyle.Render(fmt.Sprintf("Belum ada data %s.", l.res.Title)))
		b.WriteString("\n")
		if l.res.Calls.Create != "" {
			b.WriteString(SelectedStyle.Render(fmt.Sprintf("[a] Tambah %s", l.res.Singular)))
			b.WriteString("\n")
		}
	} else if len(l.rows) == 0 {
		b.WriteString(DimStyle.Render("Tidak ada baris yang cocok."))
		b.WriteString("\n")
	} else if l.grid {
		b.WriteString(l.gridView())
	} else {
		b.WriteString(l.tableView())
	}

	b.WriteString("\n")
	b.WriteString(l.paginationView())
	b.WriteString("\n")

	if l.mode == listModeDelete {
		b.WriteString("\n")
		b.WriteString(l.deleteView())
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(HelpStyle.Render(l.help()))
	return b.String()
}

func (l *List) help() string {
	parts := []string{"[enter] Detail"}
	if l.res.Calls.Create != "" {
		parts = append(parts, "[a] Tambah")
	}
	if l.res.Calls.Update != "" {
		parts = append(parts, "[e] Ubah")
	}
	if l.res.Calls.Delete != "" {
		parts = append(parts, "[d] Hapus")
	}
	if l.res.Child != nil {
		parts = append(parts, "[c] "+l.res.Child.Label)
	}
	parts = append(parts, "[/] Cari")
	if len(l.res.Filters) > 0 {
		parts = append(parts, "[f] Filter")
	}
	parts = append(parts,
		"[g] Grid/Daftar",
		fmt.Sprintf("[s] %d/hal", l.query.PageSize),
		"[←/→] Halaman",
		"[q] Kembali",
	)
	return strings.Join(parts, "  ")
}

func (l *List) tableView() string {
	headers := make([]string, 0, len(l.res.Columns)+1)
	headers = append(headers, "ID")
	for _, c := range l.res.Columns {
		headers = append(headers, c.Label)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	cells := make([][]string, len(l.rows))
	for r, row := range l.rows {
		line := make([]string, 0, len(headers))
		line = append(line, fmt.Sprintf("%d", row.ID))
		for _, c := range row.Cells {
			line = append(line, truncate(c, maxCellWidth))
		}
		for i, c := range line {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
		cells[r] = line
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, h := range headers {
		b.WriteString(HeaderStyle.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")

	for r, line := range cells {
		cursor := "  "
		style := NormalStyle
		if r == l.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		var sb strings.Builder
		for i, c := range line {
			sb.WriteString(pad(c, widths[i]))
			sb.WriteString("  ")
		}
		b.WriteString(style.Render(cursor + sb.String()))
		b.WriteString("\n")
	}
	return b.String()
}

func (l *List) gridView() string {
	var lines []string
	var cards []string
	for i, row := range l.rows {
		var body strings.Builder
		body.WriteString(lipgloss.NewStyle().Bold(true).Render(truncate(row.Title, maxCellWidth-2)))
		for c, cell := range row.Cells {
			if c >= 3 {
				break
			}
			body.WriteString("\n")
			body.WriteString(DimStyle.Render(truncate(l.res.Columns[c].Label+": "+cell, maxCellWidth-2)))
		}
		style := CardStyle
		if i == l.cursor {
			style = SelectedCardStyle
		}
		cards = append(cards, style.Render(body.String()))
		if len(cards) == gridColumns {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
			cards = nil
		}
	}
	if len(cards) > 0 {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (l *List) paginationView() string {
	p := l.page.PageInfo
	parts := []string{}

	prev := "‹ Sebelumnya"
	if p.HasPrev() {
		parts = append(parts, NormalStyle.Render(prev))
	} else {
		parts = append(parts, DimStyle.Render(prev))
	}

	window := p.Window(paginationRadius)
	if len(window) > 0 && window[0] > 1 {
		parts = append(parts, DimStyle.Render("…"))
	}
	for _, n := range window {
		if n == p.Page {
			parts = append(parts, SelectedStyle.Render(fmt.Sprintf("[%d]", n)))
		} else {
			parts = append(parts, NormalStyle.Render(fmt.Sprintf("%d", n)))
		}
	}
	if len(window) > 0 && (p.TotalKnown && window[len(window)-1] < p.Pages() || !p.TotalKnown && p.HasNext()) {
		parts = append(parts, DimStyle.Render("…"))
	}

	next := "Berikutnya ›"
	if p.HasNext() {
		parts = append(parts, NormalStyle.Render(next))
	} else {
		parts = append(parts, DimStyle.Render(next))
	}

	line := strings.Join(parts, " ")
	if p.TotalKnown {
		line += DimStyle.Render(fmt.Sprintf("   Halaman %d dari %d (%d data)", p.Page, max(1, p.Pages()), p.Total))
	}
	return line
}

func (l *List) deleteView() string {
	row, _ := l.selected()
	var b strings.Builder
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Hapus %s %q?", l.res.Singular, row.Title)))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render("Data ditandai terhapus di ledger."))
	b.WriteString("\n\n")
	if l.deleteErr != "" {
		b.WriteString(ErrorStyle.Render("Gagal menghapus: " + l.deleteErr))
		b.WriteString("\n\n")
	}
	if l.deleting {
		b.WriteString(l.spinner.View() + " Menghapus...")
	} else {
		b.WriteString("[y] Hapus  [n] Batal")
	}
	return ModalStyle.Render(b.String())
}

func (l *List) activeFilters() string {
	var parts []string
	for _, f := range l.res.Filters {
		v := l.query.Filters[f.Key]
		if v == 0 {
			continue
		}
		parts = append(parts, f.Label+"="+filterLabel(f, v, l.page.Lookups))
	}
	return strings.Join(parts, ", ")
}

// Query is the query of the current page.
func (l *List) Query() resource.Query {
	return l.query
}
