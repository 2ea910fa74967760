package screens

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

type itemKind int

const (
	itemText itemKind = iota
	itemRef
	itemBool
	itemRelation
	itemSubmit
)

// formItem is one focusable row of the form.
type formItem struct {
	kind  itemKind
	field resource.Field
	rel   resource.Relation
	input int // index into Form.inputs for itemText
}

// Form is the create/edit screen of one resource.
type Form struct {
	deps   Deps
	res    *resource.Resource
	form   *resource.Form
	width  int
	height int

	items  []formItem
	inputs []textinput.Model
	cursor int

	gen        uint64
	lookups    resource.Lookups
	lookupsErr error
	loadErr    error
	notFound   bool

	picking      bool
	pickerCursor int

	spinner spinner.Model
}

// NewForm opens a create form, or an edit form for id when id is non-zero.
func NewForm(deps Deps, res *resource.Resource, id uint64) *Form {
	s := &Form{
		deps:    deps,
		res:     res,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	if id == 0 {
		s.form = resource.NewForm(deps.Client, res, deps.Log)
	} else {
		s.form = resource.NewEditForm(deps.Client, res, deps.Log, id)
	}

	for _, f := range res.Fields {
		item := formItem{field: f}
		switch f.Kind {
		case resource.KindRef:
			item.kind = itemRef
		case resource.KindBool:
			item.kind = itemBool
		default:
			item.kind = itemText
			ti := textinput.New()
			ti.Placeholder = placeholder(f)
			ti.CharLimit = 200
			ti.Width = 40
			ti.SetValue(s.form.Value(f.Key))
			item.input = len(s.inputs)
			s.inputs = append(s.inputs, ti)
		}
		s.items = append(s.items, item)
	}
	for _, rel := range res.Relations {
		s.items = append(s.items, formItem{kind: itemRelation, rel: rel})
	}
	s.items = append(s.items, formItem{kind: itemSubmit})
	s.focus()
	return s
}

func placeholder(f resource.Field) string {
	if f.Placeholder != "" {
		return f.Placeholder
	}
	switch f.Kind {
	case resource.KindClock:
		return "HH:MM"
	case resource.KindDate:
		return "YYYY-MM-DD"
	case resource.KindAddress:
		return "0x..."
	case resource.KindScaled, resource.KindMoney:
		return "0,00"
	}
	return ""
}

func (s *Form) SetSize(width, height int) {
	s.width = width
	s.height = height
}

type formLookupsMsg struct {
	gen     uint64
	lookups resource.Lookups
	err     error
}

type formEntryMsg struct {
	gen   uint64
	entry resource.Entry
	err   error
}

type formSubmitMsg struct {
	gen uint64
	tx  ledger.TxResult
	err error
}

type formRedirectMsg struct {
	gen uint64
}

func (s *Form) Init() tea.Cmd {
	s.gen = nextGen()
	s.loadErr = nil
	s.notFound = false
	cmds := []tea.Cmd{s.loadLookups(s.gen), s.spinner.Tick}
	if s.form.LoadState() == resource.Unloaded {
		cmds = append(cmds, s.loadEntry(s.gen))
	}
	return tea.Batch(cmds...)
}

func (s *Form) loadLookups(gen uint64) tea.Cmd {
	lookups := s.res.Lookups
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		lk, err := resource.LoadLookups(ctx, s.deps.Client, lookups)
		return formLookupsMsg{gen: gen, lookups: lk, err: err}
	}
}

func (s *Form) loadEntry(gen uint64) tea.Cmd {
	loader := resource.NewLoader(s.deps.Client, s.res)
	id := s.form.ID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		e, err := loader.Load(ctx, id)
		return formEntryMsg{gen: gen, entry: e, err: err}
	}
}

func (s *Form) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formLookupsMsg:
		if msg.gen != s.gen {
			return nil
		}
		s.lookups = msg.lookups
		s.lookupsErr = msg.err
		return nil

	case formEntryMsg:
		if msg.gen != s.gen {
			return nil
		}
		if errors.Is(msg.err, resource.ErrNotFound) {
			s.notFound = true
			return nil
		}
		if msg.err != nil {
			s.loadErr = msg.err
			return nil
		}
		if s.form.Populate(msg.entry) {
			s.syncInputs()
		}
		return nil

	case formSubmitMsg:
		if msg.gen != s.gen {
			return nil
		}
		s.form.Finish(msg.tx, msg.err)
		if msg.err != nil {
			return nil
		}
		gen := s.gen
		return tea.Tick(s.deps.RedirectDelay, func(time.Time) tea.Msg {
			return formRedirectMsg{gen: gen}
		})

	case formRedirectMsg:
		if msg.gen != s.gen {
			return nil
		}
		return NavigateList(s.res.Name, nil)

	case spinner.TickMsg:
		if !s.busy() {
			return nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if item := s.current(); item.kind == itemText {
		var cmd tea.Cmd
		s.inputs[item.input], cmd = s.inputs[item.input].Update(msg)
		return cmd
	}
	return nil
}

func (s *Form) busy() bool {
	return s.form.LoadState() == resource.Unloaded || s.form.State() == resource.StateSubmitting
}

func (s *Form) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.notFound || s.loadErr != nil {
		switch msg.String() {
		case "esc", "q":
			return NavigateList(s.res.Name, nil)
		case "r":
			if s.loadErr != nil {
				return s.Init()
			}
		}
		return nil
	}

	if s.picking {
		return s.handlePickerKey(msg)
	}

	switch msg.String() {
	case "esc":
		return NavigateList(s.res.Name, nil)
	case "ctrl+s":
		return s.submit()
	case "tab", "down":
		s.move(1)
		return nil
	case "shift+tab", "up":
		s.move(-1)
		return nil
	}

	if s.form.LoadState() != resource.Loaded || s.form.State() != resource.StateIdle {
		return nil
	}

	item := s.current()
	switch item.kind {
	case itemText:
		if msg.String() == "enter" {
			s.move(1)
			return nil
		}
		var cmd tea.Cmd
		s.inputs[item.input], cmd = s.inputs[item.input].Update(msg)
		s.form.Set(item.field.Key, s.inputs[item.input].Value())
		return cmd

	case itemRef:
		switch msg.String() {
		case "right", "l", " ":
			s.cycleRef(item.field, 1)
		case "left", "h":
			s.cycleRef(item.field, -1)
		case "enter":
			s.move(1)
		}

	case itemBool:
		switch msg.String() {
		case " ", "enter", "left", "right":
			v := s.form.Value(item.field.Key) == "true"
			s.form.Set(item.field.Key, strconv.FormatBool(!v))
		}

	case itemRelation:
		switch msg.String() {
		case "enter", " ":
			s.picking = true
			s.pickerCursor = 0
		case "ctrl+a":
			s.form.SelectAll(item.rel.Key, s.lookups.OptionIDs(item.rel.Lookup))
		case "ctrl+x":
			s.form.Clear(item.rel.Key)
		}

	case itemSubmit:
		if msg.String() == "enter" {
			return s.submit()
		}
	}
	return nil
}

func (s *Form) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	rel := s.current().rel
	options := s.lookups.Options(rel.Lookup)
	switch msg.String() {
	case "esc", "enter", "q":
		s.picking = false
	case "up", "k":
		if s.pickerCursor > 0 {
			s.pickerCursor--
		}
	case "down", "j":
		if s.pickerCursor < len(options)-1 {
			s.pickerCursor++
		}
	case " ", "x":
		if s.pickerCursor < len(options) {
			s.form.Toggle(rel.Key, options[s.pickerCursor].ID)
		}
	case "ctrl+a":
		s.form.SelectAll(rel.Key, s.lookups.OptionIDs(rel.Lookup))
	case "ctrl+x":
		s.form.Clear(rel.Key)
	}
	return nil
}

func (s *Form) cycleRef(f resource.Field, step int) {
	options := s.lookups.Options(f.Lookup)
	if len(options) == 0 {
		return
	}
	idx := -1
	current, _ := strconv.ParseUint(s.form.Value(f.Key), 10, 64)
	for i, o := range options {
		if o.ID == current {
			idx = i
		}
	}
	idx = (idx + step + len(options)) % len(options)
	s.form.Set(f.Key, strconv.FormatUint(options[idx].ID, 10))
}

func (s *Form) submit() tea.Cmd {
	call, err := s.form.Prepare()
	if err != nil {
		if errors.Is(err, resource.ErrInvalid) {
			s.focusFirstError()
		}
		return nil
	}
	gen := s.gen
	form := s.form
	return tea.Batch(func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		tx, err := form.Execute(ctx, call)
		return formSubmitMsg{gen: gen, tx: tx, err: err}
	}, s.spinner.Tick)
}

func (s *Form) focusFirstError() {
	for i, item := range s.items {
		if item.kind != itemSubmit && item.kind != itemRelation && s.form.FieldError(item.field.Key) != "" {
			s.cursor = i
			s.focus()
			return
		}
	}
}

func (s *Form) move(step int) {
	s.cursor = (s.cursor + step + len(s.items)) % len(s.items)
	s.focus()
}

func (s *Form) focus() {
	for i, item := range s.items {
		if item.kind != itemText {
			continue
		}
		if i == s.cursor {
			s.inputs[item.input].Focus()
		} else {
			s.inputs[item.input].Blur()
		}
	}
}

func (s *Form) current() formItem {
	return s.items[s.cursor]
}

func (s *Form) syncInputs() {
	for _, item := range s.items {
		if item.kind == itemText {
			s.inputs[item.input].SetValue(s.form.Value(item.field.Key))
		}
	}
}

func (s *Form) title() string {
	if s.form.Mode() == resource.ModeEdit {
		return strings.ToUpper(fmt.Sprintf("%s %s #%d", s.form.Mode(), s.res.Singular, s.form.ID()))
	}
	return strings.ToUpper(fmt.Sprintf("%s %s", s.form.Mode(), s.res.Singular))
}

func (s *Form) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(s.title()))
	b.WriteString("\n\n")

	if s.notFound {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("%s #%d tidak ditemukan.", s.res.Singular, s.form.ID())))
		b.WriteString("\n")
		b.WriteString(DimStyle.Render("Data belum pernah dibuat atau sudah dihapus."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[esc] Kembali ke daftar"))
		return b.String()
	}
	if s.loadErr != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Gagal memuat data: %v", s.loadErr)))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("[r] Coba Lagi  [esc] Kembali"))
		return b.String()
	}
	if s.form.LoadState() == resource.Unloaded {
		b.WriteString(s.spinner.View() + " Memuat data...\n")
		return b.String()
	}

	if s.lookupsErr != nil {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("Pilihan gagal dimuat: %v", s.lookupsErr)))
		b.WriteString("\n\n")
	}

	left := s.fieldsView()
	if derived := s.derivedView(); derived != "" {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, "   ", derived))
	} else {
		b.WriteString(left)
	}
	b.WriteString("\n")

	if s.picking {
		b.WriteString(s.pickerView())
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("[space] Pilih  [ctrl+a] Semua  [ctrl+x] Kosongkan  [enter] Selesai"))
		return b.String()
	}

	b.WriteString(HelpStyle.Render("[tab] Pindah  [←/→] Pilih  [ctrl+s] Simpan  [esc] Batal"))
	return b.String()
}

func (s *Form) fieldsView() string {
	var b strings.Builder
	for i, item := range s.items {
		focused := i == s.cursor
		cursor := "  "
		labelStyle := NormalStyle
		if focused {
			cursor = "> "
			labelStyle = SelectedStyle
		}

		switch item.kind {
		case itemSubmit:
			b.WriteString("\n")
			b.WriteString(s.submitView(focused))
			b.WriteString("\n")
			continue

		case itemRelation:
			label := item.rel.Label
			if item.rel.Min > 0 {
				label += " *"
			}
			b.WriteString(labelStyle.Render(cursor + label))
			b.WriteString("\n")
			ids := s.form.Selected(item.rel.Key)
			if len(ids) == 0 {
				b.WriteString("    " + DimStyle.Render("(belum dipilih)"))
			} else {
				names := s.lookups.Names(item.rel.Lookup, ids)
				b.WriteString("    " + truncate(strings.Join(names, ", "), 60))
				b.WriteString(DimStyle.Render(fmt.Sprintf("  (%d dipilih)", len(ids))))
			}
			b.WriteString("\n")
			continue
		}

		f := item.field
		label := f.Label
		if strings.Contains(f.Rules, "required") {
			label += " *"
		}
		b.WriteString(labelStyle.Render(cursor + label))
		b.WriteString("\n    ")

		switch item.kind {
		case itemText:
			b.WriteString(s.inputs[item.input].View())
		case itemRef:
			v := DimStyle.Render("(pilih)")
			if id, err := strconv.ParseUint(s.form.Value(f.Key), 10, 64); err == nil && id > 0 {
				v = s.lookups.Name(f.Lookup, id)
			}
			b.WriteString("‹ " + v + " ›")
		case itemBool:
			if s.form.Value(f.Key) == "true" {
				b.WriteString("[x] Ya")
			} else {
				b.WriteString("[ ] Tidak")
			}
		}
		b.WriteString("\n")
		if msg := s.form.FieldError(f.Key); msg != "" {
			b.WriteString("    " + ErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	if msg := s.form.RuleError(); msg != "" {
		b.WriteString("\n")
		b.WriteString(WarningStyle.Render("! " + msg))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Form) submitView(focused bool) string {
	switch s.form.State() {
	case resource.StateSubmitting:
		return s.spinner.View() + " Menyimpan..."
	case resource.StateSucceeded:
		tx := s.form.Tx()
		return SuccessStyle.Render(fmt.Sprintf("Tersimpan di blok %d (%s). Kembali ke daftar...", tx.Block, truncate(tx.Hash, 14)))
	}

	var b strings.Builder
	if msg := s.form.SubmitError(); msg != "" {
		b.WriteString(ErrorStyle.Render("Gagal menyimpan: " + msg))
		b.WriteString("\n")
	}
	button := "[ Simpan ]"
	if focused {
		b.WriteString(SelectedStyle.Render("> " + button))
	} else {
		b.WriteString(NormalStyle.Render("  " + button))
	}
	return b.String()
}

func (s *Form) derivedView() string {
	lines := s.form.Derived()
	if len(lines) == 0 {
		return ""
	}
	width := 0
	for _, d := range lines {
		width = max(width, lipgloss.Width(d.Label))
	}
	var b strings.Builder
	for i, d := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		line := pad(d.Label, width) + "  " + d.Value
		if d.Emphasis {
			line = lipgloss.NewStyle().Bold(true).Render(line)
		}
		b.WriteString(line)
	}
	return BoxStyle.Render(b.String())
}

func (s *Form) pickerView() string {
	rel := s.current().rel
	options := s.lookups.Options(rel.Lookup)
	selected := s.form.Selected(rel.Key)

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Pilih " + rel.Label))
	b.WriteString("\n")
	if len(options) == 0 {
		b.WriteString(DimStyle.Render("Tidak ada pilihan."))
	}
	for i, o := range options {
		mark := "[ ]"
		if pos := slices.Index(selected, o.ID); pos >= 0 {
			mark = fmt.Sprintf("[%d]", pos+1)
		}
		line := fmt.Sprintf("%s %s", mark, o.Label)
		if i == s.pickerCursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(NormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// State exposes the form state for the app and tests.
func (s *Form) State() resource.State {
	return s.form.State()
}
