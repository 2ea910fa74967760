package screens

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emilianohg/spbuadmin/internal/calc"
	"github.com/emilianohg/spbuadmin/internal/models"
	"github.com/emilianohg/spbuadmin/internal/resource"
)

// filterEditor edits the query filters of a list. Reference filters cycle
// through their lookup options; everything else is typed.
type filterEditor struct {
	filters []resource.Filter
	inputs  []textinput.Model
	options [][]models.Option
	choice  []int // index into options, -1 for "Semua"
	cursor  int
	err     string
}

func newFilterEditor(filters []resource.Filter, q resource.Query, lk resource.Lookups) *filterEditor {
	e := &filterEditor{
		filters: filters,
		inputs:  make([]textinput.Model, len(filters)),
		options: make([][]models.Option, len(filters)),
		choice:  make([]int, len(filters)),
	}
	for i, f := range filters {
		e.choice[i] = -1
		current := q.Filters[f.Key]
		if f.Kind == resource.KindRef {
			e.options[i] = lk.Options(f.Lookup)
			for j, o := range e.options[i] {
				if o.ID == current {
					e.choice[i] = j
				}
			}
			continue
		}
		ti := textinput.New()
		ti.CharLimit = 20
		ti.Width = 20
		if f.Kind == resource.KindDate {
			ti.Placeholder = "YYYY-MM-DD"
			if current != 0 {
				ti.SetValue(time.Unix(int64(current), 0).Format("2006-01-02"))
			}
		} else if current != 0 {
			ti.SetValue(fmt.Sprintf("%d", current))
		}
		e.inputs[i] = ti
	}
	e.focus()
	return e
}

func (e *filterEditor) focus() {
	for i := range e.inputs {
		if e.filters[i].Kind == resource.KindRef {
			continue
		}
		if i == e.cursor {
			e.inputs[i].Focus()
		} else {
			e.inputs[i].Blur()
		}
	}
}

func (e *filterEditor) update(msg tea.KeyMsg) tea.Cmd {
	e.err = ""
	switch msg.String() {
	case "tab", "down":
		e.cursor = (e.cursor + 1) % len(e.filters)
		e.focus()
		return nil
	case "shift+tab", "up":
		e.cursor = (e.cursor + len(e.filters) - 1) % len(e.filters)
		e.focus()
		return nil
	}

	if e.filters[e.cursor].Kind == resource.KindRef {
		n := len(e.options[e.cursor])
		switch msg.String() {
		case "right", "l", " ":
			e.choice[e.cursor]++
			if e.choice[e.cursor] >= n {
				e.choice[e.cursor] = -1
			}
		case "left", "h":
			e.choice[e.cursor]--
			if e.choice[e.cursor] < -1 {
				e.choice[e.cursor] = n - 1
			}
		case "backspace", "delete":
			e.choice[e.cursor] = -1
		}
		return nil
	}

	var cmd tea.Cmd
	e.inputs[e.cursor], cmd = e.inputs[e.cursor].Update(msg)
	return cmd
}

// apply returns q with every filter replaced by the edited values.
func (e *filterEditor) apply(q resource.Query) (resource.Query, error) {
	for i, f := range e.filters {
		var v uint64
		if f.Kind == resource.KindRef {
			if c := e.choice[i]; c >= 0 {
				v = e.options[i][c].ID
			}
		} else {
			n, err := f.Value(e.inputs[i].Value())
			if err != nil {
				return q, err
			}
			v = n
		}
		q = q.WithFilter(f.Key, v)
	}
	return q, nil
}

func (e *filterEditor) view() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Filter"))
	b.WriteString("\n\n")
	for i, f := range e.filters {
		cursor := "  "
		style := NormalStyle
		if i == e.cursor {
			cursor = "> "
			style = SelectedStyle
		}
		value := ""
		if f.Kind == resource.KindRef {
			value = "Semua"
			if c := e.choice[i]; c >= 0 {
				value = e.options[i][c].Label
			}
			value = "‹ " + value + " ›"
		} else {
			value = e.inputs[i].View()
		}
		b.WriteString(style.Render(cursor + pad(f.Label, 10)))
		b.WriteString(value)
		b.WriteString("\n")
	}
	if e.err != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render(e.err))
		b.WriteString("\n")
	}
	return b.String()
}

// filterLabel renders an active filter value for the list header.
func filterLabel(f resource.Filter, v uint64, lk resource.Lookups) string {
	switch f.Kind {
	case resource.KindRef:
		return lk.Name(f.Lookup, v)
	case resource.KindDate:
		return calc.FormatDate(time.Unix(int64(v), 0))
	}
	return fmt.Sprintf("%d", v)
}
