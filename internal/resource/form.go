package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/emilianohg/spbuadmin/internal/ledger"
	"github.com/emilianohg/spbuadmin/internal/logging"
	"github.com/emilianohg/spbuadmin/internal/models"
)

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "Ubah"
	}
	return "Tambah"
}

type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	}
	return "idle"
}

// LoadState moves from Unloaded to Loaded exactly once.
type LoadState int

const (
	Unloaded LoadState = iota
	Loaded
)

// Form is the create/edit state of one resource record. It is safe to call
// from the UI loop and from the goroutine running the write.
type Form struct {
	mu     sync.Mutex
	client ledger.Client
	res    *Resource
	log    logging.Logger

	mode Mode
	id   uint64

	state      State
	load       LoadState
	values     Values
	selections map[string]*Selection

	fieldErrs FieldErrors
	ruleErr   string
	submitErr string
	tx        ledger.TxResult
}

// NewForm returns a create form, loaded with field defaults.
func NewForm(client ledger.Client, res *Resource, log logging.Logger) *Form {
	f := newForm(client, res, log)
	f.load = Loaded
	return f
}

// NewEditForm returns an unloaded edit form for id. It accepts no
// submission until Populate has run.
func NewEditForm(client ledger.Client, res *Resource, log logging.Logger, id uint64) *Form {
	f := newForm(client, res, log)
	f.mode = ModeEdit
	f.id = id
	return f
}

func newForm(client ledger.Client, res *Resource, log logging.Logger) *Form {
	f := &Form{
		client:     client,
		res:        res,
		log:        log.With("resource", res.Name),
		values:     res.defaults(),
		selections: make(map[string]*Selection, len(res.Relations)),
	}
	for _, rel := range res.Relations {
		f.selections[rel.Key] = NewSelection()
	}
	return f
}

// Populate fills an edit form from its loaded entry. Only the first call
// has an effect; it reports whether it did.
func (f *Form) Populate(e Entry) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.load == Loaded {
		return false
	}
	f.res.populate(e, f.values)
	for _, rel := range f.res.Relations {
		f.selections[rel.Key] = NewSelection(e.Relations[rel.Key]...)
	}
	f.load = Loaded
	return true
}

func (f *Form) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	delete(f.fieldErrs, key)
}

func (f *Form) Value(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

func (f *Form) Toggle(rel string, id uint64) {
	f.withSelection(rel, func(s *Selection) { s.Toggle(id) })
}

func (f *Form) SelectAll(rel string, ids []uint64) {
	f.withSelection(rel, func(s *Selection) { s.SelectAll(ids) })
}

func (f *Form) Clear(rel string) {
	f.withSelection(rel, func(s *Selection) { s.Clear() })
}

func (f *Form) Selected(rel string) []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.selections[rel]; ok {
		return s.IDs()
	}
	return nil
}

func (f *Form) withSelection(rel string, fn func(*Selection)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.selections[rel]
	if !ok {
		return
	}
	fn(s)
	f.ruleErr = ""
}

// Input snapshots the current values and selections.
func (f *Form) Input() Input {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input()
}

func (f *Form) input() Input {
	in := Input{
		Values:   make(Values, len(f.values)),
		Selected: make(map[string][]uint64, len(f.selections)),
	}
	if f.mode == ModeEdit {
		in.ID = f.id
	}
	for k, v := range f.values {
		in.Values[k] = v
	}
	for k, s := range f.selections {
		in.Selected[k] = s.IDs()
	}
	return in
}

// Derived returns the computed lines shown next to the form.
func (f *Form) Derived() []models.Derived {
	if f.res.Derive == nil {
		return nil
	}
	return f.res.Derive(f.Input())
}

// Prepare validates and serializes the form, moving it to Submitting. While
// a submission is in flight it returns ErrInFlight and changes nothing.
func (f *Form) Prepare() (ledger.Call, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.state == StateSubmitting:
		return ledger.Call{}, ErrInFlight
	case f.state == StateSucceeded:
		return ledger.Call{}, ErrSubmitted
	case f.load != Loaded:
		return ledger.Call{}, ErrNotLoaded
	}

	fn := f.res.Calls.Create
	if f.mode == ModeEdit {
		fn = f.res.Calls.Update
	}
	if fn == "" {
		return ledger.Call{}, fmt.Errorf("%s %s: %w", f.mode, f.res.Name, ErrNotSupported)
	}

	f.state = StateValidating
	f.fieldErrs = nil
	f.ruleErr = ""
	f.submitErr = ""

	in := f.input()
	if err := f.res.ValidateInput(in); err != nil {
		f.state = StateIdle
		var fe FieldErrors
		var re *RuleError
		switch {
		case errors.As(err, &fe):
			f.fieldErrs = fe
		case errors.As(err, &re):
			f.ruleErr = re.Message
		}
		return ledger.Call{}, err
	}
	args, err := f.res.serialize(in)
	if err != nil {
		f.state = StateIdle
		f.ruleErr = err.Error()
		return ledger.Call{}, Rule(err.Error())
	}

	f.state = StateSubmitting
	return ledger.NewCall(fn, args...), nil
}

// Execute sends a prepared call. It does not touch form state, so it can run
// inside a command goroutine; pass its result to Finish.
func (f *Form) Execute(ctx context.Context, call ledger.Call) (ledger.TxResult, error) {
	if f.res.Calls.Simulate {
		return f.client.SimulateThenWrite(ctx, call)
	}
	return f.client.Write(ctx, call)
}

// Finish records the outcome of Execute. Failures return the form to Idle
// with the error kept for display.
func (f *Form) Finish(tx ledger.TxResult, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateSubmitting {
		return
	}
	if err != nil {
		f.state = StateIdle
		f.submitErr = err.Error()
		f.log.Warn(context.Background(), "submit failed", "mode", f.mode.String(), "id", f.id, "error", err)
		return
	}
	f.state = StateSucceeded
	f.tx = tx
	f.log.Info(context.Background(), "submitted", "mode", f.mode.String(), "id", f.id, "tx", tx.Hash, "block", tx.Block)
}

// Submit runs Prepare, Execute and Finish in one call.
func (f *Form) Submit(ctx context.Context) (ledger.TxResult, error) {
	call, err := f.Prepare()
	if err != nil {
		return ledger.TxResult{}, err
	}
	tx, err := f.Execute(ctx, call)
	f.Finish(tx, err)
	return tx, err
}

func (f *Form) Resource() *Resource { return f.res }
func (f *Form) Mode() Mode          { return f.mode }
func (f *Form) ID() uint64          { return f.id }

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Form) LoadState() LoadState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load
}

func (f *Form) FieldError(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fieldErrs[key]
}

func (f *Form) RuleError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ruleErr
}

func (f *Form) SubmitError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitErr
}

func (f *Form) Tx() ledger.TxResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tx
}
