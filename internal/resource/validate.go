package resource

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/emilianohg/spbuadmin/internal/calc"
)

var (
	phonePattern = regexp.MustCompile(`^(\+62|62|0)8[1-9][0-9]{6,11}$`)
	nikPattern   = regexp.MustCompile(`^\d{16}$`)
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	must := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s: %v", tag, err))
		}
	}
	must("phone_id", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	must("nik", func(fl validator.FieldLevel) bool {
		return nikPattern.MatchString(fl.Field().String())
	})
	must("hhmm", func(fl validator.FieldLevel) bool {
		return calc.IsClock(fl.Field().String())
	})
	return v
}

// ValidateField checks one raw input against the field's rules and kind.
// It returns the message to show, or "" when the value is fine.
func ValidateField(f Field, raw string) string {
	raw = strings.TrimSpace(raw)
	if f.Rules != "" {
		tags := f.Rules
		if !strings.Contains(tags, "required") {
			tags = "omitempty," + tags
		}
		if err := validate.Var(raw, tags); err != nil {
			return message(err, true)
		}
	}
	if raw == "" {
		return ""
	}
	if _, err := f.Arg(raw); err != nil {
		return kindMessage(f.Kind)
	}
	if f.NumRules != "" && isNumeric(f.Kind) {
		d, err := calc.ParseDecimal(raw)
		if err != nil {
			return kindMessage(f.Kind)
		}
		if err := validate.Var(d.InexactFloat64(), f.NumRules); err != nil {
			return message(err, false)
		}
	}
	return ""
}

// ValidateInput runs field rules first, then relation minimums, then the
// resource's own cross-field check. Field errors come back as FieldErrors,
// the rest as *RuleError.
func (r *Resource) ValidateInput(in Input) error {
	fe := FieldErrors{}
	for _, f := range r.Fields {
		if msg := ValidateField(f, in.Values[f.Key]); msg != "" {
			fe[f.Key] = msg
		}
	}
	if len(fe) > 0 {
		return fe
	}
	for _, rel := range r.Relations {
		if len(in.Selected[rel.Key]) < rel.Min {
			msg := rel.MinMessage
			if msg == "" {
				msg = fmt.Sprintf("Pilih minimal %d %s", rel.Min, strings.ToLower(rel.Label))
			}
			return Rule(msg)
		}
	}
	if r.Check != nil {
		if err := r.Check(in); err != nil {
			var re *RuleError
			if errors.As(err, &re) {
				return err
			}
			return Rule(err.Error())
		}
	}
	return nil
}

func isNumeric(k FieldKind) bool {
	switch k {
	case KindNumber, KindScaled, KindMoney:
		return true
	}
	return false
}

func kindMessage(k FieldKind) string {
	switch k {
	case KindNumber, KindRef, KindScaled, KindMoney:
		return "Harus berupa angka"
	case KindClock:
		return "Format jam HH:MM (00:00-23:59)"
	case KindDate:
		return "Format tanggal YYYY-MM-DD"
	}
	return "Tidak valid"
}

func message(err error, text bool) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Tidak valid"
	}
	fe := verrs[0]
	p := fe.Param()
	isString := text && fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Wajib diisi"
	case "min":
		if isString {
			return fmt.Sprintf("Minimal %s karakter", p)
		}
		return "Minimal " + p
	case "max":
		if isString {
			return fmt.Sprintf("Maksimal %s karakter", p)
		}
		return "Maksimal " + p
	case "len":
		return fmt.Sprintf("Harus %s karakter", p)
	case "gt":
		return "Harus lebih dari " + p
	case "gte":
		return "Minimal " + p
	case "lt":
		return "Harus kurang dari " + p
	case "lte":
		return "Maksimal " + p
	case "numeric", "number":
		return "Harus berupa angka"
	case "email":
		return "Email tidak valid"
	case "url":
		return "URL tidak valid"
	case "phone_id":
		return "Nomor telepon tidak valid (contoh: 081234567890)"
	case "nik":
		return "NIK harus 16 digit angka"
	case "eth_addr":
		return "Alamat wallet tidak valid (0x + 40 hex)"
	case "hhmm":
		return "Format jam HH:MM (00:00-23:59)"
	}
	return "Tidak valid"
}
