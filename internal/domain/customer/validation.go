package customer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// dniLetters maps the numeric part of a Spanish DNI, mod 23, to its
// control letter.
const dniLetters = "TRWAGMYFPDXBNJZSQVHLCKE"

var (
	dniPattern    = regexp.MustCompile(`^(\d{8})([A-Za-z])$`)
	digitsPattern = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field string
	Rule  string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q failed on the %q rule", e.Field, e.Rule)
}

// FieldErrors aggregates every failed rule for one validated value.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validation validates customer and payment values with the storefront's
// form rules: Spanish DNI control letter, Luhn card numbers, and MM/YY
// expiry dates that are not in the past.
type Validation struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewValidation creates a Validation with all custom rules registered.
func NewValidation() *Validation {
	v := &Validation{
		validate: validator.New(),
		now:      time.Now,
	}
	must(v.validate.RegisterValidation("dni", validateDNI))
	must(v.validate.RegisterValidation("cardnumber", validateCardNumber))
	must(v.validate.RegisterValidation("expdate", v.validateExpiry))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Struct validates any tagged struct and returns the failed rules, or nil
// when the value is valid.
func (v *Validation) Struct(value any) FieldErrors {
	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}

	var out FieldErrors
	for _, fe := range err.(validator.ValidationErrors) {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// validateDNI checks the 8-digit + control-letter format and that the
// letter matches number mod 23 in the official table.
func validateDNI(fl validator.FieldLevel) bool {
	m := dniPattern.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	return strings.ToUpper(m[2])[0] == dniLetters[n%23]
}

// validateCardNumber accepts 13-19 digit numbers (spaces allowed) passing
// the Luhn check.
func validateCardNumber(fl validator.FieldLevel) bool {
	s := strings.ReplaceAll(fl.Field().String(), " ", "")
	if !digitsPattern.MatchString(s) {
		return false
	}
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// validateExpiry accepts MM/YY dates through the end of the stated month.
func (v *Validation) validateExpiry(fl validator.FieldLevel) bool {
	m := expiryPattern.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	month := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	year := 2000 + int(m[2][0]-'0')*10 + int(m[2][1]-'0')

	// Valid through the last instant of the stated month.
	endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return v.now().Before(endOfMonth)
}
