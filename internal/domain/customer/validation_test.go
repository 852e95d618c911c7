package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCustomer() Customer {
	return Customer{
		DNI:        "12345678Z",
		Nombre:     "Marta",
		Apellido:   "Fernández",
		Email:      "marta@example.com",
		Telefono:   "600123456",
		Direccion:  "Calle Uría 12",
		CodigoPost: "33003",
		Pais:       "España",
		Provincia:  "Asturias",
		Ciudad:     "Oviedo",
	}
}

func validPayment() PaymentDetails {
	return PaymentDetails{
		Holder:     "Marta Fernández",
		CardNumber: "4532015112830366",
		Expiry:     "12/99",
		CVC:        "123",
	}
}

func TestValidation_ValidCustomer(t *testing.T) {
	v := NewValidation()
	assert.Nil(t, v.Struct(validCustomer()))
}

func TestValidation_DNI(t *testing.T) {
	v := NewValidation()

	cases := []struct {
		name  string
		dni   string
		valid bool
	}{
		{"correct control letter", "12345678Z", true},
		{"lowercase letter accepted", "12345678z", true},
		{"wrong control letter", "12345678A", false},
		{"too short", "1234567Z", false},
		{"letters in number", "1234567aZ", false},
		{"missing letter", "12345678", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCustomer()
			c.DNI = tc.dni
			errs := v.Struct(c)
			if tc.valid {
				assert.Nil(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, "dni", errs[0].Rule)
			}
		})
	}
}

func TestValidation_CardNumber(t *testing.T) {
	v := NewValidation()

	cases := []struct {
		name  string
		num   string
		valid bool
	}{
		{"visa passing luhn", "4532015112830366", true},
		{"spaces allowed", "4532 0151 1283 0366", true},
		{"luhn failure", "4532015112830367", false},
		{"too short", "453201511", false},
		{"non-numeric", "4532a15112830366", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayment()
			p.CardNumber = tc.num
			errs := v.Struct(p)
			if tc.valid {
				assert.Nil(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, "cardnumber", errs[0].Rule)
			}
		})
	}
}

func TestValidation_Expiry(t *testing.T) {
	v := NewValidation()
	v.now = func() time.Time {
		return time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		name   string
		expiry string
		valid  bool
	}{
		{"future year", "01/27", true},
		{"current month still valid", "06/26", true},
		{"previous month expired", "05/26", false},
		{"month out of range", "13/27", false},
		{"wrong format", "2027-01", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayment()
			p.Expiry = tc.expiry
			errs := v.Struct(p)
			if tc.valid {
				assert.Nil(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, "expdate", errs[0].Rule)
			}
		})
	}
}

func TestValidation_MissingRequiredFields(t *testing.T) {
	v := NewValidation()

	c := validCustomer()
	c.Email = ""
	c.Telefono = ""

	errs := v.Struct(c)
	require.Len(t, errs, 2)
	assert.Contains(t, errs.Error(), "Email")
	assert.Contains(t, errs.Error(), "Telefono")
}
