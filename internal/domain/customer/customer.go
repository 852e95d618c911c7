// Package customer holds the user profile model and the form validation
// rules the storefront applies at checkout and registration.
package customer

// Customer is the user profile attached to an order. Field names follow
// the storefront's Spanish-language domain.
type Customer struct {
	DNI        string `json:"dni" validate:"required,dni"`
	Nombre     string `json:"nombre" validate:"required"`
	Apellido   string `json:"apellido"`
	Email      string `json:"email" validate:"required,email"`
	Telefono   string `json:"telefono" validate:"required"`
	Direccion  string `json:"direccion" validate:"required"`
	CodigoPost string `json:"codigo_postal" validate:"required"`
	Pais       string `json:"pais" validate:"required"`
	Provincia  string `json:"provincia" validate:"required"`
	Ciudad     string `json:"ciudad"`
	Idioma     string `json:"idioma_preferido"`
}

// PaymentDetails carries the card data entered at checkout. It is used for
// display-only masking in the confirmation email; the storefront performs
// no payment processing.
type PaymentDetails struct {
	Holder     string `json:"titular" validate:"required"`
	CardNumber string `json:"numero_tarjeta" validate:"required,cardnumber"`
	Expiry     string `json:"fecha_expiracion" validate:"required,expdate"`
	CVC        string `json:"codigo_seguridad" validate:"required,len=3|len=4"`
}
