package validators

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Contact is the walk-in contact captured at the counter.
type Contact struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"omitempty,email,max=100"`
	Phone string `validate:"omitempty,e164|numeric,min=6,max=20"`
}

// Normalize trims fields and lower-cases the email.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:  strings.TrimSpace(c.Name),
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Phone: strings.TrimSpace(c.Phone),
	}
}

func (c Contact) HasChannel() bool {
	return c.Email != "" || c.Phone != ""
}

func ValidateContact(c Contact) error {
	return validate.Struct(c)
}
