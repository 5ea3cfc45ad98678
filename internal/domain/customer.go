package domain

import (
	"fmt"
	"strings"
	"time"
)

// Contact holds the identity, contact and address fields shared by customers and leads.
type Contact struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Street               string `json:"street"`
	City                 string `json:"city"`
	Province             string `json:"province"`
	DeliveryInstructions string `json:"deliveryInstructions"`
	Source               string `json:"source"`
	Brand                string `json:"brand"`
	Notes                string `json:"notes"`
}

// FullName joins first and last name, skipping empty parts.
func (c Contact) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}

// Customer is a buyer of either brand.
type Customer struct {
	ID string `json:"id"`
	Contact
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the fields every customer or lead must carry.
func (c Contact) Validate() error {
	if strings.TrimSpace(c.FirstName) == "" && strings.TrimSpace(c.LastName) == "" {
		return fmt.Errorf("%w: first or last name required", ErrInvalidInput)
	}
	if e := strings.TrimSpace(c.Email); e != "" && !strings.Contains(e, "@") {
		return fmt.Errorf("%w: email %q", ErrInvalidInput, e)
	}
	return nil
}

// Trimmed returns c with surrounding whitespace removed from every field.
func (c Contact) Trimmed() Contact {
	for _, f := range []*string{
		&c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Street, &c.City, &c.Province,
		&c.DeliveryInstructions, &c.Source, &c.Brand, &c.Notes,
	} {
		*f = strings.TrimSpace(*f)
	}
	return c
}

// FillEmpty copies fields of src into c where c has no value yet.
func (c *Contact) FillEmpty(src Contact) {
	pairs := [][2]*string{
		{&c.Email, &src.Email}, {&c.Phone, &src.Phone}, {&c.Street, &src.Street},
		{&c.City, &src.City}, {&c.Province, &src.Province},
		{&c.DeliveryInstructions, &src.DeliveryInstructions}, {&c.Source, &src.Source},
		{&c.Brand, &src.Brand}, {&c.Notes, &src.Notes},
	}
	for _, p := range pairs {
		if *p[0] == "" {
			*p[0] = *p[1]
		}
	}
}
