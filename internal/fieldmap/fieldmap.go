// Package fieldmap translates spreadsheet column headers, in English or
// Spanish, to the canonical record field names used by the importer.
package fieldmap

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Canonical field names.
const (
	FirstName            = "firstName"
	LastName             = "lastName"
	Name                 = "name"
	Email                = "email"
	Phone                = "phone"
	Address              = "address"
	Street               = "street"
	City                 = "city"
	Province             = "province"
	DeliveryInstructions = "deliveryInstructions"
	Source               = "source"
	Brand                = "brand"
	Notes                = "notes"
	Status               = "status"
	LastContactAt        = "lastContactAt"
	NextFollowUpAt       = "nextFollowUpAt"
	CreatedAt            = "createdAt"
)

var synonyms = map[string][]string{
	FirstName: {"firstname", "first name", "first_name", "nombres", "nombre", "nombre de pila", "primer nombre"},
	LastName:  {"lastname", "last name", "last_name", "surname", "apellido", "apellidos"},
	Name:      {"name", "full name", "fullname", "nombre completo", "cliente", "customer"},
	Email:     {"email", "e-mail", "mail", "correo", "correo electronico", "correo electrónico", "email address"},
	Phone:     {"phone", "phone number", "telephone", "mobile", "telefono", "teléfono", "celular", "movil", "móvil", "whatsapp"},
	Address:   {"address", "full address", "direccion", "dirección", "domicilio"},
	Street:    {"street", "street address", "calle", "direccion calle", "dirección calle"},
	City:      {"city", "town", "ciudad", "localidad"},
	Province:  {"province", "state", "region", "provincia", "departamento"},
	DeliveryInstructions: {
		"delivery instructions", "deliveryinstructions", "delivery_instructions",
		"indicaciones", "indicaciones de entrega", "instrucciones de entrega", "referencias",
	},
	Source:         {"source", "channel", "lead source", "origen", "fuente", "canal"},
	Brand:          {"brand", "marca"},
	Notes:          {"notes", "note", "comments", "notas", "nota", "observaciones", "comentarios"},
	Status:         {"status", "lead status", "estado", "estado del lead", "etapa"},
	LastContactAt:  {"last contact", "last contact at", "lastcontactat", "ultimo contacto", "último contacto"},
	NextFollowUpAt: {"next follow up", "next follow-up", "follow up", "nextfollowupat", "proximo seguimiento", "próximo seguimiento", "seguimiento"},
	CreatedAt:      {"created at", "createdat", "created_at", "fecha de creacion", "fecha de creación", "fecha de alta"},
}

var (
	folder = cases.Fold()
	table  = buildTable()
)

func buildTable() map[string]string {
	t := make(map[string]string)
	for canonical, names := range synonyms {
		t[matchKey(canonical)] = canonical
		for _, n := range names {
			t[matchKey(n)] = canonical
		}
	}
	return t
}

// matchKey composes accents, folds case and collapses inner whitespace so
// "Correo  Electrónico" and "correo electrónico" compare equal.
func matchKey(s string) string {
	s = norm.NFC.String(strings.TrimPrefix(s, "\ufeff"))
	return strings.Join(strings.Fields(folder.String(s)), " ")
}

// Canonical returns the canonical field for header, or header itself when no
// synonym matches. Matching is exact after case folding; there is no fuzzy
// or partial matching.
func Canonical(header string) string {
	if field, ok := table[matchKey(header)]; ok {
		return field
	}
	return header
}

// Known reports whether field is one of the canonical names.
func Known(field string) bool {
	_, ok := synonyms[field]
	return ok
}
