package exporter

import (
	"strconv"
	"time"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/fieldmap"
)

// Sale fields that have no import counterpart.
const (
	FieldID            = "id"
	FieldSoldAt        = "soldAt"
	FieldCustomerName  = "customerName"
	FieldKind          = "kind"
	FieldSaleStatus    = "saleStatus"
	FieldPaymentMethod = "paymentMethod"
	FieldLineItems     = "lineItems"
	FieldItemCount     = "itemCount"
	FieldTotal         = "total"
)

const dateLayout = "2006-01-02"

var contactColumns = []Column{
	{fieldmap.FirstName, "Nombre de pila"},
	{fieldmap.LastName, "Apellido"},
	{fieldmap.Email, "Correo electrónico"},
	{fieldmap.Phone, "Teléfono"},
	{fieldmap.Street, "Calle"},
	{fieldmap.City, "Ciudad"},
	{fieldmap.Province, "Provincia"},
	{fieldmap.DeliveryInstructions, "Indicaciones de entrega"},
	{fieldmap.Source, "Origen"},
	{fieldmap.Brand, "Marca"},
	{fieldmap.Notes, "Notas"},
}

// CustomerColumns is the customer export layout. Headers are recognized by
// the importer so an exported file can be imported again.
var CustomerColumns = append(append([]Column{}, contactColumns...),
	Column{fieldmap.CreatedAt, "Fecha de creación"},
)

// LeadColumns is the lead export layout.
var LeadColumns = append(append([]Column{}, contactColumns...),
	Column{fieldmap.Status, "Etapa"},
	Column{fieldmap.LastContactAt, "Último contacto"},
	Column{fieldmap.NextFollowUpAt, "Próximo seguimiento"},
	Column{fieldmap.CreatedAt, "Fecha de creación"},
)

// SaleColumns is the layout shared by sales and orders.
var SaleColumns = []Column{
	{FieldID, "ID"},
	{FieldSoldAt, "Fecha"},
	{FieldKind, "Tipo"},
	{FieldCustomerName, "Cliente"},
	{fieldmap.Province, "Provincia"},
	{fieldmap.Brand, "Marca"},
	{fieldmap.Source, "Origen"},
	{FieldSaleStatus, "Estado de la venta"},
	{FieldPaymentMethod, "Método de pago"},
	{FieldLineItems, "Productos"},
	{FieldItemCount, "Unidades"},
	{FieldTotal, "Total"},
	{fieldmap.Notes, "Notas"},
}

func contactRow(c domain.Contact) Row {
	return Row{
		fieldmap.FirstName:            c.FirstName,
		fieldmap.LastName:             c.LastName,
		fieldmap.Email:                c.Email,
		fieldmap.Phone:                c.Phone,
		fieldmap.Street:               c.Street,
		fieldmap.City:                 c.City,
		fieldmap.Province:             c.Province,
		fieldmap.DeliveryInstructions: c.DeliveryInstructions,
		fieldmap.Source:               c.Source,
		fieldmap.Brand:                c.Brand,
		fieldmap.Notes:                c.Notes,
	}
}

// CustomerRows formats customers for CustomerColumns.
func CustomerRows(customers []domain.Customer) []Row {
	rows := make([]Row, 0, len(customers))
	for _, c := range customers {
		row := contactRow(c.Contact)
		row[fieldmap.CreatedAt] = formatDate(&c.CreatedAt)
		rows = append(rows, row)
	}
	return rows
}

// LeadRows formats leads for LeadColumns.
func LeadRows(leads []domain.Lead) []Row {
	rows := make([]Row, 0, len(leads))
	for _, l := range leads {
		row := contactRow(l.Contact)
		row[fieldmap.Status] = l.Status
		row[fieldmap.LastContactAt] = formatDate(l.LastContactAt)
		row[fieldmap.NextFollowUpAt] = formatDate(l.NextFollowUpAt)
		row[fieldmap.CreatedAt] = formatDate(&l.CreatedAt)
		rows = append(rows, row)
	}
	return rows
}

// SaleRows formats sales and orders for SaleColumns. Line items use the
// one-per-line text form.
func SaleRows(sales []domain.Sale) []Row {
	rows := make([]Row, 0, len(sales))
	for _, s := range sales {
		units := 0
		for _, li := range s.LineItems {
			units += li.Quantity
		}
		total := s.TotalCents
		if total == 0 {
			total = s.ComputeTotal()
		}
		rows = append(rows, Row{
			FieldID:            s.ID,
			FieldSoldAt:        formatDate(&s.SoldAt),
			FieldKind:          s.Kind,
			FieldCustomerName:  s.CustomerName,
			fieldmap.Province:  s.Province,
			fieldmap.Brand:     s.Brand,
			fieldmap.Source:    s.Source,
			FieldSaleStatus:    s.Status,
			FieldPaymentMethod: s.PaymentMethod,
			FieldLineItems:     domain.EncodeLineItems(s.LineItems),
			FieldItemCount:     strconv.Itoa(units),
			FieldTotal:         domain.CentsToDecimal(total).StringFixed(2),
			fieldmap.Notes:     s.Notes,
		})
	}
	return rows
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
