package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/importer"
	"smallbiz-crm/internal/logging"
	"smallbiz-crm/internal/report"
	exportsvc "smallbiz-crm/internal/service/export"
	leadsvc "smallbiz-crm/internal/service/lead"
	productsvc "smallbiz-crm/internal/service/product"
	salesvc "smallbiz-crm/internal/service/sale"
)

type stubSource struct {
	customers []domain.Customer
	leads     []domain.Lead
	sales     []domain.Sale
	lastKind  string
}

func (s *stubSource) ListCustomers(ctx context.Context, f domain.Filter) ([]domain.Customer, error) {
	return s.customers, nil
}

func (s *stubSource) ListLeads(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	return s.leads, nil
}

func (s *stubSource) ListSales(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error) {
	s.lastKind = kind
	var out []domain.Sale
	for _, sale := range s.sales {
		if sale.Kind == kind {
			out = append(out, sale)
		}
	}
	return out, nil
}

type stubImporter struct {
	entity  importer.Entity
	records []importer.Record
	summary importer.Summary
}

func (s *stubImporter) Import(ctx context.Context, entity importer.Entity, records []importer.Record) importer.Summary {
	s.entity = entity
	s.records = records
	if s.summary.Count == 0 && s.summary.Errors == nil {
		return importer.Summary{Count: len(records), Created: len(records)}
	}
	return s.summary
}

type stubCustomers struct {
	customers map[string]domain.Customer
	deleteErr error
	created   []domain.Contact
}

func (s *stubCustomers) List(ctx context.Context, f domain.Filter) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubCustomers) Get(ctx context.Context, id string) (*domain.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *stubCustomers) Create(ctx context.Context, in domain.Contact) (*domain.Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	s.created = append(s.created, in)
	return &domain.Customer{ID: "c-new", Contact: in}, nil
}

func (s *stubCustomers) Update(ctx context.Context, id string, in domain.Contact) (*domain.Customer, error) {
	if _, ok := s.customers[id]; !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Customer{ID: id, Contact: in}, nil
}

func (s *stubCustomers) Delete(ctx context.Context, id string) error {
	return s.deleteErr
}

type stubLeads struct {
	lastFilter domain.Filter
}

func (s *stubLeads) List(ctx context.Context, f domain.Filter) ([]domain.Lead, error) {
	s.lastFilter = f
	return nil, nil
}

func (s *stubLeads) Get(ctx context.Context, id string) (*domain.Lead, error) {
	return nil, domain.ErrNotFound
}

func (s *stubLeads) Create(ctx context.Context, in leadsvc.Input) (*domain.Lead, error) {
	return &domain.Lead{ID: "l-1", Contact: in.Contact, Status: in.Status}, nil
}

func (s *stubLeads) Update(ctx context.Context, id string, in leadsvc.Input) (*domain.Lead, error) {
	return &domain.Lead{ID: id, Contact: in.Contact, Status: in.Status}, nil
}

type stubSales struct {
	created salesvc.Input
	kind    string
}

func (s *stubSales) List(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error) {
	s.kind = kind
	return []domain.Sale{{ID: "s-1", Kind: kind, TotalCents: 12550}}, nil
}

func (s *stubSales) Get(ctx context.Context, kind, id string) (*domain.Sale, error) {
	return nil, fmt.Errorf("sale %s: %w", id, domain.ErrNotFound)
}

func (s *stubSales) Create(ctx context.Context, kind string, in salesvc.Input) (*domain.Sale, error) {
	s.kind = kind
	s.created = in
	var total int64
	for _, li := range in.LineItems {
		total += domain.DecimalToCents(li.UnitPrice) * int64(li.Quantity)
	}
	return &domain.Sale{ID: "s-2", Kind: kind, CustomerID: in.CustomerID, TotalCents: total}, nil
}

type stubProducts struct{}

func (stubProducts) List(ctx context.Context, f domain.Filter) ([]domain.Product, error) {
	return []domain.Product{{ID: "p-1", Name: "Remera", PriceCents: 99900, Type: domain.ProductVariable}}, nil
}

func (stubProducts) Get(ctx context.Context, id string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (stubProducts) Create(ctx context.Context, in productsvc.Input) (*domain.Product, error) {
	return &domain.Product{ID: "p-2", Name: in.Name, PriceCents: domain.DecimalToCents(in.Price)}, nil
}

func (stubProducts) Variations(ctx context.Context, id string) ([]productsvc.Variation, error) {
	return []productsvc.Variation{{
		Product: domain.Product{ID: "p-3", Name: "Remera M", PriceCents: 99900, Type: domain.ProductVariation},
		Variant: domain.VariantAttributes{Size: "M", Color: "rojo"},
	}}, nil
}

type fixture struct {
	router    *gin.Engine
	source    *stubSource
	importer  *stubImporter
	customers *stubCustomers
	leads     *stubLeads
	sales     *stubSales
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{
		source:    &stubSource{},
		importer:  &stubImporter{},
		customers: &stubCustomers{customers: map[string]domain.Customer{}},
		leads:     &stubLeads{},
		sales:     &stubSales{},
	}
	deps := Deps{
		Customers:      f.customers,
		Leads:          f.leads,
		Sales:          f.sales,
		Products:       stubProducts{},
		Reports:        report.NewService(f.source),
		Exports:        exportsvc.New(f.source),
		Importer:       f.importer,
		Normalizer:     importer.Normalizer{PhonePrefix: "+598"},
		MaxUploadBytes: 64 << 10,
		MaxImportRows:  3,
		Now:            func() time.Time { return time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
	f.router = buildRouter(logging.Discard(), nil, deps)
	return f
}

func (f *fixture) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) doJSON(method, path, body string) *httptest.ResponseRecorder {
	return f.do(method, path, strings.NewReader(body), "application/json")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestReadyzWithoutDB(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unavailable","database":"not configured"}`, rec.Body.String())
}

func TestProcessRecords(t *testing.T) {
	f := newFixture(t)
	body := `{"type":"customers","records":[
		{"Nombre":"Ana","Apellido":"Diaz","Email":"a@x.com"},
		{"Nombre":"","Apellido":"","Email":"nobody@x.com"},
		{"Nombre":"","Apellido":""}
	]}`
	rec := f.doJSON(http.MethodPost, "/api/configuration/csv/process", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, []string{"row 2: missing first or last name"}, resp.Errors)

	assert.Equal(t, importer.EntityCustomers, f.importer.entity)
	require.Len(t, f.importer.records, 1)
	assert.Equal(t, "Ana", f.importer.records[0]["firstName"])
	assert.Equal(t, "a@x.com", f.importer.records[0]["email"])
}

func TestProcessRecordsErrorsNullWhenClean(t *testing.T) {
	f := newFixture(t)
	rec := f.doJSON(http.MethodPost, "/api/configuration/csv/process",
		`{"type":"leads","records":[{"firstName":"Ana","lastName":"Diaz"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"errors":null`)
	assert.Equal(t, importer.EntityLeads, f.importer.entity)
}

func TestProcessRecordsValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing records", `{"type":"customers"}`},
		{"empty records", `{"type":"customers","records":[]}`},
		{"bad type", `{"type":"sales","records":[{"firstName":"Ana"}]}`},
		{"too many rows", `{"type":"customers","records":[{"a":"1"},{"a":"2"},{"a":"3"},{"a":"4"}]}`},
		{"malformed", `{"type":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.doJSON(http.MethodPost, "/api/configuration/csv/process", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decodeError(t, rec)
			assert.Equal(t, "invalid_input", env.Error.Code)
			assert.Equal(t, rec.Header().Get(requestIDHeader), env.RequestID)
			assert.Nil(t, f.importer.records)
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/configuration/csv/process", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "req-42", decodeError(t, rec).RequestID)
}

func multipartUpload(t *testing.T, filename, content, entity string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if entity != "" {
		require.NoError(t, w.WriteField("type", entity))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestProcessSpreadsheet(t *testing.T) {
	f := newFixture(t)
	body, ct := multipartUpload(t, "clientes.csv",
		"Nombre,Apellido,Teléfono\nAna,Diaz,099 123 456\n,,\nBeto,,\n", "customers")
	rec := f.do(http.MethodPost, "/api/configuration/spreadsheet/process", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Nil(t, resp.Errors)
	require.Len(t, f.importer.records, 2)
	assert.Equal(t, "+59899123456", f.importer.records[0]["phone"])
	assert.Equal(t, "Beto", f.importer.records[1]["firstName"])
}

func TestProcessSpreadsheetRequestErrors(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		content  string
		entity   string
		status   int
	}{
		{"no file", "", "", "customers", http.StatusBadRequest},
		{"bad type", "a.csv", "Nombre\nAna\n", "products", http.StatusBadRequest},
		{"unsupported format", "a.xls", "whatever", "customers", http.StatusBadRequest},
		{"empty header", "a.csv", " , \nAna,Diaz\n", "customers", http.StatusBadRequest},
		{"too many rows", "a.csv", "Nombre\nA\nB\nC\nD\n", "customers", http.StatusBadRequest},
		{"unreadable workbook", "a.xlsx", "not a zip", "customers", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			body, ct := multipartUpload(t, tc.filename, tc.content, tc.entity)
			rec := f.do(http.MethodPost, "/api/configuration/spreadsheet/process", body, ct)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeError(t, rec).Error.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	f := newFixture(t)
	big := strings.Repeat("x", 70<<10)
	body, ct := multipartUpload(t, "big.csv", "Nombre\n"+big+"\n", "customers")
	rec := f.do(http.MethodPost, "/api/configuration/spreadsheet/process", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "payload_too_large", decodeError(t, rec).Error.Code)
}

func TestExportBulkEmptyStillReturnsWorkbook(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/export/sales", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="sales_2025-03-15.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rows, err := importer.ReadTable("x.xlsx", rec.Body)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, domain.KindSale, f.source.lastKind)
}

func TestExportBulkErrors(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/export/widgets", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/api/export/customers?dateStart=15-03-2025", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportCustom(t *testing.T) {
	f := newFixture(t)
	f.source.customers = []domain.Customer{{
		ID:      "c-1",
		Contact: domain.Contact{FirstName: "Ana", LastName: "Diaz", Email: "a@x.com", City: "Salto"},
	}}
	rec := f.doJSON(http.MethodPost, "/api/export/custom",
		`{"type":"customers","fields":["email","firstName","bogus"],"filters":{"dateStart":"2025-01-01","dateEnd":"2025-12-31"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, csvContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="customers_custom_2025-03-15.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "\ufeffNombre de pila,Correo electrónico\r\nAna,a@x.com\r\n", rec.Body.String())
}

func TestExportCustomEmptyIsNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.doJSON(http.MethodPost, "/api/export/custom", `{"type":"leads"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestExportCustomValidation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.doJSON(http.MethodPost, "/api/export/custom", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.doJSON(http.MethodPost, "/api/export/custom", `{"type":"all"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		f.doJSON(http.MethodPost, "/api/export/custom",
			`{"type":"customers","filters":{"dateStart":"2025-02-01","dateEnd":"2025-01-01"}}`).Code)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	f.source.customers = []domain.Customer{
		{Contact: domain.Contact{FirstName: "A", Source: "Instagram"}},
		{Contact: domain.Contact{FirstName: "B", Source: "Instagram"}},
		{Contact: domain.Contact{FirstName: "C"}},
	}
	rec := f.do(http.MethodGet, "/api/reports/customers-by-source", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res struct {
		Report string `json:"report"`
		Groups []struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "customers-by-source", res.Report)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Instagram", res.Groups[0].Key)
	assert.Equal(t, 2, res.Groups[0].Count)
	assert.Equal(t, report.Unspecified, res.Groups[1].Key)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/reports/nope", nil, "").Code)

	rec = f.do(http.MethodGet, "/api/reports", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sales-by-month")
}

func TestCustomerRoutes(t *testing.T) {
	f := newFixture(t)
	f.customers.customers["c-1"] = domain.Customer{ID: "c-1", Contact: domain.Contact{FirstName: "Ana"}}

	rec := f.doJSON(http.MethodPost, "/api/customers", `{"firstName":"Beto","lastName":"Paz"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.customers.created, 1)
	assert.Equal(t, "Paz", f.customers.created[0].LastName)

	rec = f.doJSON(http.MethodPost, "/api/customers", `{"email":"x@y.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/customers/c-1", nil, "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/customers/c-9", nil, "").Code)
	assert.Equal(t, http.StatusOK, f.doJSON(http.MethodPut, "/api/customers/c-1", `{"firstName":"Ana"}`).Code)

	rec = f.do(http.MethodGet, "/api/customers", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/customers/c-1", nil, "").Code)
	f.customers.deleteErr = fmt.Errorf("customer c-1 has sales: %w", domain.ErrInUse)
	rec = f.do(http.MethodDelete, "/api/customers/c-1", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeError(t, rec).Error.Code)
}

func TestUnexpectedErrorKeepsMessage(t *testing.T) {
	f := newFixture(t)
	f.customers.deleteErr = errors.New("database unavailable")
	rec := f.do(http.MethodDelete, "/api/customers/c-1", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "database unavailable", decodeError(t, rec).Error.Message)
}

func TestLeadRoutes(t *testing.T) {
	f := newFixture(t)
	rec := f.doJSON(http.MethodPost, "/api/leads", `{"firstName":"Ana","status":"ganado"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/api/leads?status=won&dateEnd=2025-03-15", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"results":[]}`, rec.Body.String())
	assert.Equal(t, "won", f.leads.lastFilter.Status)
	require.NotNil(t, f.leads.lastFilter.DateEnd)
	assert.Equal(t, time.Date(2025, 3, 15, 23, 59, 59, 999999999, time.UTC), *f.leads.lastFilter.DateEnd)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/leads/l-1", nil, "").Code)
	assert.Equal(t, http.StatusOK, f.doJSON(http.MethodPut, "/api/leads/l-1", `{"firstName":"Ana"}`).Code)
}

func TestSaleAndOrderRoutes(t *testing.T) {
	f := newFixture(t)
	rec := f.doJSON(http.MethodPost, "/api/orders",
		`{"customerId":"c-1","lineItems":[{"name":"Remera","unitPrice":"12.50","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, domain.KindOrder, f.sales.kind)
	assert.Contains(t, rec.Body.String(), `"total":"25"`)
	assert.Contains(t, rec.Body.String(), `"totalCents":2500`)

	rec = f.do(http.MethodGet, "/api/sales", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.KindSale, f.sales.kind)
	assert.Contains(t, rec.Body.String(), `"total":"125.5"`)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/orders/s-9", nil, "").Code)
}

func TestProductRoutes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/products", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"999"`)

	rec = f.doJSON(http.MethodPost, "/api/products", `{"name":"Gorro","price":"350.00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"priceCents":35000`)

	rec = f.do(http.MethodGet, "/api/products/p-1/variations", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"variant":{"size":"M","color":"rojo"}`)
	assert.Contains(t, rec.Body.String(), `"name":"Remera M"`)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/products/p-9", nil, "").Code)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := buildRouter(logging.Discard(), nil, Deps{CORSAllowedOrigins: []string{"http://localhost:5173"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/export/customers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
