package httpserver

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/exporter"
	"smallbiz-crm/internal/importer"
	"smallbiz-crm/internal/report"
	exportsvc "smallbiz-crm/internal/service/export"
	leadsvc "smallbiz-crm/internal/service/lead"
	productsvc "smallbiz-crm/internal/service/product"
	salesvc "smallbiz-crm/internal/service/sale"
)

type customerService interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Customer, error)
	Get(ctx context.Context, id string) (*domain.Customer, error)
	Create(ctx context.Context, in domain.Contact) (*domain.Customer, error)
	Update(ctx context.Context, id string, in domain.Contact) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

type leadService interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Lead, error)
	Get(ctx context.Context, id string) (*domain.Lead, error)
	Create(ctx context.Context, in leadsvc.Input) (*domain.Lead, error)
	Update(ctx context.Context, id string, in leadsvc.Input) (*domain.Lead, error)
}

type saleService interface {
	List(ctx context.Context, kind string, f domain.Filter) ([]domain.Sale, error)
	Get(ctx context.Context, kind, id string) (*domain.Sale, error)
	Create(ctx context.Context, kind string, in salesvc.Input) (*domain.Sale, error)
}

type productService interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Variations(ctx context.Context, id string) ([]productsvc.Variation, error)
}

type reportRunner interface {
	Run(ctx context.Context, name string, f domain.Filter) (report.Result, error)
}

type exportService interface {
	Bulk(ctx context.Context, entity string, f domain.Filter) ([]exporter.Sheet, error)
	Custom(ctx context.Context, req exportsvc.CustomRequest) (exporter.Sheet, error)
}

type recordImporter interface {
	Import(ctx context.Context, entity importer.Entity, records []importer.Record) importer.Summary
}

// Deps carries the services and limits the router needs.
type Deps struct {
	Customers  customerService
	Leads      leadService
	Sales      saleService
	Products   productService
	Reports    reportRunner
	Exports    exportService
	Importer   recordImporter
	Normalizer importer.Normalizer

	CORSAllowedOrigins []string
	// MaxUploadBytes caps every request body, uploads included.
	MaxUploadBytes int64
	// MaxImportRows caps the data rows of a single import request.
	MaxImportRows int
	// Now stamps export filenames; defaults to time.Now.
	Now func() time.Time
}

// buildRouter wires routes for the API.
func buildRouter(logger *slog.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestID(), requestLogger(logger), gin.Recovery())
	if len(deps.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	var ready pinger
	if db != nil {
		ready = db
	}
	router.GET("/readyz", readyHandler(ready))

	h := &handlers{deps: deps, logger: logger}
	if h.deps.Now == nil {
		h.deps.Now = time.Now
	}

	api := router.Group("/api", bodyLimit(deps.MaxUploadBytes))

	configuration := api.Group("/configuration")
	configuration.POST("/csv/process", h.processRecords)
	configuration.POST("/spreadsheet/process", h.processSpreadsheet)

	api.GET("/export/:entity", h.exportBulk)
	api.POST("/export/custom", h.exportCustom)

	api.GET("/reports", h.listReports)
	api.GET("/reports/:report", h.runReport)

	api.GET("/customers", h.listCustomers)
	api.POST("/customers", h.createCustomer)
	api.GET("/customers/:id", h.getCustomer)
	api.PUT("/customers/:id", h.updateCustomer)
	api.DELETE("/customers/:id", h.deleteCustomer)

	api.GET("/leads", h.listLeads)
	api.POST("/leads", h.createLead)
	api.GET("/leads/:id", h.getLead)
	api.PUT("/leads/:id", h.updateLead)

	for path, kind := range map[string]string{"/sales": domain.KindSale, "/orders": domain.KindOrder} {
		api.GET(path, h.listSales(kind))
		api.POST(path, h.createSale(kind))
		api.GET(path+"/:id", h.getSale(kind))
	}

	api.GET("/products", h.listProducts)
	api.POST("/products", h.createProduct)
	api.GET("/products/:id", h.getProduct)
	api.GET("/products/:id/variations", h.listVariations)

	return router
}

type handlers struct {
	deps   Deps
	logger *slog.Logger
}

// bindJSON decodes the body, reporting oversized bodies as 413 and anything
// else malformed as 400. It returns false once a response has been written.
func (h *handlers) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		if isTooLarge(err) {
			respondError(c, h.logger, err)
			return false
		}
		badRequest(c, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
