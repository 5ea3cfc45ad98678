package product

import (
	"context"
	"errors"
	"testing"

	"smallbiz-crm/internal/db/dbtest"
	"smallbiz-crm/internal/domain"
)

func TestPostgres_ListAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	parent, err := repo.Create(ctx, domain.Product{
		SKU: "REM", Name: "Remera", PriceCents: 1250, Brand: "Norte", Type: domain.ProductVariable,
	})
	if err != nil {
		t.Fatalf("Create parent: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{
		SKU: "REM-M", Name: "Remera M", PriceCents: 1250, Brand: "Norte", Type: domain.ProductVariation,
		ParentID: &parent.ID, Attributes: map[string]any{"talle": "M"},
	}); err != nil {
		t.Fatalf("Create variation: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{Name: "Collar", Brand: "Sur"}); err != nil {
		t.Fatalf("Create simple: %v", err)
	}

	list, err := repo.List(ctx, domain.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 top-level products, got %d", len(list))
	}

	list, err = repo.List(ctx, domain.Filter{Brand: "Norte"})
	if err != nil {
		t.Fatalf("List brand: %v", err)
	}
	if len(list) != 1 || list[0].ID != parent.ID {
		t.Fatalf("unexpected list %+v", list)
	}

	vars, err := repo.ListVariations(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListVariations: %v", err)
	}
	if len(vars) != 1 || vars[0].VariantAttributes().Size != "M" {
		t.Fatalf("unexpected variations %+v", vars)
	}

	got, err := repo.GetByID(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SKU != "REM" || got.Type != domain.ProductVariable {
		t.Fatalf("unexpected product %+v", got)
	}
}

func TestPostgres_DuplicateSKU(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	if _, err := repo.Create(ctx, domain.Product{SKU: "X1", Name: "Uno"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, domain.Product{SKU: "X1", Name: "Otro"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}
