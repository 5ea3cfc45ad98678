package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbiz-crm/internal/domain"
)

type memoryRepo struct {
	items []domain.Product
}

func (r *memoryRepo) List(context.Context, domain.Filter) ([]domain.Product, error) {
	return r.items, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range r.items {
		if p.ID == id {
			clone := p
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	p.ID = uuid.NewString()
	r.items = append(r.items, p)
	return &p, nil
}

func (r *memoryRepo) ListVariations(_ context.Context, parentID string) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range r.items {
		if p.ParentID != nil && *p.ParentID == parentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestCreateVariations(t *testing.T) {
	svc := New(&memoryRepo{})
	ctx := context.Background()

	parent, err := svc.Create(ctx, Input{Name: "Remera", Type: "Variable", Brand: "Norte", Price: decimal.RequireFromString("12.5")})
	require.NoError(t, err)
	assert.Equal(t, int64(1250), parent.PriceCents)

	_, err = svc.Create(ctx, Input{
		Name: "Remera M roja", Type: domain.ProductVariation, ParentID: parent.ID,
		Attributes: map[string]any{"pa_size": "M", "attribute_pa_color": "Roja"},
	})
	require.NoError(t, err)

	vars, err := svc.Variations(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, vars, 1)
	assert.Equal(t, domain.VariantAttributes{Size: "M", Color: "Roja"}, vars[0].Variant)
	assert.Equal(t, "Norte", vars[0].Brand)
}

func TestCreate_Validation(t *testing.T) {
	repo := &memoryRepo{}
	svc := New(repo)
	ctx := context.Background()
	simple, err := svc.Create(ctx, Input{Name: "Collar"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProductSimple, simple.Type)

	cases := map[string]Input{
		"no name":          {},
		"negative price":   {Name: "X", Price: decimal.NewFromInt(-1)},
		"unknown type":     {Name: "X", Type: "bundle"},
		"missing parent":   {Name: "X", Type: domain.ProductVariation, ParentID: "nope"},
		"simple parent":    {Name: "X", Type: domain.ProductVariation, ParentID: simple.ID},
		"parent on simple": {Name: "X", ParentID: simple.ID},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err = svc.Variations(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
