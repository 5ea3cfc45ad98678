package customer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smallbiz-crm/internal/domain"
	"smallbiz-crm/internal/webhook"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	items   []domain.Customer
	inUse   map[string]bool
	updates int
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	c.ID = uuid.NewString()
	r.items = append(r.items, c)
	clone := c
	return &clone, nil
}

func (r *memoryRepo) Update(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	for i := range r.items {
		if r.items[i].ID == c.ID {
			r.items[i] = c
			r.updates++
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	if r.inUse[id] {
		return domain.ErrInUse
	}
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.items {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) FindByName(_ context.Context, first, last string) (*domain.Customer, error) {
	for _, c := range r.items {
		if c.FirstName == first && c.LastName == last {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(context.Context, domain.Filter) ([]domain.Customer, error) {
	return append([]domain.Customer{}, r.items...), nil
}

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, event string, _ any) {
	n.events = append(n.events, event)
}

func TestCreate_ValidatesAndNotifies(t *testing.T) {
	repo := &memoryRepo{}
	notifier := &recordingNotifier{}
	svc := New(repo, notifier, nil)

	_, err := svc.Create(context.Background(), domain.Contact{Email: "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, notifier.events)

	c, err := svc.Create(context.Background(), domain.Contact{FirstName: " Ana ", LastName: "Diaz"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", c.FirstName)
	assert.Equal(t, []string{webhook.CustomerCreated}, notifier.events)
}

func TestUpdate_ReplacesContact(t *testing.T) {
	repo := &memoryRepo{}
	svc := New(repo, nil, nil)
	c, err := svc.Create(context.Background(), domain.Contact{FirstName: "Ana", LastName: "Diaz", Email: "a@x.com"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), c.ID, domain.Contact{FirstName: "Ana", LastName: "Díaz"})
	require.NoError(t, err)
	assert.Equal(t, "", updated.Email)
	assert.Equal(t, "Díaz", updated.LastName)

	_, err = svc.Update(context.Background(), "missing", domain.Contact{FirstName: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_InUse(t *testing.T) {
	repo := &memoryRepo{inUse: map[string]bool{"busy": true}}
	svc := New(repo, nil, nil)
	err := svc.Delete(context.Background(), "busy")
	assert.ErrorIs(t, err, domain.ErrInUse)
	assert.ErrorContains(t, err, "has sales")
}

func TestEnsureByName(t *testing.T) {
	repo := &memoryRepo{}
	notifier := &recordingNotifier{}
	svc := New(repo, notifier, nil)
	ctx := context.Background()

	c, created, err := svc.EnsureByName(ctx, domain.Contact{FirstName: "Ana", LastName: "Diaz", Email: "a@x.com"})
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.EnsureByName(ctx, domain.Contact{FirstName: "Ana", LastName: "Diaz", Email: "other@x.com"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c.ID, again.ID)
	assert.Equal(t, "a@x.com", again.Email)
	assert.Equal(t, 0, repo.updates)

	again, _, err = svc.EnsureByName(ctx, domain.Contact{FirstName: "Ana", LastName: "Diaz", Phone: "+59899"})
	require.NoError(t, err)
	assert.Equal(t, "+59899", again.Phone)
	assert.Equal(t, 1, repo.updates)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{webhook.CustomerCreated}, notifier.events)
}
