package medicine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	medicines map[uuid.UUID]*Medicine
}

func newMemRepo() *memRepo {
	return &memRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (r *memRepo) Create(ctx context.Context, m *Medicine) error {
	copied := *m
	r.medicines[m.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(ctx context.Context, id string) (*Medicine, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m, ok := r.medicines[uid]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *memRepo) List(ctx context.Context, f ListFilter) ([]*Medicine, error) {
	var out []*Medicine
	for _, m := range r.medicines {
		copied := *m
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memRepo) Categories(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.medicines {
		if !seen[m.Category] {
			seen[m.Category] = true
			out = append(out, m.Category)
		}
	}
	return out, nil
}

func (r *memRepo) Update(ctx context.Context, m *Medicine) error {
	copied := *m
	r.medicines[m.ID] = &copied
	return nil
}

func (r *memRepo) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	delete(r.medicines, uid)
	return nil
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestCreateMedicine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	m, err := svc.CreateMedicine(ctx, UpsertRequest{
		Name:     "Paracetamol 500mg",
		Category: "painkiller",
		Price:    decimal.RequireFromString("10.00"),
		Stock:    intPtr(25),
		Featured: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol 500mg", m.Name)
	assert.Equal(t, 25, m.Stock)
	assert.True(t, m.Featured)

	got, err := svc.GetMedicine(ctx, m.ID.String())
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10.00")))
}

func TestCreateMedicine_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	_, err := svc.CreateMedicine(ctx, UpsertRequest{Category: "painkiller"})
	require.Error(t, err)

	_, err = svc.CreateMedicine(ctx, UpsertRequest{Name: "X"})
	require.Error(t, err)

	_, err = svc.CreateMedicine(ctx, UpsertRequest{
		Name: "X", Category: "c", Price: decimal.RequireFromString("-1"),
	})
	require.Error(t, err)

	_, err = svc.CreateMedicine(ctx, UpsertRequest{
		Name: "X", Category: "c", Stock: intPtr(-5),
	})
	require.Error(t, err)
}

func TestUpdateMedicine_PartialFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	m, err := svc.CreateMedicine(ctx, UpsertRequest{
		Name:     "Amoxicillin",
		Category: "antibiotic",
		Price:    decimal.RequireFromString("12.50"),
		Stock:    intPtr(10),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateMedicine(ctx, m.ID.String(), UpsertRequest{
		Stock: intPtr(40),
	})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Stock)
	// Untouched fields keep their values.
	assert.Equal(t, "Amoxicillin", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestDeleteMedicine(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemRepo())

	m, err := svc.CreateMedicine(ctx, UpsertRequest{
		Name: "Expired Thing", Category: "misc", Price: decimal.RequireFromString("1.00"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMedicine(ctx, m.ID.String()))

	_, err = svc.GetMedicine(ctx, m.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.DeleteMedicine(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
