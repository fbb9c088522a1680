package product

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/fitness-inventory/internal/testutil"
	"gorm.io/gorm"
)

type recordingHooks struct {
	created []uint
	deleted []uint
	failOn  string
}

func (h *recordingHooks) OnProductCreated(tx *gorm.DB, p *Product) error {
	if h.failOn == "create" {
		return errors.New("stock record failed")
	}
	h.created = append(h.created, p.ID)
	return nil
}

func (h *recordingHooks) OnProductDeleted(tx *gorm.DB, productID uint) error {
	h.deleted = append(h.deleted, productID)
	return nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := testutil.NewDB(t, &Product{})
	return NewService(db, testutil.Config()), db
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newTestService(t)
	hooks := &recordingHooks{}
	svc.SetStockHooks(hooks)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, &ProductCreateRequest{
		SKU:      "KB-16",
		Name:     "Cast Iron Kettlebell 16kg",
		Category: "strength",
		Price:    5999,
		Quantity: 12,
	})
	require.NoError(t, err)

	assert.Equal(t, "cast-iron-kettlebell-16kg", p.Slug)
	assert.Equal(t, 10, p.LowStockThreshold)
	assert.True(t, p.IsActive)
	assert.Equal(t, []uint{p.ID}, hooks.created)
}

func TestCreateProduct_SlugSuffix(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, &ProductCreateRequest{SKU: "MAT-1", Name: "Yoga Mat"})
	require.NoError(t, err)
	second, err := svc.CreateProduct(ctx, &ProductCreateRequest{SKU: "MAT-2", Name: "Yoga Mat"})
	require.NoError(t, err)

	assert.Equal(t, "yoga-mat", first.Slug)
	assert.Equal(t, "yoga-mat-2", second.Slug)
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, &ProductCreateRequest{SKU: "BAND-1", Name: "Resistance Band"})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &ProductCreateRequest{SKU: "BAND-1", Name: "Another Band"})
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestCreateProduct_HookFailureRollsBack(t *testing.T) {
	svc, db := newTestService(t)
	svc.SetStockHooks(&recordingHooks{failOn: "create"})

	_, err := svc.CreateProduct(context.Background(), &ProductCreateRequest{SKU: "ROPE-1", Name: "Jump Rope"})
	require.Error(t, err)

	var count int64
	db.Model(&Product{}).Count(&count)
	assert.Zero(t, count)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []ProductCreateRequest{
		{SKU: "DB-5", Name: "Hex Dumbbell 5kg", Category: "strength"},
		{SKU: "DB-10", Name: "Hex Dumbbell 10kg", Category: "strength"},
		{SKU: "WHEY-1", Name: "Whey Protein", Category: "supplements"},
	} {
		req := req
		_, err := svc.CreateProduct(ctx, &req)
		require.NoError(t, err)
	}

	resp, err := svc.ListProducts(ctx, &ProductListRequest{Page: 1, Limit: 1, Search: "dumbbell", SortBy: "sku", SortOrder: "asc"})
	require.NoError(t, err)

	require.Len(t, resp.Products, 1)
	assert.Equal(t, "DB-10", resp.Products[0].SKU)
	assert.Equal(t, int64(2), resp.Pagination.Total)
	assert.True(t, resp.Pagination.HasNext)

	resp, err = svc.ListProducts(ctx, &ProductListRequest{Category: "supplements"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "WHEY-1", resp.Products[0].SKU)
}

func TestDeleteProduct(t *testing.T) {
	svc, _ := newTestService(t)
	hooks := &recordingHooks{}
	svc.SetStockHooks(hooks)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, &ProductCreateRequest{SKU: "BENCH-1", Name: "Flat Bench"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	assert.Equal(t, []uint{p.ID}, hooks.deleted)

	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, p.ID), ErrNotFound)
}
