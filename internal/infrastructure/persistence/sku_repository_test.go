package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/shared"
	"github.com/stitchline/backend/internal/infrastructure/persistence/models"
)

func setupSkuTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SkuModel{})
	require.NoError(t, err)

	return db
}

func newTestSku(t *testing.T, code, productName string) *catalog.Sku {
	t.Helper()

	sku, err := catalog.NewSku(code, productName, "M", "navy", uuid.New())
	require.NoError(t, err)
	return sku
}

func TestGormSkuRepository_SaveAndFind(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	t.Run("saves and loads a SKU", func(t *testing.T) {
		sku := newTestSku(t, "TS-001-M-NVY", "Crew Neck Tee")

		err := repo.Save(ctx, sku)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, sku.ID)
		require.NoError(t, err)
		assert.Equal(t, sku.ID, found.ID)
		assert.Equal(t, "TS-001-M-NVY", found.Code)
		assert.Equal(t, "Crew Neck Tee", found.ProductName)
		assert.Equal(t, sku.CreatedBy, found.CreatedBy)
		assert.True(t, found.IsActive)
		assert.False(t, found.IsExcludedFromCount)
	})

	t.Run("updates an existing SKU", func(t *testing.T) {
		sku := newTestSku(t, "TS-002-L-BLK", "Crew Neck Tee")
		require.NoError(t, repo.Save(ctx, sku))

		sku.Deactivate()
		require.NoError(t, repo.Save(ctx, sku))

		found, err := repo.FindByID(ctx, sku.ID)
		require.NoError(t, err)
		assert.False(t, found.IsActive)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSkuRepository_FindByIDs(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	a := newTestSku(t, "HD-001-S-GRY", "Zip Hoodie")
	b := newTestSku(t, "HD-001-M-GRY", "Zip Hoodie")
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, b))

	t.Run("returns only existing ids", func(t *testing.T) {
		skus, err := repo.FindByIDs(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID})
		require.NoError(t, err)
		assert.Len(t, skus, 2)
	})

	t.Run("empty input short-circuits", func(t *testing.T) {
		skus, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, skus)
	})
}

func TestGormSkuRepository_FindCountable(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	countable := newTestSku(t, "JK-010-M-OLV", "Field Jacket")
	excluded := newTestSku(t, "JK-011-M-OLV", "Field Jacket Consignment")
	excluded.ExcludeFromCount()
	retired := newTestSku(t, "JK-012-M-OLV", "Field Jacket Legacy")
	retired.Deactivate()

	require.NoError(t, repo.Save(ctx, countable))
	require.NoError(t, repo.Save(ctx, excluded))
	require.NoError(t, repo.Save(ctx, retired))

	skus, err := repo.FindCountable(ctx)
	require.NoError(t, err)
	require.Len(t, skus, 1)
	assert.Equal(t, countable.ID, skus[0].ID)
}

func TestGormSkuRepository_FindAll(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSku(t, "CH-001-30-KHK", "Slim Chino")))
	require.NoError(t, repo.Save(ctx, newTestSku(t, "CH-001-32-KHK", "Slim Chino")))
	require.NoError(t, repo.Save(ctx, newTestSku(t, "DN-200-32-IND", "Straight Denim")))

	t.Run("search matches code and product name", func(t *testing.T) {
		skus, err := repo.FindAll(ctx, shared.Filter{Search: "chino"})
		require.NoError(t, err)
		assert.Len(t, skus, 2)

		skus, err = repo.FindAll(ctx, shared.Filter{Search: "dn-200"})
		require.NoError(t, err)
		assert.Len(t, skus, 1)
	})

	t.Run("orders by whitelisted column", func(t *testing.T) {
		skus, err := repo.FindAll(ctx, shared.Filter{OrderBy: "code", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, skus, 3)
		assert.Equal(t, "CH-001-30-KHK", skus[0].Code)
		assert.Equal(t, "DN-200-32-IND", skus[2].Code)
	})

	t.Run("paginates", func(t *testing.T) {
		skus, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "code", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Len(t, skus, 1)

		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})
}

func TestGormSkuRepository_ExistsByCode(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSku(t, "SK-100-M-WHT", "Oxford Shirt")))

	exists, err := repo.ExistsByCode(ctx, "sk-100-m-wht")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByCode(ctx, "SK-999-M-WHT")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormSkuRepository_Delete(t *testing.T) {
	db := setupSkuTestDB(t)
	repo := NewGormSkuRepository(db)
	ctx := context.Background()

	sku := newTestSku(t, "BL-050-M-NVY", "Bomber")
	require.NoError(t, repo.Save(ctx, sku))

	require.NoError(t, repo.Delete(ctx, sku.ID))

	_, err := repo.FindByID(ctx, sku.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, sku.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
