package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestDB(t *testing.T) (OrderRepository, func()) {
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	// Start MongoDB container
	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	repo, err := OpenMongoRepository(ctx, MongoConfig{URI: uri, Database: "testdb", MaxPoolSize: 4})
	require.NoError(t, err)

	err = repo.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := repo.Close(ctx); err != nil {
			t.Logf("failed to disconnect: %s", err)
		}
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestGetOrder_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	order, err := repo.GetOrder(context.Background(), "ORD-MISSING")

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestSaveOrder_ThenGet(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	order := sampleOrder()

	require.NoError(t, repo.SaveOrder(ctx, order))

	got, err := repo.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.True(t, order.Totals.Total.Equal(got.Totals.Total))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 3, got.Lines[0].Quantity)
	assert.Equal(t, order.Lines[0].Product.Variant.Options, got.Lines[0].Product.Variant.Options)
	assert.Equal(t, "apparel", got.Lines[0].Product.Metadata["category"])
	assert.Equal(t, "leave at door", got.Notes)
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveOrder_Duplicate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.SaveOrder(ctx, sampleOrder()))
	err := repo.SaveOrder(ctx, sampleOrder())

	assert.ErrorIs(t, err, ErrDuplicateOrder)
}
