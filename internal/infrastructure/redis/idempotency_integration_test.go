//go:build integration

package redis_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/redis"
)

// Ejecutar con: go test -tags=integration ./internal/infrastructure/redis/...
// Requiere Docker.

func TestRedis_CommitConClaveRepetidaEmiteUnaSolaGuia(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err, "no se pudo iniciar el contenedor de Redis")
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := redis.NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := memory.NewStore()
	opts := ledger.Options{}
	l := ledger.NewMovementLedger(store, store.Items(), store.Movements(), opts)
	commit := ledger.NewGuideCommitUseCase(store, l, redis.NewIdempotencyStore(client, time.Minute), opts)

	item, err := ledger.NewCatalogUseCase(store, store.Items(), opts).Register(ctx, dto.CreateSupplyRequest{
		Name: "Brocas HSS", Category: entity.CategoryMaterial, Quantity: 20, Unit: "Juego",
		UnitValue: decimal.RequireFromString("35.00"),
	})
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := commit.Commit(ctx, entity.Cart{Lines: []entity.CartLine{{ItemID: item.ID, Quantity: 1}}},
				entity.GuideModeConsolidated, ledger.GuideMeta{ResponsibleID: "12345678", IdempotencyKey: "reintento-1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
	got, err := store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 19, got.Quantity)
}
