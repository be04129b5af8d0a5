package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/memory"
)

func seedItem(t *testing.T, s *memory.Store, id string, qty int) {
	t.Helper()
	require.NoError(t, s.Items().Create(context.Background(), &entity.SupplyItem{
		ID: id, Name: "Insumo " + id, Category: entity.CategoryMaterial, Quantity: qty, State: entity.StateNew,
	}))
}

func TestRun_RollbackDescartaCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedItem(t, s, "x", 5)
	boom := errors.New("boom")

	err := s.Run(ctx, func(items repository.SupplyItemRepository, movs repository.MovementRepository,
		seqs repository.GuideSequenceRepository, _ repository.AuditEventRepository) error {
		it, err := items.GetForUpdate(ctx, "x")
		require.NoError(t, err)
		it.Quantity = 1
		require.NoError(t, items.UpdateStock(ctx, it))
		require.NoError(t, movs.Create(ctx, &entity.Movement{ItemID: "x", GuideNumber: "G-1", Status: entity.MovementActive}))
		_, err = seqs.Next(ctx, "G", 2024)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	it, err := s.Items().GetByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 5, it.Quantity)
	movs, err := s.Movements().ListByGuide(ctx, "G-1")
	require.NoError(t, err)
	assert.Empty(t, movs)
	n, err := s.Sequences().Next(ctx, "G", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRun_CommitPublicaCambios(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedItem(t, s, "x", 5)

	err := s.Run(ctx, func(items repository.SupplyItemRepository, movs repository.MovementRepository,
		_ repository.GuideSequenceRepository, _ repository.AuditEventRepository) error {
		it, err := items.GetForUpdate(ctx, "x")
		if err != nil {
			return err
		}
		it.Quantity = 2
		if err := items.UpdateStock(ctx, it); err != nil {
			return err
		}
		return movs.Create(ctx, &entity.Movement{ItemID: "x", GuideNumber: "G-1", Status: entity.MovementActive})
	})
	require.NoError(t, err)

	it, err := s.Items().GetByID(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 2, it.Quantity)
	movs, err := s.Movements().ListByGuide(ctx, "G-1")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, int64(1), movs[0].Sequence)
	assert.NotEmpty(t, movs[0].ID)
}

func TestMovementRepo_SearchGroupKeysMasRecientePrimero(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	seedItem(t, s, "x", 5)
	base := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	for i, g := range []string{"G-1", "", "G-2", "G-1"} {
		require.NoError(t, s.Movements().Create(ctx, &entity.Movement{
			ID: "m" + string(rune('a'+i)), ItemID: "x", GuideNumber: g, Direction: entity.DirectionOut,
			Status: entity.MovementActive, MovedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	keys, err := s.Movements().SearchGroupKeys(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"G-1", "G-2", "single-mb"}, keys)

	keys, err = s.Movements().SearchGroupKeys(ctx, repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"G-2"}, keys)

	movs, err := s.Movements().ListByGroupKeys(ctx, []string{"single-mb"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "mb", movs[0].ID)
}

func TestIdempotencyStore_ReservaYLibera(t *testing.T) {
	s := memory.NewIdempotencyStore(time.Minute)
	ctx := context.Background()

	ok, err := s.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Release(ctx, "k"))
	ok, err = s.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}
