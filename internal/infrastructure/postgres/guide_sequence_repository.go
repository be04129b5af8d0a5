package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Insumos-api/internal/domain/repository"
)

var _ repository.GuideSequenceRepository = (*GuideSequenceRepo)(nil)

// GuideSequenceRepo correlativo de guías en guide_sequences.
type GuideSequenceRepo struct {
	q Querier
}

// NewGuideSequenceRepository construye el adaptador. Debe usarse con la tx del commit.
func NewGuideSequenceRepository(q Querier) *GuideSequenceRepo {
	return &GuideSequenceRepo{q: q}
}

// Next incrementa el correlativo; el UPSERT bloquea la fila (prefix, year) hasta el fin de la tx.
func (r *GuideSequenceRepo) Next(ctx context.Context, prefix string, year int) (int64, error) {
	query := `
		INSERT INTO guide_sequences (prefix, year, last_value) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET last_value = guide_sequences.last_value + 1
		RETURNING last_value`
	var n int64
	if err := r.q.QueryRow(ctx, query, prefix, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next guide sequence: %w", err)
	}
	return n, nil
}
