package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/domain/repository"
	"github.com/jhoicas/Insumos-api/pkg/textsearch"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación de MovementRepository sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, seq, item_id, moved_at, direction, quantity, quantity_before, quantity_after,
	guide_number, origin_guide_number, responsible_id, destination_id, receiver_name, deliverer_name,
	evidence_url, observation, status, annulled_by, annulled_at, created_at`

// groupKeyExpr clave de agrupación: número de guía o "single-<id>".
const groupKeyExpr = `CASE WHEN guide_number = '' THEN 'single-' || id::text ELSE guide_number END`

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.Sequence, &m.ItemID, &m.MovedAt, &m.Direction, &m.Quantity, &m.QuantityBefore, &m.QuantityAfter,
		&m.GuideNumber, &m.OriginGuideNumber, &m.ResponsibleID, &m.DestinationID, &m.ReceiverName, &m.DelivererName,
		&m.EvidenceURL, &m.Observation, &m.Status, &m.AnnulledBy, &m.AnnulledAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserta el movimiento; asigna ID si falta y toma Sequence de la secuencia de la tabla.
// search_text incluye el nombre del insumo para el historial.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var itemName string
	if err := r.q.QueryRow(ctx, `SELECT name FROM supply_items WHERE id = $1`, m.ItemID).Scan(&itemName); err != nil {
		return fmt.Errorf("create movement: insumo %s: %w", m.ItemID, err)
	}
	search := textsearch.Join(m.GuideNumber, m.Date(), m.Direction, itemName, m.DestinationID, m.ResponsibleID)

	query := `
		INSERT INTO supply_movements (id, item_id, moved_at, direction, quantity, quantity_before, quantity_after,
			guide_number, origin_guide_number, responsible_id, destination_id, receiver_name, deliverer_name,
			evidence_url, observation, status, annulled_by, annulled_at, created_at, search_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ItemID, m.MovedAt, m.Direction, m.Quantity, m.QuantityBefore, m.QuantityAfter,
		m.GuideNumber, m.OriginGuideNumber, m.ResponsibleID, m.DestinationID, m.ReceiverName, m.DelivererName,
		m.EvidenceURL, m.Observation, m.Status, m.AnnulledBy, m.AnnulledAt, m.CreatedAt, search,
	).Scan(&m.Sequence)
	if err != nil {
		return mapWriteError("create movement", err)
	}
	return nil
}

// ListByGuide movimientos de la guía en orden de creación.
func (r *MovementRepo) ListByGuide(ctx context.Context, guideNumber string) ([]*entity.Movement, error) {
	if guideNumber == "" {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+movementColumns+` FROM supply_movements WHERE guide_number = $1 ORDER BY seq`, guideNumber)
}

// ListByGuideForUpdate igual que ListByGuide bloqueando las filas (SELECT FOR UPDATE).
func (r *MovementRepo) ListByGuideForUpdate(ctx context.Context, guideNumber string) ([]*entity.Movement, error) {
	if guideNumber == "" {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+movementColumns+` FROM supply_movements WHERE guide_number = $1 ORDER BY seq FOR UPDATE`, guideNumber)
}

// ListReturnsOf movimientos de devolución contra la guía origen.
func (r *MovementRepo) ListReturnsOf(ctx context.Context, origin string) ([]*entity.Movement, error) {
	if origin == "" {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+movementColumns+` FROM supply_movements WHERE origin_guide_number = $1 ORDER BY seq`, origin)
}

// CountByItem cuenta los movimientos del insumo (activos y anulados).
func (r *MovementRepo) CountByItem(ctx context.Context, itemID string) (int, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return 0, nil
	}
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM supply_movements WHERE item_id = $1`, itemID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count movements by item: %w", err)
	}
	return n, nil
}

// MarkAnnulled marca como anulados los movimientos activos de la guía.
func (r *MovementRepo) MarkAnnulled(ctx context.Context, guideNumber, annulledBy string, at time.Time) error {
	query := `
		UPDATE supply_movements SET status = $2, annulled_by = $3, annulled_at = $4
		WHERE guide_number = $1 AND status = $5`
	_, err := r.q.Exec(ctx, query, guideNumber, entity.MovementAnnulled, annulledBy, at, entity.MovementActive)
	if err != nil {
		return fmt.Errorf("annul movements: %w", err)
	}
	return nil
}

// SetEvidence asigna la evidencia a los movimientos activos de la guía.
func (r *MovementRepo) SetEvidence(ctx context.Context, guideNumber, url string) (int64, error) {
	query := `UPDATE supply_movements SET evidence_url = $2 WHERE guide_number = $1 AND status = $3`
	tag, err := r.q.Exec(ctx, query, guideNumber, url, entity.MovementActive)
	if err != nil {
		return 0, fmt.Errorf("set evidence: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SearchGroupKeys claves de grupo que cumplen el filtro, de la más reciente a la más antigua.
func (r *MovementRepo) SearchGroupKeys(ctx context.Context, f repository.MovementFilter) ([]string, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Search != "" {
		where = append(where, "search_text LIKE "+arg(likePattern(f.Search)))
	}
	if f.Direction != "" {
		where = append(where, "direction = "+arg(f.Direction))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.From != nil {
		where = append(where, "moved_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "moved_at < "+arg(*f.To))
	}

	query := `SELECT ` + groupKeyExpr + ` AS group_key, MAX(seq) AS last_seq FROM supply_movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY group_key ORDER BY last_seq DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search movement groups: %w", err)
	}
	defer rows.Close()
	keys := make([]string, 0)
	for rows.Next() {
		var (
			key     string
			lastSeq int64
		)
		if err := rows.Scan(&key, &lastSeq); err != nil {
			return nil, fmt.Errorf("scan movement group: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// ListByGroupKeys movimientos de los grupos indicados en orden de creación.
func (r *MovementRepo) ListByGroupKeys(ctx context.Context, keys []string) ([]*entity.Movement, error) {
	var guides, singles []string
	for _, k := range keys {
		if id, ok := strings.CutPrefix(k, entity.SingleGroupPrefix); ok {
			singles = append(singles, id)
			continue
		}
		guides = append(guides, k)
	}
	singles = validUUIDs(singles)
	query := `
		SELECT ` + movementColumns + ` FROM supply_movements
		WHERE guide_number = ANY($1) OR (guide_number = '' AND id = ANY($2::uuid[]))
		ORDER BY seq`
	return r.list(ctx, query, nonNil(guides), singles)
}

func (r *MovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	out := make([]*entity.Movement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
