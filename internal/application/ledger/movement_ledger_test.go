package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Emisión y anulación
// ──────────────────────────────────────────────────────────────────────────────

// Escenario 1: salida de 4 unidades de un insumo con 10.
func TestCommit_SalidaDescuentaStock(t *testing.T) {
	f := newFixture(t)
	x := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)

	res := f.issue(t, line(x.ID, 4))

	require.Equal(t, []string{"G-2024-0001"}, res.GuideNumbers)
	assert.Equal(t, 6, f.item(t, x.ID).Quantity)

	movs, err := f.ledger.FindByGuide(context.Background(), "G-2024-0001")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	m := movs[0]
	assert.Equal(t, entity.DirectionOut, m.Direction)
	assert.Equal(t, 4, m.Quantity)
	assert.Equal(t, entity.MovementActive, m.Status)
	assert.Equal(t, 10, m.QuantityBefore)
	assert.Equal(t, 6, m.QuantityAfter)
	assert.Equal(t, "2024-05-10", m.Date())
	assert.Equal(t, "09:30:00", m.Time())
	assert.Equal(t, testResponsible, m.ResponsibleID)
}

// Escenario 2: anular restituye el stock y registra quién autorizó.
func TestAnnul_RestituyeStockYMarcaAnulado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)
	guide := f.issue(t, line(x.ID, 4)).GuideNumbers[0]

	movs, err := f.annul.Annul(ctx, guide, "P-001", "error de digitación")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 10, f.item(t, x.ID).Quantity)

	stored, err := f.ledger.FindByGuide(ctx, guide)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAnnulled, stored[0].Status)
	assert.Equal(t, "P-001", stored[0].AnnulledBy)
	require.NotNil(t, stored[0].AnnulledAt)

	events, err := f.store.Audit().ListByTarget(ctx, guide)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditGuideAnnulled, events[0].Action)
	assert.Equal(t, "error de digitación", events[0].Reason)
}

// Una guía se anula una sola vez; la segunda anulación no modifica el stock.
func TestAnnul_SegundaAnulacionFalla(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)
	guide := f.issue(t, line(x.ID, 4)).GuideNumbers[0]

	_, err := f.annul.Annul(ctx, guide, "P-001", "")
	require.NoError(t, err)
	_, err = f.annul.Annul(ctx, guide, "P-002", "")
	assert.ErrorIs(t, err, domain.ErrAlreadyAnnulled)
	assert.Equal(t, 10, f.item(t, x.ID).Quantity)
}

func TestAnnul_GuiaInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.annul.Annul(context.Background(), "G-2024-9999", "P-001", "")
	assert.ErrorIs(t, err, domain.ErrGuideNotFound)
}

func TestAnnul_SinResponsableEsInvalido(t *testing.T) {
	f := newFixture(t)
	_, err := f.annul.Annul(context.Background(), "G-2024-0001", "  ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Anular una entrada que ya fue consumida dejaría stock negativo: se rechaza completa.
func TestAnnul_EntradaConsumidaSeRechaza(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.register(t, "Conectores RJ45", entity.CategoryAccessory, 0)

	meta := outMeta()
	meta.Direction = entity.DirectionIn
	in, err := f.commit.Commit(ctx, entity.Cart{Lines: []entity.CartLine{line(x.ID, 5)}}, "", meta)
	require.NoError(t, err)
	f.issue(t, line(x.ID, 3))

	_, err = f.annul.Annul(ctx, in.GuideNumbers[0], "P-001", "")
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, f.item(t, x.ID).Quantity)

	movs, err := f.ledger.FindByGuide(ctx, in.GuideNumbers[0])
	require.NoError(t, err)
	assert.Equal(t, entity.MovementActive, movs[0].Status)
}

// Escenario 5 (parte 1): herramienta drenada a cero pasa a Prestado; una segunda salida falla sin mutar.
func TestCommit_HerramientaPrestadaYSinStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	y := f.register(t, "Crimping Tool RJ45", entity.CategoryTool, 1)

	f.issue(t, line(y.ID, 1))
	got := f.item(t, y.ID)
	assert.Equal(t, 0, got.Quantity)
	assert.Equal(t, entity.StateLoaned, got.State)

	_, err := f.commit.Commit(ctx, entity.Cart{Lines: []entity.CartLine{line(y.ID, 1)}}, "", outMeta())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 0, f.item(t, y.ID).Quantity)
}

// Escenario 6: si la tercera línea excede el stock no se aplica ninguna ni se consume número.
func TestCommit_ConsolidadoEsAtomico(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 300)
	b := f.register(t, "Conectores RJ45", entity.CategoryAccessory, 100)
	c := f.register(t, "Canaleta", entity.CategoryMaterial, 2)

	cart := entity.Cart{Lines: []entity.CartLine{line(a.ID, 50), line(b.ID, 20), line(c.ID, 3)}}
	_, err := f.commit.Commit(ctx, cart, entity.GuideModeConsolidated, outMeta())
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 300, f.item(t, a.ID).Quantity)
	assert.Equal(t, 100, f.item(t, b.ID).Quantity)
	assert.Equal(t, 2, f.item(t, c.ID).Quantity)

	_, err = f.ledger.FindByGuide(ctx, "G-2024-0001")
	assert.ErrorIs(t, err, domain.ErrGuideNotFound)

	res := f.issue(t, line(a.ID, 1))
	assert.Equal(t, []string{"G-2024-0001"}, res.GuideNumbers)
}

func TestCommit_IndividualUnaGuiaPorLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)
	b := f.register(t, "Conectores RJ45", entity.CategoryAccessory, 10)

	cart := entity.Cart{Lines: []entity.CartLine{line(b.ID, 2), line(a.ID, 3)}}
	res, err := f.commit.Commit(ctx, cart, entity.GuideModeIndividual, outMeta())
	require.NoError(t, err)

	assert.Equal(t, []string{"G-2024-0001-1", "G-2024-0001-2"}, res.GuideNumbers)
	require.Len(t, res.Movements, 2)
	assert.Equal(t, b.ID, res.Movements[0].ItemID)
	assert.Equal(t, "G-2024-0001-1", res.Movements[0].GuideNumber)
	assert.Equal(t, a.ID, res.Movements[1].ItemID)

	second := f.issue(t, line(a.ID, 1))
	assert.Equal(t, []string{"G-2024-0002"}, second.GuideNumbers)
}

func TestCommit_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	x := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)

	cases := []struct {
		name string
		cart entity.Cart
		mode string
		meta func(m *ledger.GuideMeta)
	}{
		{"carrito vacío", entity.Cart{}, "", nil},
		{"sin responsable", entity.Cart{Lines: []entity.CartLine{line(x.ID, 1)}}, "", func(m *ledger.GuideMeta) { m.ResponsibleID = "" }},
		{"modo desconocido", entity.Cart{Lines: []entity.CartLine{line(x.ID, 1)}}, "MIXTO", nil},
		{"cantidad cero", entity.Cart{Lines: []entity.CartLine{line(x.ID, 0)}}, "", nil},
		{"insumo repetido", entity.Cart{Lines: []entity.CartLine{line(x.ID, 1), line(x.ID, 2)}}, "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := outMeta()
			if tc.meta != nil {
				tc.meta(&meta)
			}
			_, err := f.commit.Commit(ctx, tc.cart, tc.mode, meta)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, 10, f.item(t, x.ID).Quantity)
}

func TestCommit_InsumoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.commit.Commit(context.Background(), entity.Cart{Lines: []entity.CartLine{line("no-existe", 1)}}, "", outMeta())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Salidas concurrentes nunca dejan stock negativo.
func TestCommit_ConcurrenteNoDejaStockNegativo(t *testing.T) {
	f := newFixture(t)
	x := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)

	const workers = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		refused int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.commit.Commit(context.Background(), entity.Cart{Lines: []entity.CartLine{line(x.ID, 1)}}, "", outMeta())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				refused++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, workers-10, refused)
	assert.Equal(t, 0, f.item(t, x.ID).Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// Evidencia e historial
// ──────────────────────────────────────────────────────────────────────────────

func TestAttachEvidence_AsignaATodaLaGuia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)
	b := f.register(t, "Conectores RJ45", entity.CategoryAccessory, 10)
	guide := f.issue(t, line(a.ID, 1), line(b.ID, 1)).GuideNumbers[0]

	n, err := f.ledger.AttachEvidence(ctx, guide, "https://files.example.com/g1.jpg", testResponsible)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	movs, err := f.ledger.FindByGuide(ctx, guide)
	require.NoError(t, err)
	for _, m := range movs {
		assert.Equal(t, "https://files.example.com/g1.jpg", m.EvidenceURL)
	}
	events, err := f.store.Audit().ListByTarget(ctx, guide)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.AuditGuideEvidenceAttached, events[0].Action)

	_, err = f.ledger.AttachEvidence(ctx, "G-2024-0099", "https://files.example.com/x.jpg", testResponsible)
	assert.ErrorIs(t, err, domain.ErrGuideNotFound)
	_, err = f.ledger.AttachEvidence(ctx, guide, "", testResponsible)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistory_AgrupaPorGuiaYBuscaSinTildes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Cable UTP Cat6", entity.CategoryMaterial, 10)
	b := f.register(t, "Conectores RJ45", entity.CategoryAccessory, 10)
	first := f.issue(t, line(a.ID, 1), line(b.ID, 1)).GuideNumbers[0]
	second := f.issue(t, line(a.ID, 2)).GuideNumbers[0]
	_, err := f.returns.ProceedReturn(ctx, second, returnOf(a.ID, 2))
	require.NoError(t, err)

	all, err := f.ledger.History(ctx, dto.GuideHistoryRequest{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "DEV-2024-0001", all[0].Key)
	assert.Equal(t, second, all[1].Key)
	assert.Equal(t, first, all[2].Key)
	assert.Len(t, all[2].Lines, 2)
	assert.Equal(t, "Cable UTP Cat6", all[2].Lines[0].Item.Name)

	byItem, err := f.ledger.History(ctx, dto.GuideHistoryRequest{Search: "CONECTORES"})
	require.NoError(t, err)
	require.Len(t, byItem, 1)
	assert.Equal(t, first, byItem[0].Key)

	byDirection, err := f.ledger.History(ctx, dto.GuideHistoryRequest{Direction: entity.DirectionIn})
	require.NoError(t, err)
	require.Len(t, byDirection, 1)
	assert.Equal(t, "DEV-2024-0001", byDirection[0].Key)

	byDate, err := f.ledger.History(ctx, dto.GuideHistoryRequest{From: "2024-05-10", To: "2024-05-10"})
	require.NoError(t, err)
	assert.Len(t, byDate, 3)

	none, err := f.ledger.History(ctx, dto.GuideHistoryRequest{From: "2024-05-11"})
	require.NoError(t, err)
	assert.Empty(t, none)
}
