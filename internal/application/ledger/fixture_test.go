package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/domain/entity"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testResponsible = "12345678"
	testDestination = "EST-001"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	catalog *ledger.CatalogUseCase
	ledger  *ledger.MovementLedger
	builder *ledger.GuideBuilder
	commit  *ledger.GuideCommitUseCase
	returns *ledger.ReturnWorkflow
	annul   *ledger.AnnulmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithIdempotency(t, nil)
}

func newFixtureWithIdempotency(t *testing.T, idem ledger.IdempotencyStore) *fixture {
	t.Helper()
	store := memory.NewStore()
	opts := ledger.Options{Now: func() time.Time { return testNow }}
	l := ledger.NewMovementLedger(store, store.Items(), store.Movements(), opts)
	commit := ledger.NewGuideCommitUseCase(store, l, idem, opts)
	return &fixture{
		store:   store,
		catalog: ledger.NewCatalogUseCase(store, store.Items(), opts),
		ledger:  l,
		builder: ledger.NewGuideBuilder(store.Items()),
		commit:  commit,
		returns: ledger.NewReturnWorkflow(store, store.Movements(), store.Items(), commit, opts),
		annul:   ledger.NewAnnulmentUseCase(l),
	}
}

// register registra un insumo con valor unitario 2.50.
func (f *fixture) register(t *testing.T, name, category string, qty int) *entity.SupplyItem {
	t.Helper()
	item, err := f.catalog.Register(context.Background(), dto.CreateSupplyRequest{
		Name:      name,
		Category:  category,
		Quantity:  qty,
		Unit:      "Unidad",
		UnitValue: decimal.RequireFromString("2.50"),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) item(t *testing.T, id string) *entity.SupplyItem {
	t.Helper()
	item, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return item
}

func (f *fixture) issue(t *testing.T, lines ...entity.CartLine) *ledger.CommitResult {
	t.Helper()
	res, err := f.commit.Commit(context.Background(), entity.Cart{Lines: lines}, entity.GuideModeConsolidated, outMeta())
	require.NoError(t, err)
	return res
}

func outMeta() ledger.GuideMeta {
	return ledger.GuideMeta{
		ResponsibleID: testResponsible,
		DestinationID: testDestination,
		ReceiverName:  "Ana Quispe",
		DelivererName: "Luis Rojas",
	}
}

func line(itemID string, qty int) entity.CartLine {
	return entity.CartLine{ItemID: itemID, Quantity: qty}
}

func returnOf(itemID string, qty int) ledger.ReturnRequest {
	return ledger.ReturnRequest{
		Selections:  []ledger.ReturnSelection{{ItemID: itemID, Quantity: qty}},
		DeliveredBy: "Ana Quispe",
		ReceivedBy:  "Luis Rojas",
	}
}
