package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/ledger"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Insumos-api/internal/infrastructure/xmldoc"
	apphttp "github.com/jhoicas/Insumos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Insumos-api/pkg/jwt"
	"github.com/jhoicas/Insumos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "consola-insumos-test"
	testPartyID   = "12345678"
	testPartyName = "Luis Rojas"
	testExpMin    = 60
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

// buildTestApp arma la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	opts := ledger.Options{Now: func() time.Time { return testNow }}
	l := ledger.NewMovementLedger(store, store.Items(), store.Movements(), opts)
	commit := ledger.NewGuideCommitUseCase(store, l, memory.NewIdempotencyStore(time.Hour), opts)
	log := logger.Nop()

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	apphttp.Router(app, apphttp.RouterDeps{
		Catalog:   ledger.NewCatalogUseCase(store, store.Items(), opts),
		Builder:   ledger.NewGuideBuilder(store.Items()),
		Ledger:    l,
		Commit:    commit,
		Returns:   ledger.NewReturnWorkflow(store, store.Movements(), store.Items(), commit, opts),
		Annulment: ledger.NewAnnulmentUseCase(l),
		Documents: ledger.NewGuideDocumentUseCase(l, xmldoc.NewGuideXMLRenderer(), pdf.NewMarotoPDFGenerator("Red de Salud")),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
		Logger:    log,
	})
	return app
}

func bearer(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{PartyID: testPartyID, Name: testPartyName, Role: "almacen"}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// do lanza la petición autenticada y devuelve la respuesta.
func do(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", bearer(t))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["code"]
}

// createSupply registra un insumo vía API y devuelve su ID.
func createSupply(t *testing.T, app *fiber.App, name, category string, qty int) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/supplies", map[string]any{
		"name":       name,
		"category":   category,
		"quantity":   qty,
		"unit":       "Unidad",
		"unit_value": "2.50",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	return body["id"].(string)
}

// issueGuide emite una guía consolidada de salida y devuelve su número.
func issueGuide(t *testing.T, app *fiber.App, itemID string, qty int) string {
	t.Helper()
	resp := do(t, app, http.MethodPost, "/api/guides", map[string]any{
		"lines":          []map[string]any{{"item_id": itemID, "quantity": qty}},
		"destination_id": "EST-001",
		"receiver_name":  "Ana Quispe",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	numbers := body["guide_numbers"].([]any)
	require.Len(t, numbers, 1)
	return numbers[0].(string)
}
