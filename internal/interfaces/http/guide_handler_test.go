package http_test

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
)

func TestGuides_EmitirConsultarYAnular(t *testing.T) {
	app := buildTestApp(t)
	id := createSupply(t, app, "Cable UTP Cat6", "Material", 10)

	number := issueGuide(t, app, id, 4)
	assert.Equal(t, "G-2024-0001", number)

	resp := do(t, app, http.MethodGet, "/api/supplies/"+id, nil)
	assert.Equal(t, 6, decode[dto.SupplyResponse](t, resp).Quantity)

	resp = do(t, app, http.MethodGet, "/api/guides/g-2024-0001", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	guide := decode[dto.GuideResponse](t, resp)
	assert.Equal(t, number, guide.GuideNumber)
	assert.Equal(t, testPartyID, guide.ResponsibleID)
	assert.Equal(t, testPartyName, guide.DelivererName, "sin entregador se usa el nombre del token")
	assert.Equal(t, 4, guide.TotalUnits)
	require.Len(t, guide.Lines, 1)
	assert.Equal(t, "Cable UTP Cat6", guide.Lines[0].ItemName)
	assert.Equal(t, 10, guide.Lines[0].QuantityBefore)

	resp = do(t, app, http.MethodPost, "/api/guides/"+number+"/annul", map[string]any{"reason": "destino equivocado"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	annulled := decode[dto.AnnulGuideResponse](t, resp)
	assert.Equal(t, number, annulled.GuideNumber)
	require.Len(t, annulled.Movements, 1)
	assert.Equal(t, "Anulado", annulled.Movements[0].Status)
	assert.Equal(t, testPartyID, annulled.Movements[0].AnnulledBy)

	resp = do(t, app, http.MethodGet, "/api/supplies/"+id, nil)
	assert.Equal(t, 10, decode[dto.SupplyResponse](t, resp).Quantity)

	resp = do(t, app, http.MethodPost, "/api/guides/"+number+"/annul", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_ANNULLED", errorCode(t, resp))
}

func TestGuides_StockInsuficienteNoEmite(t *testing.T) {
	app := buildTestApp(t)
	id := createSupply(t, app, "Cable UTP Cat6", "Material", 2)

	resp := do(t, app, http.MethodPost, "/api/guides", map[string]any{
		"lines": []map[string]any{{"item_id": id, "quantity": 3}},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = do(t, app, http.MethodPost, "/api/guides", map[string]any{"lines": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/guides", map[string]any{
		"lines": []map[string]any{{"item_id": id, "quantity": 1}},
		"mode":  "MIXTO",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Equal(t, "G-2024-0001", issueGuide(t, app, id, 1), "los fallos no consumen números")
}

func TestGuides_IndividualEIdempotencia(t *testing.T) {
	app := buildTestApp(t)
	a := createSupply(t, app, "Guantes", "Material", 10)
	b := createSupply(t, app, "Mascarilla", "Material", 10)
	body := map[string]any{
		"lines": []map[string]any{{"item_id": a, "quantity": 1}, {"item_id": b, "quantity": 2}},
		"mode":  "INDIVIDUAL",
	}

	resp := do(t, app, http.MethodPost, "/api/guides", body, "Idempotency-Key", "req-1")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	res := decode[dto.CommitGuideResponse](t, resp)
	assert.Equal(t, []string{"G-2024-0001-1", "G-2024-0001-2"}, res.GuideNumbers)
	require.Len(t, res.Movements, 2)

	resp = do(t, app, http.MethodPost, "/api/guides", body, "Idempotency-Key", "req-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, resp))

	resp = do(t, app, http.MethodGet, "/api/supplies/"+b, nil)
	assert.Equal(t, 8, decode[dto.SupplyResponse](t, resp).Quantity, "el reintento no descuenta de nuevo")
}

// La clave repetida se detecta aunque entre ambos envíos lleguen otras peticiones con clave propia.
func TestGuides_ClaveRepetidaTrasOtrasPeticiones(t *testing.T) {
	app := buildTestApp(t)
	id := createSupply(t, app, "Cinta aislante", "Material", 100)
	body := map[string]any{"lines": []map[string]any{{"item_id": id, "quantity": 1}}}

	resp := do(t, app, http.MethodPost, "/api/guides", body, "Idempotency-Key", "clave-A")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for i := 0; i < 50; i++ {
		resp = do(t, app, http.MethodPost, "/api/guides", body, "Idempotency-Key", fmt.Sprintf("clave-%04d", i))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp = do(t, app, http.MethodPost, "/api/guides", body, "Idempotency-Key", "clave-A")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, resp))

	resp = do(t, app, http.MethodGet, "/api/supplies/"+id, nil)
	assert.Equal(t, 49, decode[dto.SupplyResponse](t, resp).Quantity)
}

func TestGuides_HistorialYEvidencia(t *testing.T) {
	app := buildTestApp(t)
	a := createSupply(t, app, "Alcohol en gel", "Material", 10)
	b := createSupply(t, app, "Jeringa 5 ml", "Material", 10)
	first := issueGuide(t, app, a, 1)
	second := issueGuide(t, app, b, 2)

	resp := do(t, app, http.MethodGet, "/api/guides", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history := decode[dto.GuideHistoryResponse](t, resp)
	require.Len(t, history.Items, 2)
	assert.Equal(t, second, history.Items[0].Key, "la más reciente primero")
	assert.Equal(t, first, history.Items[1].Key)

	resp = do(t, app, http.MethodGet, "/api/guides?search=jeringa&direction=Salida&from=2024-05-10&to=2024-05-10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	history = decode[dto.GuideHistoryResponse](t, resp)
	require.Len(t, history.Items, 1)
	assert.Equal(t, second, history.Items[0].Key)

	resp = do(t, app, http.MethodGet, "/api/guides?from=10/05/2024", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/guides/"+first+"/evidence", map[string]any{"url": "https://evidencias.example.com/g1.jpg"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ev := decode[dto.AttachEvidenceResponse](t, resp)
	assert.Equal(t, int64(1), ev.Updated)

	resp = do(t, app, http.MethodPut, "/api/guides/"+first+"/evidence", map[string]any{"url": "no es url"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/guides/G-2099-0001/evidence", map[string]any{"url": "https://evidencias.example.com/x.jpg"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "GUIDE_NOT_FOUND", errorCode(t, resp))
}

func TestGuides_ExportarPDFyXML(t *testing.T) {
	app := buildTestApp(t)
	id := createSupply(t, app, "Cable UTP Cat6", "Material", 10)
	number := issueGuide(t, app, id, 4)

	resp := do(t, app, http.MethodGet, "/api/guides/"+number+"/xml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Verification-Code"), 64)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), number+".xml")
	xmlBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(xmlBody), "<Guia")

	resp = do(t, app, http.MethodGet, "/api/guides/"+number+"/pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	pdfBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfBody[:4]))

	resp = do(t, app, http.MethodGet, "/api/guides/G-2099-0001/pdf", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_RutaInexistente(t *testing.T) {
	app := buildTestApp(t)
	resp := do(t, app, http.MethodGet, "/api/nada", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ROUTE_NOT_FOUND", errorCode(t, resp))
}
