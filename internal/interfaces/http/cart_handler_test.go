package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Insumos-api/internal/application/dto"
)

func TestCart_AgregarCambiarYQuitar(t *testing.T) {
	app := buildTestApp(t)
	a := createSupply(t, app, "Cable UTP Cat6", "Material", 10)
	b := createSupply(t, app, "Conector RJ45", "Accesorio", 100)

	resp := do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"item_id": a})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart := decode[dto.CartResponse](t, resp)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity, "cantidad 0 equivale a 1")
	assert.Equal(t, 10, cart.Lines[0].Available)

	lines := []map[string]any{{"item_id": a, "quantity": 1}}
	resp = do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"lines": lines, "item_id": b, "quantity": 20})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decode[dto.CartResponse](t, resp)
	require.Len(t, cart.Lines, 2)
	assert.Equal(t, "Conector RJ45", cart.Lines[1].Name)

	lines = []map[string]any{{"item_id": a, "quantity": 1}, {"item_id": b, "quantity": 20}}
	resp = do(t, app, http.MethodPost, "/api/cart/set-quantity", map[string]any{"lines": lines, "item_id": a, "quantity": 11})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = do(t, app, http.MethodPost, "/api/cart/set-quantity", map[string]any{"lines": lines, "item_id": a, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPost, "/api/cart/remove", map[string]any{"lines": lines, "item_id": a})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cart = decode[dto.CartResponse](t, resp)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, b, cart.Lines[0].ItemID)
}

func TestCart_InsumoAgotado(t *testing.T) {
	app := buildTestApp(t)
	id := createSupply(t, app, "Mascarilla N95", "Material", 0)

	resp := do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"item_id": id, "quantity": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "OUT_OF_STOCK", errorCode(t, resp))
}
