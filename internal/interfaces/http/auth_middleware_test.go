package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Insumos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Insumos-api/pkg/jwt"
)

func meApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, testIssuer), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"party_id":   apphttp.GetPartyID(c),
			"party_name": apphttp.GetPartyName(c),
			"role":       apphttp.GetRole(c),
		})
	})
	return app
}

func requestMe(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuthMiddleware_ExtraeIdentidad(t *testing.T) {
	resp := requestMe(t, meApp(), bearer(t))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testPartyID, body["party_id"])
	assert.Equal(t, testPartyName, body["party_name"])
	assert.Equal(t, "almacen", body["role"])
}

// Sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	resp := requestMe(t, meApp(), "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}

// Formato distinto a "Bearer <token>" → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	resp := requestMe(t, meApp(), "Token abc")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", errorCode(t, resp))
}

// Token malformado, de otro emisor o sin responsable → HTTP 401.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := meApp()

	resp := requestMe(t, app, "Bearer token.invalido.aqui")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{PartyID: testPartyID}, "otro-emisor", testExpMin)
	require.NoError(t, err)
	resp = requestMe(t, app, "Bearer "+other)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "emisor distinto")

	anon, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{}, testIssuer, testExpMin)
	require.NoError(t, err)
	resp = requestMe(t, app, "Bearer "+anon)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "sin DNI del responsable")
}
