package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drivelead/drivelead-api/internal/domain"
	apphttp "github.com/drivelead/drivelead-api/internal/interfaces/http"
	pkgjwt "github.com/drivelead/drivelead-api/pkg/jwt"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "drivelead-test"
	testExpMin    = 60
)

// buildCommandApp construye una aplicación Fiber mínima con el gate de
// capacidades sobre una ruta dummy que devuelve 200 si el comando pasa.
func buildCommandApp(cmd domain.Command) *fiber.App {
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	app := fiber.New()
	app.Post("/action",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireCommand(cmd, log.Audit()),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición POST /action y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireCommand — gate de capacidades por rol
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el rol tiene el comando → HTTP 200.
func TestRequireCommand_GerenteEjecutaAsignacion(t *testing.T) {
	app := buildCommandApp(domain.CommandAssignLead)
	resp := doRequest(t, app, tokenForRole(t, domain.RoleManager))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"manager debe poder ejecutar asignaciones")

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, domain.RoleManager, body["role"])
}

// Caso 2: el rol NO tiene el comando → HTTP 403 FORBIDDEN_COMMAND.
func TestRequireCommand_VendedorBloqueadoEnAsignacionMasiva(t *testing.T) {
	app := buildCommandApp(domain.CommandBulkAssign)
	resp := doRequest(t, app, tokenForRole(t, domain.RoleSales))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"sales no debe poder ejecutar asignación masiva")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN_COMMAND",
		"la respuesta de error debe incluir el código FORBIDDEN_COMMAND")
}

// Caso 1b: la captura de leads es un comando de ambos roles; un rol fuera de
// la tabla sigue bloqueado.
func TestRequireCommand_CapturaPermitidaAmbosRoles(t *testing.T) {
	app := buildCommandApp(domain.CommandCreateLead)

	for _, role := range []string{domain.RoleSales, domain.RoleManager} {
		resp := doRequest(t, app, tokenForRole(t, role))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "rol %s debe poder capturar leads", role)
		resp.Body.Close()
	}

	resp := doRequest(t, app, tokenForRole(t, "invitado"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 2b: vendedor bloqueado en analítica (solo manager).
func TestRequireCommand_VendedorBloqueadoEnAnalitica(t *testing.T) {
	app := buildCommandApp(domain.CommandViewAnalytics)
	resp := doRequest(t, app, tokenForRole(t, domain.RoleSales))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 3: rol desconocido en el token → el gate falla cerrado (403).
func TestRequireCommand_RolDesconocidoFallaCerrado(t *testing.T) {
	app := buildCommandApp(domain.CommandViewLeads)
	resp := doRequest(t, app, tokenForRole(t, "superadmin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"un rol que no está en la tabla de capacidades no pasa ningún gate")
}

// Caso 4: sin header Authorization → HTTP 401 MISSING_TOKEN.
func TestRequireCommand_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildCommandApp(domain.CommandViewLeads)
	resp := doRequest(t, app, "") // sin header
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

// Caso 5: token inválido / malformado → HTTP 401 INVALID_TOKEN.
func TestRequireCommand_TokenInvalido_Retorna401(t *testing.T) {
	app := buildCommandApp(domain.CommandViewLeads)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole — rol exacto para rutas de administración
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_SoloGerenteAdministraElRegistro(t *testing.T) {
	app := fiber.New()
	app.Post("/owners",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(domain.RoleManager),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) },
	)

	req := httptest.NewRequest(http.MethodPost, "/owners", nil)
	req.Header.Set("Authorization", tokenForRole(t, domain.RoleSales))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/owners", nil)
	req.Header.Set("Authorization", tokenForRole(t, domain.RoleManager))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware — extracción de claims del token
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, domain.RoleSales))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, domain.RoleSales, body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse con role
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, domain.RoleManager, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, role, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, testUserID, userID)
	assert.Equal(t, domain.RoleManager, role)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	// Token con expiración -1 minuto (ya expirado)
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, domain.RoleSales, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, domain.RoleSales, testIssuer, testExpMin)
	require.NoError(t, err)

	_, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
