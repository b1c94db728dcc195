package http_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ──────────────────────────────────────────────────────────────────────────────
// RequireAPI / Resolve
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireAPI_SinCookieResponde401JSON(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice), nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Unauthenticated", body["code"])
}

func TestRequireAPI_CookieAdulteradaEsAnonima(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice), nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", cookieFor(t, alice)+"x")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAPI_SesionEliminadaNoSeHonra(t *testing.T) {
	fa := newFakeAuth(alice)
	app := buildTestApp(t, fa, nil, "")
	cookie := cookieFor(t, alice)

	resp := doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	delete(fa.sessions, alice.SessionID)
	resp = doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", cookie)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "el token firmado no basta si la sesión ya no existe")
}

func TestResolve_FalloDelAlmacenEs500Generico(t *testing.T) {
	fa := newFakeAuth(alice)
	fa.resolveErr = errors.New("dial tcp 10.0.0.5:6379: connection refused")
	app := buildTestApp(t, fa, nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/auth/check", "", cookieFor(t, alice))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "InternalError", body["code"])
	assert.NotContains(t, body["message"], "10.0.0.5", "el detalle de infraestructura no llega al cliente")
}

func TestResolve_ExpiracionDeslizanteRenuevaCookie(t *testing.T) {
	fa := newFakeAuth(alice)
	fa.sliding = true
	app := buildTestApp(t, fa, nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", cookieFor(t, alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	renewed := findCookie(resp, "sid")
	require.NotNil(t, renewed)
	assert.True(t, renewed.HttpOnly)
}

func TestResolve_SinDeslizanteNoReescribeCookie(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice), nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/auth/permissions", "", cookieFor(t, alice))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, findCookie(resp, "sid"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Permission Guard
// ──────────────────────────────────────────────────────────────────────────────

func TestPermisos_DepartamentoDeLaRutaDebeCoincidir(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice, root), nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/pos/products/Uniform", "", cookieFor(t, alice))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/pos/products/Stationery", "", cookieFor(t, alice))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Forbidden", decodeBody(t, resp)["code"])

	resp = doRequest(t, app, http.MethodGet, "/api/pos/products/Stationery", "", cookieFor(t, root))
	assert.Equal(t, http.StatusOK, resp.StatusCode, "admin omite el departamento")
}

func TestPermisos_AnularExigeRefunds(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice, root), nil, "")

	resp := doRequest(t, app, http.MethodPost, "/api/pos/sales/S1/void", "", cookieFor(t, alice))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/api/pos/sales/S1/void", "", cookieFor(t, root))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	receipt := body["receipt"].(map[string]interface{})
	assert.Equal(t, "voided", receipt["status"])
}

func TestPermisos_RutasDeAdmin(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(alice, root), nil, "")
	body := `{"role":"department_stationery"}`

	resp := doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", body, cookieFor(t, alice))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", body, cookieFor(t, root))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "department_stationery", decodeBody(t, resp)["role"])

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", `{"role":"superuser"}`, cookieFor(t, root))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", `{"role":"cashier"}`, cookieFor(t, root))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cajero sin departamento")

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", `{"role":"manager","department":"Cafeteria"}`, cookieFor(t, root))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/u-bob/role", `{"role":"cashier","department":"Uniform"}`, cookieFor(t, root))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Uniform", decodeBody(t, resp)["department"])

	resp = doRequest(t, app, http.MethodPut, "/api/admin/users/missing/role", body, cookieFor(t, root))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPermisos_CajeroSinInventario(t *testing.T) {
	app := buildTestApp(t, newFakeAuth(carol), nil, "")

	resp := doRequest(t, app, http.MethodGet, "/api/inventory/products", "", cookieFor(t, carol))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
