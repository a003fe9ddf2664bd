package httpx_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gxbrielaramalho/MeuMercado/internal/advisor"
	"github.com/gxbrielaramalho/MeuMercado/internal/httpx"
	"github.com/gxbrielaramalho/MeuMercado/internal/market"
	"github.com/gxbrielaramalho/MeuMercado/internal/scanner"
)

type testApp struct {
	srv    *httptest.Server
	store  *market.Store
	gemini *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Conselho do consultor."}]}}]}`))
	}))

	store := market.NewStore()
	h := &httpx.MarketHandler{
		Store:   store,
		Advisor: advisor.New(gemini.URL, "test-model", "test-key", zerolog.Nop()),
		Scanner: scanner.New(store),
		Log:     zerolog.Nop(),
	}
	router := httpx.NewRouter()
	h.Register(router)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		srv.Close()
		gemini.Close()
	})
	return &testApp{srv: srv, store: store, gemini: gemini}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(t, err)
	resp, err := a.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func (a *testApp) login(t *testing.T, role market.UserRole) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/session/login", map[string]any{"role": role})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginUnknownRole(t *testing.T) {
	app := newTestApp(t)
	resp := app.do(t, http.MethodPost, "/session/login", map[string]string{"role": "Estagiário"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionLifecycle(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/session", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	app.login(t, market.RoleOwner)
	sess := decode[struct {
		User          market.User     `json:"user"`
		Screens       []market.Screen `json:"screens"`
		DefaultScreen market.Screen   `json:"default_screen"`
	}](t, app.do(t, http.MethodGet, "/session", nil))
	assert.Equal(t, "Sr. Roberto", sess.User.Name)
	assert.Len(t, sess.Screens, 5)
	assert.Equal(t, market.ScreenPOS, sess.DefaultScreen)

	resp = app.do(t, http.MethodPost, "/session/logout", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, http.MethodGet, "/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestRoleGating(t *testing.T) {
	app := newTestApp(t)

	app.login(t, market.RoleCashier)
	for path, want := range map[string]int{
		"/products":  http.StatusOK,
		"/cart":      http.StatusOK,
		"/dashboard": http.StatusForbidden,
		"/sales":     http.StatusForbidden,
	} {
		resp := app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, want, resp.StatusCode, "cashier GET %s", path)
		resp.Body.Close()
	}
	resp := app.do(t, http.MethodPost, "/products", market.Product{ID: "x", Name: "X", Category: market.CategoryOther})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "cashier cannot touch inventory")
	resp.Body.Close()

	app.login(t, market.RoleManager)
	resp = app.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = app.do(t, http.MethodPost, "/ai/chat", map[string]string{"question": "?"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "advisory chat is owner/developer only")
	resp.Body.Close()
}

func TestProductFilters(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	all := decode[[]market.Product](t, app.do(t, http.MethodGet, "/products", nil))
	assert.Len(t, all, 6)

	byName := decode[[]market.Product](t, app.do(t, http.MethodGet, "/products?search=coca", nil))
	require.Len(t, byName, 1)
	assert.Equal(t, "Coca-Cola 2L", byName[0].Name)

	byCode := decode[[]market.Product](t, app.do(t, http.MethodGet, "/products?search=1001", nil))
	require.Len(t, byCode, 1)
	assert.Equal(t, "Banana Prata (kg)", byCode[0].Name)

	byCat := decode[[]market.Product](t, app.do(t, http.MethodGet, "/products?category=Bebidas", nil))
	assert.Len(t, byCat, 2)
}

func TestInventoryCRUD(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleManager)

	novo := market.Product{
		ID:       "7890000000001",
		Name:     "Café Torrado 500g",
		Price:    decimal.RequireFromString("18.90"),
		Cost:     decimal.RequireFromString("12.00"),
		Stock:    30,
		Category: market.CategoryFood,
	}
	resp := app.do(t, http.MethodPost, "/products", novo)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// duplicate barcode is rejected
	resp = app.do(t, http.MethodPost, "/products", novo)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// bad category is rejected
	bad := novo
	bad.ID = "7890000000002"
	bad.Category = "Eletrônicos"
	resp = app.do(t, http.MethodPost, "/products", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	novo.Stock = 12
	resp = app.do(t, http.MethodPut, "/products/"+novo.ID, novo)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	p, ok := app.store.FindProduct(novo.ID)
	require.True(t, ok)
	assert.Equal(t, 12, p.Stock)

	resp = app.do(t, http.MethodDelete, "/products/"+novo.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	_, ok = app.store.FindProduct(novo.ID)
	assert.False(t, ok)
}

type cartResp struct {
	Items       []market.CartItem `json:"items"`
	Total       decimal.Decimal   `json:"total"`
	ActiveItems int               `json:"active_items"`
}

func TestCheckoutRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	resp := app.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "7894900011517"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = app.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "7894900011517"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cart := decode[cartResp](t, app.do(t, http.MethodGet, "/cart", nil))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("19.00")), "total = %s", cart.Total)
	assert.Equal(t, 2, cart.ActiveItems)

	sale := decode[market.Sale](t, app.do(t, http.MethodPost, "/checkout", map[string]any{"payment_method": market.PaymentCash}))
	assert.True(t, sale.Total.Equal(decimal.RequireFromString("19.00")))
	assert.Equal(t, market.PaymentCash, sale.PaymentMethod)
	assert.Equal(t, "João Caixa", sale.CashierName)

	cart = decode[cartResp](t, app.do(t, http.MethodGet, "/cart", nil))
	assert.Empty(t, cart.Items)

	// second checkout with an empty cart is the no-sale signal
	resp = app.do(t, http.MethodPost, "/checkout", map[string]any{"payment_method": market.PaymentCash})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestCheckoutUnknownPaymentMethod(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)
	resp := app.do(t, http.MethodPost, "/checkout", map[string]string{"payment_method": "Cheque"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCartItemLifecycleEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	resp := app.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "1001"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	cart := decode[cartResp](t, app.do(t, http.MethodPut, "/cart/items/1001", map[string]int{"quantity": 4}))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)

	cart = decode[cartResp](t, app.do(t, http.MethodPost, "/cart/items/1001/toggle", nil))
	assert.Equal(t, market.StatusCancelled, cart.Items[0].Status)
	assert.Equal(t, 0, cart.ActiveItems)
	assert.True(t, cart.Total.IsZero())

	cart = decode[cartResp](t, app.do(t, http.MethodDelete, "/cart/items/1001", nil))
	assert.Empty(t, cart.Items)

	resp = app.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "no-such-code"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, http.MethodDelete, "/cart", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func scanCode(t *testing.T, app *testApp, code string) *http.Response {
	t.Helper()
	for _, r := range code {
		resp := app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": string(r)})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}
	return app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": "Enter"})
}

func TestScannerEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	resp := scanCode(t, app, "7894900011517")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[struct {
		Message string          `json:"message"`
		Product *market.Product `json:"product"`
	}](t, resp)
	assert.Equal(t, "Adicionado: Coca-Cola 2L", out.Message)
	require.NotNil(t, out.Product)
	assert.Equal(t, "7894900011517", out.Product.ID)

	cart := app.store.Cart()
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)
}

func TestScannerEndpointUnknownCode(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	resp := scanCode(t, app, "4006381333931")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Produto não encontrado: 4006381333931", body["error"])
	assert.Empty(t, app.store.Cart())
}

func TestScannerIgnoresTextFieldInput(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	for _, r := range "1001" {
		resp := app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": string(r), "in_text_field": true})
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()
	}
	resp := app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": "Enter", "in_text_field": true})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
	assert.Empty(t, app.store.Cart())
}

func TestScannerReset(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)

	for _, r := range "789" {
		resp := app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": string(r)})
		resp.Body.Close()
	}
	resp := app.do(t, http.MethodPost, "/pos/scanner/reset", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = app.do(t, http.MethodPost, "/pos/scanner/keys", map[string]any{"key": "Enter"})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "buffer dropped on reset")
	resp.Body.Close()
}

func TestDashboardEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleManager)

	sum := decode[market.Summary](t, app.do(t, http.MethodGet, "/dashboard", nil))
	assert.Equal(t, 2, sum.SalesCount)
	assert.Equal(t, 6, sum.ProductCount)
	assert.Len(t, sum.LowStock, 2)
	assert.True(t, sum.TotalRevenue.Equal(decimal.RequireFromString("54.30")))
}

func TestSalesHistoryEndpoint(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleManager)

	sales := decode[[]market.Sale](t, app.do(t, http.MethodGet, "/sales", nil))
	require.Len(t, sales, 2)
	assert.True(t, sales[0].Timestamp.After(sales[1].Timestamp), "newest first")
}

func TestAdvisoryEndpoints(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleOwner)

	ans := decode[map[string]string](t, app.do(t, http.MethodPost, "/ai/chat", map[string]string{"question": "Como vão as vendas?"}))
	assert.Equal(t, "Conselho do consultor.", ans["answer"])

	resp := app.do(t, http.MethodPost, "/ai/chat", map[string]string{"question": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	copyResp := decode[map[string]string](t, app.do(t, http.MethodPost, "/ai/copy", map[string]any{
		"product_name": "Coca-Cola 2L",
		"category":     market.CategoryBeverages,
	}))
	assert.Equal(t, "Conselho do consultor.", copyResp["description"])

	resp = app.do(t, http.MethodPost, "/ai/copy", map[string]string{"product_name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp, err := http.Get(app.srv.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestNotFoundNoticeIncludesCode(t *testing.T) {
	app := newTestApp(t)
	app.login(t, market.RoleCashier)
	resp := app.do(t, http.MethodPost, "/cart/items", map[string]string{"product_id": "abc"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, fmt.Sprintf("Produto não encontrado: %s", "abc"), body["error"])
}
