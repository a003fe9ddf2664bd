package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gxbrielaramalho/MeuMercado/internal/advisor"
	"github.com/gxbrielaramalho/MeuMercado/internal/market"
	"github.com/gxbrielaramalho/MeuMercado/internal/scanner"
)

type MarketHandler struct {
	Store   *market.Store
	Advisor *advisor.Client
	Scanner *scanner.Interpreter
	Log     zerolog.Logger
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (h *MarketHandler) Register(r *chi.Mux) {
	r.Post("/session/login", h.login)
	r.Post("/session/logout", h.logout)
	r.Get("/session", h.session)

	// point-of-sale: every logged-in role
	r.Group(func(r chi.Router) {
		r.Use(h.requireScreen(market.ScreenPOS))
		r.Get("/products", h.listProducts)
		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addCartItem)
		r.Put("/cart/items/{id}", h.updateCartItem)
		r.Post("/cart/items/{id}/toggle", h.toggleCartItem)
		r.Delete("/cart/items/{id}", h.removeCartItem)
		r.Delete("/cart", h.clearCart)
		r.Post("/checkout", h.checkout)
		r.Post("/pos/scanner/keys", h.scannerKey)
		r.Post("/pos/scanner/reset", h.scannerReset)
	})

	// inventory: manager and up
	r.Group(func(r chi.Router) {
		r.Use(h.requireScreen(market.ScreenInventory))
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireScreen(market.ScreenDashboard))
		r.Get("/dashboard", h.dashboard)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.requireScreen(market.ScreenHistory))
		r.Get("/sales", h.listSales)
	})

	// advisory chat: owner and developer only
	r.Group(func(r chi.Router) {
		r.Use(h.requireScreen(market.ScreenAI))
		r.Post("/ai/chat", h.chat)
		r.Post("/ai/copy", h.marketingCopy)
	})
}

// requireScreen gates a route group on the role/screen table.
func (h *MarketHandler) requireScreen(screen market.Screen) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := h.Store.CurrentUser()
			if !ok {
				writeError(w, http.StatusUnauthorized, "não autenticado")
				return
			}
			if !market.CanAccess(u.Role, screen) {
				writeError(w, http.StatusForbidden, "acesso negado para o perfil "+string(u.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ---- session ----

type loginReq struct {
	Role market.UserRole `json:"role"`
}

type sessionResp struct {
	User          market.User     `json:"user"`
	Screens       []market.Screen `json:"screens"`
	DefaultScreen market.Screen   `json:"default_screen"`
}

func (h *MarketHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "perfil desconhecido")
		return
	}
	u := h.Store.Login(req.Role)
	h.Scanner.Reset()
	writeJSON(w, http.StatusOK, sessionResp{
		User:          u,
		Screens:       market.AllowedScreens(u.Role),
		DefaultScreen: market.DefaultScreen(u.Role),
	})
}

func (h *MarketHandler) logout(w http.ResponseWriter, r *http.Request) {
	h.Store.Logout()
	h.Scanner.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketHandler) session(w http.ResponseWriter, r *http.Request) {
	u, ok := h.Store.CurrentUser()
	if !ok {
		writeError(w, http.StatusUnauthorized, "não autenticado")
		return
	}
	writeJSON(w, http.StatusOK, sessionResp{
		User:          u,
		Screens:       market.AllowedScreens(u.Role),
		DefaultScreen: market.DefaultScreen(u.Role),
	})
}

// ---- catalog ----

func (h *MarketHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))
	category := market.Category(r.URL.Query().Get("category"))

	all := h.Store.Products()
	out := make([]market.Product, 0, len(all))
	for _, p := range all {
		if category != "" && p.Category != category {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(p.ID, search) {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, http.StatusOK, out)
}

func validateProduct(p market.Product) error {
	if p.ID == "" || p.Name == "" {
		return errors.New("id e nome são obrigatórios")
	}
	if !p.Category.Valid() {
		return errors.New("categoria desconhecida")
	}
	if p.Price.IsNegative() || p.Cost.IsNegative() {
		return errors.New("preço e custo devem ser >= 0")
	}
	if p.Stock < 0 {
		return errors.New("estoque deve ser >= 0")
	}
	return nil
}

func (h *MarketHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p market.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validateProduct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Store.AddProduct(p); err != nil {
		writeError(w, http.StatusConflict, "código de barras já cadastrado")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *MarketHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var p market.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p.ID = chi.URLParam(r, "id")
	if err := validateProduct(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.Store.UpdateProduct(p)
	w.WriteHeader(http.StatusNoContent)
}

func (h *MarketHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	h.Store.DeleteProduct(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// ---- cart ----

type cartResp struct {
	Items       []market.CartItem `json:"items"`
	Total       decimal.Decimal   `json:"total"`
	ActiveItems int               `json:"active_items"`
}

func (h *MarketHandler) cartState() cartResp {
	return cartResp{
		Items:       h.Store.Cart(),
		Total:       h.Store.CartTotal(),
		ActiveItems: h.Store.ActiveItemCount(),
	}
}

func (h *MarketHandler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *MarketHandler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	p, ok := h.Store.FindProduct(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Produto não encontrado: %s", req.ProductID))
		return
	}
	item := h.Store.AddToCart(p)
	writeJSON(w, http.StatusOK, item)
}

func (h *MarketHandler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.Store.UpdateCartQuantity(chi.URLParam(r, "id"), req.Quantity)
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *MarketHandler) toggleCartItem(w http.ResponseWriter, r *http.Request) {
	h.Store.ToggleItemStatus(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *MarketHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.Store.RemoveFromCart(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, h.cartState())
}

func (h *MarketHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.Store.ClearCart()
	w.WriteHeader(http.StatusNoContent)
}

// ---- checkout & history ----

func (h *MarketHandler) checkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod market.PaymentMethod `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if !req.PaymentMethod.Valid() {
		writeError(w, http.StatusBadRequest, "método de pagamento desconhecido")
		return
	}
	sale, err := h.Store.CompleteSale(req.PaymentMethod)
	if err != nil {
		if errors.Is(err, market.ErrEmptyCart) {
			writeError(w, http.StatusUnprocessableEntity, "carrinho vazio")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *MarketHandler) listSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Sales())
}

func (h *MarketHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.Summary())
}

// ---- barcode scanner ----

type scanResp struct {
	Message      string          `json:"message"`
	Product      *market.Product `json:"product,omitempty"`
	ScannerPaced bool            `json:"scanner_paced"`
}

func (h *MarketHandler) scannerKey(w http.ResponseWriter, r *http.Request) {
	var ev scanner.KeyEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	scan := h.Scanner.HandleKey(ev)
	if scan == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if !scan.Found {
		h.Log.Info().Str("code", scan.Code).Msg("scan: product not found")
		writeError(w, http.StatusNotFound, fmt.Sprintf("Produto não encontrado: %s", scan.Code))
		return
	}
	p := scan.Product
	writeJSON(w, http.StatusOK, scanResp{
		Message:      "Adicionado: " + p.Name,
		Product:      &p,
		ScannerPaced: scan.ScannerPaced,
	})
}

func (h *MarketHandler) scannerReset(w http.ResponseWriter, r *http.Request) {
	h.Scanner.Reset()
	w.WriteHeader(http.StatusNoContent)
}

// ---- advisory ----

func (h *MarketHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "pergunta vazia")
		return
	}
	answer := h.Advisor.AnalyzeBusinessData(r.Context(), h.Store.Sales(), h.Store.Products(), req.Question)
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (h *MarketHandler) marketingCopy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductName string          `json:"product_name"`
		Category    market.Category `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ProductName == "" {
		writeError(w, http.StatusBadRequest, "nome do produto é obrigatório")
		return
	}
	text := h.Advisor.GenerateMarketingCopy(r.Context(), req.ProductName, req.Category)
	writeJSON(w, http.StatusOK, map[string]string{"description": text})
}
