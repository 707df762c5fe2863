package httpin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecase "storefront/internal/application/usecase"
	"storefront/internal/domain/common"
	productdom "storefront/internal/domain/product"
)

// ------------------------------------------------------------
// stubs
// ------------------------------------------------------------

type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type stubProducts struct {
	rows map[string]productdom.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (productdom.Product, error) {
	p, ok := s.rows[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (s *stubProducts) List(_ context.Context, f productdom.Filter, page common.Page) (common.PageResult[productdom.Product], error) {
	var out []productdom.Product
	for _, p := range s.rows {
		if f.IsActive != nil && p.IsActive != *f.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return common.Paginate(out, page), nil
}

func (s *stubProducts) Create(_ context.Context, p productdom.Product) (productdom.Product, error) {
	s.rows[p.ID] = p
	return p, nil
}

func (s *stubProducts) Save(_ context.Context, p productdom.Product) (productdom.Product, error) {
	s.rows[p.ID] = p
	return p, nil
}

func (s *stubProducts) Delete(_ context.Context, id string) error {
	delete(s.rows, id)
	return nil
}

func (s *stubProducts) CountByCategory(context.Context, string) (int, error) { return 0, nil }

func (s *stubProducts) LockForUpdate(context.Context, []string) ([]productdom.Product, error) {
	return nil, nil
}

func (s *stubProducts) DecreaseStock(context.Context, string, int) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	products := &stubProducts{rows: map[string]productdom.Product{}}
	for _, seed := range []struct {
		id, title string
		active    bool
	}{
		{"p1", "Wireless Mouse", true},
		{"p2", "Retired Keyboard", false},
	} {
		p, err := productdom.New(seed.id, "c1", seed.title, "", "slug-"+seed.id, decimal.RequireFromString("19.9"), 4, seed.active, now)
		require.NoError(t, err)
		products.rows[p.ID] = p
	}

	return NewRouter(RouterDeps{
		ProductUC:      usecase.NewProductUsecase(passTx{}, products, nil, nil, nil),
		CartUC:         usecase.NewCartUsecase(nil, nil, nil),
		CheckoutUC:     usecase.NewCheckoutUsecase(nil, nil, nil, nil, nil),
		OrderUC:        usecase.NewOrderUsecase(nil, nil),
		PaymentUC:      usecase.NewPaymentUsecase(nil, nil),
		AllowedOrigins: []string{"https://shop.example.com"},
	})
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// ------------------------------------------------------------
// tests
// ------------------------------------------------------------

func TestRouter_Healthz(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRouter_IndexWithAndWithoutSlash(t *testing.T) {
	h := newTestRouter(t)
	for _, path := range []string{"/api", "/api/"} {
		w := do(h, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "/api/products/", got["products"])
	}
}

func TestRouter_UnknownRouteIsJSON404(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestRouter_ProductListHidesInactiveForAnonymous(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/products/", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Count   int `json:"count"`
		Results []struct {
			ID    string `json:"id"`
			Price string `json:"price"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "p1", page.Results[0].ID)
	assert.Equal(t, "19.90", page.Results[0].Price)
}

func TestRouter_ProductDetail(t *testing.T) {
	h := newTestRouter(t)

	w := do(h, http.MethodGet, "/api/products/p1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Wireless Mouse"`)

	w = do(h, http.MethodGet, "/api/products/p2", "")
	assert.Equal(t, http.StatusNotFound, w.Code, "inactive product is hidden from anonymous users")

	w = do(h, http.MethodPost, "/api/products/", `{"title":"Another product"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CartAndOrdersRequireAuth(t *testing.T) {
	h := newTestRouter(t)

	w := do(h, http.MethodGet, "/api/cart/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, http.MethodPost, "/api/cart/add/", `{"product_id":"p1","quantity":1}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	addr := `{"full_name":"Ada","email":"ada@example.com","phone_number":"1","line1":"x","city":"y","district":"z","postal_code":"1","country":"UK"}`
	w = do(h, http.MethodPost, "/api/orders/create/", addr)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, http.MethodPost, "/api/orders/o1/pay/", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CartAddValidatesBody(t *testing.T) {
	h := newTestRouter(t)

	w := do(h, http.MethodPost, "/api/cart/add", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"product_id"`)

	w = do(h, http.MethodPost, "/api/cart/add", `{"product_id":"p1","colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"colour"`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/products/", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/products/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
