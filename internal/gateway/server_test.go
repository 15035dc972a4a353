package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	cartapp "github.com/econext/storefront/internal/cart/app"
	catalogapp "github.com/econext/storefront/internal/catalog/app"
	checkoutapp "github.com/econext/storefront/internal/checkout/app"
	"github.com/econext/storefront/internal/checkout/infra/adapter"
	"github.com/econext/storefront/internal/commerce"
	sessionapp "github.com/econext/storefront/internal/session/app"
)

type mapCreds struct {
	mu     sync.Mutex
	values map[string]string
}

func newMapCreds() *mapCreds {
	return &mapCreds{values: make(map[string]string)}
}

func (m *mapCreds) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *mapCreds) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mapCreds) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *mapCreds) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}

// upstream fakes just enough of the commerce API for a full
// login, browse, cart, checkout round trip.
func upstream(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"status":"error","message":"Invalid credentials"}`)
			return
		}
		io.WriteString(w, `{
			"status": "success",
			"user": {"id": 9, "username": "mira", "email": "mira@example.com"},
			"tokens": {"access": "tok-access", "refresh": "tok-refresh"}
		}`)
	})
	mux.HandleFunc("POST /auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"success"}`)
	})
	mux.HandleFunc("GET /auth/current-user/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-access" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"status":"error","message":"Authentication required"}`)
			return
		}
		io.WriteString(w, `{
			"status": "success",
			"user": {"id": 9, "username": "mira", "email": "mira@example.com"}
		}`)
	})
	mux.HandleFunc("PUT /auth/profile/update/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-access" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"status":"error","message":"Authentication required"}`)
			return
		}
		var req struct {
			Email     string `json:"email"`
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]any{
			"status": "success",
			"user": map[string]any{
				"id": 9, "username": "mira",
				"email":      req.Email,
				"first_name": req.FirstName,
				"last_name":  req.LastName,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /products/7/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"status": "success",
			"product": {
				"id": 7, "name": "Bamboo Cup",
				"category": {"id": 2, "name": "Kitchen"},
				"current_price": "10.50", "stock": 12
			}
		}`)
	})
	mux.HandleFunc("POST /orders/create/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-access" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, `{"status":"error","message":"Authentication required"}`)
			return
		}
		io.WriteString(w, `{
			"status": "success",
			"order": {"id": 31, "status": "pending", "total_amount": "31.50", "created_at": "2026-04-01T10:00:00Z"}
		}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) (*gin.Engine, *mapCreds) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	creds := newMapCreds()
	sessions := sessionapp.NewStore(creds)
	cart := cartapp.NewEngine()
	client := commerce.NewClient(upstream(t).URL, "USD", sessions.AccessToken)
	catalog := catalogapp.NewService(client)
	checkout := checkoutapp.NewService(sessions, cart, adapter.NewCommerceOrderPlacer(client), client)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(log, sessions, cart, client, catalog, checkout)
	return srv.Router(nil), creds
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func errCode(t *testing.T, out map[string]any) string {
	t.Helper()
	e, ok := out["error"].(map[string]any)
	if !ok {
		t.Fatalf("no error object in %v", out)
	}
	code, _ := e["code"].(string)
	return code
}

var validShipping = map[string]string{
	"address": "1 Main St",
	"city":    "Portland",
	"state":   "OR",
	"zipcode": "97201",
	"country": "US",
}

func TestCheckoutRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, out := do(t, router, http.MethodPost, "/api/checkout", validShipping)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := errCode(t, out); code != "UNAUTHENTICATED" {
		t.Errorf("code = %q, want UNAUTHENTICATED", code)
	}
}

func TestCheckoutValidatesBeforeAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, out := do(t, router, http.MethodPost, "/api/checkout", map[string]string{"city": "Portland"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	e := out["error"].(map[string]any)
	fields, ok := e["fields"].(map[string]any)
	if !ok {
		t.Fatalf("no fields in %v", e)
	}
	for _, name := range []string{"address", "state", "zipcode", "country"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing field error for %q", name)
		}
	}
	if _, ok := fields["city"]; ok {
		t.Errorf("city should not be flagged")
	}
}

func TestLoginRejectionPassesThrough(t *testing.T) {
	router, creds := newTestRouter(t)

	rec, out := do(t, router, http.MethodPost, "/api/session/login",
		map[string]string{"username": "mira", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if code := errCode(t, out); code != "UPSTREAM" {
		t.Errorf("code = %q, want UPSTREAM", code)
	}
	if creds.len() != 0 {
		t.Errorf("credentials persisted after failed login")
	}
}

func TestProfileRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		var body any
		if method == http.MethodPut {
			body = map[string]string{"email": "new@example.com"}
		}
		rec, out := do(t, router, method, "/api/session/profile", body)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", method, rec.Code)
		}
		if code := errCode(t, out); code != "UNAUTHENTICATED" {
			t.Errorf("%s code = %q, want UNAUTHENTICATED", method, code)
		}
	}
}

func TestProfileUpdateRefreshesStoredUser(t *testing.T) {
	router, creds := newTestRouter(t)

	rec, out := do(t, router, http.MethodPost, "/api/session/login",
		map[string]string{"username": "mira", "password": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %v", rec.Code, out)
	}

	rec, out = do(t, router, http.MethodGet, "/api/session/profile", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile status = %d: %v", rec.Code, out)
	}
	user := out["user"].(map[string]any)
	if user["email"] != "mira@example.com" {
		t.Fatalf("profile email = %v", user["email"])
	}

	rec, out = do(t, router, http.MethodPut, "/api/session/profile",
		map[string]string{"email": "mira@new.example.com", "first_name": "Mira"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %v", rec.Code, out)
	}
	user = out["user"].(map[string]any)
	if user["email"] != "mira@new.example.com" {
		t.Errorf("updated email = %v", user["email"])
	}

	// The persisted record must carry the new profile; otherwise the
	// next hydrate resurrects the old one.
	raw, _ := creds.Get(context.Background(), "user")
	var stored map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("stored user record: %v", err)
	}
	if stored["email"] != "mira@new.example.com" {
		t.Errorf("stored email = %v, want mira@new.example.com", stored["email"])
	}

	rec, out = do(t, router, http.MethodPost, "/api/session/hydrate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("hydrate status = %d", rec.Code)
	}
	user = out["user"].(map[string]any)
	if user["email"] != "mira@new.example.com" {
		t.Errorf("hydrated email = %v", user["email"])
	}
}

func TestAddItemQuantityDefaults(t *testing.T) {
	router, _ := newTestRouter(t)

	t.Run("omitted quantity defaults to one", func(t *testing.T) {
		rec, out := do(t, router, http.MethodPost, "/api/cart/items",
			map[string]int64{"product_id": 7})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %v", rec.Code, out)
		}
		line := out["lines"].([]any)[0].(map[string]any)
		if line["quantity"].(float64) != 1 {
			t.Errorf("quantity = %v, want 1", line["quantity"])
		}
	})

	t.Run("explicit zero is rejected", func(t *testing.T) {
		rec, out := do(t, router, http.MethodPost, "/api/cart/items",
			map[string]int64{"product_id": 7, "quantity": 0})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if code := errCode(t, out); code != "INVALID_ARGUMENT" {
			t.Errorf("code = %q, want INVALID_ARGUMENT", code)
		}
	})
}

func TestEmptyCartCarriesConfiguredCurrency(t *testing.T) {
	router, _ := newTestRouter(t)

	rec, out := do(t, router, http.MethodGet, "/api/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if out["currency"] != "USD" {
		t.Errorf("currency = %v, want USD", out["currency"])
	}
	if out["total"] != "0.00" {
		t.Errorf("total = %v, want 0.00", out["total"])
	}
}

func TestFullPurchaseFlow(t *testing.T) {
	router, creds := newTestRouter(t)

	rec, out := do(t, router, http.MethodPost, "/api/session/login",
		map[string]string{"username": "mira", "password": "hunter2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %v", rec.Code, out)
	}
	if out["authenticated"] != true {
		t.Fatalf("login response not authenticated: %v", out)
	}
	if got, _ := creds.Get(context.Background(), "access_token"); got != "tok-access" {
		t.Fatalf("access_token = %q, want tok-access", got)
	}

	rec, out = do(t, router, http.MethodPost, "/api/session/hydrate", nil)
	if rec.Code != http.StatusOK || out["authenticated"] != true {
		t.Fatalf("hydrate after login: status %d, body %v", rec.Code, out)
	}

	rec, out = do(t, router, http.MethodPost, "/api/cart/items",
		map[string]int64{"product_id": 7, "quantity": 2})
	if rec.Code != http.StatusOK {
		t.Fatalf("add status = %d: %v", rec.Code, out)
	}
	rec, out = do(t, router, http.MethodPost, "/api/cart/items",
		map[string]int64{"product_id": 7, "quantity": 1})
	if rec.Code != http.StatusOK {
		t.Fatalf("second add status = %d: %v", rec.Code, out)
	}

	lines := out["lines"].([]any)
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1 merged line", len(lines))
	}
	line := lines[0].(map[string]any)
	if line["quantity"].(float64) != 3 {
		t.Errorf("quantity = %v, want 3", line["quantity"])
	}
	if out["total"] != "31.50" {
		t.Errorf("total = %v, want 31.50", out["total"])
	}

	rec, out = do(t, router, http.MethodPost, "/api/cart/items",
		map[string]int64{"product_id": 7, "quantity": -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative quantity status = %d, want 400", rec.Code)
	}
	if code := errCode(t, out); code != "INVALID_ARGUMENT" {
		t.Errorf("code = %q, want INVALID_ARGUMENT", code)
	}

	rec, out = do(t, router, http.MethodPost, "/api/checkout", validShipping)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout status = %d: %v", rec.Code, out)
	}
	if out["id"].(float64) != 31 || out["total"] != "31.50" {
		t.Errorf("order = %v", out)
	}

	rec, out = do(t, router, http.MethodGet, "/api/cart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart status = %d", rec.Code)
	}
	if out["line_count"].(float64) != 0 {
		t.Errorf("cart not cleared after checkout: %v", out)
	}

	rec, out = do(t, router, http.MethodPost, "/api/session/logout", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d", rec.Code)
	}
	if out["authenticated"] == true {
		t.Errorf("still authenticated after logout")
	}
	if creds.len() != 0 {
		t.Errorf("credentials remain after logout: %d keys", creds.len())
	}
}
