package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	catalog "github.com/econext/storefront/internal/catalog/domain"
	checkout "github.com/econext/storefront/internal/checkout/domain"
	prediction "github.com/econext/storefront/internal/prediction/domain"
	session "github.com/econext/storefront/internal/session/domain"
)

// TokenSource supplies the bearer token for authenticated calls,
// empty when the session is logged out.
type TokenSource func() string

// Client talks to the remote commerce API. The API is a black box:
// this client owns the wire contracts and hands out domain types,
// nothing else in the module sees JSON.
type Client struct {
	baseURL    string
	currency   string
	token      TokenSource
	httpClient *http.Client
}

func NewClient(baseURL, currency string, token TokenSource) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		currency: currency,
		token:    token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Currency is the display currency all amounts are parsed into.
func (c *Client) Currency() string {
	return c.currency
}

// --- Auth ---

type SignupRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (session.AuthResult, error) {
	var out struct {
		User   userPayload   `json:"user"`
		Tokens tokensPayload `json:"tokens"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/signup/", req, &out); err != nil {
		return session.AuthResult{}, err
	}
	return session.AuthResult{
		User:   out.User.toDomain(),
		Tokens: session.TokenPair{Access: out.Tokens.Access, Refresh: out.Tokens.Refresh},
	}, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (session.AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out struct {
		User   userPayload   `json:"user"`
		Tokens tokensPayload `json:"tokens"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login/", body, &out); err != nil {
		return session.AuthResult{}, err
	}
	return session.AuthResult{
		User:   out.User.toDomain(),
		Tokens: session.TokenPair{Access: out.Tokens.Access, Refresh: out.Tokens.Refresh},
	}, nil
}

// Logout invalidates the token server-side. The local session is
// cleared by the caller regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout/", nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context) (session.User, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/auth/current-user/", nil, &out); err != nil {
		return session.User{}, err
	}
	return out.User.toDomain(), nil
}

type ProfileUpdate struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (session.User, error) {
	var out struct {
		User userPayload `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/auth/profile/update/", upd, &out); err != nil {
		return session.User{}, err
	}
	return out.User.toDomain(), nil
}

// --- Products ---

func (c *Client) Products(ctx context.Context, page, perPage int) ([]catalog.Product, error) {
	path := fmt.Sprintf("/products/?page=%d&per_page=%d", page, perPage)
	var out struct {
		Products []productPayload `json:"products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(out.Products))
	for _, p := range out.Products {
		dp, err := p.toDomain(c.currency)
		if err != nil {
			return nil, err
		}
		products = append(products, dp)
	}
	return products, nil
}

// ProductDetail returns the product and its forecast record when
// the catalog carries one; a nil record means no prediction exists.
func (c *Client) ProductDetail(ctx context.Context, id int64) (catalog.Product, *prediction.Record, error) {
	path := fmt.Sprintf("/products/%d/", id)
	var out struct {
		Product         productPayload     `json:"product"`
		PricePrediction *predictionPayload `json:"price_prediction"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return catalog.Product{}, nil, err
	}

	product, err := out.Product.toDomain(c.currency)
	if err != nil {
		return catalog.Product{}, nil, err
	}

	if out.PricePrediction == nil {
		return product, nil, nil
	}
	rec, err := out.PricePrediction.toDomain(c.currency)
	if err != nil {
		return catalog.Product{}, nil, err
	}
	return product, rec, nil
}

func (c *Client) PricePrediction(ctx context.Context, productID int64) (*prediction.Record, error) {
	path := fmt.Sprintf("/products/%d/prediction/", productID)
	var out struct {
		Prediction *predictionPayload `json:"prediction"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Prediction == nil {
		return nil, nil
	}
	return out.Prediction.toDomain(c.currency)
}

func (c *Client) Trending(ctx context.Context) ([]catalog.TrendingItem, error) {
	var out struct {
		TrendingProducts []trendingPayload `json:"trending_products"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/products/trending/", nil, &out); err != nil {
		return nil, err
	}

	items := make([]catalog.TrendingItem, 0, len(out.TrendingProducts))
	for _, t := range out.TrendingProducts {
		p, err := t.Product.toDomain(c.currency)
		if err != nil {
			return nil, err
		}
		items = append(items, catalog.TrendingItem{
			Product:   p,
			Views:     t.Views,
			Purchases: t.Purchases,
		})
	}
	return items, nil
}

// --- Orders ---

// OrderLine identifies one cart line in an order request.
type OrderLine struct {
	ProductID int64
	Quantity  int64
}

func (c *Client) CreateOrder(ctx context.Context, shipping checkout.Shipping, lines []OrderLine) (checkout.Order, error) {
	items := make([]orderItemPayload, 0, len(lines))
	for _, l := range lines {
		items = append(items, orderItemPayload{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	body := struct {
		Shipping       shippingPayload    `json:"shipping"`
		Items          []orderItemPayload `json:"items,omitempty"`
		IdempotencyKey string             `json:"idempotency_key"`
	}{
		Shipping: shippingPayload{
			Address: shipping.Address,
			City:    shipping.City,
			State:   shipping.State,
			Zipcode: shipping.Zipcode,
			Country: shipping.Country,
		},
		Items:          items,
		IdempotencyKey: uuid.NewString(),
	}

	var out struct {
		Order orderPayload `json:"order"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/orders/create/", body, &out); err != nil {
		return checkout.Order{}, err
	}
	return out.Order.toDomain(c.currency)
}

func (c *Client) Orders(ctx context.Context) ([]checkout.Order, error) {
	var out struct {
		Orders []orderPayload `json:"orders"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/orders/", nil, &out); err != nil {
		return nil, err
	}

	orders := make([]checkout.Order, 0, len(out.Orders))
	for _, o := range out.Orders {
		order, err := o.toDomain(c.currency)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (c *Client) OrderDetail(ctx context.Context, id int64) (checkout.Order, error) {
	var out struct {
		Order orderPayload `json:"order"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/orders/%d/", id), nil, &out); err != nil {
		return checkout.Order{}, err
	}
	return out.Order.toDomain(c.currency)
}

// --- plumbing ---

type envelope struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commerce api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := checkEnvelope(resp.StatusCode, raw); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// checkEnvelope inspects the common response envelope and turns any
// non-success into an *APIError.
func checkEnvelope(statusCode int, raw []byte) error {
	var env envelope
	// Tolerate an unparsable body on an error status.
	_ = json.Unmarshal(raw, &env)

	if statusCode < 400 && env.Status == "success" {
		return nil
	}

	msg := env.Error
	if msg == "" {
		msg = env.Message
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
		Fields:     normalizeFieldErrors(env.Errors),
	}
}
