package gateway

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	cartapp "github.com/econext/storefront/internal/cart/app"
	catalogapp "github.com/econext/storefront/internal/catalog/app"
	checkoutdomain "github.com/econext/storefront/internal/checkout/domain"
	"github.com/econext/storefront/internal/commerce"
	predictionapp "github.com/econext/storefront/internal/prediction/app"
	searchapp "github.com/econext/storefront/internal/search/app"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}

	res, err := s.client.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}
	sess, err := s.sessions.Establish(c.Request.Context(), res)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess))
}

type signupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// validate mirrors the shipping-form discipline: every local check
// runs before any network call.
func (r signupRequest) validate() checkoutdomain.FieldErrors {
	errs := checkoutdomain.FieldErrors{}
	if r.Username == "" {
		errs["username"] = "username is required"
	}
	if r.Email == "" {
		errs["email"] = "email is required"
	}
	if r.Password == "" {
		errs["password"] = "password is required"
	}
	if r.Password != r.PasswordConfirm {
		errs["password_confirm"] = "passwords do not match"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (s *Server) handleSignup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}
	if errs := req.validate(); errs != nil {
		s.renderError(c, errs)
		return
	}

	res, err := s.client.Signup(c.Request.Context(), commerce.SignupRequest{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	sess, err := s.sessions.Establish(c.Request.Context(), res)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSessionView(sess))
}

// handleLogout clears the local session even when the upstream
// revocation fails; staying logged in locally is the worse outcome.
func (s *Server) handleLogout(c *gin.Context) {
	if s.sessions.Current().Authenticated() {
		if err := s.client.Logout(c.Request.Context()); err != nil {
			s.log.Warn("upstream logout failed", slog.Any("error", err))
		}
	}
	sess, err := s.sessions.Clear(c.Request.Context())
	if err != nil {
		s.log.Warn("credential store clear failed", slog.Any("error", err))
	}
	s.cart.Clear()
	c.JSON(http.StatusOK, toSessionView(sess))
}

// handleHydrate re-reads the credential store. Any failure lands on
// a logged-out session rather than an error.
func (s *Server) handleHydrate(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionView(s.sessions.Hydrate(c.Request.Context())))
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionView(s.sessions.Current()))
}

func (s *Server) handleProfile(c *gin.Context) {
	if !s.sessions.Current().Authenticated() {
		s.respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "sign in to view the profile", nil)
		return
	}
	user, err := s.client.CurrentUser(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// handleUpdateProfile pushes the change upstream and then refreshes
// the persisted user record, so a later hydrate restores the new
// profile rather than the stale one.
func (s *Server) handleUpdateProfile(c *gin.Context) {
	if !s.sessions.Current().Authenticated() {
		s.respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "sign in to update the profile", nil)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}

	user, err := s.client.UpdateProfile(c.Request.Context(), commerce.ProfileUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	sess, err := s.sessions.UpdateUser(c.Request.Context(), user)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionView(sess))
}

func (s *Server) handleProducts(c *gin.Context) {
	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 12)

	products, err := s.catalog.Products(c.Request.Context(), page, perPage)
	if err != nil {
		s.renderError(c, err)
		return
	}

	records := catalogapp.PrefetchPredictions(c.Request.Context(), s.client, products, 5)

	items := make([]productView, 0, len(products))
	for _, p := range products {
		var forecast *forecastView
		if rec, ok := records[p.ID]; ok {
			view, err := predictionapp.Present(rec, p.CurrentPrice)
			if err != nil {
				s.log.Warn("forecast dropped",
					slog.Int64("product_id", p.ID), slog.Any("error", err))
			} else {
				forecast = toForecastView(view)
			}
		}
		items = append(items, toProductView(p, forecast))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":    items,
		"page":     page,
		"per_page": perPage,
	})
}

func (s *Server) handleTrending(c *gin.Context) {
	trending, err := s.catalog.Trending(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	items := make([]trendingView, 0, len(trending))
	for _, t := range trending {
		items = append(items, trendingView{
			Product:   toProductView(t.Product, nil),
			Views:     t.Views,
			Purchases: t.Purchases,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleProductDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderBindError(c, err)
		return
	}

	detail, err := s.catalog.LoadDetail(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}

	var forecast *forecastView
	if detail.Prediction != nil {
		view, err := predictionapp.Present(detail.Prediction, detail.Product.CurrentPrice)
		if err != nil {
			s.renderError(c, err)
			return
		}
		forecast = toForecastView(view)
	}
	c.JSON(http.StatusOK, toProductView(detail.Product, forecast))
}

func (s *Server) handleIntentSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		s.respondError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "query parameter q is required", nil)
		return
	}
	categories, err := s.client.IntentSearch(c.Request.Context(), query)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSearchResultView(searchapp.FromIntentSearch(categories)))
}

func (s *Server) handleVisualSearch(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		s.respondError(c, http.StatusBadRequest, "INVALID_ARGUMENT", "image file is required", nil)
		return
	}
	defer file.Close()

	matches, err := s.client.VisualSearch(c.Request.Context(), header.Filename, file)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSearchResultView(searchapp.FromVisualSearch(matches)))
}

func (s *Server) handleCart(c *gin.Context) {
	c.JSON(http.StatusOK, s.toCartView(s.cart.Snapshot()))
}

type addItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	// Pointer so an omitted quantity (default 1) stays
	// distinguishable from an explicit 0, which Add rejects.
	Quantity *int64 `json:"quantity"`
}

func (s *Server) handleAddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}
	quantity := int64(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, _, err := s.client.ProductDetail(c.Request.Context(), req.ProductID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	cart, err := s.cart.Add(cartapp.Product{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.CurrentPrice,
	}, quantity)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.toCartView(cart))
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (s *Server) handleSetQuantity(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderBindError(c, err)
		return
	}
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.toCartView(s.cart.SetQuantity(id, req.Quantity)))
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderBindError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.toCartView(s.cart.Remove(id)))
}

func (s *Server) handleClearCart(c *gin.Context) {
	c.JSON(http.StatusOK, s.toCartView(s.cart.Clear()))
}

type checkoutRequest struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
}

func (s *Server) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderBindError(c, err)
		return
	}
	order, err := s.checkout.PlaceOrder(c.Request.Context(), checkoutdomain.Shipping{
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Zipcode: req.Zipcode,
		Country: req.Country,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderView(order))
}

func (s *Server) handleOrders(c *gin.Context) {
	orders, err := s.checkout.ListOrders(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	items := make([]orderView, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderView(o))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleOrderDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.renderBindError(c, err)
		return
	}
	order, err := s.checkout.GetOrder(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(order))
}

func pathID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
