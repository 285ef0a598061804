package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/atelierframes/framery/internal/catalog"
	"github.com/atelierframes/framery/internal/orders"
	"github.com/atelierframes/framery/internal/pricing"
	"github.com/atelierframes/framery/internal/receipt"
)

type server struct {
	auth     *authService
	catalog  *catalog.Store
	orders   *orders.Store
	engine   *pricing.Engine
	receipts *receipt.Generator
	validate *validator.Validate
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.authMiddleware)

	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)

	r.Get("/api/catalog/{kind}", s.handleCatalogList)
	r.Post("/api/catalog/{kind}", s.handleCatalogCreate)
	r.Post("/api/catalog/{kind}/{id}", s.handleCatalogUpdate)

	r.Get("/api/settings", s.handleSettingsGet)
	r.Put("/api/settings", s.handleSettingsPut)

	r.Post("/api/calculate", s.handleCalculate)

	r.Post("/api/orders", s.handleOrderCreate)
	r.Get("/api/orders", s.handleOrdersList)
	r.Get("/api/orders/{id}", s.handleOrderDetail)
	r.Patch("/api/orders/{id}/status", s.handleOrderStatus)
	r.Get("/api/orders/{id}/receipt", s.handleOrderReceipt)

	return r
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/login" {
			next.ServeHTTP(w, r)
			return
		}

		if !isAuthenticated(r, s.auth) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writePricingError maps engine failures onto HTTP statuses: rejected input
// is the caller's fault, a missing catalog item is a stale reference,
// anything else is ours.
func writePricingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidSize), errors.Is(err, pricing.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		logrus.WithError(err).Error("pricing failed")
		writeError(w, http.StatusInternalServerError, "pricing failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		logrus.WithError(err).Error("credential check failed")
		writeError(w, http.StatusInternalServerError, "authentication error")
		return
	}
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func parseKindParam(w http.ResponseWriter, r *http.Request) (catalog.Kind, bool) {
	kind, err := catalog.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return kind, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *server) handleCatalogList(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}

	items, err := s.catalog.List(r.Context(), kind, r.URL.Query().Get("search"))
	if err != nil {
		logrus.WithError(err).WithField("kind", kind).Error("list catalog items")
		writeError(w, http.StatusInternalServerError, "failed to load catalog")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type itemRequest struct {
	Name       string          `json:"name" validate:"required"`
	Barcode    string          `json:"barcode"`
	Price      decimal.Decimal `json:"price"`
	StripWidth decimal.Decimal `json:"strip_width"`
	AppliesTo  string          `json:"applies_to"`
}

func (s *server) itemFromRequest(w http.ResponseWriter, r *http.Request, kind catalog.Kind) (catalog.Item, bool) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return catalog.Item{}, false
	}
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return catalog.Item{}, false
	}
	if req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return catalog.Item{}, false
	}

	item := catalog.Item{
		Kind:       kind,
		Name:       strings.TrimSpace(req.Name),
		Barcode:    strings.TrimSpace(req.Barcode),
		Price:      req.Price,
		StripWidth: req.StripWidth,
	}
	if req.AppliesTo != "" {
		tag, err := catalog.ParseKind(req.AppliesTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return catalog.Item{}, false
		}
		item.AppliesTo = tag
	}
	return item, true
}

func (s *server) handleCatalogCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	item, ok := s.itemFromRequest(w, r, kind)
	if !ok {
		return
	}

	id, err := s.catalog.Create(r.Context(), item)
	if err != nil {
		logrus.WithError(err).WithField("kind", kind).Error("create catalog item")
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *server) handleCatalogUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := parseKindParam(w, r)
	if !ok {
		return
	}
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}
	item, ok := s.itemFromRequest(w, r, kind)
	if !ok {
		return
	}
	item.ID = id

	err := s.catalog.Update(r.Context(), item)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("kind", kind).Error("update catalog item")
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *server) handleSettingsGet(w http.ResponseWriter, r *http.Request) {
	settings, err := s.catalog.CurrentSettings(r.Context())
	if err != nil {
		logrus.WithError(err).Error("load pricing settings")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleSettingsPut(w http.ResponseWriter, r *http.Request) {
	var settings catalog.Settings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if !settings.MaxSideA.IsPositive() || !settings.MaxSideB.IsPositive() || !settings.LargeMultiplier.IsPositive() {
		writeError(w, http.StatusBadRequest, "settings values must be positive")
		return
	}

	if err := s.catalog.UpdateSettings(r.Context(), settings); err != nil {
		logrus.WithError(err).Error("update pricing settings")
		writeError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type calculateRequest struct {
	Size       pricing.Size       `json:"size"`
	Frames     []pricing.Frame    `json:"frames,omitempty"`
	Selections pricing.Selections `json:"selections"`
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		breakdown pricing.Breakdown
		err       error
	)
	if len(req.Frames) > 0 {
		breakdown, err = s.engine.PriceOrder(r.Context(), req.Frames, req.Selections, req.Size)
	} else {
		breakdown, err = s.engine.Calculate(r.Context(), req.Size, req.Selections)
	}
	if err != nil {
		writePricingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

type orderCreateRequest struct {
	Size       pricing.Size       `json:"size"`
	Frames     []pricing.Frame    `json:"frames,omitempty"`
	Selections pricing.Selections `json:"selections"`

	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	PaymentMethod   string          `json:"payment_method"`
	Comment         string          `json:"comment"`
	AdvancePayment  decimal.Decimal `json:"advance_payment"`
	FulfillmentDate string          `json:"fulfillment_date"`
}

// normalizeFrames gives every order at least one frame. A single-frame
// request moves the frame-scoped selections into a Frame; the shared set
// keeps the rest.
func normalizeFrames(req orderCreateRequest) ([]pricing.Frame, pricing.Selections) {
	if len(req.Frames) > 0 {
		shared := req.Selections
		shared.MoldingID = 0
		shared.MatBoardID = 0
		shared.MatBoardLength = decimal.Zero
		shared.MatBoardWidth = decimal.Zero
		shared.LaborID = 0
		return req.Frames, shared
	}

	sel := req.Selections
	frame := pricing.Frame{
		Size:           req.Size,
		MoldingID:      sel.MoldingID,
		MatBoardID:     sel.MatBoardID,
		MatBoardLength: sel.MatBoardLength,
		MatBoardWidth:  sel.MatBoardWidth,
		LaborID:        sel.LaborID,
	}
	sel.MoldingID = 0
	sel.MatBoardID = 0
	sel.MatBoardLength = decimal.Zero
	sel.MatBoardWidth = decimal.Zero
	sel.LaborID = 0
	return []pricing.Frame{frame}, sel
}

func (s *server) handleOrderCreate(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AdvancePayment.IsNegative() {
		writeError(w, http.StatusBadRequest, "advance payment must not be negative")
		return
	}

	var fulfillment *time.Time
	if req.FulfillmentDate != "" {
		t, err := time.Parse("2006-01-02", req.FulfillmentDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "fulfillment_date must be YYYY-MM-DD")
			return
		}
		fulfillment = &t
	}

	frames, shared := normalizeFrames(req)
	breakdown, err := s.engine.PriceOrder(r.Context(), frames, shared, req.Size)
	if err != nil {
		writePricingError(w, err)
		return
	}

	order := orders.Order{
		Size:            req.Size,
		Frames:          frames,
		Shared:          shared,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		Comment:         strings.TrimSpace(req.Comment),
		TotalPrice:      breakdown.TotalPrice,
		AdvancePayment:  req.AdvancePayment,
		Debt:            breakdown.TotalPrice.Sub(req.AdvancePayment),
		FulfillmentDate: fulfillment,
		Status:          orders.StatusNew,
	}
	if err := s.orders.Create(r.Context(), &order); err != nil {
		logrus.WithError(err).Error("create order")
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          order.ID,
		"total_price": order.TotalPrice,
		"debt":        order.Debt,
		"status":      order.Status,
	})
}

func (s *server) handleOrdersList(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.orders.List(r.Context())
	if err != nil {
		logrus.WithError(err).Error("list orders")
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

type orderDetailResponse struct {
	orders.Order
	Breakdown *pricing.Breakdown `json:"breakdown,omitempty"`
}

func (s *server) handleOrderDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := s.orders.Get(r.Context(), id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("order_id", id).Error("load order")
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	resp := orderDetailResponse{Order: order}
	breakdown, err := s.receipts.Reprice(r.Context(), order)
	if err != nil {
		// The stored totals stay servable even when a catalog item
		// referenced by an old order has gone away.
		logrus.WithError(err).WithField("order_id", id).Warn("reprice order")
	} else {
		resp.Breakdown = &breakdown
	}
	writeJSON(w, http.StatusOK, resp)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := orders.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.orders.UpdateStatus(r.Context(), id, status)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("order_id", id).Error("update order status")
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (s *server) handleOrderReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	order, err := s.orders.Get(r.Context(), id)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("order_id", id).Error("load order")
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	var buf bytes.Buffer
	if err := s.receipts.RenderHTML(r.Context(), order, &buf); err != nil {
		switch {
		case errors.Is(err, receipt.ErrNoFrames):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			logrus.WithError(err).WithField("order_id", id).Error("render receipt")
			writeError(w, http.StatusInternalServerError, "failed to render receipt")
		}
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
