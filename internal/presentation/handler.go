package presentation

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dndstore/panel-store/internal/application"
	"github.com/dndstore/panel-store/internal/domain"
	"github.com/dndstore/panel-store/internal/gateway"
	"github.com/dndstore/panel-store/internal/kafka"
	"github.com/dndstore/panel-store/internal/logger"
	"github.com/dndstore/panel-store/internal/panel"
	"github.com/dndstore/panel-store/internal/presentation/helpers"
)

// Payments is the slice of the gateway client the handlers need.
type Payments interface {
	VerifyPaid(ctx context.Context, orderID string, amount float64) (bool, map[string]any, error)
	CreateTransaction(ctx context.Context, orderID string, amount float64) (map[string]any, error)
	CancelTransaction(ctx context.Context, orderID string, amount float64) (map[string]any, error)
}

type Fulfiller interface {
	Fulfill(ctx context.Context, orderID, planKey, rawName string) (*domain.Fulfillment, error)
}

type StoreHandler struct {
	payments Payments
	svc      Fulfiller
	events   *kafka.Producer // nil = events disabled
}

func NewStoreHandler(payments Payments, svc Fulfiller, events *kafka.Producer) *StoreHandler {
	return &StoreHandler{payments: payments, svc: svc, events: events}
}

func (h *StoreHandler) Register(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/api/products", h.Products)
	r.Post("/api/checkout", h.Checkout)
	r.Get("/api/status", h.Status)
	r.Post("/api/cancel", h.Cancel)
	r.Post("/api/fulfill", h.Fulfill)
}

func (h *StoreHandler) Health(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *StoreHandler) Products(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"currency": "IDR",
		"products": domain.Products(),
	})
}

// Checkout validates the cart, mints an order id and opens a QRIS payment
// with the gateway. The storefront then polls /api/status with the returned
// orderId and amount.
func (h *StoreHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.ProductKey != "panel" {
		helpers.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"ok":         false,
			"error":      "Produk dinonaktifkan. Hanya 'panel' yang tersedia.",
			"productKey": req.ProductKey,
		})
		return
	}
	plan, ok := domain.FindPlan(req.ProductKey, req.PlanKey)
	if !ok {
		helpers.HttpError(w, http.StatusBadRequest, "unknown planKey")
		return
	}
	if application.SanitizeUsername(req.Inputs.Name) == "" {
		helpers.HttpError(w, http.StatusBadRequest,
			"Username panel tidak valid. Gunakan 3-32 karakter: a-z, 0-9, titik, underscore, dash.")
		return
	}

	orderID := newOrderID()
	amount := float64(plan.Price)
	payment, err := h.payments.CreateTransaction(r.Context(), orderID, amount)
	if err != nil {
		logger.Warn("checkout: create transaction failed", "order_id", orderID, "err", err)
		h.remoteFailure(w, "Checkout failed", err)
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, map[string]any{
		"ok":      true,
		"orderId": orderID,
		"amount":  amount,
		"plan":    plan,
		"payment": payment,
	})
}

// Status is the read-only poll target for the storefront.
func (h *StoreHandler) Status(w http.ResponseWriter, r *http.Request) {
	orderID := strings.TrimSpace(r.URL.Query().Get("order_id"))
	amountStr := r.URL.Query().Get("amount")
	amount, err := strconv.ParseFloat(amountStr, 64)
	if orderID == "" || amountStr == "" || err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "order_id and amount required")
		return
	}

	paid, tx, err := h.payments.VerifyPaid(r.Context(), orderID, amount)
	if err != nil {
		h.remoteFailure(w, "Status check failed", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"paid":   paid,
		"status": gateway.StatusOf(tx),
		"tx":     tx,
	})
}

func (h *StoreHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req domain.CancelRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.OrderID) == "" || req.Amount == 0 {
		helpers.HttpError(w, http.StatusBadRequest, "orderId and amount required")
		return
	}

	result, err := h.payments.CancelTransaction(r.Context(), req.OrderID, req.Amount)
	if err != nil {
		h.remoteFailure(w, "Cancel failed", err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "result": result})
}

// Fulfill verifies payment and provisions the purchased panel.
func (h *StoreHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req domain.FulfillRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.OrderID) == "" || req.Amount == 0 ||
		req.ProductKey == "" || req.PlanKey == "" {
		helpers.HttpError(w, http.StatusBadRequest, "orderId, amount, productKey, planKey required")
		return
	}

	paid, tx, err := h.payments.VerifyPaid(r.Context(), req.OrderID, req.Amount)
	if err != nil {
		h.remoteFailure(w, "Fulfillment failed", err)
		return
	}
	if !paid {
		helpers.WriteJSON(w, http.StatusPaymentRequired, map[string]any{
			"error":  "Payment not confirmed",
			"status": gateway.StatusOf(tx),
			"tx":     tx,
		})
		return
	}

	// Only the panel product is live.
	if req.ProductKey != "panel" {
		helpers.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"ok":         false,
			"error":      "Produk dinonaktifkan. Hanya 'panel' yang tersedia.",
			"productKey": req.ProductKey,
		})
		return
	}

	f, err := h.svc.Fulfill(r.Context(), req.OrderID, req.PlanKey, req.Inputs.Name)
	if err != nil {
		h.writeFulfillError(w, err)
		return
	}

	if h.events != nil {
		if err := h.events.PublishFulfillment(r.Context(), req.OrderID, f); err != nil {
			logger.Warn("fulfill: event publish failed", "order_id", req.OrderID, "err", err)
		}
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"ok":          true,
		"fulfillment": f,
		"tx":          tx,
	})
}

func (h *StoreHandler) writeFulfillError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, application.ErrInvalidUsername):
		helpers.HttpError(w, http.StatusBadRequest,
			"Username panel tidak valid. Gunakan 3-32 karakter: a-z, 0-9, titik, underscore, dash.")
	case errors.Is(err, application.ErrUnknownPlan):
		helpers.HttpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrMissingStartup),
		errors.Is(err, application.ErrEmptyServerResponse):
		helpers.HttpError(w, http.StatusInternalServerError, err.Error())
	default:
		h.remoteFailure(w, "Fulfillment failed", err)
	}
}

// remoteFailure reports a failed remote call with the remote body attached
// verbatim so the operator can reconcile manually.
func (h *StoreHandler) remoteFailure(w http.ResponseWriter, msg string, err error) {
	detail := err.Error()
	var panelErr *panel.APIError
	var gwErr *gateway.APIError
	if errors.As(err, &panelErr) {
		detail = panelErr.Body
	} else if errors.As(err, &gwErr) {
		detail = gwErr.Body
	}
	helpers.WriteJSON(w, http.StatusInternalServerError, map[string]any{
		"error":  msg,
		"detail": detail,
	})
}

// Order ids are minted server side so the storefront cannot pick colliding
// external ids.
func newOrderID() string {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return fmt.Sprintf("WH-%d-%s",
		time.Now().UnixMilli(), strings.ToUpper(hex.EncodeToString(b[:])))
}
