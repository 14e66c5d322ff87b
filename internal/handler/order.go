package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/kickzshop/checkout/internal/domain"
	"github.com/kickzshop/checkout/internal/middleware"
)

// maxOrderBodyBytes bounds the create-order request body.
const maxOrderBodyBytes = 1 << 16

// OrderService is the service surface the order endpoints need.
type OrderService interface {
	CreateOrder(ctx context.Context, userID, cartID int64, shippingAddress, gatewayName string) (*domain.Order, error)
	GetOrderByCode(ctx context.Context, userID int64, code string) (*domain.Order, error)
}

// OrderHandler serves the checkout API endpoints.
type OrderHandler struct {
	service  OrderService
	validate *validator.Validate
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(service OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// createOrderRequest is the POST /api/orders body.
type createOrderRequest struct {
	CartID          int64  `json:"cart_id" validate:"required,gt=0"`
	ShippingAddress string `json:"shipping_address" validate:"required"`
	Gateway         string `json:"gateway" validate:"required"`
}

// orderView is the order shape returned to clients.
type orderView struct {
	Code            string          `json:"code"`
	TotalAmount     int64           `json:"total_amount"`
	Currency        string          `json:"currency"`
	PaymentStatus   string          `json:"payment_status"`
	Status          string          `json:"status"`
	ShippingAddress string          `json:"shipping_address"`
	Gateway         string          `json:"gateway"`
	GatewayResponse json.RawMessage `json:"pg_response,omitempty"`
}

func newOrderView(order *domain.Order) orderView {
	return orderView{
		Code:            order.Code,
		TotalAmount:     order.TotalAmount,
		Currency:        "INR",
		PaymentStatus:   string(order.PaymentStatus),
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		Gateway:         order.GatewayName,
		GatewayResponse: json.RawMessage(order.GatewayResponse),
	}
}

// CreateOrder handles POST /api/orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "handler.CreateOrder", "Authentication required"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxOrderBodyBytes)
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, domain.Invalid("handler.CreateOrder", "Request body is not valid JSON"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, r, domain.Errorf(domain.EINVALID, "handler.CreateOrder", "Invalid field: %s", verrs[0].Field()))
			return
		}
		writeError(w, r, domain.Invalid("handler.CreateOrder", "Invalid request"))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, req.CartID, req.ShippingAddress, req.Gateway)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Order created successfully", newOrderView(order))
}

// GetOrder handles GET /api/orders/{code}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "handler.GetOrder", "Authentication required"))
		return
	}

	code := r.PathValue("code")
	if code == "" {
		writeError(w, r, domain.Invalid("handler.GetOrder", "Order code is required"))
		return
	}

	order, err := h.service.GetOrderByCode(r.Context(), userID, code)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, "Order fetched", newOrderView(order))
}
