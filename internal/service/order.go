package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/kickzshop/checkout/internal/domain"
	"github.com/kickzshop/checkout/internal/events"
	"github.com/kickzshop/checkout/internal/payment"
	"github.com/kickzshop/checkout/internal/telemetry"
)

// orderCurrency is the only currency the storefront sells in.
const orderCurrency = "INR"

// codeSuffixLen is the length of the random order code suffix.
const codeSuffixLen = 10

// maxCodeAttempts bounds retries when a generated order code collides.
const maxCodeAttempts = 3

// OrderService converts carts into orders through a payment gateway.
//
// Creation runs in two phases. Phase one is a single transaction that
// claims the cart, prices it, and persists a PENDING order. Phase two
// calls the gateway with no transaction open; on failure the order is
// marked FAILED and the cart re-activated so the shopper can retry.
type OrderService struct {
	store          domain.Store
	tx             domain.TxManager
	providers      *payment.Factory
	publisher      events.Publisher
	metrics        *telemetry.Metrics
	logger         *slog.Logger
	frontendOrigin string
}

// OrderServiceParams holds the dependencies for NewOrderService.
type OrderServiceParams struct {
	Store          domain.Store
	Tx             domain.TxManager
	Providers      *payment.Factory
	Publisher      events.Publisher
	Metrics        *telemetry.Metrics
	Logger         *slog.Logger
	FrontendOrigin string
}

// NewOrderService creates an OrderService. Publisher and Metrics may be
// nil; Store, Tx and Providers are required.
func NewOrderService(p OrderServiceParams) *OrderService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &OrderService{
		store:          p.Store,
		tx:             p.Tx,
		providers:      p.Providers,
		publisher:      publisher,
		metrics:        p.Metrics,
		logger:         logger,
		frontendOrigin: p.FrontendOrigin,
	}
}

// CreateOrder converts the user's cart into a PENDING order with an open
// payment session on the named gateway.
func (s *OrderService) CreateOrder(ctx context.Context, userID, cartID int64, shippingAddress, gatewayName string) (*domain.Order, error) {
	const op = "order.create"

	provider, err := s.providers.Provider(gatewayName)
	if err != nil {
		s.metrics.RecordOrderFailed(gatewayName, telemetry.ReasonValidation)
		return nil, domain.Errorf(domain.EINVALID, op, "Unsupported payment gateway: %s", gatewayName)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.metrics.RecordOrderFailed(gatewayName, failureReason(err))
		return nil, err
	}

	// Phase one: claim the cart and persist the PENDING order in one
	// transaction. A code collision rolls the whole phase back, so a
	// retry starts again from an unclaimed cart.
	var order *domain.Order
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		order, err = s.beginOrder(ctx, userID, cartID, shippingAddress, gatewayName)
		if errors.Is(err, domain.ErrDuplicateOrderCode) {
			s.logger.WarnContext(ctx, "order code collision, retrying",
				slog.Int64("user_id", userID),
				slog.Int("attempt", attempt+1))
			continue
		}
		break
	}
	if err != nil {
		s.metrics.RecordOrderFailed(gatewayName, failureReason(err))
		return nil, err
	}

	items, err := s.store.GetCartItems(ctx, cartID)
	if err != nil {
		return nil, s.compensate(ctx, order, cartID, gatewayName, err)
	}

	// Phase two: gateway call with no transaction open.
	start := time.Now()
	session, gwErr := provider.CreatePaymentSession(ctx, s.sessionParams(order, user, ResolveLines(items)))
	s.metrics.ObserveGatewayLatency(gatewayName, time.Since(start))

	if gwErr != nil {
		return nil, s.compensate(ctx, order, cartID, gatewayName, gwErr)
	}

	order, err = s.store.AttachGatewayResponse(ctx, order.ID, session.Raw)
	if err != nil {
		s.metrics.RecordOrderFailed(gatewayName, telemetry.ReasonInternal)
		return nil, domain.Internal(err, op, "failed to record gateway response")
	}

	s.metrics.RecordOrderCreated(gatewayName, order.TotalAmount)
	s.publishOrderCreated(ctx, order)

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_code", order.Code),
		slog.Int64("user_id", userID),
		slog.Int64("cart_id", cartID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.String("gateway", gatewayName))

	return order, nil
}

// GetOrderByCode returns the user's order with the given code.
func (s *OrderService) GetOrderByCode(ctx context.Context, userID int64, code string) (*domain.Order, error) {
	return s.store.GetOrderByCode(ctx, userID, code)
}

// beginOrder runs phase one: claim the cart, price it, insert the
// PENDING order. Everything rolls back together on error.
func (s *OrderService) beginOrder(ctx context.Context, userID, cartID int64, shippingAddress, gatewayName string) (*domain.Order, error) {
	var order *domain.Order
	err := s.tx.WithTx(ctx, func(ctx context.Context, store domain.Store) error {
		cart, err := store.ClaimCart(ctx, cartID, userID)
		if err != nil {
			return err
		}

		items, err := store.GetCartItems(ctx, cartID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		total := CartTotal(cart, ResolveLines(items))

		code, err := generateOrderCode(userID)
		if err != nil {
			return domain.Internal(err, "order.create", "failed to generate order code")
		}

		order, err = store.CreateOrder(ctx, domain.CreateOrderParams{
			Code:            code,
			UserID:          userID,
			CartID:          cartID,
			TotalAmount:     total,
			ShippingAddress: shippingAddress,
			GatewayName:     gatewayName,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// compensate handles a failure after the PENDING order is committed: the
// order is marked FAILED with the gateway's diagnostic payload and the
// cart re-activated so the shopper can try again.
func (s *OrderService) compensate(ctx context.Context, order *domain.Order, cartID int64, gatewayName string, cause error) error {
	const op = "order.create"

	payload := failurePayload(cause)
	err := s.tx.WithTx(ctx, func(ctx context.Context, store domain.Store) error {
		if err := store.MarkOrderFailed(ctx, order.ID, payload); err != nil {
			return err
		}
		return store.ReleaseCart(ctx, cartID)
	})
	if err != nil {
		// The PENDING order is now stranded; surface an internal error so
		// on-call can reconcile it from the logs.
		s.metrics.RecordOrderFailed(gatewayName, telemetry.ReasonInternal)
		s.logger.ErrorContext(ctx, "order compensation failed",
			slog.String("order_code", order.Code),
			slog.Int64("cart_id", cartID),
			slog.Any("cause", cause),
			slog.Any("error", err))
		return domain.Internal(err, op, "failed to roll back order after gateway error")
	}

	s.metrics.RecordOrderFailed(gatewayName, telemetry.ReasonGateway)
	s.logger.WarnContext(ctx, "gateway rejected order, cart released",
		slog.String("order_code", order.Code),
		slog.Int64("cart_id", cartID),
		slog.Any("cause", cause))

	return domain.WrapError(cause, domain.EINVALID, op, "Order creation failed")
}

// publishOrderCreated emits the post-commit event. Best effort only.
func (s *OrderService) publishOrderCreated(ctx context.Context, order *domain.Order) {
	ev := events.OrderCreated{
		EventID:     newEventID(),
		OrderID:     order.ID,
		OrderCode:   order.Code,
		UserID:      order.UserID,
		CartID:      order.CartID,
		TotalAmount: order.TotalAmount,
		Currency:    orderCurrency,
		Gateway:     order.GatewayName,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.PublishOrderCreated(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order created event",
			slog.String("order_code", order.Code),
			slog.Any("error", err))
	}
}

// sessionParams maps an order and its priced lines onto a gateway
// session request.
func (s *OrderService) sessionParams(order *domain.Order, user *domain.User, lines []ResolvedLine) payment.SessionParams {
	items := make([]payment.LineItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, payment.LineItem{
			ID:               line.ItemID,
			ProductVariantID: line.ProductVariantID,
			UnitPrice:        line.UnitPrice,
			Quantity:         line.Quantity,
			Name:             line.Name,
		})
	}

	return payment.SessionParams{
		OrderID:     order.Code,
		AmountMinor: order.TotalAmount,
		Currency:    orderCurrency,
		Customer: payment.CustomerDetails{
			CustomerID: strconv.FormatInt(user.ID, 10),
			Name:       user.Name,
			Phone:      user.MobileNumber,
			Email:      user.Email,
		},
		ReturnURL: s.frontendOrigin + "/order/confirm?order_code=" + url.QueryEscape(order.Code),
		Items:     items,
	}
}

// failurePayload extracts the gateway's diagnostic body from an error,
// falling back to a wrapped error string.
func failurePayload(err error) []byte {
	var sessionErr *payment.SessionError
	if errors.As(err, &sessionErr) && len(sessionErr.Payload) > 0 {
		return sessionErr.Payload
	}
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return payload
}

// failureReason maps an error onto an orders_failed_total reason label.
func failureReason(err error) string {
	switch domain.ErrorCode(err) {
	case domain.EINVALID, domain.ENOTFOUND, domain.ECONFLICT:
		return telemetry.ReasonValidation
	case domain.EPAYMENT:
		return telemetry.ReasonGateway
	default:
		return telemetry.ReasonInternal
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateOrderCode builds a human-quotable order code. The random
// suffix plus the unique index on orders.code keep codes unique even
// across concurrent checkouts by the same user.
func generateOrderCode(userID int64) (string, error) {
	buf := make([]byte, codeSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("KICKZ-%d-%s", userID, buf), nil
}

// newEventID returns a random 16-byte hex identifier for events.
func newEventID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "0"
	}
	return fmt.Sprintf("%x", buf)
}
