package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"suitup-be/internal/apperr"
	"suitup-be/internal/cart"
	"suitup-be/internal/logger"
	"suitup-be/internal/metrics"
	"suitup-be/internal/user"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("suitup-be/internal/order")

const DefaultListTimeout = 5 * time.Second

// UserFinder resolves the session in ctx into the stored user.
type UserFinder interface {
	Current(ctx context.Context) (*user.User, error)
	RequireAdmin(ctx context.Context) (*user.User, error)
}

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	// ListMine returns the caller's latest orders under a deadline.
	ListMine(ctx context.Context) ([]*Order, error)
	// Get returns one order. Customers only see their own.
	Get(ctx context.Context, id string) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error)
}

type service struct {
	repo        Repository
	users       UserFinder
	metrics     *metrics.Metrics
	listTimeout time.Duration
}

func NewService(repo Repository, users UserFinder, m *metrics.Metrics, listTimeout time.Duration) Service {
	if listTimeout <= 0 {
		listTimeout = DefaultListTimeout
	}
	return &service{repo: repo, users: users, metrics: m, listTimeout: listTimeout}
}

func notFound(err error) error {
	return apperr.Wrap(apperr.KindNotFound, "Order not found", err)
}

func invalid(err error) error {
	return apperr.Wrap(apperr.KindInvalidRequest, err.Error(), err)
}

// validatePlaceOrder checks the input and returns the cart with product ids
// in canonical lowercase form, so lock order matches row identity.
func validatePlaceOrder(input PlaceOrderInput) (cart.Cart, error) {
	if err := input.Cart.Validate(); err != nil {
		return nil, err
	}
	lines := make(cart.Cart, len(input.Cart))
	for i, l := range input.Cart {
		id, err := uuid.Parse(strings.TrimSpace(l.ProductID))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, ErrInvalidProductID)
		}
		l.ProductID = id.String()
		lines[i] = l
	}
	if input.TotalAmount == nil {
		return nil, ErrMissingTotal
	}
	if input.TotalAmount.IsNegative() {
		return nil, ErrNegativeTotal
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, ErrMissingAddress
	}
	return lines, nil
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	ctx, span := tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
	)

	u, err := s.users.Current(ctx)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("user_id", u.ID))
	span.SetAttributes(
		attribute.String("user.id", u.ID),
		attribute.Int("order.lines", len(input.Cart)),
	)

	lines, err := validatePlaceOrder(input)
	if err != nil {
		s.metrics.OrderFailed("invalid_request")
		log.Info("rejected order", zap.Error(err))
		return nil, invalid(err)
	}

	o, err := s.repo.CreateOrderTx(ctx, &Order{
		UserID:          u.ID,
		TotalAmount:     input.TotalAmount.Round(2),
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		Status:          StatusPending,
	}, lines)
	if err != nil {
		span.RecordError(err)

		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.OrderFailed("insufficient_stock")
			span.SetStatus(codes.Error, "insufficient stock")
			log.Info("insufficient stock", zap.String("product_id", stockErr.ProductID))
			return nil, apperr.Wrap(apperr.KindInsufficientStock,
				fmt.Sprintf("Insufficient stock for product %s", stockErr.ProductID), err)
		}

		s.metrics.OrderFailed("internal")
		span.SetStatus(codes.Error, "create order failed")
		log.Error("failed to create order", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	s.metrics.OrderPlaced()
	span.SetAttributes(attribute.String("order.id", o.ID))
	log.Info("order placed",
		zap.String("order_id", o.ID),
		zap.Int("lines", len(o.Items)),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)
	return o, nil
}

// timedOut reports whether ctx ended on its deadline. Drivers surface the
// cancellation with their own errors, so the context is the source of truth.
func timedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func (s *service) ListMine(ctx context.Context) ([]*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.listTimeout)
	defer cancel()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListMine"),
	)

	u, err := s.users.Current(ctx)
	if err != nil {
		if timedOut(ctx) {
			log.Warn("user lookup timed out", zap.Duration("timeout", s.listTimeout))
			return nil, apperr.Wrap(apperr.KindRequestTimeout, "Request timed out", err)
		}
		return nil, err
	}

	orders, err := s.repo.ListByUser(ctx, u.ID, ListLimit)
	if err != nil {
		if timedOut(ctx) {
			log.Warn("order listing timed out",
				zap.String("user_id", u.ID),
				zap.Duration("timeout", s.listTimeout),
			)
			return nil, apperr.Wrap(apperr.KindRequestTimeout, "Request timed out", err)
		}
		log.Error("failed to list orders", zap.String("user_id", u.ID), zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

func (s *service) Get(ctx context.Context, id string) (*Order, error) {
	u, err := s.users.Current(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound(ErrOrderNotFound)
	}

	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, notFound(err)
		}
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "service"),
			zap.String("method", "Get"),
			zap.String("order_id", id),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}

	// Someone else's order is reported as missing rather than forbidden.
	if !u.IsAdmin() && o.UserID != u.ID {
		return nil, notFound(ErrOrderNotFound)
	}
	return o, nil
}

func (s *service) ListAll(ctx context.Context) ([]*Order, error) {
	if _, err := s.users.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	orders, err := s.repo.ListAll(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list all orders",
			zap.String("layer", "service"),
			zap.String("method", "ListAll"),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// UpdateStatus allows any transition, including back to pending.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*Order, error) {
	admin, err := s.users.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", input.OrderID),
	)

	if strings.TrimSpace(input.OrderID) == "" {
		return nil, apperr.Invalid("orderId is required")
	}
	if !input.Status.Valid() {
		return nil, invalid(ErrInvalidStatus)
	}
	if _, err := uuid.Parse(input.OrderID); err != nil {
		return nil, notFound(ErrOrderNotFound)
	}

	o, err := s.repo.UpdateStatus(ctx, input.OrderID, input.Status)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, notFound(err)
		}
		log.Error("failed to update order status", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	log.Info("order status updated",
		zap.String("status", string(o.Status)),
		zap.String("admin_id", admin.ID),
	)
	return o, nil
}
