// Package fulfillment orchestrates order creation and lifecycle changes,
// composing the catalog, the inventory ledger, the permission gate and the
// order store.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/novamart/novamart/internal/catalog/products"
	"github.com/novamart/novamart/internal/observability"
	"github.com/novamart/novamart/internal/orders"
	"github.com/novamart/novamart/internal/rbac"
	"github.com/novamart/novamart/internal/shared"
)

// Catalog is the slice of the products service the orchestrator needs.
type Catalog interface {
	GetMany(ctx context.Context, ids []int64) (map[int64]products.Product, error)
}

// NumberGenerator issues unique order numbers.
type NumberGenerator interface {
	Next(ctx context.Context) (string, error)
}

// Notifier enqueues follow-up work after a successful state change. It is
// optional; a nil notifier disables notifications.
type Notifier interface {
	OrderConfirmed(ctx context.Context, orderID int64) error
	OrderStatusChanged(ctx context.Context, orderID int64, status orders.Status) error
}

// Auditor records who did what. Optional, like Notifier.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ValidationError reports a rejected request payload.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "fulfillment: " + e.Reason
}

// Service is the fulfillment orchestrator. Authorization happens here, not in
// the HTTP layer, so every caller goes through the same gate.
type Service struct {
	orders  orders.Repository
	catalog Catalog
	numbers NumberGenerator
	gate    *rbac.Gate
	pricing orders.Pricing
	notify  Notifier
	audit   Auditor
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Config collects the service dependencies.
type Config struct {
	Orders  orders.Repository
	Catalog Catalog
	Numbers NumberGenerator
	Gate    *rbac.Gate
	Pricing orders.Pricing
	Notify  Notifier
	Audit   Auditor
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// NewService constructs the orchestrator.
func NewService(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pricing := cfg.Pricing
	if pricing == (orders.Pricing{}) {
		pricing = orders.DefaultPricing()
	}
	return &Service{
		orders:  cfg.Orders,
		catalog: cfg.Catalog,
		numbers: cfg.Numbers,
		gate:    cfg.Gate,
		pricing: pricing,
		notify:  cfg.Notify,
		audit:   cfg.Audit,
		metrics: cfg.Metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateOrder validates the checkout payload, snapshots catalog names and
// prices, computes totals server-side and persists the order atomically with
// its stock decrements. Any authenticated principal may place an order.
func (s *Service) CreateOrder(ctx context.Context, principal *shared.Principal, req orders.CreateOrderRequest) (orders.Order, error) {
	if principal == nil {
		return orders.Order{}, &rbac.DeniedError{Permission: "authenticated"}
	}
	if len(req.Items) == 0 {
		return orders.Order{}, &ValidationError{Reason: "order must contain at least one item"}
	}

	ids := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return orders.Order{}, &ValidationError{Reason: fmt.Sprintf("quantity for product %d must be at least 1", line.ProductID)}
		}
		if seen[line.ProductID] {
			return orders.Order{}, &ValidationError{Reason: fmt.Sprintf("product %d appears more than once", line.ProductID)}
		}
		seen[line.ProductID] = true
		ids = append(ids, line.ProductID)
	}

	catalog, err := s.catalog.GetMany(ctx, ids)
	if err != nil {
		return orders.Order{}, err
	}

	items := make([]orders.Item, 0, len(req.Items))
	for _, line := range req.Items {
		product, ok := catalog[line.ProductID]
		if !ok {
			return orders.Order{}, &ValidationError{Reason: fmt.Sprintf("unknown product %d", line.ProductID)}
		}
		if !product.IsActive {
			return orders.Order{}, &ValidationError{Reason: fmt.Sprintf("product %s is no longer available", product.Name)}
		}
		items = append(items, orders.Item{
			ProductID:     product.ID,
			NameSnapshot:  product.Name,
			PriceSnapshot: product.Price,
			Quantity:      line.Quantity,
		})
	}

	number, err := s.numbers.Next(ctx)
	if err != nil {
		return orders.Order{}, err
	}

	order := orders.Order{
		OrderNumber:     number,
		UserID:          principal.ID,
		Items:           items,
		ShippingAddress: req.ShippingAddress.Address(),
		Status:          orders.StatusPending,
	}
	order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice = s.pricing.Totals(items)

	if err := s.orders.Create(ctx, &order, order.Decrements()); err != nil {
		return orders.Order{}, err
	}

	s.logger.Info("order created",
		slog.String("order_number", order.OrderNumber),
		slog.Int64("user_id", principal.ID),
		slog.Float64("total", order.TotalPrice))
	s.recordAudit(ctx, principal, "order.create", order.ID, map[string]any{"order_number": order.OrderNumber})

	if s.notify != nil {
		if err := s.notify.OrderConfirmed(ctx, order.ID); err != nil {
			s.logger.Warn("enqueue order confirmation failed", slog.Int64("order_id", order.ID), slog.Any("error", err))
		}
	}
	return order, nil
}

// GetOrder returns one order. The owner may always read their own order;
// anyone else needs the order viewing permission.
func (s *Service) GetOrder(ctx context.Context, principal *shared.Principal, id int64) (orders.Order, error) {
	if principal == nil {
		return orders.Order{}, &rbac.DeniedError{Permission: rbac.PermViewOrders}
	}
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	if order.UserID != principal.ID {
		if err := s.gate.Authorize(ctx, principal, rbac.PermViewOrders); err != nil {
			return orders.Order{}, err
		}
	}
	return order, nil
}

// ListOrders returns all orders for principals holding the order viewing
// permission, and the principal's own orders otherwise.
func (s *Service) ListOrders(ctx context.Context, principal *shared.Principal) ([]orders.Order, error) {
	if principal == nil {
		return nil, &rbac.DeniedError{Permission: rbac.PermViewOrders}
	}
	if err := s.gate.Authorize(ctx, principal, rbac.PermViewOrders); err == nil {
		return s.orders.List(ctx)
	}
	return s.orders.ListByUser(ctx, principal.ID)
}

// ChangeStatus moves an order to the requested status. Both the generic
// status endpoint and the dedicated deliver/cancel endpoints funnel through
// here, so an illegal edge answers identically everywhere.
func (s *Service) ChangeStatus(ctx context.Context, principal *shared.Principal, id int64, to orders.Status) (orders.Order, error) {
	if err := s.gate.Authorize(ctx, principal, rbac.PermUpdateOrderStatus); err != nil {
		return orders.Order{}, err
	}
	if !to.IsValid() {
		return orders.Order{}, fmt.Errorf("%w: %q", orders.ErrInvalidStatus, to)
	}

	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return orders.Order{}, err
	}
	from := order.Status

	restocks, err := order.Transition(to, s.now())
	if err != nil {
		s.metrics.ObserveTransition(string(to), false)
		return orders.Order{}, err
	}
	if err := s.orders.UpdateStatus(ctx, &order, restocks); err != nil {
		return orders.Order{}, err
	}
	s.metrics.ObserveTransition(string(to), true)

	s.logger.Info("order status changed",
		slog.String("order_number", order.OrderNumber),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
		slog.Int64("actor_id", principal.ID))
	s.recordAudit(ctx, principal, "order.status", order.ID, map[string]any{"from": from, "to": to})

	if s.notify != nil {
		if err := s.notify.OrderStatusChanged(ctx, order.ID, to); err != nil {
			s.logger.Warn("enqueue status notification failed", slog.Int64("order_id", order.ID), slog.Any("error", err))
		}
	}
	return order, nil
}

// Deliver marks the order delivered.
func (s *Service) Deliver(ctx context.Context, principal *shared.Principal, id int64) (orders.Order, error) {
	return s.ChangeStatus(ctx, principal, id, orders.StatusDelivered)
}

// Cancel cancels the order and restocks its items.
func (s *Service) Cancel(ctx context.Context, principal *shared.Principal, id int64) (orders.Order, error) {
	return s.ChangeStatus(ctx, principal, id, orders.StatusCancelled)
}

func (s *Service) recordAudit(ctx context.Context, principal *shared.Principal, action string, orderID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   "order",
		EntityID: strconv.FormatInt(orderID, 10),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
