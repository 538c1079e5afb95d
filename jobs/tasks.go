// Package jobs contains the asynq task definitions and the background worker.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOrderConfirm notifies the customer that their order was placed.
	TaskOrderConfirm = "order:confirm"
	// TaskOrderStatus notifies the customer about a status change.
	TaskOrderStatus = "order:status"
	// TaskLowStockScan sweeps the catalog for products at or below threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
)

// OrderConfirmPayload identifies the order to confirm.
type OrderConfirmPayload struct {
	OrderID int64 `json:"order_id"`
}

// OrderStatusPayload identifies the order and its new status.
type OrderStatusPayload struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// LowStockScanPayload configures the sweep.
type LowStockScanPayload struct {
	// Limit caps how many products one run reports. Zero means all.
	Limit int `json:"limit,omitempty"`
}

// NewOrderConfirmTask constructs an order confirmation task.
func NewOrderConfirmTask(payload OrderConfirmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirm, data), nil
}

// NewOrderStatusTask constructs a status notification task.
func NewOrderStatusTask(payload OrderStatusPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatus, data), nil
}

// NewLowStockScanTask constructs a low stock sweep task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NotificationTasks handles the customer-facing order notification tasks.
type NotificationTasks struct {
	logger *slog.Logger
}

// NewNotificationTasks builds the notification handler set.
func NewNotificationTasks(logger *slog.Logger) *NotificationTasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationTasks{logger: logger}
}

// HandleOrderConfirm processes TaskOrderConfirm tasks.
func (n *NotificationTasks) HandleOrderConfirm(ctx context.Context, t *asynq.Task) error {
	var payload OrderConfirmPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// TODO: hand off to the mail gateway once SMTP lands.
	n.logger.InfoContext(ctx, "order confirmed",
		slog.Int64("order_id", payload.OrderID))
	return nil
}

// HandleOrderStatus processes TaskOrderStatus tasks.
func (n *NotificationTasks) HandleOrderStatus(ctx context.Context, t *asynq.Task) error {
	var payload OrderStatusPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	n.logger.InfoContext(ctx, "order status changed",
		slog.Int64("order_id", payload.OrderID),
		slog.String("status", payload.Status))
	return nil
}
