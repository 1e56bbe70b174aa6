package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Rejection reasons recorded on item_delete_rejections_total.
const (
	ReasonInvalidID = "invalid_id"
	ReasonNotFound  = "not_found"
	ReasonTooYoung  = "too_young"
)

// ItemMetrics holds the item lifecycle counters. A nil *ItemMetrics is a no-op.
type ItemMetrics struct {
	created  metric.Int64Counter
	deleted  metric.Int64Counter
	rejected metric.Int64Counter
}

// NewItemMetrics registers the item counters on meter.
func NewItemMetrics(meter metric.Meter) (*ItemMetrics, error) {
	created, err := meter.Int64Counter("items_created_total",
		metric.WithDescription("Items created"))
	if err != nil {
		return nil, fmt.Errorf("items_created_total: %w", err)
	}
	deleted, err := meter.Int64Counter("items_deleted_total",
		metric.WithDescription("Items deleted"))
	if err != nil {
		return nil, fmt.Errorf("items_deleted_total: %w", err)
	}
	rejected, err := meter.Int64Counter("item_delete_rejections_total",
		metric.WithDescription("Delete requests refused, by reason"))
	if err != nil {
		return nil, fmt.Errorf("item_delete_rejections_total: %w", err)
	}
	return &ItemMetrics{created: created, deleted: deleted, rejected: rejected}, nil
}

// ItemCreated counts one committed create.
func (m *ItemMetrics) ItemCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1)
}

// ItemDeleted counts one committed delete.
func (m *ItemMetrics) ItemDeleted(ctx context.Context) {
	if m == nil {
		return
	}
	m.deleted.Add(ctx, 1)
}

// DeleteRejected counts one refused delete, labelled with reason.
func (m *ItemMetrics) DeleteRejected(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
