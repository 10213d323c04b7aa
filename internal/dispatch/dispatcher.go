package dispatch

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourorg/inventory-dashboard/internal/metrics"
	"github.com/yourorg/inventory-dashboard/internal/model"
	"github.com/yourorg/inventory-dashboard/internal/store"
)

// SourceUHF tags low-stock events originating from an RFID reader
const SourceUHF = "uhf"

// LowStockHandler receives every classified low-stock event. source is
// empty for plain alerts and SourceUHF for reader events.
type LowStockHandler func(item model.LowStockItem, source string)

// NotificationHandler receives every pushed notification
type NotificationHandler func(n model.Notification)

// Dispatcher classifies raw stream frames into typed domain events and
// routes each to exactly one registered handler per event kind.
// Registration replaces, never accumulates, so an event is never
// delivered twice. Malformed payloads are dropped with a warning and
// never panic into the caller.
type Dispatcher struct {
	mu           sync.Mutex
	lowStock     LowStockHandler
	notification NotificationHandler

	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a dispatcher with no handlers registered
func New(validate *validator.Validate, m *metrics.Metrics, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		validate: validate,
		metrics:  m,
		logger:   logger,
	}
}

// OnLowStock registers the low-stock handler, replacing any previous one
func (d *Dispatcher) OnLowStock(h LowStockHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lowStock = h
}

// OnNotification registers the notification handler, replacing any
// previous one.
func (d *Dispatcher) OnNotification(h NotificationHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notification = h
}

// HandleFrame classifies one frame and invokes the matching handler.
// Connection lifecycle frames are dispatcher-internal and never reach
// the domain layer.
func (d *Dispatcher) HandleFrame(frame model.Frame) {
	switch frame.Event {
	case model.EventLowStockAlert:
		var payload model.LowStockAlertPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			d.drop(frame.Event, err)
			return
		}
		if err := d.validate.Struct(payload.Item); err != nil {
			d.drop(frame.Event, err)
			return
		}
		d.metrics.EventReceived(frame.Event)
		d.dispatchLowStock(payload.Item, "")

	case model.EventUHFLowStock:
		var payload model.UHFLowStockPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			d.drop(frame.Event, err)
			return
		}
		if err := d.validate.Struct(payload.Item); err != nil {
			d.drop(frame.Event, err)
			return
		}
		d.metrics.EventReceived(frame.Event)
		d.dispatchLowStock(payload.Item, SourceUHF)

	case model.EventNewNotification, "new-notification":
		var payload model.NewNotificationPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			d.drop(frame.Event, err)
			return
		}
		if payload.Notification.ID == "" {
			d.drop(frame.Event, fmt.Errorf("notification has no id"))
			return
		}
		d.metrics.EventReceived(frame.Event)
		d.mu.Lock()
		handler := d.notification
		d.mu.Unlock()
		if handler != nil {
			handler(payload.Notification)
		}

	case model.EventConnect, model.EventDisconnect:
		d.logger.Debug("stream lifecycle event", zap.String("event", frame.Event))

	default:
		d.logger.Warn("dropping unknown stream event", zap.String("event", frame.Event))
		d.metrics.EventDropped()
	}
}

// Simulate injects an event through the identical path a live push
// takes, guaranteeing behavioral parity between simulated and real
// events.
func (d *Dispatcher) Simulate(frame model.Frame) {
	d.HandleFrame(frame)
}

func (d *Dispatcher) dispatchLowStock(item model.LowStockItem, source string) {
	d.mu.Lock()
	handler := d.lowStock
	d.mu.Unlock()
	if handler != nil {
		handler(item, source)
	}
}

func (d *Dispatcher) drop(event string, err error) {
	d.logger.Warn("dropping malformed stream event",
		zap.String("event", event),
		zap.Error(err))
	d.metrics.EventDropped()
}

// BindStore registers the default handlers that reconcile stream events
// into the store: low-stock events upsert the item and insert a
// locally-synthesized notification, pushed notifications go in at the
// head of the list.
func BindStore(d *Dispatcher, st *store.Store) {
	d.OnLowStock(func(item model.LowStockItem, source string) {
		st.UpsertLowStockItem(item)
		st.InsertNotification(SynthesizeLowStockNotification(item, source, time.Now()))
	})
	d.OnNotification(func(n model.Notification) {
		st.InsertNotification(n)
	})
}

// SynthesizeLowStockNotification derives the notification shown for a
// low-stock event. Depleted items are high priority, everything else
// medium.
func SynthesizeLowStockNotification(item model.LowStockItem, source string, now time.Time) model.Notification {
	priority := model.PriorityMedium
	if item.Critical() {
		priority = model.PriorityHigh
	}
	return model.Notification{
		ID:        uuid.NewString(),
		Title:     "Low Stock Alert",
		Message:   fmt.Sprintf("%s (%s) is below threshold", item.Name, item.SKU),
		Priority:  priority,
		Type:      model.TypeStock,
		Read:      false,
		CreatedAt: now,
		RelatedTo: &model.RelatedRef{Model: "inventory", ID: item.ID},
		Source:    source,
	}
}
