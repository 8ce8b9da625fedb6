package service

// Events published after a successful commit.
const (
	EventOrderCreated         = "order_created"
	EventOrderCancelled       = "order_cancelled"
	EventOrderStatusChanged   = "order_status_changed"
	EventOrderPaymentChanged  = "order_payment_changed"
	EventOrderManagerAssigned = "order_manager_assigned"
	EventProductFinalized     = "product_finalized"
)

// EventPublisher fans business events out to connected clients. Publish
// must not block the caller.
type EventPublisher interface {
	Publish(event string, data interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) {}

func publisherOrNoop(p EventPublisher) EventPublisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}
