package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/fekuna/omnipos-storefront-service/internal/model"
	"github.com/fekuna/omnipos-storefront-service/internal/order/dto"
)

// memOrders applies the same guards as the SQL repository.
type memOrders struct {
	mu        sync.Mutex
	orders    map[string]model.Order
	createErr error
}

func newMemOrders() *memOrders {
	return &memOrders{orders: map[string]model.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memOrders) FindByID(_ context.Context, id string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memOrders) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.orders {
		if f.UserID == "" || o.UserID == f.UserID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (m *memOrders) MarkPaid(_ context.Context, id string, result model.PaymentResult, at time.Time) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || o.IsPaid {
		return nil, nil
	}
	o.IsPaid = true
	o.PaidAt = &at
	o.PaymentResult = result
	m.orders[id] = o
	return &o, nil
}

func (m *memOrders) MarkDelivered(_ context.Context, id string, at time.Time) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok || !o.IsPaid || o.IsDelivered {
		return nil, nil
	}
	o.IsDelivered = true
	o.DeliveredAt = &at
	m.orders[id] = o
	return &o, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ *model.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}
