package handler_test

import (
	"context"

	"gorm.io/gorm"

	"paybridge/internal/models"
	"paybridge/internal/payment"
)

// mockOrderStore records every mutation so tests can assert exactly
// what the handlers touched.
type mockOrderStore struct {
	orders map[uint]*models.Order

	FindByIDFn func(id uint) (*models.Order, error)

	trackIDs      map[uint]string
	statusChanges map[uint]string
	paidRefs      map[uint]string
	notes         map[uint][]string
}

func newMockOrderStore(orders ...*models.Order) *mockOrderStore {
	m := &mockOrderStore{
		orders:        make(map[uint]*models.Order),
		trackIDs:      make(map[uint]string),
		statusChanges: make(map[uint]string),
		paidRefs:      make(map[uint]string),
		notes:         make(map[uint][]string),
	}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *mockOrderStore) FindByID(id uint) (*models.Order, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(id)
	}
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderStore) SetTrackID(id uint, trackID string) error {
	m.trackIDs[id] = trackID
	return nil
}

func (m *mockOrderStore) UpdateStatus(id uint, status, note string) error {
	m.statusChanges[id] = status
	if note != "" {
		m.notes[id] = append(m.notes[id], note)
	}
	return nil
}

func (m *mockOrderStore) MarkPaid(id uint, refNumber string) error {
	m.statusChanges[id] = models.OrderStatusCompleted
	m.paidRefs[id] = refNumber
	return nil
}

func (m *mockOrderStore) AddNote(id uint, note string) error {
	m.notes[id] = append(m.notes[id], note)
	return nil
}

// mutated reports whether any order state was touched.
func (m *mockOrderStore) mutated() bool {
	return len(m.trackIDs) > 0 || len(m.statusChanges) > 0 || len(m.paidRefs) > 0 || len(m.notes) > 0
}

// mockGateway counts calls and lets each test script the result.
type mockGateway struct {
	CreatePaymentFn func(ctx context.Context, amount int64, callbackURL, description, mobile string) payment.Result
	VerifyPaymentFn func(ctx context.Context, trackID string) payment.Result

	createCalls int
	verifyCalls int
}

func (g *mockGateway) Name() string {
	return "mock"
}

func (g *mockGateway) PaymentURL(trackID string) string {
	return "https://gateway.example/start/" + trackID
}

func (g *mockGateway) CreatePayment(ctx context.Context, amount int64, callbackURL, description, mobile string) payment.Result {
	g.createCalls++
	if g.CreatePaymentFn != nil {
		return g.CreatePaymentFn(ctx, amount, callbackURL, description, mobile)
	}
	return payment.Result{Code: payment.CodeSuccess, TrackID: "track-1"}
}

func (g *mockGateway) VerifyPayment(ctx context.Context, trackID string) payment.Result {
	g.verifyCalls++
	if g.VerifyPaymentFn != nil {
		return g.VerifyPaymentFn(ctx, trackID)
	}
	return payment.Result{Code: payment.CodeSuccess, RefNumber: "ref-1"}
}
