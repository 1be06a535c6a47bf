package handler

import (
	"paybridge/internal/models"
)

// OrderStore is the slice of the merchant order store the payment
// handlers need. Implemented by repository.OrderRepository.
type OrderStore interface {
	FindByID(id uint) (*models.Order, error)
	SetTrackID(id uint, trackID string) error
	UpdateStatus(id uint, status, note string) error
	MarkPaid(id uint, refNumber string) error
	AddNote(id uint, note string) error
}
