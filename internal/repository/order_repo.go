package repository

import (
	"time"

	"gorm.io/gorm"

	"paybridge/internal/models"
)

// OrderRepository handles order store database operations.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// FindByID returns an order by its numeric identifier.
func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// SetTrackID records the gateway token issued for the latest initiation attempt.
func (r *OrderRepository) SetTrackID(id uint, trackID string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"track_id": trackID,
	}).Error
}

// UpdateStatus transitions the order status and appends a note.
func (r *OrderRepository) UpdateStatus(id uint, status, note string) error {
	if err := r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status": status,
	}).Error; err != nil {
		return err
	}
	if note == "" {
		return nil
	}
	return r.AddNote(id, note)
}

// MarkPaid transitions the order to completed and stores the gateway reference.
func (r *OrderRepository) MarkPaid(id uint, refNumber string) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     models.OrderStatusCompleted,
		"ref_number": refNumber,
	}).Error
}

// AddNote appends a free-text note to an order.
func (r *OrderRepository) AddNote(id uint, note string) error {
	return r.db.Create(&models.OrderNote{
		OrderID: id,
		Note:    note,
	}).Error
}

// FindStalePending returns pending orders whose last update is older than the cutoff.
func (r *OrderRepository) FindStalePending(olderThan time.Duration, limit int) ([]models.Order, error) {
	cutoff := time.Now().Add(-olderThan)

	if limit <= 0 {
		limit = 100
	}

	var orders []models.Order
	err := r.db.
		Where("status = ? AND updated_at < ?", models.OrderStatusPending, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
