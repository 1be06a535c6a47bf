package models

import "time"

// Order statuses. The bridge only ever moves an order between these;
// order creation and deletion belong to the shop.
const (
	OrderStatusPending   = "pending"
	OrderStatusCancelled = "cancelled"
	OrderStatusFailed    = "failed"
	OrderStatusCompleted = "completed"
)

// Order maps to the `orders` table of the merchant order store.
type Order struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Number   string `gorm:"column:number;size:100;uniqueIndex" json:"number"`
	Total    int64  `gorm:"column:total" json:"total"` // minor units of Currency
	Currency string `gorm:"column:currency;size:10" json:"currency"`
	Phone    string `gorm:"column:phone;size:30" json:"phone"`
	Status   string `gorm:"column:status;size:20;index" json:"status"`
	// TrackID is the gateway token of the last initiation attempt,
	// kept so unfinished payments can be reconciled by hand.
	TrackID   string    `gorm:"column:track_id;size:100" json:"track_id"`
	RefNumber string    `gorm:"column:ref_number;size:100" json:"ref_number"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
