package models

import "time"

// OrderNote maps to the `order_notes` table. Notes are append-only.
type OrderNote struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   uint      `gorm:"column:order_id;index" json:"order_id"`
	Note      string    `gorm:"column:note;type:text" json:"note"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (OrderNote) TableName() string {
	return "order_notes"
}
