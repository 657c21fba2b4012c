package models

import "time"

// Buyer is a customer. Rows are never updated after insert.
type Buyer struct {
	ID        string     `gorm:"column:id;primaryKey" json:"id"`
	Name      string     `gorm:"column:name;not null" json:"name"`
	IDNumber  string     `gorm:"column:id_number;not null" json:"idNumber"`
	IDExpiry  *time.Time `gorm:"column:id_expiry" json:"idExpiry,omitempty"`
	Phone     string     `gorm:"column:phone;not null" json:"phone"`
	Job       string     `gorm:"column:job;not null" json:"job"`
	Address   string     `gorm:"column:address;not null" json:"address"`
	Email     *string    `gorm:"column:email" json:"email,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
