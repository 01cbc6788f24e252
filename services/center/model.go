package center

import "time"

type DisposalCenter struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	Name           string    `gorm:"column:name;not null" json:"name"`
	Address        string    `gorm:"column:address" json:"address"`
	Latitude       *float64  `gorm:"column:latitude" json:"latitude,omitempty"`
	Longitude      *float64  `gorm:"column:longitude" json:"longitude,omitempty"`
	OperatingHours string    `gorm:"column:operating_hours" json:"operating_hours"`
	Phone          string    `gorm:"column:phone" json:"phone"`
	AcceptsTypes   string    `gorm:"column:accepts_types" json:"accepts_types"`
	// No column default: gorm skips zero-value fields on insert when one is
	// set, which would turn an inactive create into an active row. The
	// service sets the value explicitly on every create.
	IsActive       bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (DisposalCenter) TableName() string {
	return "disposal_centers"
}
