package disposal

import (
	"time"

	"github.com/shopspring/decimal"
)

type OilType string

const (
	MotorOil          OilType = "motor_oil"
	CookingOil        OilType = "cooking_oil"
	HydraulicOil      OilType = "hydraulic_oil"
	TransmissionFluid OilType = "transmission_fluid"
	OtherOil          OilType = "other"
)

func (t OilType) Valid() bool {
	switch t {
	case MotorOil, CookingOil, HydraulicOil, TransmissionFluid, OtherOil:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed out of s.
// Verification and rejection are both final.
func (s Status) Terminal() bool {
	return s == StatusVerified || s == StatusRejected
}

type Disposal struct {
	ID             string          `gorm:"column:id;primaryKey" json:"id"`
	OwnerID        string          `gorm:"column:owner_id;index;not null" json:"owner_id"`
	QuantityLiters decimal.Decimal `gorm:"column:quantity_liters;type:numeric(10,2);not null" json:"quantity_liters"`
	OilType        OilType         `gorm:"column:oil_type;type:varchar(30);not null" json:"oil_type"`
	CenterID       string          `gorm:"column:disposal_center_id;index;not null" json:"disposal_center_id"`
	CenterName     string          `gorm:"column:disposal_center_name" json:"disposal_center_name"`
	Status         Status          `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	PointsEarned   int64           `gorm:"column:points_earned;not null" json:"points_earned"`
	Notes          string          `gorm:"column:notes;type:text" json:"notes,omitempty"`
	PhotoURL       string          `gorm:"column:photo_url" json:"photo_url,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (Disposal) TableName() string {
	return "oil_disposals"
}
