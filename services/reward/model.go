package reward

import "time"

type Category string

const (
	CategoryDiscount    Category = "discount"
	CategoryGiftCard    Category = "gift_card"
	CategoryMerchandise Category = "merchandise"
	CategoryDonation    Category = "donation"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryDiscount, CategoryGiftCard, CategoryMerchandise, CategoryDonation:
		return true
	default:
		return false
	}
}

type Reward struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	Title          string    `gorm:"column:title;not null" json:"title"`
	Description    string    `gorm:"column:description;type:text" json:"description"`
	PointsRequired int64     `gorm:"column:points_required;not null" json:"points_required"`
	Category       Category  `gorm:"column:category;type:varchar(30);not null" json:"category"`
	ImageURL       string    `gorm:"column:image_url" json:"image_url,omitempty"`
	// Stock is nil for unlimited rewards. When tracked it never goes below
	// zero; the redemption transaction decrements it conditionally.
	Stock *int64 `gorm:"column:stock" json:"stock,omitempty"`
	// No column default: a default would make gorm skip the field on insert
	// when it is false, so inactive rewards could never be created. The
	// service sets the value explicitly on every create.
	IsActive  bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Reward) TableName() string {
	return "rewards"
}
