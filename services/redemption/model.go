package redemption

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFulfilled, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusFulfilled || s == StatusCancelled
}

// Redemption records a spend of points against a reward. PointsSpent and
// RewardTitle are snapshots taken at redemption time; later edits to the
// reward do not change what was charged. Every redemption counts as spent
// regardless of status, cancellation never refunds.
type Redemption struct {
	ID             string    `gorm:"column:id;primaryKey" json:"id"`
	OwnerID        string    `gorm:"column:owner_id;index;not null" json:"owner_id"`
	RewardID       string    `gorm:"column:reward_id;index;not null" json:"reward_id"`
	RewardTitle    string    `gorm:"column:reward_title" json:"reward_title"`
	PointsSpent    int64     `gorm:"column:points_spent;not null" json:"points_spent"`
	RedemptionCode string    `gorm:"column:redemption_code;uniqueIndex;not null" json:"redemption_code"`
	Status         Status    `gorm:"column:status;type:varchar(20);default:'pending'" json:"status"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Redemption) TableName() string {
	return "reward_redemptions"
}
