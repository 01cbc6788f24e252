package identity

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Email       string    `gorm:"column:email;uniqueIndex;not null" json:"email"`
	DisplayName string    `gorm:"column:display_name" json:"display_name"`
	Role        Role      `gorm:"column:role;type:varchar(20);default:'user'" json:"role"`
	APIToken    string    `gorm:"column:api_token;uniqueIndex;not null" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Session is the authenticated caller, resolved once per request and passed
// explicitly into every service call that needs it.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
	Role        Role
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
