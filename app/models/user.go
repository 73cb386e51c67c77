package models

// User is an operator account allowed to call the write API when auth is
// enabled.
type User struct {
	Base
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"size:255;not null;uniqueIndex:uniq_user_email" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Role     string `gorm:"size:50;not null;default:operator" json:"role"`
}

func (User) TableName() string { return "users" }

// Operator roles.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)
