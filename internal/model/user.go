package model

// User is the directory record for both customers and staff. Staff members
// (IsStaff) can own orders as managers.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	FullName     string `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	PhoneNumber  string `gorm:"type:varchar(20)" json:"phone_number"`
	IsStaff      bool   `gorm:"default:false" json:"is_staff"`
	IsActive     bool   `gorm:"default:false" json:"is_active"`
	TokenVersion string `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
}

// IsActiveStaff reports whether the user may own or hand over orders.
func (u *User) IsActiveStaff() bool {
	return u.IsStaff && u.IsActive
}
