package db

import "time"

// User 表示持久化的用户账户。
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     *string   `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	PasswordHash string    `gorm:"column:hashed_password;type:text;not null" json:"-"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`

	Grants []UserDatasetAccess `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名。
func (User) TableName() string {
	return "users"
}
