package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"column:name;type:varchar(255);not null"`
	Email      string    `gorm:"column:email;type:text;not null;uniqueIndex:uq_users_email"`
	Password   string    `gorm:"column:password;type:text;not null"`
	Role       Role      `gorm:"column:role;type:varchar(20);not null;default:user;index"`
	IsApproved bool      `gorm:"column:is_approved;not null;default:false;index"`
	Phone      string    `gorm:"column:phone;type:varchar(32)"`
	Address    string    `gorm:"column:address;type:text"`
	CityState  string    `gorm:"column:city_state;type:varchar(255)"`
	Pincode    string    `gorm:"column:pincode;type:varchar(16)"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
