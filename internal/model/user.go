package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password       string     `gorm:"size:100;not null" json:"-"`
	Role           UserRole   `gorm:"size:20;default:'student'" json:"role"`
	Branch         string     `gorm:"size:20;index" json:"branch"`
	GraduationYear int        `json:"graduationYear"`
	College        string     `gorm:"size:150" json:"college"`
	Disabled       bool       `gorm:"default:false" json:"disabled"`
	LastLogin      *time.Time `json:"lastLogin"`
	LastSeen       *time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
