package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email      string `gorm:"uniqueIndex;not null"`
	Password   string `gorm:"not null"`
	FirstName  string `gorm:"not null"`
	LastName   string `gorm:"not null"`
	Phone      string `gorm:"uniqueIndex;not null"`
	Nin        string
	Role       string `gorm:"default:'user'"`
	Status     string `gorm:"default:'active'"`
	HasAccount bool   `gorm:"default:false"`
	LastSeenAt time.Time
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
