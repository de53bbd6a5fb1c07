package model

import (
	"time"
)

type UserRole string

const (
	Student    UserRole = "student"
	Instructor UserRole = "instructor"
	Admin      UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name     string   `gorm:"size:100;not null" json:"name"`
	Email    string   `gorm:"size:100;unique;not null" json:"email"`
	Password string   `gorm:"size:100;not null" json:"-"`
	Role     UserRole `gorm:"size:20;default:'student'" json:"role"`

	// Progression counters. Level is written in the same statement as XP so
	// the pair can never drift: level == xp/500 + 1.
	XP     int `gorm:"default:0" json:"xp"`
	Points int `gorm:"default:0" json:"points"` // leaderboard counter, mirrors xp gains
	Level  int `gorm:"default:1" json:"level"`

	Language  string    `gorm:"size:10;default:'ar'" json:"language"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
