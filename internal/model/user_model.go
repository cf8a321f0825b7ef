package model

import "time"

type User struct {
	Id        string    `gorm:"type:varchar(64);primaryKey"`
	Username  string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
