package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Report struct {
	Id               uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId           string            `gorm:"type:varchar(64);not null;index"`
	ThreadId         string            `gorm:"type:varchar(64);not null;uniqueIndex"`
	OriginalFilename string            `gorm:"type:varchar(255)"`
	SampleDate       *time.Time        `gorm:"type:date"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb"`
	Stage            string            `gorm:"type:varchar(50);not null"`
	CreatedAt        time.Time         `gorm:"autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"autoUpdateTime"`
}

func (Report) TableName() string {
	return "reports"
}
