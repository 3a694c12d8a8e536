package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "pending"
	TaskStatusFinished TaskStatus = "finished"
)

// ValidStatus reports whether s is one of the known task statuses.
func ValidStatus(s string) bool {
	return s == string(TaskStatusPending) || s == string(TaskStatusFinished)
}

type Task struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	StartTime time.Time      `gorm:"not null" json:"startTime"`
	EndTime   time.Time      `gorm:"not null" json:"endTime"`
	Priority  int            `gorm:"not null" json:"priority"`
	Status    TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	OwnerID   uint64         `gorm:"not null;index" json:"ownerId"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}
