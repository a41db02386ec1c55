package model

import (
	"time"

	"placeprep_backend/internal/question"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizProgress 进行中的测验快照，每个用户最多一条，提交或放弃后硬删除
type QuizProgress struct {
	ID         string                                  `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     uint                                    `gorm:"uniqueIndex;not null" json:"userId"`
	Topic      string                                  `gorm:"size:100;not null" json:"topic"`
	Subtopic   string                                  `gorm:"size:100" json:"subtopic"`
	Difficulty string                                  `gorm:"size:20" json:"difficulty"`
	Source     string                                  `gorm:"size:20" json:"source"`
	Attempts   int                                     `json:"attempts"`
	Questions  datatypes.JSONType[[]question.Question] `json:"-"`
	Answers    datatypes.JSONType[[]string]            `json:"answers"`
	ExpiresAt  time.Time                               `gorm:"index" json:"expiresAt"`
	CreatedAt  time.Time                               `json:"createdAt"`
	UpdatedAt  time.Time                               `json:"updatedAt"`
}

func (QuizProgress) TableName() string {
	return "quiz_progress"
}

func (p *QuizProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

func (p *QuizProgress) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}
