package model

import (
	"time"
)

// QuizScore 每次完成测验的汇总成绩，不保存具体题目
type QuizScore struct {
	BaseModel
	UserID     uint      `gorm:"index:idx_score_user_topic;not null" json:"userId"`
	Topic      string    `gorm:"size:100;index:idx_score_user_topic;not null" json:"topic"`
	Subtopic   string    `gorm:"size:100" json:"subtopic"`
	Difficulty string    `gorm:"size:20" json:"difficulty"`
	Source     string    `gorm:"size:20" json:"source"`
	Score      int       `gorm:"not null" json:"score"`
	Total      int       `gorm:"not null" json:"total"`
	TakenAt    time.Time `gorm:"index" json:"takenAt"`
}

func (QuizScore) TableName() string {
	return "quiz_scores"
}

// Percentage 得分百分比，total 为 0 时返回 0
func (s QuizScore) Percentage() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Score) / float64(s.Total) * 100
}
