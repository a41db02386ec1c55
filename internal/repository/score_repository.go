package repository

import (
	"placeprep_backend/internal/model"

	"gorm.io/gorm"
)

type ScoreRepository struct {
	DB *gorm.DB
}

func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{DB: db}
}

// ListByUser 按时间倒序返回用户全部成绩
func (r *ScoreRepository) ListByUser(userID uint) ([]model.QuizScore, error) {
	var scores []model.QuizScore
	err := r.DB.Where("user_id = ?", userID).
		Order("taken_at DESC, id DESC").
		Find(&scores).Error
	return scores, err
}

// ListByUserTopic 用于难度评估，topic 大小写不敏感
func (r *ScoreRepository) ListByUserTopic(userID uint, topic string) ([]model.QuizScore, error) {
	var scores []model.QuizScore
	err := r.DB.Where("user_id = ? AND LOWER(topic) = LOWER(?)", userID, topic).
		Order("taken_at DESC, id DESC").
		Find(&scores).Error
	return scores, err
}

// Page 分页查询成绩
func (r *ScoreRepository) Page(userID uint, page, limit int) ([]model.QuizScore, int64, error) {
	var (
		scores []model.QuizScore
		total  int64
	)
	q := r.DB.Model(&model.QuizScore{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("taken_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&scores).Error
	return scores, total, err
}
