package repository

import (
	"errors"
	"time"

	"placeprep_backend/internal/model"

	"gorm.io/gorm"
)

type QuizProgressRepository struct {
	DB *gorm.DB
}

func NewQuizProgressRepository(db *gorm.DB) *QuizProgressRepository {
	return &QuizProgressRepository{DB: db}
}

// Replace 删除用户旧的快照并写入新快照
func (r *QuizProgressRepository) Replace(p *model.QuizProgress) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", p.UserID).Delete(&model.QuizProgress{}).Error; err != nil {
			return err
		}
		return tx.Create(p).Error
	})
}

// FindByUser 没有进行中的测验时返回 nil, nil
func (r *QuizProgressRepository) FindByUser(userID uint) (*model.QuizProgress, error) {
	var p model.QuizProgress
	err := r.DB.Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *QuizProgressRepository) SaveAnswers(p *model.QuizProgress) error {
	return r.DB.Model(p).Update("answers", p.Answers).Error
}

func (r *QuizProgressRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.QuizProgress{}).Error
}

// Complete 在同一事务中删除快照并写入成绩；快照已不存在时返回 gorm.ErrRecordNotFound，
// 防止重复提交生成两条成绩
func (r *QuizProgressRepository) Complete(id string, score *model.QuizScore) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.QuizProgress{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(score).Error
	})
}

// DeleteExpired 清理过期快照，返回删除条数
func (r *QuizProgressRepository) DeleteExpired(now time.Time) (int64, error) {
	res := r.DB.Where("expires_at < ?", now).Delete(&model.QuizProgress{})
	return res.RowsAffected, res.Error
}
