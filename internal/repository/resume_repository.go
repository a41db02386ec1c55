package repository

import (
	"errors"

	"placeprep_backend/internal/model"

	"gorm.io/gorm"
)

type ResumeRepository struct {
	DB *gorm.DB
}

func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{DB: db}
}

// FindByUser 没有简历时返回 nil, nil
func (r *ResumeRepository) FindByUser(userID uint) (*model.Resume, error) {
	var resume model.Resume
	err := r.DB.Where("user_id = ?", userID).First(&resume).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

// Save 按 user_id 新建或覆盖
func (r *ResumeRepository) Save(resume *model.Resume) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.Resume
		err := tx.Where("user_id = ?", resume.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(resume).Error
		case err != nil:
			return err
		}
		resume.ID = existing.ID
		resume.CreatedAt = existing.CreatedAt
		return tx.Save(resume).Error
	})
}
