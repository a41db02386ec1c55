package repository

import (
	"placeprep_backend/internal/model"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	DB *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{DB: db}
}

func (r *CertificateRepository) Create(c *model.Certificate) error {
	return r.DB.Create(c).Error
}

func (r *CertificateRepository) ListByUser(userID uint) ([]model.Certificate, error) {
	var certs []model.Certificate
	err := r.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&certs).Error
	return certs, err
}

// FindForUser 只返回属于该用户的证书
func (r *CertificateRepository) FindForUser(id, userID uint) (*model.Certificate, error) {
	var c model.Certificate
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	return &c, err
}

func (r *CertificateRepository) Delete(id uint) error {
	return r.DB.Unscoped().Delete(&model.Certificate{}, id).Error
}
