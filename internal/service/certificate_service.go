package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"placeprep_backend/internal/model"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ObjectStore 证书服务用到的存储能力，由 StorageService 实现
type ObjectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type CertificateService struct {
	Certificates CertificateStore
	Storage      ObjectStore
	MaxBytes     int64
	Thumbnails   bool

	thumbnail func(io.Reader, int) ([]byte, error)
	now       func() time.Time
}

func NewCertificateService(certs CertificateStore, storage ObjectStore, maxUploadMB int64, thumbnails bool) *CertificateService {
	return &CertificateService{
		Certificates: certs,
		Storage:      storage,
		MaxBytes:     maxUploadMB << 20,
		Thumbnails:   thumbnails,
		thumbnail:    util.ImageThumbnail,
		now:          time.Now,
	}
}

// CertificateUpload 上传参数，File 需要支持 Seek 以便嗅探类型后回到开头
type CertificateUpload struct {
	Title    string
	Filename string
	Size     int64
	File     io.ReadSeeker
}

func (s *CertificateService) Upload(ctx context.Context, userID uint, in CertificateUpload) (*model.Certificate, error) {
	if s.MaxBytes > 0 && in.Size > s.MaxBytes {
		return nil, util.ErrFileTooLarge
	}
	if !util.HasAllowedExtension(in.Filename, util.AllowedCertificateExtensions) {
		return nil, util.ErrUnsupportedFile
	}

	mimeType, err := util.ValidateMimeType(in.File, util.AllowedCertificateMimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", util.ErrUnsupportedFile, mimeType)
	}
	if _, err := in.File.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSuffix(in.Filename, path.Ext(in.Filename))
	}

	key := util.CertificateKey(userID, s.now(), in.Filename)

	// 图片需要再读一次生成缩略图，先整体读入内存（大小已受限）
	var body io.Reader = in.File
	var raw []byte
	if s.Thumbnails && util.IsImage(mimeType) {
		raw, err = io.ReadAll(in.File)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	url, err := s.Storage.Upload(ctx, key, body, in.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("upload certificate: %w", err)
	}

	cert := &model.Certificate{
		UserID:       userID,
		Title:        title,
		OriginalName: in.Filename,
		StoredKey:    key,
		URL:          url,
		MimeType:     mimeType,
		Size:         in.Size,
	}
	if raw != nil {
		s.attachThumbnail(ctx, cert, raw)
	}

	if err := s.Certificates.Create(cert); err != nil {
		s.removeObjects(ctx, cert)
		return nil, err
	}
	return cert, nil
}

// attachThumbnail 尽力而为，失败只记录日志
func (s *CertificateService) attachThumbnail(ctx context.Context, cert *model.Certificate, raw []byte) {
	thumb, err := s.thumbnail(bytes.NewReader(raw), util.ThumbnailWidth)
	if err != nil {
		logger.Log.Warn("Thumbnail generation failed", zap.String("key", cert.StoredKey), zap.Error(err))
		return
	}
	key := strings.TrimSuffix(cert.StoredKey, path.Ext(cert.StoredKey)) + "_thumb.jpg"
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg")
	if err != nil {
		logger.Log.Warn("Thumbnail upload failed", zap.String("key", key), zap.Error(err))
		return
	}
	cert.ThumbnailKey = key
	cert.ThumbnailURL = url
}

func (s *CertificateService) removeObjects(ctx context.Context, cert *model.Certificate) {
	for _, key := range []string{cert.StoredKey, cert.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.Storage.Delete(ctx, key); err != nil {
			logger.Log.Warn("Failed to delete stored object", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *CertificateService) List(userID uint) ([]model.Certificate, error) {
	certs, err := s.Certificates.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if certs == nil {
		certs = []model.Certificate{}
	}
	return certs, nil
}

func (s *CertificateService) Delete(ctx context.Context, userID, id uint) error {
	cert, err := s.Certificates.FindForUser(id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrCertificateNotFound
	}
	if err != nil {
		return err
	}
	if err := s.Certificates.Delete(cert.ID); err != nil {
		return err
	}
	s.removeObjects(ctx, cert)
	return nil
}
