package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/util"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetURL(key string) string
	// Ping 检查存储是否可用，供自检使用
	Ping(ctx context.Context) error
}

// LocalStorageProvider 本地存储实现，文件通过 /uploads 静态路由访问
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) path(key string) (string, error) {
	root, err := filepath.Abs(p.Config.LocalPath)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(root, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return dst, nil
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	dst, err := p.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		os.Remove(dst)
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	dst, err := p.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *LocalStorageProvider) GetURL(key string) string {
	return "/uploads/" + key
}

func (p *LocalStorageProvider) Ping(ctx context.Context) error {
	if err := os.MkdirAll(p.Config.LocalPath, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(p.Config.LocalPath, ".ping-*")
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(f.Name())
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, key, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(key string) string {
	return "/" + p.Config.MinioBucket + "/" + key
}

func (p *MinioStorageProvider) Ping(ctx context.Context) error {
	ok, err := p.Client.BucketExists(ctx, p.Config.MinioBucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio bucket %q does not exist", p.Config.MinioBucket)
	}
	return nil
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	if err = bucket.PutObject(key, reader, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, key string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(key)
}

func (p *OSSStorageProvider) GetURL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, key)
}

func (p *OSSStorageProvider) Ping(ctx context.Context) error {
	ok, err := p.Client.IsBucketExist(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("oss bucket %q does not exist", p.Config.OSSBucket)
	}
	return nil
}

// SupabaseStorageProvider Supabase Storage 实现，桶需设置为 public
type SupabaseStorageProvider struct {
	Bucket  string
	Storage *storage_go.Client
}

func NewSupabaseStorageProvider(client *supabase.Client, bucket string) *SupabaseStorageProvider {
	return &SupabaseStorageProvider{Bucket: bucket, Storage: client.Storage}
}

func (p *SupabaseStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	upsert := true
	_, err := p.Storage.UploadFile(p.Bucket, key, reader, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(key), nil
}

func (p *SupabaseStorageProvider) Delete(ctx context.Context, key string) error {
	_, err := p.Storage.RemoveFile(p.Bucket, []string{key})
	return err
}

func (p *SupabaseStorageProvider) GetURL(key string) string {
	return p.Storage.GetPublicUrl(p.Bucket, key).SignedURL
}

func (p *SupabaseStorageProvider) Ping(ctx context.Context) error {
	_, err := p.Storage.GetBucket(p.Bucket)
	return err
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	Type     string
}

// NewStorageService 按配置创建存储，supabase 类型需要传入 Supabase 客户端
func NewStorageService(cfg *config.Config, sb *supabase.Client) (*StorageService, error) {
	var (
		provider StorageProvider
		err      error
	)
	switch cfg.Storage.Type {
	case util.StorageMinio:
		provider, err = NewMinioStorageProvider(&cfg.Storage)
	case util.StorageOSS:
		provider, err = NewOSSStorageProvider(&cfg.Storage)
	case util.StorageSupabase:
		if sb == nil {
			return nil, fmt.Errorf("supabase storage selected but supabase client is not configured")
		}
		provider = NewSupabaseStorageProvider(sb, cfg.Supabase.Bucket)
	case util.StorageLocal, "":
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s storage: %w", cfg.Storage.Type, err)
	}

	return &StorageService{Provider: provider, Type: cfg.Storage.Type}, nil
}

func (s *StorageService) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, key, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	return s.Provider.Delete(ctx, key)
}

func (s *StorageService) GetURL(key string) string {
	return s.Provider.GetURL(key)
}

func (s *StorageService) Ping(ctx context.Context) error {
	return s.Provider.Ping(ctx)
}
