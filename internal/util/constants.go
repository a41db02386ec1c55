package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal    = "local"
	StorageMinio    = "minio"
	StorageOSS      = "oss"
	StorageSupabase = "supabase"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
)

// 证书允许的扩展名与 MIME
var (
	AllowedCertificateExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}
	AllowedCertificateMimeTypes  = []string{MimeImage, MimePDF}
)

// ContextUserKey gin 上下文中保存 JWT Claims 的键
const ContextUserKey = "user"
