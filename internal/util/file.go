package util

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/", "application/pdf"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsImage 检测是否为图片
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

// HasAllowedExtension 扩展名大小写不敏感
func HasAllowedExtension(name string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

// SanitizeFilename 只保留 [A-Za-z0-9._-]，去掉路径与开头的点，扩展名转小写
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	rawExt := filepath.Ext(name)

	base := strings.Trim(keepSafe(strings.TrimSuffix(name, rawExt)), ".")
	if base == "" {
		base = "file"
	}
	if len(base) > 80 {
		base = base[:80]
	}

	ext := keepSafe(strings.ToLower(strings.TrimPrefix(rawExt, ".")))
	if ext == "" {
		return base
	}
	return base + "." + ext
}

func keepSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// CertificateKey 证书对象键：certificates/<userID>/<unix>_<name>
func CertificateKey(userID uint, at time.Time, original string) string {
	return fmt.Sprintf("certificates/%d/%d_%s", userID, at.Unix(), SanitizeFilename(original))
}
