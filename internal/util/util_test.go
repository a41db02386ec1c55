package util

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"placeprep_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"certificate.pdf", "certificate.pdf"},
		{"My Cert (1).PDF", "My_Cert_1.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\award.png`, "award.png"},
		{"...hidden.jpg", "hidden.jpg"},
		{"证书.jpeg", "file.jpeg"},
		{"archive.tar.gz", "archive.tar.gz"},
		{"", "file"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}

	long := strings.Repeat("a", 200) + ".png"
	assert.Equal(t, strings.Repeat("a", 80)+".png", SanitizeFilename(long))
}

func TestCertificateKey(t *testing.T) {
	at := time.Unix(1700000000, 0)
	assert.Equal(t, "certificates/7/1700000000_award.png", CertificateKey(7, at, "../award.png"))
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("a.PDF", AllowedCertificateExtensions))
	assert.True(t, HasAllowedExtension("a.jpeg", AllowedCertificateExtensions))
	assert.False(t, HasAllowedExtension("a.exe", AllowedCertificateExtensions))
	assert.False(t, HasAllowedExtension("pdf", AllowedCertificateExtensions))
}

func TestValidateMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")
	mime, err := ValidateMimeType(bytes.NewReader(pdf), AllowedCertificateMimeTypes)
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mime, err = ValidateMimeType(bytes.NewReader(png), AllowedCertificateMimeTypes)
	require.NoError(t, err)
	assert.True(t, IsImage(mime))

	_, err = ValidateMimeType(strings.NewReader("#!/bin/sh\necho hi\n"), AllowedCertificateMimeTypes)
	assert.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	user.ID = 42

	token, claims, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.InDelta(t, time.Hour.Seconds(), parsed.TTL(time.Now()).Seconds(), 5)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	user := &model.User{Email: "a@b.c"}
	token, _, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestParseUint(t *testing.T) {
	id, err := ParseUint("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = ParseUint("0")
	assert.Error(t, err)
	_, err = ParseUint("-3")
	assert.Error(t, err)
	_, err = ParseUint("abc")
	assert.Error(t, err)
}
