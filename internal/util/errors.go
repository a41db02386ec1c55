package util

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailRegistered     = errors.New("email is already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account is disabled")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrTokenRevoked        = errors.New("token has been revoked")
	ErrUnknownBranch       = errors.New("unknown branch")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrUnknownTopic        = errors.New("unknown topic")
	ErrUnknownSubtopic     = errors.New("unknown subtopic for topic")
	ErrQuizNotFound        = errors.New("no active quiz with this id")
	ErrQuizExpired         = errors.New("quiz has expired")
	ErrAnswerCount         = errors.New("more answers than questions")
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrFileTooLarge        = errors.New("file is too large")
	ErrUnsupportedFile     = errors.New("unsupported file type")
)
