package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/config"
	"placeprep_backend/internal/model"
	"placeprep_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserStore 用户持久化接口，由 repository.UserRepository 实现
type UserStore interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Update(user *model.User) error
	TouchLogin(userID uint, at time.Time) error
}

type AuthService struct {
	UserRepo UserStore
	Tokens   TokenStore
	Catalog  *catalog.Catalog
	Cfg      *config.Config
}

func NewAuthService(userRepo UserStore, tokens TokenStore, cat *catalog.Catalog, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Catalog:  cat,
		Cfg:      cfg,
	}
}

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Branch         string
	GraduationYear int
	College        string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(in RegisterInput) (*model.User, error) {
	branch := strings.ToUpper(strings.TrimSpace(in.Branch))
	if !s.Catalog.HasBranch(branch) {
		return nil, util.ErrUnknownBranch
	}

	email := normalizeEmail(in.Email)
	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:           strings.TrimSpace(in.Name),
		Email:          email,
		Password:       string(hashedPassword),
		Role:           model.Student,
		Branch:         branch,
		GraduationYear: in.GraduationYear,
		College:        strings.TrimSpace(in.College),
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 校验密码并签发令牌
func (s *AuthService) Login(email, password string) (string, *model.User, error) {
	user, err := s.UserRepo.FindByEmail(normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, util.ErrInvalidCredentials
	}
	if user.Disabled {
		return "", nil, util.ErrAccountDisabled
	}

	token, _, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.UserRepo.TouchLogin(user.ID, now); err == nil {
		user.LastLogin = &now
		user.LastSeen = &now
	}
	return token, user, nil
}

// Logout 将令牌的 jti 加入黑名单直到过期
func (s *AuthService) Logout(ctx context.Context, claims *util.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	return s.Tokens.Revoke(ctx, claims.ID, claims.TTL(time.Now()))
}

func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.Tokens.IsRevoked(ctx, jti)
}

func (s *AuthService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

// ProfileInput 为空的字段保持不变
type ProfileInput struct {
	Name            string
	Branch          string
	GraduationYear  int
	College         string
	CurrentPassword string
	NewPassword     string
}

func (s *AuthService) UpdateProfile(userID uint, in ProfileInput) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if in.Branch != "" {
		branch := strings.ToUpper(strings.TrimSpace(in.Branch))
		if !s.Catalog.HasBranch(branch) {
			return nil, util.ErrUnknownBranch
		}
		user.Branch = branch
	}
	if in.GraduationYear != 0 {
		user.GraduationYear = in.GraduationYear
	}
	if college := strings.TrimSpace(in.College); college != "" {
		user.College = college
	}

	if in.NewPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)); err != nil {
			return nil, util.ErrWrongPassword
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashed)
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}
