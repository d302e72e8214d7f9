package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/pkg/auth"
	"github.com/satyampathakk/BOOKADATE/services/user-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/user-service/internal/repository"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

type SignupInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
	Bio      string `json:"bio"`
}

type UserSvc struct {
	repo     *repository.UserRepo
	tokenTTL time.Duration
}

func NewUserSvc(r *repository.UserRepo, tokenTTL time.Duration) *UserSvc {
	return &UserSvc{repo: r, tokenTTL: tokenTTL}
}

func (s *UserSvc) Signup(ctx context.Context, in SignupInput) (*domain.User, string, error) {
	email := strings.ToLower(in.Email)
	if _, err := s.repo.ByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         in.Name,
		Age:          in.Age,
		Gender:       in.Gender,
		Bio:          in.Bio,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}
	token, err := auth.CreateAccessToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserSvc) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	u, err := s.repo.ByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	token, err := auth.CreateAccessToken(u.ID, u.Email, s.tokenTTL)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserSvc) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.ByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *UserSvc) Update(ctx context.Context, id, name, bio string, age int) (*domain.User, error) {
	fields := map[string]any{}
	if name != "" {
		fields["name"] = name
	}
	if bio != "" {
		fields["bio"] = bio
	}
	if age > 0 {
		fields["age"] = age
	}
	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}
	u, err := s.repo.UpdateFields(ctx, id, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *UserSvc) List(ctx context.Context, page, size int, query string) ([]domain.User, int64, error) {
	return s.repo.List(ctx, page, size, query)
}
