package service

import (
	"context"
	"fmt"
	"strings"

	"inkpost/internal/models"
	"inkpost/internal/observability"
	"inkpost/internal/repository"
	"inkpost/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   repository.UserRepository
	bcryptCost int
	log        *observability.ServiceLogger
}

func NewUserService(userRepo repository.UserRepository, bcryptCost int) *UserService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		userRepo:   userRepo,
		bcryptCost: bcryptCost,
		log:        observability.NewServiceLogger("user"),
	}
}

// Submit decodes raw as a signUp or update intent and applies it. The returned
// mode names the branch that ran.
func (s *UserService) Submit(ctx context.Context, raw []byte) (*models.User, string, error) {
	in, err := validation.DecodeUser(raw)
	if err != nil {
		return nil, "", rejected(ctx, s.log, validation.SchemaUser, err)
	}
	var user *models.User
	switch u := in.(type) {
	case validation.SignUp:
		user, err = s.SignUp(ctx, u)
	case validation.UpdateProfile:
		user, err = s.UpdateProfile(ctx, u)
	default:
		err = models.NewValidationError("unsupported user mode")
	}
	if err != nil {
		return nil, in.Mode(), err
	}
	return user, in.Mode(), nil
}

// SignUp creates an account with a bcrypt-hashed password. Email addresses are
// compared case-insensitively.
func (s *UserService) SignUp(ctx context.Context, in validation.SignUp) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UserService.SignUp")
	defer func() { finish(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaUser, err)
	}
	s.adviseAge(ctx, in.Age)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, models.NewConflictError("email is already registered")
	case err != nil && !models.IsNotFound(err):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("hash password: %w", err))
	}

	user = &models.User{
		FullName: in.FullName,
		Age:      in.Age,
		Email:    email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user signed up", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// UpdateProfile rewrites the name and age of an existing user.
func (s *UserService) UpdateProfile(ctx context.Context, in validation.UpdateProfile) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "UserService.UpdateProfile")
	defer func() { finish(span, err) }()

	if err := in.Validate(); err != nil {
		return nil, rejected(ctx, s.log, validation.SchemaUser, err)
	}
	s.adviseAge(ctx, in.Age)

	user = &models.User{ID: in.ID, FullName: in.FullName, Age: in.Age}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) == nil
}

func (s *UserService) adviseAge(ctx context.Context, age int) {
	if msg, out := validation.AgeAdvisory(age); out {
		s.log.Warn(ctx, msg, map[string]interface{}{"age": age})
	}
}
