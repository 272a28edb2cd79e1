package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, set bson.M) (*User, error)
	SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) (bool, error)
}

// ProfileInitializer creates the empty role profile that goes with a new account.
type ProfileInitializer interface {
	InitProfile(ctx context.Context, userID primitive.ObjectID, role access.Role) error
}

type UserService struct {
	repo     UserStore
	tokens   *Tokens
	profiles ProfileInitializer
	checker  *access.Checker
	logger   *zap.Logger
}

func NewUserService(repo UserStore, tokens *Tokens, profiles ProfileInitializer, checker *access.Checker, logger *zap.Logger) *UserService {
	return &UserService{repo: repo, tokens: tokens, profiles: profiles, checker: checker, logger: logger}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) RegisterUser(ctx context.Context, req RegisterRequest) (*User, error) {
	role := access.Role(req.Role)
	if role != access.RoleStudent && role != access.RoleRecruiter {
		return nil, apperr.Validation("Role must be student or recruiter")
	}
	email := normalizeEmail(req.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		return nil, apperr.Validation("Email already registered")
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hashPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Validation("Email already registered")
		}
		return nil, apperr.Internal(err)
	}
	if err := s.profiles.InitProfile(ctx, user.ID, role); err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("role", string(role)))
	return user, nil
}

func (s *UserService) AuthenticateUser(ctx context.Context, cred Credential) (*LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(cred.Email))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !CheckPasswordHash(cred.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid Credentials")
	}
	if user.Blocked {
		return nil, apperr.Unauthorized("Account is blocked")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{Token: token, User: user}, nil
}

func (s *UserService) Me(ctx context.Context, caller access.Identity) (*User, error) {
	if err := s.checker.Require(caller, access.ObjUser, access.ActRead); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, caller.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// UpdateProfile lets a user change their own name, email and phone. Empty fields are kept.
func (s *UserService) UpdateProfile(ctx context.Context, caller access.Identity, id primitive.ObjectID, req UpdateUserRequest) (*User, error) {
	if caller.Anonymous() {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	if err := s.checker.Require(caller, access.ObjUser, access.ActUpdate, access.Owns(user.ID)); err != nil {
		return nil, err
	}

	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if email := normalizeEmail(req.Email); email != "" && email != user.Email {
		set["email"] = email
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		set["phone"] = phone
	}
	if len(set) == 0 {
		return user, nil
	}

	updated, err := s.repo.UpdateUser(ctx, id, set)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Validation("Email already registered")
		}
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		return nil, apperr.NotFound("User not found")
	}
	s.logger.Info("user profile updated", zap.String("user_id", id.Hex()))
	return updated, nil
}

func (s *UserService) ListUsers(ctx context.Context, caller access.Identity) ([]*User, error) {
	if err := s.checker.Require(caller, access.ObjUser, access.ActList); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

func (s *UserService) BlockUser(ctx context.Context, caller access.Identity, id primitive.ObjectID) error {
	if err := s.checker.Require(caller, access.ObjUser, access.ActBlock); err != nil {
		return err
	}
	if id == caller.ID {
		return apperr.Validation("Administrators cannot block themselves")
	}
	found, err := s.repo.SetBlocked(ctx, id, true)
	if err != nil {
		return apperr.Internal(err)
	}
	if !found {
		return apperr.NotFound("User not found")
	}
	s.logger.Info("user blocked", zap.String("user_id", id.Hex()), zap.String("by", caller.ID.Hex()))
	return nil
}

// EnsureAdmin creates the seeded administrator once. It does nothing when no seed is configured.
func (s *UserService) EnsureAdmin(ctx context.Context, seed *config.AdminSeed) error {
	if seed.Email == "" || seed.Password == "" {
		return nil
	}
	email := normalizeEmail(seed.Email)
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := HashPassword(seed.Password)
	if err != nil {
		return err
	}
	admin := &User{
		ID:           primitive.NewObjectID(),
		Name:         seed.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         access.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, admin); err != nil && !errors.Is(err, ErrEmailTaken) {
		return err
	}
	s.logger.Info("admin account seeded", zap.String("email", email))
	return nil
}
