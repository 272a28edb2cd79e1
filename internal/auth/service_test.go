package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"CareerConnect/internal/access"
	"CareerConnect/internal/apperr"
	"CareerConnect/internal/config"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]*User{}}
}

func (m *memUsers) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) ListUsers(context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) UpdateUser(_ context.Context, id primitive.ObjectID, set bson.M) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if email, ok := set["email"].(string); ok {
		for other, existing := range m.users {
			if other != id && existing.Email == email {
				return nil, ErrEmailTaken
			}
		}
		u.Email = email
	}
	if name, ok := set["name"].(string); ok {
		u.Name = name
	}
	if phone, ok := set["phone"].(string); ok {
		u.Phone = phone
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetBlocked(_ context.Context, id primitive.ObjectID, blocked bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return false, nil
	}
	u.Blocked = blocked
	return true, nil
}

type recordingProfiles struct {
	inits map[primitive.ObjectID]access.Role
}

func (r *recordingProfiles) InitProfile(_ context.Context, id primitive.ObjectID, role access.Role) error {
	r.inits[id] = role
	return nil
}

type UserServiceSuite struct {
	suite.Suite

	users    *memUsers
	profiles *recordingProfiles
	tokens   *Tokens
	service  *UserService
}

func TestUserService(t *testing.T) {
	suite.Run(t, &UserServiceSuite{})
}

func (s *UserServiceSuite) SetupTest() {
	checker, err := access.NewChecker(zap.NewNop())
	s.Require().NoError(err)

	s.users = newMemUsers()
	s.profiles = &recordingProfiles{inits: map[primitive.ObjectID]access.Role{}}
	s.tokens = NewTokens(&config.AuthConfig{JWTKey: []byte("test-key"), TokenTTL: time.Hour})
	s.service = NewUserService(s.users, s.tokens, s.profiles, checker, zap.NewNop())
}

func (s *UserServiceSuite) register(email string, role access.Role) *User {
	user, err := s.service.RegisterUser(context.Background(), RegisterRequest{
		Name: "Test", Email: email, Password: "secret1", Role: string(role),
	})
	s.Require().NoError(err)
	return user
}

func (s *UserServiceSuite) TestRegisterCreatesProfile() {
	require := s.Require()

	user := s.register("  Ada@Example.com ", access.RoleStudent)
	require.Equal("ada@example.com", user.Email)
	require.Equal(access.RoleStudent, s.profiles.inits[user.ID])
	require.NotEqual("secret1", user.PasswordHash)
}

func (s *UserServiceSuite) TestRegisterRejectsDuplicateEmailAndAdminRole() {
	require := s.Require()
	s.register("ada@example.com", access.RoleStudent)

	_, err := s.service.RegisterUser(context.Background(), RegisterRequest{
		Name: "Ada", Email: "ADA@example.com", Password: "secret1", Role: "recruiter",
	})
	require.True(apperr.Is(err, apperr.KindValidation))

	_, err = s.service.RegisterUser(context.Background(), RegisterRequest{
		Name: "Eve", Email: "eve@example.com", Password: "secret1", Role: "admin",
	})
	require.True(apperr.Is(err, apperr.KindValidation))
}

func (s *UserServiceSuite) TestLoginIssuesVerifiableToken() {
	require := s.Require()
	user := s.register("ada@example.com", access.RoleRecruiter)

	resp, err := s.service.AuthenticateUser(context.Background(), Credential{Email: "ada@example.com", Password: "secret1"})
	require.NoError(err)

	claims, err := s.tokens.Validate(resp.Token)
	require.NoError(err)
	id, err := claims.Identity()
	require.NoError(err)
	require.Equal(user.ID, id.ID)
	require.Equal(access.RoleRecruiter, id.Role)

	_, err = s.service.AuthenticateUser(context.Background(), Credential{Email: "ada@example.com", Password: "wrong"})
	require.True(apperr.Is(err, apperr.KindUnauthorized))
}

func (s *UserServiceSuite) TestBlockedUserCannotLogin() {
	require := s.Require()
	user := s.register("ada@example.com", access.RoleStudent)
	admin := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleAdmin}

	require.NoError(s.service.BlockUser(context.Background(), admin, user.ID))

	_, err := s.service.AuthenticateUser(context.Background(), Credential{Email: "ada@example.com", Password: "secret1"})
	require.True(apperr.Is(err, apperr.KindUnauthorized))
}

func (s *UserServiceSuite) TestBlockRequiresAdmin() {
	require := s.Require()
	user := s.register("ada@example.com", access.RoleStudent)

	err := s.service.BlockUser(context.Background(), user.Identity(), user.ID)
	require.True(apperr.Is(err, apperr.KindForbidden))

	admin := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleAdmin}
	err = s.service.BlockUser(context.Background(), admin, primitive.NewObjectID())
	require.True(apperr.Is(err, apperr.KindNotFound))
}

func (s *UserServiceSuite) TestUpdateProfileByOwner() {
	require := s.Require()
	user := s.register("ada@example.com", access.RoleStudent)

	updated, err := s.service.UpdateProfile(context.Background(), user.Identity(), user.ID,
		UpdateUserRequest{Email: " Ada.L@Example.com", Phone: "555-0100"})
	require.NoError(err)
	require.Equal("Test", updated.Name)
	require.Equal("ada.l@example.com", updated.Email)
	require.Equal("555-0100", updated.Phone)

	resp, err := s.service.AuthenticateUser(context.Background(), Credential{Email: "ada.l@example.com", Password: "secret1"})
	require.NoError(err)
	require.Equal(user.ID, resp.User.ID)
}

func (s *UserServiceSuite) TestUpdateProfileRejectsOthersAndTakenEmail() {
	require := s.Require()
	ada := s.register("ada@example.com", access.RoleStudent)
	bob := s.register("bob@example.com", access.RoleRecruiter)

	_, err := s.service.UpdateProfile(context.Background(), bob.Identity(), ada.ID, UpdateUserRequest{Name: "Mallory"})
	require.True(apperr.Is(err, apperr.KindForbidden))
	stored, _ := s.users.FindByID(context.Background(), ada.ID)
	require.Equal("Test", stored.Name)

	admin := access.Identity{ID: primitive.NewObjectID(), Role: access.RoleAdmin}
	_, err = s.service.UpdateProfile(context.Background(), admin, ada.ID, UpdateUserRequest{Name: "Root"})
	require.True(apperr.Is(err, apperr.KindForbidden))

	_, err = s.service.UpdateProfile(context.Background(), ada.Identity(), ada.ID, UpdateUserRequest{Email: "bob@example.com"})
	require.True(apperr.Is(err, apperr.KindValidation))

	_, err = s.service.UpdateProfile(context.Background(), ada.Identity(), primitive.NewObjectID(), UpdateUserRequest{Name: "Ghost"})
	require.True(apperr.Is(err, apperr.KindNotFound))

	_, err = s.service.UpdateProfile(context.Background(), access.Identity{}, ada.ID, UpdateUserRequest{Name: "Anon"})
	require.True(apperr.Is(err, apperr.KindUnauthorized))
}

func (s *UserServiceSuite) TestEnsureAdminIsIdempotent() {
	require := s.Require()
	seed := &config.AdminSeed{Name: "Root", Email: "root@example.com", Password: "rootpass"}

	require.NoError(s.service.EnsureAdmin(context.Background(), seed))
	require.NoError(s.service.EnsureAdmin(context.Background(), seed))

	users, _ := s.users.ListUsers(context.Background())
	require.Len(users, 1)
	require.Equal(access.RoleAdmin, users[0].Role)
}

func TestTokensRejectForeignKey(t *testing.T) {
	user := &User{ID: primitive.NewObjectID(), Role: access.RoleStudent}
	issuer := NewTokens(&config.AuthConfig{JWTKey: []byte("a"), TokenTTL: time.Hour})
	verifier := NewTokens(&config.AuthConfig{JWTKey: []byte("b"), TokenTTL: time.Hour})

	token, err := issuer.Generate(user)
	require.NoError(t, err)
	_, err = verifier.Validate(token)
	require.Error(t, err)
}

func TestTokensRejectExpired(t *testing.T) {
	user := &User{ID: primitive.NewObjectID(), Role: access.RoleStudent}
	tokens := NewTokens(&config.AuthConfig{JWTKey: []byte("a"), TokenTTL: -time.Minute})

	token, err := tokens.Generate(user)
	require.NoError(t, err)
	_, err = tokens.Validate(token)
	require.Error(t, err)
}
