package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/auth"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

type memUserRepo struct {
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

var _ repository.UserRepository = (*memUserRepo)(nil)

func (r *memUserRepo) Create(ctx context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) ToggleAdmin(ctx context.Context, id string) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	user.IsAdmin = !user.IsAdmin
	return user, nil
}

func newTestUserService() (*UserService, *memUserRepo) {
	repo := newMemUserRepo()
	return NewUserService(repo, auth.NewManager("test-secret", time.Hour)), repo
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "a-strong-password",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.PasswordHash == "a-strong-password" {
		t.Fatal("Password must not be stored in clear")
	}

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "marta",
		Password: "a-strong-password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Error("Expected a token")
	}
	if resp.User.ID != user.ID {
		t.Errorf("Expected user %s, got %s", user.ID, resp.User.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestUserService()

	if _, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "a-strong-password",
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "marta",
		Password: "wrong",
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newTestUserService()

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "nobody",
		Password: "whatever",
	})
	if !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestLogin_InactiveUser(t *testing.T) {
	svc, repo := newTestUserService()

	user, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "a-strong-password",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	repo.users[user.ID].Active = false

	if _, err := svc.Login(context.Background(), &models.LoginRequest{
		Username: "marta",
		Password: "a-strong-password",
	}); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	svc, _ := newTestUserService()

	req := &models.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "a-strong-password",
	}
	if _, err := svc.CreateUser(context.Background(), req); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), req); !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateUser_Validation(t *testing.T) {
	svc, _ := newTestUserService()

	tests := []struct {
		name string
		req  models.CreateUserRequest
	}{
		{name: "short username", req: models.CreateUserRequest{Username: "ab", Email: "a@example.com", Password: "longenough"}},
		{name: "bad email", req: models.CreateUserRequest{Username: "marta", Email: "nope", Password: "longenough"}},
		{name: "short password", req: models.CreateUserRequest{Username: "marta", Email: "a@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateUser(context.Background(), &tt.req); !apperrors.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestToggleAdmin_SelfRejected(t *testing.T) {
	svc, _ := newTestUserService()

	user, err := svc.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "marta",
		Email:    "marta@example.com",
		Password: "a-strong-password",
		IsAdmin:  true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if _, err := svc.ToggleAdmin(context.Background(), user.ID, user.ID); !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	toggled, err := svc.ToggleAdmin(context.Background(), user.ID, "someone-else")
	if err != nil {
		t.Fatalf("ToggleAdmin: %v", err)
	}
	if toggled.IsAdmin {
		t.Error("Expected admin flag to be cleared")
	}
}
