package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/emskit/emskit/internal/platform/httpx"
)

type memoryRepo struct {
	users  map[string]User
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (r *memoryRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memoryRepo) GetUser(ctx context.Context, id string) (User, error) {
	user, ok := r.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	return user, nil
}

func (r *memoryRepo) CreateUser(ctx context.Context, user User) (User, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return User{}, httpx.ErrDuplicate
		}
	}
	r.nextID++
	user.ID = string(rune('a' + r.nextID))
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryRepo) UpdateUser(ctx context.Context, id, name, roleID string, active bool) (User, error) {
	user, ok := r.users[id]
	if !ok {
		return User{}, httpx.ErrNotFound
	}
	user.Name = name
	user.RoleID = roleID
	user.Active = active
	r.users[id] = user
	return user, nil
}

func (r *memoryRepo) DeleteUser(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "Medic@Example.Org",
		Name:     "Medic",
		Password: "correct horse",
		Active:   true,
	})
	require.NoError(t, err)
	require.Equal(t, "medic@example.org", user.Email)
	require.NotEqual(t, "correct horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestCreateUserValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Name: "No Email", Password: "longenough"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "m@e.org", Name: "Short", Password: "short"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestActorView(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "medic@example.org",
		Name:     "Medic",
		Password: "correct horse",
		RoleID:   "r1",
		Active:   true,
	})
	require.NoError(t, err)

	actor, err := svc.Actor(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, actor.ID)
	require.Equal(t, "r1", actor.RoleID)
	require.True(t, actor.Active)

	_, err = svc.Actor(ctx, "ghost")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateUserClearsRoleAssignment(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, CreateUserInput{
		Email:    "medic@example.org",
		Name:     "Medic",
		Password: "correct horse",
		RoleID:   "r1",
		Active:   true,
	})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserInput{Name: "Medic", RoleID: "", Active: true})
	require.NoError(t, err)
	require.Empty(t, updated.RoleID)
}
