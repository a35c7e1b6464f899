package auth

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &User{
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
		IsVerified:   true,
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create() should generate an ID")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Username != "alice" {
		t.Errorf("username = %q, want alice", got.Username)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Error("password hash should round-trip unchanged")
	}
	if got.IsAdmin {
		t.Error("is_admin should default to false")
	}
	if !got.IsVerified {
		t.Error("is_verified should be true")
	}

	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("GetByUsername ID = %q, want %q", byName.ID, user.ID)
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedTestUser(t, db, "alice")

	err := repo.Create(ctx, &User{Username: "alice", PasswordHash: "x"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Create(duplicate) error = %v, want ErrUsernameExists", err)
	}
	// Uniqueness violations are integrity errors, not validation errors.
	if !errors.Is(err, ErrDataIntegrity) {
		t.Errorf("Create(duplicate) should wrap ErrDataIntegrity, got %v", err)
	}
}

func TestUserRepository_GetMissing(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "usr-missing1"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByUsername(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice")

	if err := repo.UpdatePassword(ctx, user.ID, "new-hash-value"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.PasswordHash != "new-hash-value" {
		t.Errorf("password hash = %q, want new-hash-value", got.PasswordHash)
	}

	if err := repo.UpdatePassword(ctx, "usr-missing1", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UpdatePassword(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, "alice")
	user.IsAdmin = true

	if err := repo.Update(ctx, user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !got.IsAdmin {
		t.Error("is_admin should be true after update")
	}

	if err := repo.Update(ctx, &User{ID: "usr-missing1", Username: "ghost"}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_DeleteAndCount(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedTestUser(t, db, "alice")
	seedTestUser(t, db, "bob")

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}

	if err := repo.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "bob" {
		t.Errorf("List() after delete = %v, want only bob", users)
	}

	if err := repo.Delete(ctx, alice.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrUserNotFound", err)
	}
}

func TestUserRepository_ListEmpty(t *testing.T) {
	db := testDB(t)
	repo := NewUserRepository(db)

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil {
		t.Error("List() should return an empty slice, not nil")
	}
	if len(users) != 0 {
		t.Errorf("List() = %v, want empty", users)
	}
}
