package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumakit/lights-core/internal/validate"
)

func testService(store UserStore) *CredentialService {
	return NewCredentialService(CredentialServiceDeps{
		Store:  store,
		Hasher: NewHasher(testHasherConfig()),
		Tokens: testTokenIssuer(),
		Logger: discardLogger(),
	})
}

func TestCredentialService_SetAndVerifyPassword(t *testing.T) {
	user := &User{ID: "usr-00000001", Username: "alice"}
	store := newMemoryStore(user)
	svc := testService(store)
	ctx := context.Background()

	if err := svc.SetPassword(ctx, user, "CorrectHorseBatteryStaple9"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}
	if user.PasswordHash == "" {
		t.Fatal("SetPassword() should assign a hash to the user record")
	}

	if err := svc.VerifyPassword(ctx, user, "CorrectHorseBatteryStaple9"); err != nil {
		t.Errorf("VerifyPassword() error = %v, want nil", err)
	}

	err := svc.VerifyPassword(ctx, user, "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("VerifyPassword(wrong) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestCredentialService_SetPasswordPolicy(t *testing.T) {
	user := &User{ID: "usr-00000001", Username: "alice"}
	svc := testService(newMemoryStore(user))
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"too short", strings.Repeat("a", MinPasswordLength-1), true},
		{"exactly min", strings.Repeat("a", MinPasswordLength), false},
		{"exactly max", strings.Repeat("a", MaxPasswordLength), false},
		{"too long", strings.Repeat("a", MaxPasswordLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetPassword(ctx, user, tt.password)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrPasswordPolicy) {
					t.Errorf("error should wrap ErrPasswordPolicy, got %v", err)
				}
				if !errors.Is(err, validate.ErrValidation) {
					t.Errorf("error should wrap validate.ErrValidation, got %v", err)
				}
			}
		})
	}
}

func TestCredentialService_BreachedPasswordRejected(t *testing.T) {
	const password = "SummerHoliday2019Beach"
	_, suffix := digestParts(password)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "%s:1337\r\n", suffix)
	}))
	defer srv.Close()

	user := &User{ID: "usr-00000001", Username: "alice"}
	store := newMemoryStore(user)
	svc := NewCredentialService(CredentialServiceDeps{
		Store:  store,
		Hasher: NewHasher(testHasherConfig()),
		Tokens: testTokenIssuer(),
		Breach: NewBreachChecker(srv.URL, time.Second, discardLogger()),
		Logger: discardLogger(),
	})

	err := svc.SetPassword(context.Background(), user, password)
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("SetPassword(breached) error = %v, want ErrPasswordPolicy", err)
	}
	var breach *BreachError
	if !errors.As(err, &breach) {
		t.Fatalf("error should carry *BreachError, got %v", err)
	}
	if breach.Count != 1337 {
		t.Errorf("breach count = %d, want 1337", breach.Count)
	}
}

func TestCredentialService_ShortPasswordSkipsBreachCheck(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
	}))
	defer srv.Close()

	user := &User{ID: "usr-00000001", Username: "alice"}
	svc := NewCredentialService(CredentialServiceDeps{
		Store:  newMemoryStore(user),
		Hasher: NewHasher(testHasherConfig()),
		Tokens: testTokenIssuer(),
		Breach: NewBreachChecker(srv.URL, time.Second, discardLogger()),
		Logger: discardLogger(),
	})

	err := svc.SetPassword(context.Background(), user, "short")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("SetPassword(short) error = %v, want ErrPasswordPolicy", err)
	}
	if hits != 0 {
		t.Errorf("breach service hit %d times for a too-short password, want 0", hits)
	}
}

func TestCredentialService_RehashOnVerify(t *testing.T) {
	ctx := context.Background()
	const password = "CorrectHorseBatteryStaple9"

	// Hash with outdated (weaker) parameters.
	oldHasher := NewHasher(HasherConfig{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
	oldHash, err := oldHasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	user := &User{ID: "usr-00000001", Username: "alice", PasswordHash: oldHash}
	store := newMemoryStore(user)

	currentHasher := NewHasher(HasherConfig{Time: 2, Memory: 16 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
	svc := NewCredentialService(CredentialServiceDeps{
		Store:  store,
		Hasher: currentHasher,
		Tokens: testTokenIssuer(),
		Logger: discardLogger(),
	})

	if !currentHasher.NeedsRehash(oldHash) {
		t.Fatal("precondition: old hash should need rehash")
	}

	if err := svc.VerifyPassword(ctx, user, password); err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}

	if user.PasswordHash == oldHash {
		t.Error("hash should have been replaced on verify")
	}
	if currentHasher.NeedsRehash(user.PasswordHash) {
		t.Error("replacement hash should use current parameters")
	}
	if store.updatePasswordCalls != 1 {
		t.Errorf("UpdatePassword calls = %d, want exactly 1", store.updatePasswordCalls)
	}

	stored, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if stored.PasswordHash != user.PasswordHash {
		t.Error("store should hold the rehashed value")
	}

	// A second verify must not rehash again.
	if err := svc.VerifyPassword(ctx, user, password); err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if store.updatePasswordCalls != 1 {
		t.Errorf("UpdatePassword calls after second verify = %d, want 1", store.updatePasswordCalls)
	}
}

func TestCredentialService_RehashPersistFailureDoesNotFailLogin(t *testing.T) {
	const password = "CorrectHorseBatteryStaple9"

	oldHasher := NewHasher(HasherConfig{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16})
	oldHash, err := oldHasher.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	user := &User{ID: "usr-00000001", Username: "alice", PasswordHash: oldHash}
	store := newMemoryStore(user)
	store.failUpdatePassword = errors.New("disk full")

	svc := NewCredentialService(CredentialServiceDeps{
		Store:  store,
		Hasher: NewHasher(HasherConfig{Time: 2, Memory: 16 * 1024, Threads: 1, KeyLength: 32, SaltLength: 16}),
		Tokens: testTokenIssuer(),
		Logger: discardLogger(),
	})

	// Correct credentials were presented; the upgrade is best-effort.
	if err := svc.VerifyPassword(context.Background(), user, password); err != nil {
		t.Errorf("VerifyPassword() error = %v, want nil despite persist failure", err)
	}
}

func TestCredentialService_TokenRoundTrip(t *testing.T) {
	user := &User{ID: "usr-00000001", Username: "alice"}
	svc := testService(newMemoryStore(user))
	ctx := context.Background()

	for _, ttl := range []time.Duration{time.Second, 15 * time.Minute, 24 * time.Hour} {
		token, err := svc.IssueToken(user, ttl)
		if err != nil {
			t.Fatalf("IssueToken(ttl=%v) error = %v", ttl, err)
		}

		resolved, err := svc.ResolveToken(ctx, token)
		if err != nil {
			t.Fatalf("ResolveToken(ttl=%v) error = %v", ttl, err)
		}
		if resolved.ID != user.ID {
			t.Errorf("resolved user ID = %q, want %q", resolved.ID, user.ID)
		}
	}
}

func TestCredentialService_ResolveToken_InvalidToken(t *testing.T) {
	svc := testService(newMemoryStore())

	_, err := svc.ResolveToken(context.Background(), "not-a-token")
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("ResolveToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestCredentialService_ResolveToken_DeletedSubject(t *testing.T) {
	user := &User{ID: "usr-00000001", Username: "alice"}
	svc := testService(newMemoryStore()) // store does not contain the user

	token, err := svc.IssueToken(user, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}

	// Valid token, vanished subject: not-found, not invalid-token.
	_, err = svc.ResolveToken(context.Background(), token)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("ResolveToken() error = %v, want ErrUserNotFound", err)
	}
	if errors.Is(err, ErrTokenInvalid) {
		t.Errorf("deleted subject must not report ErrTokenInvalid, got %v", err)
	}
}

func TestCredentialService_ValidateUsername(t *testing.T) {
	svc := testService(newMemoryStore())
	ctx := context.Background()

	tests := []struct {
		username string
		wantErr  bool
	}{
		{"valid-name_1", false},
		{"user.name", false},
		{"abc", false},
		{"invalid name", true},
		{"bad!name", true},
		{"ab", true},
		{strings.Repeat("a", MaxUsernameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			err := svc.ValidateUsername(ctx, tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestCredentialService_EndToEnd(t *testing.T) {
	ctx := context.Background()

	user := &User{ID: "usr-00000001", Username: "alice"}
	store := newMemoryStore(user)
	svc := testService(store)

	if err := svc.SetPassword(ctx, user, "CorrectHorseBatteryStaple9"); err != nil {
		t.Fatalf("SetPassword() error = %v", err)
	}

	if err := svc.VerifyPassword(ctx, user, "CorrectHorseBatteryStaple9"); err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}

	if err := svc.VerifyPassword(ctx, user, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("VerifyPassword(wrong) error = %v, want ErrInvalidCredentials", err)
	}

	token, err := svc.IssueToken(user, 15*time.Minute)
	if err != nil {
		t.Fatalf("IssueToken() error = %v", err)
	}
	resolved, err := svc.ResolveToken(ctx, token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("resolved ID = %q, want %q", resolved.ID, user.ID)
	}
}
