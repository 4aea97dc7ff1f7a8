package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/specboard/syncd/internal/crypto"
	"github.com/specboard/syncd/internal/errs"
	"github.com/specboard/syncd/internal/model"
)

type fakeLimiter struct {
	allow    bool
	allowErr error

	failBlocked bool
	failures    int
	successes   int
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	return f.allow, 0, f.allowErr
}
func (f *fakeLimiter) Success(_ context.Context, _ string, _ []byte) error {
	f.successes++
	return nil
}
func (f *fakeLimiter) Failure(_ context.Context, _ string, _ []byte) (bool, time.Duration, error) {
	f.failures++
	return f.failBlocked, 0, nil
}

var signKey = []byte("test-signing-key")

func newAuth(users *fakeUserRepo, lim *fakeLimiter) *AuthServiceImpl {
	return NewAuthService(users, signKey, time.Hour, lim)
}

func testUser(t *testing.T, password string) *model.User {
	t.Helper()
	salt, err := pkgcrypto.NewSalt()
	if err != nil {
		t.Fatalf("salt: %v", err)
	}
	return &model.User{
		ID:       uuid.Must(uuid.NewV4()),
		Username: "alice",
		PwdHash:  pkgcrypto.HashPassword([]byte(password), salt),
		SaltAuth: salt,
	}
}

func TestAuth_Register_Validation(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUserRepo{}, &fakeLimiter{allow: true})
	ctx := context.Background()

	if _, err := s.Register(ctx, "", "longenough", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("empty username: %v", err)
	}
	if _, err := s.Register(ctx, "alice", "short", ""); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("short password: %v", err)
	}
}

func TestAuth_Register_HashesPassword(t *testing.T) {
	t.Parallel()
	users := &fakeUserRepo{}
	s := newAuth(users, &fakeLimiter{allow: true})

	id, err := s.Register(context.Background(), "alice", "p@ssw0rd!", "Alice")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if id == uuid.Nil || users.created == nil {
		t.Fatalf("user not created")
	}
	if string(users.created.PwdHash) == "p@ssw0rd!" || len(users.created.PwdHash) == 0 {
		t.Fatalf("password stored unhashed")
	}
	if !pkgcrypto.VerifyPassword([]byte("p@ssw0rd!"), users.created.SaltAuth, users.created.PwdHash) {
		t.Fatalf("stored hash does not verify")
	}
}

func TestAuth_Register_UsernameTaken(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUserRepo{createErr: errs.ErrAlreadyExists}, &fakeLimiter{allow: true})

	if _, err := s.Register(context.Background(), "alice", "p@ssw0rd!", ""); !errors.Is(err, errs.ErrAlreadyExists) {
		t.Fatalf("want already exists, got %v", err)
	}
}

func TestAuth_Login_OK_TokenRoundTrips(t *testing.T) {
	t.Parallel()
	u := testUser(t, "p@ssw0rd!")
	lim := &fakeLimiter{allow: true}
	s := newAuth(&fakeUserRepo{byName: u}, lim)

	tokens, got, err := s.Login(context.Background(), "alice", "p@ssw0rd!", "1.2.3.4:5")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || tokens.AccessToken == "" {
		t.Fatalf("login result: %+v", got)
	}
	if lim.successes != 1 {
		t.Fatalf("limiter not reset")
	}

	uid, err := ParseToken(signKey, tokens.AccessToken)
	if err != nil || uid != u.ID {
		t.Fatalf("token round trip: uid=%v err=%v", uid, err)
	}
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	t.Parallel()
	u := testUser(t, "p@ssw0rd!")
	lim := &fakeLimiter{allow: true}
	s := newAuth(&fakeUserRepo{byName: u}, lim)

	_, _, err := s.Login(context.Background(), "alice", "nope-nope", "1.2.3.4:5")
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
	if lim.failures != 1 {
		t.Fatalf("failure not recorded")
	}
}

func TestAuth_Login_UnknownUserMasked(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUserRepo{byNameErr: errs.ErrNotFound}, &fakeLimiter{allow: true})

	_, _, err := s.Login(context.Background(), "ghost", "whatever1", "1.2.3.4:5")
	if !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("unknown user must look like bad password, got %v", err)
	}
}

func TestAuth_Login_RateLimited(t *testing.T) {
	t.Parallel()
	s := newAuth(&fakeUserRepo{}, &fakeLimiter{allow: false})

	_, _, err := s.Login(context.Background(), "alice", "p@ssw0rd!", "1.2.3.4:5")
	if !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want rate limited, got %v", err)
	}
}

func TestAuth_Login_BlockedOnThresholdFailure(t *testing.T) {
	t.Parallel()
	u := testUser(t, "p@ssw0rd!")
	s := newAuth(&fakeUserRepo{byName: u}, &fakeLimiter{allow: true, failBlocked: true})

	_, _, err := s.Login(context.Background(), "alice", "wrong-wrong", "1.2.3.4:5")
	if !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("want rate limited at threshold, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	t.Parallel()
	if _, err := ParseToken(signKey, "not-a-token"); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized, got %v", err)
	}
}

func TestParseToken_WrongKey(t *testing.T) {
	t.Parallel()
	u := testUser(t, "p@ssw0rd!")
	s := newAuth(&fakeUserRepo{byName: u}, &fakeLimiter{allow: true})

	tokens, _, err := s.Login(context.Background(), "alice", "p@ssw0rd!", "1.2.3.4:5")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := ParseToken([]byte("other-key"), tokens.AccessToken); !errors.Is(err, errs.ErrUnauthorized) {
		t.Fatalf("want unauthorized with wrong key, got %v", err)
	}
}
