package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/storage/memory"
)

const strongPassword = "Sunny#Day42"

func newAccounts(t *testing.T) (*app.AccountService, *memory.Store, *recordingNotifier, *app.Dispatcher) {
	t.Helper()
	store := memory.New()
	n := &recordingNotifier{}
	d := app.NewDispatcher(n, time.Second)
	return app.NewAccountService(store, d, "http://localhost:5173/", time.Hour), store, n, d
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := map[string]bool{
		strongPassword: true,
		"Sh0rt!":       false,
		"alllower1!":   false,
		"ALLUPPER1!":   false,
		"NoDigits!!":   false,
		"NoSpecial12":  false,
	}
	for pw, ok := range cases {
		err := app.CheckPasswordPolicy(pw)
		if (err == nil) != ok {
			t.Fatalf("%q: ok=%v err=%v", pw, ok, err)
		}
		if err != nil && domain.Code(err) != "WeakPassword" {
			t.Fatalf("%q: want WeakPassword code, got %q", pw, domain.Code(err))
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, _, _ := newAccounts(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, app.Registration{Email: " Ana@Example.com ", Password: strongPassword, FirstName: "Ana", LastName: "Lima"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ana@example.com" || u.PasswordHash == strongPassword {
		t.Fatalf("unexpected user: %+v", u)
	}
	stored, _ := store.GetUser(ctx, u.ID)
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(strongPassword)) != nil {
		t.Fatal("stored credential is not a bcrypt hash of the password")
	}

	if _, err := svc.Register(ctx, app.Registration{Email: "ana@example.com", Password: strongPassword}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, app.Registration{Email: "bob@example.com", Password: "weak"}); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("want precondition, got %v", err)
	}

	if got, err := svc.Login(ctx, "ANA@example.com", strongPassword); err != nil || got.ID != u.ID {
		t.Fatalf("Login: %+v %v", got, err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "Wrong#Pass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", strongPassword); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: want ErrInvalidCredentials, got %v", err)
	}
}

// policyPassingHash returns a bcrypt hash of plain that also satisfies the
// password policy, so it reaches the hashing step.
func policyPassingHash(t *testing.T, plain string) string {
	t.Helper()
	for i := 0; i < 20; i++ {
		h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("bcrypt: %v", err)
		}
		if app.CheckPasswordPolicy(string(h)) == nil {
			return string(h)
		}
	}
	t.Fatal("no policy-passing hash generated")
	return ""
}

func TestRegister_HashShapedPasswordIsHashedAgain(t *testing.T) {
	svc, store, _, _ := newAccounts(t)
	ctx := context.Background()
	supplied := policyPassingHash(t, "a")

	u, err := svc.Register(ctx, app.Registration{Email: "eve@example.com", Password: supplied})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	stored, _ := store.GetUser(ctx, u.ID)
	if stored.PasswordHash == supplied {
		t.Fatal("client-supplied hash stored verbatim")
	}
	if _, err := svc.Login(ctx, "eve@example.com", "a"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("login with the hash's plaintext: want ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "eve@example.com", supplied); err != nil {
		t.Fatalf("login with the literal password: %v", err)
	}
}

func TestResetPassword_HashShapedPasswordIsHashedAgain(t *testing.T) {
	svc, store, _, _ := newAccounts(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, app.Registration{Email: "eve@example.com", Password: strongPassword})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "eve@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	stored, _ := store.GetUser(ctx, u.ID)
	supplied := policyPassingHash(t, "a")

	if err := svc.ResetPassword(ctx, *stored.ResetPasswordToken, supplied, supplied); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, err := svc.Login(ctx, "eve@example.com", "a"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("login with the hash's plaintext: want ErrInvalidCredentials, got %v", err)
	}
}

func TestEnsureAdmin_CreatesThenPromotes(t *testing.T) {
	svc, store, _, _ := newAccounts(t)
	ctx := context.Background()

	u, created, err := svc.EnsureAdmin(ctx, app.Registration{Email: "root@example.com", Password: "admin-secret"})
	if err != nil || !created || !u.IsAdmin {
		t.Fatalf("EnsureAdmin create: %+v created=%v err=%v", u, created, err)
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("rotated"), bcrypt.MinCost)
	u2, created, err := svc.EnsureAdmin(ctx, app.Registration{Email: "root@example.com", Password: string(hash)})
	if err != nil || created || u2.ID != u.ID {
		t.Fatalf("EnsureAdmin update: %+v created=%v err=%v", u2, created, err)
	}
	stored, _ := store.GetUser(ctx, u.ID)
	if stored.PasswordHash != string(hash) {
		t.Fatal("an existing bcrypt hash must be stored as is")
	}
}

func TestPasswordReset(t *testing.T) {
	svc, store, notifier, disp := newAccounts(t)
	ctx := context.Background()
	u, err := svc.Register(ctx, app.Registration{Email: "ana@example.com", Password: strongPassword, FirstName: "Ana"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "unknown@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if err := svc.RequestPasswordReset(ctx, "ana@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	stored, _ := store.GetUser(ctx, u.ID)
	if stored.ResetPasswordToken == nil || len(*stored.ResetPasswordToken) != 64 {
		t.Fatalf("want 64 hex char token, got %v", stored.ResetPasswordToken)
	}
	token := *stored.ResetPasswordToken

	sctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = disp.Shutdown(sctx)
	sent := notifier.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Body, "http://localhost:5173/reset-password/"+token) {
		t.Fatalf("unexpected reset email: %+v", sent)
	}

	if err := svc.ValidateResetToken(ctx, token); err != nil {
		t.Fatalf("ValidateResetToken: %v", err)
	}
	if err := svc.ValidateResetToken(ctx, "bogus"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("want ErrInvalidResetToken, got %v", err)
	}
	if err := svc.ResetPassword(ctx, token, "New#Secret9", "Different#9"); !errors.Is(err, domain.ErrPrecondition) {
		t.Fatalf("mismatched confirmation: want precondition, got %v", err)
	}
	if err := svc.ResetPassword(ctx, token, "New#Secret9", "New#Secret9"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := svc.ValidateResetToken(ctx, token); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("token must be single use, got %v", err)
	}
	if _, err := svc.Login(ctx, "ana@example.com", "New#Secret9"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
