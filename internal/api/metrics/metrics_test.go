package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/autoresolve/helpdesk-accounts/internal/core/domain"
)

func TestResult(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{fmt.Errorf("email: %w", domain.ErrValidation), "invalid"},
		{domain.ErrDuplicateEmail, "duplicate"},
		{domain.ErrInvalidCredentials, "invalid_credentials"},
		{domain.ErrInactiveUser, "inactive"},
		{domain.ErrTooManyAttempts, "throttled"},
		{domain.ErrTokenExpired, "unauthorized"},
		{errors.New("boom"), "error"},
	}
	for _, tc := range cases {
		if got := Result(tc.err); got != tc.want {
			t.Fatalf("Result(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestTokenResult(t *testing.T) {
	if TokenResult(nil) != "valid" || TokenResult(domain.ErrTokenExpired) != "expired" || TokenResult(domain.ErrInvalidToken) != "invalid" {
		t.Fatalf("unexpected token classification")
	}
}

type fakeHasher struct{ calls int }

func (f *fakeHasher) Hash(p string) (string, error) { f.calls++; return "h:" + p, nil }
func (f *fakeHasher) Verify(p, d string) bool        { f.calls++; return d == "h:"+p }
func (f *fakeHasher) VerifyDummy(string)             { f.calls++ }

func TestInstrumentHasher(t *testing.T) {
	before := testutil.CollectAndCount(PasswordHashDuration)

	inner := &fakeHasher{}
	h := InstrumentHasher(inner)
	d, _ := h.Hash("pw")
	if !h.Verify("pw", d) {
		t.Fatalf("expected wrapped verify to pass through")
	}
	h.VerifyDummy("pw")

	if inner.calls != 3 {
		t.Fatalf("expected 3 delegated calls, got %d", inner.calls)
	}
	if after := testutil.CollectAndCount(PasswordHashDuration); after < before || after == 0 {
		t.Fatalf("expected histogram series to be recorded, got %d", after)
	}
}
