package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail_Accepts(t *testing.T) {
	cases := map[string]string{
		"a@b.co":                      "a@b.co",
		"User@Example.com":            "user@example.com",
		"first.last@mail.example.org": "first.last@mail.example.org",
		"x_y-z@sub-domain.io":         "x_y-z@sub-domain.io",
		"ALICE_01@HELPDESK.DEV":       "alice_01@helpdesk.dev",
	}
	for in, want := range cases {
		got, err := ValidateEmail(in)
		if err != nil {
			t.Errorf("ValidateEmail(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ValidateEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateEmail_Rejects(t *testing.T) {
	cases := []struct {
		name  string
		email string
		want  string
	}{
		{"missing at", "user.example.com", "exactly one @"},
		{"two ats", "a@b@c.com", "exactly one @"},
		{"empty local", "@example.com", "local part must not be empty"},
		{"leading dot", ".user@example.com", "must not start with a dot"},
		{"trailing dot local", "user.@example.com", "local part must not end with a dot"},
		{"double dot local", "us..er@example.com", "local part must not contain consecutive dots"},
		{"empty domain", "user@", "domain must not be empty"},
		{"domain leading hyphen", "user@-example.com", "must not start with a dot or hyphen"},
		{"domain trailing dot", "user@example.com.", "domain must not end with a dot"},
		{"double dot domain", "user@example..com", "domain must not contain consecutive dots"},
		{"comma in domain", "user@exam,ple.com", "must not contain commas"},
		{"embedded space", "us er@example.com", "must not contain spaces"},
		{"no dot in domain", "user@localhost", "must contain a dot"},
		{"trailing hyphen in domain", "user@example-.com", "must not start or end with a hyphen"},
		{"one char tld", "user@example.c", "at least 2 characters"},
		{"bad charset", "us+er@example.com", "invalid characters"},
		{"numeric tld", "user@example.c0m", "invalid characters"},
		{"too long", strings.Repeat("a", 64) + "@" + strings.Repeat("b", 186) + ".com", "at most 254"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateEmail(tc.email)
			if err == nil {
				t.Fatalf("expected %q to be rejected", tc.email)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != "email" {
				t.Fatalf("expected email ValidationError, got %#v", err)
			}
			if !strings.Contains(ve.Message, tc.want) {
				t.Fatalf("expected message containing %q, got %q", tc.want, ve.Message)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "alice_01", "A1_b2_C3", "12345678901234567890"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) unexpected error: %v", u, err)
		}
	}

	invalidNames := map[string]string{
		"ab":                    "between 3 and 20",
		"abcdefghijklmnopqrstu": "between 3 and 20",
		"a__b":                  "consecutive underscores",
		"_abc":                  "start or end with an underscore",
		"abc_":                  "start or end with an underscore",
		"ab-c":                  "letters, digits and underscores",
		"ab c":                  "letters, digits and underscores",
	}
	for u, want := range invalidNames {
		err := ValidateUsername(u)
		if err == nil {
			t.Errorf("ValidateUsername(%q) expected error", u)
			continue
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("ValidateUsername(%q) = %q, want message containing %q", u, err, want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("Passw0rd"); err != nil {
		t.Fatalf("Passw0rd should be accepted: %v", err)
	}
	if err := ValidatePassword(strings.Repeat("A", 70) + "a1"); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}

	cases := map[string]string{
		"password":                     "uppercase",
		"Pass0":                        "at least 8",
		strings.Repeat("A", 71) + "a1": "at most 72",
		"PASSWORD1":                    "lowercase",
		"Password":                     "digit",
		"passw0rd":                     "uppercase",
	}
	for pw, want := range cases {
		err := ValidatePassword(pw)
		if err == nil {
			t.Errorf("ValidatePassword(%q) expected error", pw)
			continue
		}
		if !strings.Contains(err.Error(), want) {
			t.Errorf("ValidatePassword(%q) = %q, want message containing %q", pw, err, want)
		}
	}
}

func TestValidateRegistration_FailsFastInOrder(t *testing.T) {
	_, err := ValidateRegistration(Registration{Email: "bad", Username: "_x", Password: "short"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "email" {
		t.Fatalf("expected email to fail first, got %v", err)
	}

	_, err = ValidateRegistration(Registration{Email: "a@b.co", Username: "_x", Password: "short"})
	if !errors.As(err, &ve) || ve.Field != "username" {
		t.Fatalf("expected username to fail second, got %v", err)
	}

	_, err = ValidateRegistration(Registration{Email: "a@b.co", Username: "alice_01", Password: "short"})
	if !errors.As(err, &ve) || ve.Field != "password" {
		t.Fatalf("expected password to fail last, got %v", err)
	}

	email, err := ValidateRegistration(Registration{Email: "A@B.CO", Username: "alice_01", Password: "Passw0rd1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "a@b.co" {
		t.Fatalf("expected normalized email, got %q", email)
	}
}
