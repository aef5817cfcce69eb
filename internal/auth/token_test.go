package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ayush/task-manager/backend/internal/apperr"
	"github.com/ayush/task-manager/backend/internal/models"
)

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("dev-secret", AudienceTeam, 0)
	want := Principal{ID: "65f0c0ffee", Role: models.RoleAdmin, Email: "a@b.co"}

	tok, err := iss.Issue(want)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	got, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != want {
		t.Fatalf("Verify = %+v, want %+v", got, want)
	}
}

func TestIssuer_NoExpiryByDefault(t *testing.T) {
	iss := NewIssuer("dev-secret", AudienceTasks, 0)
	tok, err := iss.Issue(Principal{ID: "u1", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(10 * 365 * 24 * time.Hour) }
	if _, err := iss.Verify(tok); err != nil {
		t.Fatalf("token without ttl should stay valid: %v", err)
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("dev-secret", AudienceTasks, time.Hour)
	tok, _ := iss.Issue(Principal{ID: "u1", Role: models.RoleUser})

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err := iss.Verify(tok)
	if !apperr.Is(err, apperr.Forbidden) {
		t.Fatalf("err = %v, want Forbidden", err)
	}
	if apperr.Message(err) != "token expired" {
		t.Fatalf("message = %q", apperr.Message(err))
	}
}

func TestIssuer_RejectsInvalid(t *testing.T) {
	iss := NewIssuer("dev-secret", AudienceTeam, 0)
	good, _ := iss.Issue(Principal{ID: "u1", Role: models.RoleUser})

	otherSecret, _ := NewIssuer("other", AudienceTeam, 0).Issue(Principal{ID: "u1", Role: models.RoleUser})
	otherAudience, _ := NewIssuer("dev-secret", AudienceTasks, 0).Issue(Principal{ID: "u1", Role: models.RoleUser})

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{AudienceTeam}},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	noRole, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Audience: jwt.ClaimStrings{AudienceTeam}},
	}).SignedString([]byte("dev-secret"))

	cases := map[string]string{
		"garbage":        "not-a-jwt",
		"other secret":   otherSecret,
		"other audience": otherAudience,
		"tampered":       tampered,
		"alg none":       none,
		"missing role":   noRole,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := iss.Verify(tok); !apperr.Is(err, apperr.Forbidden) {
				t.Fatalf("err = %v, want Forbidden", err)
			}
		})
	}
}

func TestIssuer_SecretUnset(t *testing.T) {
	iss := NewIssuer("", AudienceTeam, 0)
	if _, err := iss.Issue(Principal{ID: "u1", Role: models.RoleUser}); !apperr.Is(err, apperr.Misconfigured) {
		t.Fatalf("Issue err = %v, want Misconfigured", err)
	}
	if _, err := iss.Verify("a.b.c"); !apperr.Is(err, apperr.Misconfigured) {
		t.Fatalf("Verify err = %v, want Misconfigured", err)
	}
}
