package auth

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := CreateAccessToken("test-secret", "adm_1", "ops@partyondelivery.com", "Ops", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	claims, err := VerifyAccessToken(token, "test-secret")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.AdminID != "adm_1" || claims.Email != "ops@partyondelivery.com" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := CreateAccessToken("test-secret", "adm_1", "a@b.co", "", time.Hour)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := VerifyAccessToken(token, "other-secret"); err == nil {
		t.Fatal("expected verification error")
	}
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := CreateAccessToken("test-secret", "adm_1", "a@b.co", "", -time.Minute)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := VerifyAccessToken(token, "test-secret"); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseBearerToken(t *testing.T) {
	if got := ParseBearerToken("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Fatalf("got %q", got)
	}
	if got := ParseBearerToken("Basic abc"); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := ParseBearerToken(""); got != "" {
		t.Fatalf("got %q", got)
	}
}
