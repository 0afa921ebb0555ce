package jwt

import (
	"testing"

	"social_profile_server/pkg/constants"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", 5)
	token, err := GenerateAccessToken("U100")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "U100" || claims.Subject != constants.ACCESS_TOKEN_SUBJECT || claims.ID == "" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	Init("first-secret-first-secret-first!", 5)
	token, err := GenerateAccessToken("U100")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	Init("second-secret-second-secret-sec!", 5)
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("token signed with another secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	Init("unit-test-secret-unit-test-secret", -1)
	token, err := GenerateAccessToken("U100")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseToken(token); err == nil {
		t.Fatalf("expired token must be rejected")
	}
}
