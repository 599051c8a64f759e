package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testIssuer = "https://test-keycloak.com/realms/hospital"

func newTestKeyAndVerifier(t *testing.T) (*rsa.PrivateKey, *Verifier) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate RSA key: %v", err)
	}

	jwks := NewStaticJWKS(map[string]*rsa.PublicKey{"test-key-id": &key.PublicKey})
	verifier := NewVerifier(Config{Issuer: testIssuer}, jwks)
	return key, verifier
}

func signTestToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key-id"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func TestParseAndVerifyToken_Success(t *testing.T) {
	key, verifier := newTestKeyAndVerifier(t)

	tok := signTestToken(t, key, jwt.MapClaims{
		"sub":  "user-123",
		"iss":  testIssuer,
		"name": "Dana Osei",
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
		"realm_access": map[string]interface{}{
			"roles": []interface{}{"NURSE", "PHARMACIST"},
		},
	})

	pr, err := verifier.ParseAndVerifyToken(tok)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if pr.UserID != "user-123" {
		t.Errorf("Expected user ID 'user-123', got '%s'", pr.UserID)
	}
	if pr.Name != "Dana Osei" {
		t.Errorf("Expected name 'Dana Osei', got '%s'", pr.Name)
	}
	if len(pr.Roles) != 2 {
		t.Fatalf("Expected 2 roles, got %d", len(pr.Roles))
	}
	if !pr.HasRole("nurse") {
		t.Error("Expected case-insensitive role match for 'nurse'")
	}
}

func TestParseAndVerifyToken_EmptyToken(t *testing.T) {
	_, verifier := newTestKeyAndVerifier(t)

	if _, err := verifier.ParseAndVerifyToken(""); err != ErrNoToken {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

func TestParseAndVerifyToken_WrongIssuer(t *testing.T) {
	key, verifier := newTestKeyAndVerifier(t)

	tok := signTestToken(t, key, jwt.MapClaims{
		"sub": "user-123",
		"iss": "https://evil.example.com/realms/hospital",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := verifier.ParseAndVerifyToken(tok); err != ErrInvalidIssuer {
		t.Errorf("Expected ErrInvalidIssuer, got %v", err)
	}
}

func TestParseAndVerifyToken_Expired(t *testing.T) {
	key, verifier := newTestKeyAndVerifier(t)

	tok := signTestToken(t, key, jwt.MapClaims{
		"sub": "user-123",
		"iss": testIssuer,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := verifier.ParseAndVerifyToken(tok); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseAndVerifyToken_MissingSub(t *testing.T) {
	key, verifier := newTestKeyAndVerifier(t)

	tok := signTestToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	if _, err := verifier.ParseAndVerifyToken(tok); err != ErrMissingSub {
		t.Errorf("Expected ErrMissingSub, got %v", err)
	}
}

func TestParseAndVerifyToken_WrongSigningMethod(t *testing.T) {
	_, verifier := newTestKeyAndVerifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-123",
		"iss": testIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key-id"
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}

	if _, err := verifier.ParseAndVerifyToken(signed); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for HS256 token, got %v", err)
	}
}
