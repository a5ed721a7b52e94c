package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestFromToken(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		want    string
		wantErr bool
	}{
		{"userId claim", jwt.MapClaims{"userId": 42}, "42", false},
		{"sub claim", jwt.MapClaims{"sub": "7"}, "7", false},
		{"mongo-style id", jwt.MapClaims{"_id": "64b0c1"}, "64b0c1", false},
		{"no identity", jwt.MapClaims{"role": "admin"}, "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := FromToken(signedToken(t, tc.claims))
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			id, ok := sess.UserID()
			if !ok || id.String() != tc.want {
				t.Errorf("UserID = %q, %v; want %q, true", id, ok, tc.want)
			}
		})
	}
}

func TestFromTokenGarbage(t *testing.T) {
	if _, err := FromToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestStatic(t *testing.T) {
	if _, ok := (Static{}).UserID(); ok {
		t.Error("zero Static must be anonymous")
	}
	id, ok := (Static{ID: "9"}).UserID()
	if !ok || id != "9" {
		t.Errorf("UserID = %q, %v", id, ok)
	}
}
