package oauth

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUnmarshalDerivesExpiry(t *testing.T) {
	document := `{
		"access_token": "abc123",
		"token_type": "bearer",
		"expires_in": 3888000,
		"refresh_token": "cba321",
		"created_at": 1508766510
	}`
	var token Token
	if err := json.Unmarshal([]byte(document), &token); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if token.AccessToken != "abc123" {
		t.Errorf("access token = %q", token.AccessToken)
	}
	if token.RefreshToken != "cba321" {
		t.Errorf("refresh token = %q", token.RefreshToken)
	}
	want := time.Unix(1508766510+3888000, 0)
	if !token.Expiry.Equal(want) {
		t.Errorf("expiry = %s, want %s", token.Expiry, want)
	}
}

func TestUnmarshalWithoutCreatedAt(t *testing.T) {
	document := `{"access_token": "abc123", "token_type": "bearer", "expires_in": 300}`
	before := time.Now()
	var token Token
	if err := json.Unmarshal([]byte(document), &token); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	after := time.Now()

	if token.Expiry.Before(before.Add(300 * time.Second)) || token.Expiry.After(after.Add(300*time.Second)) {
		t.Errorf("expiry %s not within 300s of now", token.Expiry)
	}
}

func TestUnmarshalWithoutExpiresIn(t *testing.T) {
	var token Token
	if err := json.Unmarshal([]byte(`{"access_token": "abc123"}`), &token); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if !token.Expiry.IsZero() {
		t.Errorf("expiry should stay zero when the server omits expires_in, got %s", token.Expiry)
	}
}
