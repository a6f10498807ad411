// Package oauth defines the token document returned by the Owner API's OAuth endpoint.
package oauth

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// Token is an OAuth2 token that also decodes the expires_in attribute the Owner API uses in
// place of an absolute expiry. The library does not track expiry or refresh tokens on the
// caller's behalf; the fields are preserved so callers can persist the document and decide for
// themselves.
type Token struct {
	oauth2.Token
	ExpiresIn int64 `json:"expires_in,omitempty"` // expiration time in seconds
	CreatedAt int64 `json:"created_at,omitempty"` // epoch seconds, as reported by the server
}

func (t *Token) UnmarshalJSON(data []byte) error {
	var s struct {
		oauth2.Token
		ExpiresIn int64 `json:"expires_in,omitempty"`
		CreatedAt int64 `json:"created_at,omitempty"`
	}

	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.Token = s.Token
	t.ExpiresIn = s.ExpiresIn
	t.CreatedAt = s.CreatedAt

	if t.Expiry.IsZero() && s.ExpiresIn != 0 {
		start := time.Now()
		if s.CreatedAt != 0 {
			start = time.Unix(s.CreatedAt, 0)
		}
		t.Expiry = start.Add(time.Second * time.Duration(s.ExpiresIn))
	}
	return nil
}
