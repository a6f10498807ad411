package account

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ownerapi/tesla-owner/internal/log"
	"github.com/ownerapi/tesla-owner/pkg/account/oauth"
	"github.com/ownerapi/tesla-owner/pkg/connector"
	"github.com/ownerapi/tesla-owner/pkg/connector/inet"
	"github.com/ownerapi/tesla-owner/pkg/protocol"
)

// DefaultAuthURL is the production OAuth token endpoint.
const DefaultAuthURL = "https://owner-api.teslamotors.com/oauth/token"

// LoginConfig carries the OAuth client credentials used with the password grant. The client id
// and secret identify the application, not the user; they are supplied by the caller rather
// than embedded in this library.
type LoginConfig struct {
	ClientID     string
	ClientSecret string
	// AuthURL overrides the token endpoint. Defaults to DefaultAuthURL.
	AuthURL string
}

// Login exchanges an account email and password for an OAuth token document using the password
// grant. The token is returned exactly as the server provided it; no field is interpreted
// beyond decoding. Neither the password nor the client secret is logged.
func Login(ctx context.Context, config LoginConfig, email, password string) (*oauth.Token, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, protocol.NewValidationError("client credentials", "client id and secret must be set")
	}
	if email == "" || password == "" {
		return nil, protocol.NewValidationError("credentials", "email and password must be set")
	}
	endpoint := config.AuthURL
	if endpoint == "" {
		endpoint = DefaultAuthURL
	}

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {config.ClientID},
		"client_secret": {config.ClientSecret},
		"email":         {email},
		"password":      {password},
	}
	log.Debug("Requesting OAuth token from %s for %s...", endpoint, email)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, protocol.NewTransportError(err, false, false)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("User-Agent", buildUserAgent(""))

	var client http.Client
	response, err := client.Do(request)
	if err != nil {
		return nil, protocol.NewTransportError(err, false, true)
	}
	defer response.Body.Close()

	reader := io.LimitedReader{R: response.Body, N: connector.MaxResponseLength}
	body, err := io.ReadAll(&reader)
	if err != nil {
		return nil, protocol.NewTransportError(err, false, false)
	}
	if response.StatusCode != http.StatusOK {
		return nil, &inet.HttpError{Code: response.StatusCode, Message: string(body)}
	}

	var token oauth.Token
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: %s", protocol.ErrBadResponse, err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: token endpoint returned no access_token", protocol.ErrBadResponse)
	}
	return &token, nil
}
