// Package account handles authentication to the Owner API and vehicle enumeration.
package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/ownerapi/tesla-owner/pkg/account/oauth"
	"github.com/ownerapi/tesla-owner/pkg/connector/inet"
	"github.com/ownerapi/tesla-owner/pkg/vehicle"
)

const libraryVersion = "0.9.0"

func buildUserAgent(app string) string {
	library := "tesla-owner/" + libraryVersion
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return library
	}
	path := strings.Split(build.Path, "/")
	if len(path) == 0 {
		return library
	}

	if app == "" {
		app = path[len(path)-1]
		var version string
		if build.Main.Version != "(devel)" && build.Main.Version != "" {
			version = build.Main.Version
		} else {
			for _, info := range build.Settings {
				if info.Key == "vcs.revision" {
					if len(info.Value) > 8 {
						version = info.Value[0:8]
					}
					break
				}
			}
		}

		if version != "" {
			app = fmt.Sprintf("%s/%s", app, version)
		}
	}

	return fmt.Sprintf("%s %s", app, library)
}

// A VehicleRef identifies a vehicle on an account. It is satisfied by the bare VehicleID type
// and by the richer *vehicle.Summary, so callers can use either without a second lookup.
type VehicleRef interface {
	// OwnerAPIID returns the API-internal id used in request paths. This is distinct from
	// both the VIN and the vehicle_id reported by the streaming service.
	OwnerAPIID() int64
}

// VehicleID is a bare API-internal vehicle id.
type VehicleID int64

func (id VehicleID) OwnerAPIID() int64 {
	return int64(id)
}

// Account allows interaction with the vehicles on an Owner API account.
type Account struct {
	// The default UserAgent is derived from the build info, but can be overridden.
	UserAgent string
	// BaseURL is the Owner API endpoint, without a trailing slash. Defaults to the
	// production endpoint.
	BaseURL    string
	authHeader string
	client     http.Client
}

// We accept the raw access token or the full token document returned by the OAuth endpoint, and
// reduce either to a bearer string exactly once, here.
func bearerToken(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("client provided empty OAuth token")
	}
	if strings.HasPrefix(token, "{") {
		var document struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal([]byte(token), &document); err != nil {
			return "", fmt.Errorf("client provided malformed OAuth token document: %s", err)
		}
		if document.AccessToken == "" {
			return "", fmt.Errorf("client provided OAuth token document without an access_token")
		}
		token = document.AccessToken
	}
	return token, nil
}

// New returns an [Account] that authenticates with the provided OAuth token. The token may be a
// raw access token or a complete JSON token document. Optional userAgent can be passed in;
// otherwise it is generated from build info.
func New(oauthToken, userAgent string) (*Account, error) {
	token, err := bearerToken(oauthToken)
	if err != nil {
		return nil, err
	}
	return &Account{
		UserAgent:  buildUserAgent(userAgent),
		BaseURL:    inet.DefaultBaseURL,
		authHeader: "Bearer " + token,
	}, nil
}

// NewFromToken returns an [Account] that authenticates with a previously fetched token
// document. See [Login].
func NewFromToken(token *oauth.Token, userAgent string) (*Account, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("client provided empty OAuth token")
	}
	return New(token.AccessToken, userAgent)
}

// GetVehicle returns the Vehicle with the given reference without contacting the server. When
// ref is a *vehicle.Summary, the returned Vehicle carries its metadata; a bare VehicleID yields
// a Vehicle that knows only its id, which suffices for commands and state queries.
func (a *Account) GetVehicle(ref VehicleRef) *vehicle.Vehicle {
	conn := inet.NewConnection(ref.OwnerAPIID(), a.authHeader, a.BaseURL, a.UserAgent)
	if summary, ok := ref.(*vehicle.Summary); ok {
		return vehicle.New(conn, *summary)
	}
	return vehicle.New(conn, vehicle.Summary{ID: ref.OwnerAPIID()})
}

// Vehicles lists the vehicles bound to the account.
func (a *Account) Vehicles(ctx context.Context) ([]*vehicle.Vehicle, error) {
	payload, err := a.get(ctx, "vehicles/")
	if err != nil {
		return nil, err
	}
	var summaries []vehicle.Summary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, fmt.Errorf("error parsing vehicle list: %s", err)
	}
	cars := make([]*vehicle.Vehicle, 0, len(summaries))
	for i := range summaries {
		cars = append(cars, a.GetVehicle(&summaries[i]))
	}
	return cars, nil
}

// VehicleData fetches the combined state bundle for the referenced vehicle.
func (a *Account) VehicleData(ctx context.Context, ref VehicleRef) (*vehicle.Data, error) {
	return a.GetVehicle(ref).Data(ctx)
}

// ClimateState fetches the current climate settings for the referenced vehicle.
func (a *Account) ClimateState(ctx context.Context, ref VehicleRef) (*vehicle.ClimateState, error) {
	return a.GetVehicle(ref).ClimateState(ctx)
}

// get sends an HTTP GET request to an endpoint under a.BaseURL and returns the unwrapped
// payload.
func (a *Account) get(ctx context.Context, endpoint string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", a.BaseURL, endpoint)
	return inet.Get(ctx, &a.client, a.UserAgent, a.authHeader, url)
}
