/*
Package cli facilitates building command-line applications that talk to the Owner API. It
defines a [Config] type that can be used to register common command-line flags (using the
Golang flag package) and environment variable equivalents.

The package uses [keyring]'s platform-agnostic interface for storing OAuth tokens in an
OS-dependent credential store.

# Examples

	import flag

	config, err := cli.NewConfig(cli.FlagAll)
	if err != nil {
		panic(err)
	}
	config.RegisterCommandLineFlags() // Adds command-line flags for the OAuth token, vehicle id, etc.
	flag.Parse()
	config.ReadFromEnvironment()      // Fills in missing fields using environment variables
	config.LoadCredentials()          // Prompt for keyring password if needed

	acct, err := config.Account()     // Build an account client from the stored token
	if err != nil {
		panic(err)
	}
	car := acct.GetVehicle(account.VehicleID(config.VehicleID))
*/
package cli

import (
	"errors"
	"flag"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/99designs/keyring"

	"github.com/ownerapi/tesla-owner/internal/log"
	"github.com/ownerapi/tesla-owner/pkg/account"
)

// Environment variable names used by [Config.ReadFromEnvironment] to set common parameters.
const (
	EnvTeslaTokenName    = "TESLA_TOKEN_NAME"
	EnvTeslaTokenFile    = "TESLA_TOKEN_FILE"
	EnvTeslaVehicleID    = "TESLA_VEHICLE_ID"
	EnvTeslaAPIBase      = "TESLA_API_BASE"
	EnvTeslaAuthURL      = "TESLA_AUTH_URL"
	EnvTeslaClientID     = "TESLA_CLIENT_ID"
	EnvTeslaClientSecret = "TESLA_CLIENT_SECRET"
	EnvTeslaKeyringType  = "TESLA_KEYRING_TYPE"
	EnvTeslaKeyringPass  = "TESLA_KEYRING_PASSWORD"
	EnvTeslaKeyringPath  = "TESLA_KEYRING_PATH"
	EnvTeslaKeyringDebug = "TESLA_KEYRING_DEBUG"
)

// Flag controls what options should be scanned from the command line and/or environment
// variables.
type Flag int

func (f Flag) isSet(other Flag) bool {
	return (f & other) == other
}

const (
	FlagVehicleID Flag = 1 // Enable vehicle id option. Required for vehicle-scoped commands.
	FlagOAuth     Flag = 2 // Enable OAuth token options.
	FlagLogin     Flag = 4 // Enable OAuth client id/secret options, used with the password grant.
	FlagAll       Flag = FlagVehicleID | FlagOAuth | FlagLogin
)

var ErrNoTokenSpecified = errors.New("OAuth token location not provided")

// Config fields determine how a client authenticates to the Owner API.
type Config struct {
	Flags            Flag   // Controls which set of environment variables/CLI flags to use.
	KeyringTokenName string // Name for OAuth token in system keyring
	TokenFilename    string
	VehicleID        int64  // API-internal vehicle id, not the VIN
	APIBaseURL       string // Empty selects the production Owner API endpoint
	AuthURL          string // Empty selects the production OAuth token endpoint
	ClientID         string
	ClientSecret     string
	Backend          keyring.Config
	BackendType      backendType
	Debug            bool // Enable keyring debug messages

	password   *string
	oauthToken string
	acct       *account.Account
}

func NewConfig(flags Flag) (*Config, error) {
	c := Config{
		Flags: flags,
		Backend: keyring.Config{
			ServiceName:              keyringServiceName,
			KeychainTrustApplication: true,
			KeyCtlScope:              "user",
		},
	}
	c.BackendType = backendType{&c}
	c.Backend.KeychainPasswordFunc = c.getPassword
	c.Backend.FilePasswordFunc = c.getPassword

	return &c, nil
}

func (c *Config) RegisterCommandLineFlags() {
	if c.Flags.isSet(FlagVehicleID) {
		flag.Int64Var(&c.VehicleID, "vehicle-id", 0, "Owner API vehicle `id` (not the VIN). Defaults to $TESLA_VEHICLE_ID.")
	}
	if c.Flags.isSet(FlagOAuth) {
		flag.StringVar(&c.KeyringTokenName, "token-name", "", "System keyring `name` for OAuth token. Defaults to $TESLA_TOKEN_NAME.")
		flag.StringVar(&c.TokenFilename, "token-file", "", "`File` containing OAuth token. Defaults to $TESLA_TOKEN_FILE.")
		flag.StringVar(&c.APIBaseURL, "api-base", "", "Owner API base `URL`. Defaults to $TESLA_API_BASE or the production endpoint.")
	}
	if c.Flags.isSet(FlagLogin) {
		flag.StringVar(&c.AuthURL, "auth-url", "", "OAuth token endpoint `URL`. Defaults to $TESLA_AUTH_URL or the production endpoint.")
		flag.StringVar(&c.ClientID, "client-id", "", "OAuth client `id`. Defaults to $TESLA_CLIENT_ID.")
		// The client secret is only read from the environment so it doesn't end up in
		// shell history or process listings.
	}
	if c.Flags.isSet(FlagOAuth) || c.Flags.isSet(FlagLogin) {
		var names []string
		for _, name := range keyring.AvailableBackends() {
			names = append(names, string(name))
		}
		sort.Strings(names)
		flag.Var(&c.BackendType, "keyring-type", "Keyring `type` ("+strings.Join(names, "|")+"). Defaults to $TESLA_KEYRING_TYPE.")
		flag.StringVar(&c.Backend.FileDir, "keyring-file-dir", keyringDirectory, "keyring `directory` for file-backed keyring types")
		flag.BoolVar(&c.Debug, "keyring-debug", false, "Enable keyring debug logging")
	}
}

// LoadCredentials attempts to open a keyring, prompting for a password if needed. Call this
// method early to prevent interactive prompts from counting against request timeouts.
func (c *Config) LoadCredentials() error {
	if c.Flags.isSet(FlagOAuth) {
		if _, err := c.token(); err != nil {
			return err
		}
	}
	return nil
}

// ReadFromEnvironment populates c using environment variables. Values that are already
// populated are not overwritten.
//
// Calling ReadFromEnvironment after flag.Parse() (or other initialization method) will prevent
// the environment from overriding explicit command-line parameters.
func (c *Config) ReadFromEnvironment() {
	if c.Flags.isSet(FlagVehicleID) && c.VehicleID == 0 {
		if value := os.Getenv(EnvTeslaVehicleID); value != "" {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				log.Warning("Ignoring non-numeric $%s: %s", EnvTeslaVehicleID, value)
			} else {
				c.VehicleID = id
				log.Debug("Set vehicle id to %d", c.VehicleID)
			}
		}
	}
	if c.Flags.isSet(FlagOAuth) {
		if c.KeyringTokenName == "" && c.TokenFilename == "" {
			c.KeyringTokenName = os.Getenv(EnvTeslaTokenName)
			log.Debug("Set OAuth token name to '%s'", c.KeyringTokenName)

			c.TokenFilename = os.Getenv(EnvTeslaTokenFile)
			log.Debug("Set OAuth token file to '%s'", c.TokenFilename)
		}
		if c.APIBaseURL == "" {
			c.APIBaseURL = os.Getenv(EnvTeslaAPIBase)
		}
	}
	if c.Flags.isSet(FlagLogin) {
		if c.AuthURL == "" {
			c.AuthURL = os.Getenv(EnvTeslaAuthURL)
		}
		if c.ClientID == "" {
			c.ClientID = os.Getenv(EnvTeslaClientID)
		}
		if c.ClientSecret == "" {
			c.ClientSecret = os.Getenv(EnvTeslaClientSecret)
		}
	}
	if c.Flags.isSet(FlagOAuth) || c.Flags.isSet(FlagLogin) {
		if c.BackendType.String() == string(keyring.InvalidBackend) {
			if err := c.BackendType.Set(os.Getenv(EnvTeslaKeyringType)); err == nil {
				log.Debug("Set keyring type to '%s'", c.BackendType)
			}
		}
		if c.password == nil {
			password := os.Getenv(EnvTeslaKeyringPass)
			c.password = &password
		}
		if c.Backend.FileDir == "" {
			c.Backend.FileDir = os.Getenv(EnvTeslaKeyringPath)
			log.Debug("Set keyring file path to '%s'", c.Backend.FileDir)
		}
		if !c.Debug {
			_, c.Debug = os.LookupEnv(EnvTeslaKeyringDebug)
		}
	}
}

func (c *Config) token() (string, error) {
	if c.oauthToken != "" {
		return c.oauthToken, nil
	}
	if c.TokenFilename == "" && c.KeyringTokenName == "" {
		return "", ErrNoTokenSpecified
	}
	var err error
	if c.TokenFilename != "" {
		token, err := os.ReadFile(c.TokenFilename)
		if err == nil {
			c.oauthToken = string(token)
			return c.oauthToken, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		// If the token file doesn't exist, fall through to trying to load from the system
		// keyring.
	}
	c.oauthToken, err = c.LoadTokenFromKeyring()
	return c.oauthToken, err
}

// Account returns a client for the configured Owner API account.
func (c *Config) Account() (*account.Account, error) {
	if c.acct != nil {
		return c.acct, nil
	}
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	acct, err := account.New(token, "")
	if err != nil {
		return nil, err
	}
	if c.APIBaseURL != "" {
		acct.BaseURL = strings.TrimSuffix(c.APIBaseURL, "/")
	}
	c.acct = acct
	return acct, nil
}

// LoginConfig returns the OAuth client credentials used with the password grant.
func (c *Config) LoginConfig() account.LoginConfig {
	return account.LoginConfig{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		AuthURL:      c.AuthURL,
	}
}
