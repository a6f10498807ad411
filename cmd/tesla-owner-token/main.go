// Utility for fetching, storing, and inspecting Owner API OAuth tokens

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ownerapi/tesla-owner/pkg/account"
	"github.com/ownerapi/tesla-owner/pkg/cli"
)

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: %s [-login | -show] [-token-name token_name] [file]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Without -login or -show, reads an OAuth token from stdin or file and saves it under")
	fmt.Fprintf(w, "token_name in the system keyring. The token_name defaults to $%s.\n", cli.EnvTeslaTokenName)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "With -login, fetches a fresh token using the OAuth password grant and saves it. The")
	fmt.Fprintf(w, "client id and secret are read from $%s and $%s.\n", cli.EnvTeslaClientID, cli.EnvTeslaClientSecret)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "With -show, prints the claims of the stored token without verifying its signature.")
}

func fetchToken(config *cli.Config) ([]byte, error) {
	email, err := cli.Prompt("Account email")
	if err != nil {
		return nil, err
	}
	password, err := cli.PromptSecret("Account password")
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := account.Login(ctx, config.LoginConfig(), email, password)
	if err != nil {
		return nil, err
	}
	return json.Marshal(token)
}

func showToken(config *cli.Config) error {
	raw, err := config.LoadTokenFromKeyring()
	if err != nil {
		return err
	}
	var document struct {
		AccessToken string `json:"access_token"`
	}
	accessToken := raw
	if err := json.Unmarshal([]byte(raw), &document); err == nil && document.AccessToken != "" {
		accessToken = document.AccessToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return fmt.Errorf("stored token is not a JWT: %s", err)
	}
	if subject, err := claims.GetSubject(); err == nil && subject != "" {
		fmt.Printf("Subject:    %s\n", subject)
	}
	if issuer, err := claims.GetIssuer(); err == nil && issuer != "" {
		fmt.Printf("Issuer:     %s\n", issuer)
	}
	if issued, err := claims.GetIssuedAt(); err == nil && issued != nil {
		fmt.Printf("Issued at:  %s\n", issued.UTC().Format(time.RFC3339))
	}
	if expiry, err := claims.GetExpirationTime(); err == nil && expiry != nil {
		fmt.Printf("Expires at: %s\n", expiry.UTC().Format(time.RFC3339))
	}
	return nil
}

func main() {
	returnCode := 1
	defer func() {
		os.Exit(returnCode)
	}()

	var login, show bool
	config, err := cli.NewConfig(cli.FlagOAuth | cli.FlagLogin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credential configuration: %s\n", err)
		return
	}

	flag.BoolVar(&login, "login", false, "Fetch a fresh token with the OAuth password grant")
	flag.BoolVar(&show, "show", false, "Print the stored token's claims")
	flag.StringVar(&config.KeyringTokenName, "token-name", "", "Name to use for keyring entry")
	flag.Usage = usage
	flag.Parse()
	config.ReadFromEnvironment()

	if show {
		if err := showToken(config); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading token: %s\n", err)
			return
		}
		returnCode = 0
		return
	}

	if config.KeyringTokenName == "" {
		fmt.Fprintf(os.Stderr, "Must provide system keyring name to save OAuth token under using -token-name or $%s\n", cli.EnvTeslaTokenName)
		return
	}

	var token []byte
	if login {
		token, err = fetchToken(config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching token: %s\n", err)
			return
		}
	} else {
		switch flag.NArg() {
		case 0:
			token, err = io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading token from stdin: %s\n", err)
				return
			}
		case 1:
			token, err = os.ReadFile(flag.Arg(0))
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading token from file: %s\n", err)
				return
			}
		default:
			fmt.Fprintln(os.Stderr, "Too many command-line arguments")
			return
		}
	}

	if err := config.SaveTokenToKeyring(string(token)); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving token to keyring: %s", err)
		return
	}

	returnCode = 0
}
