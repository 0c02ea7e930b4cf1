// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/gateway"
	"github.com/pdiddy/review-engine/internal/secrets"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the backend and store the access token",
	Long: `Login exchanges a username and password for a bearer token and saves it
under the secrets directory. Subsequent commands attach the token
automatically; only the crow-search endpoint requires it.

Credentials come from --username/--password, or from the backend-username
and backend-password secret files.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		username = loadedSecrets[secrets.KeyUsername]
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = loadedSecrets[secrets.KeyPassword]
	}
	if username == "" || password == "" {
		return fmt.Errorf("credentials required: pass --username and --password or create %s and %s secret files", secrets.KeyUsername, secrets.KeyPassword)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client := newGateway(cmd)
	token, err := client.Login(ctx, gateway.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := secrets.Save(secretsDir(cmd), secrets.KeyAccessToken, token); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "Logged in; token saved.")
	return nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := secrets.Delete(secretsDir(cmd), secrets.KeyAccessToken); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Logged out.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("username", "", "backend username")
	loginCmd.Flags().String("password", "", "backend password")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
