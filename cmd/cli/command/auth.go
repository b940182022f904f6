package command

// auth.go handles authentication commands: register, login, logout, refresh.

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the reviewhub API server. Supports registration, login, logout and token refresh.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new reviewhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Email, _ = cmd.Flags().GetString("email")

		response, err := client.NewHTTPClient(apiURL).Register(&req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.UserID)
		fmt.Printf("Badge:  %s\n", response.MainBadge)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your reviewhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req client.LoginRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		response, err := client.NewHTTPClient(apiURL).Login(&req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		err = authentication.StoreTokens(&authentication.StoredCredentials{
			AccessToken:  response.AccessToken,
			RefreshToken: response.RefreshToken,
			Username:     response.Username,
			ExpiresAt:    time.Now().Unix() + response.ExpiresIn,
		})
		if err != nil {
			return fmt.Errorf("could not store credentials: %w", err)
		}

		fmt.Printf("✓ Logged in as %s (%s)\n", response.Username, response.MainBadge)
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := authentication.GetTokens()
		if err != nil {
			return fmt.Errorf("not logged in: %w", err)
		}

		response, err := client.NewHTTPClient(apiURL).RefreshToken(creds.RefreshToken)
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		// Refresh rotates the pair, store both new tokens.
		creds.AccessToken = response.AccessToken
		creds.RefreshToken = response.RefreshToken
		creds.ExpiresAt = time.Now().Unix() + response.ExpiresIn
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("could not store credentials: %w", err)
		}

		fmt.Println("✓ Token refreshed.")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your reviewhub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if creds, err := authentication.GetTokens(); err == nil && creds.RefreshToken != "" {
			// Revoke server-side first so the refresh token dies with the session.
			if err := client.NewHTTPClient(apiURL).RevokeToken(creds.RefreshToken); err != nil {
				fmt.Println("warning: could not revoke token on server:", err)
			}
		}
		if err := authentication.DeleteTokens(); err != nil {
			return fmt.Errorf("could not clear credentials: %w", err)
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(refreshCmd)
	authCmd.AddCommand(logoutCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(authCmd)
}
