package command

// root.go defines the root command for the reviewhub CLI.
// Global flags and stored-credential loading live here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"
)

var (
	apiURL string // global flag for API server URL
	token  string // access token loaded from the keyring
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviewhub",
	Short: "reviewhub - review platform command line interface",
	Long: `reviewhub is a tool for interacting with the reviewhub API. Use it to:
- Browse and search business listings
- Submit reviews and append dated updates to them
- View a reviewer's full update history for a business
- Respond to reviews on listings you own

Use "reviewhub [command] --help" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")

	// Best effort: commands that need auth fail with a clear message later.
	if creds, err := authentication.GetTokens(); err == nil {
		token = creds.AccessToken
	}
}

// newAPIClient builds an HTTP client carrying the stored access token.
func newAPIClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if token != "" {
		c.SetToken(token)
	}
	return c
}
