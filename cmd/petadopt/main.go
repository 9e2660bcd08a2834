// Command petadopt runs the pet adoption API and its maintenance tasks.
//
// @title                      Pet Adoption API
// @version                    1.0
// @description                Pet listings, adoption requests and owner decisions.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the token issued by the identity provider.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "petadopt",
		Short:         "Pet adoption marketplace backend",
		Long:          `petadopt serves the pet adoption API: pet listings, adoption requests and the owner's approve/reject workflow.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newTokenCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
