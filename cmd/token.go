package cmd

import (
	"fmt"
	"log"

	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/internal/auth"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	Long: `Sign a JWT with the configured jwt_secret. Tokens are normally issued by
the identity provider; this is for local testing.`,
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetUint("user")
		role, _ := cmd.Flags().GetString("role")

		config.InitConfig()
		svc, err := auth.NewJWTServiceFromConfig(config.Get())
		if err != nil {
			log.Fatalf("Failed to initialize JWT: %v", err)
		}

		token, expiry, err := svc.GenerateAccessToken(userID, role)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		log.Printf("Token expires at %s", expiry.Format("2006-01-02 15:04:05"))
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Uint("user", 0, "User id")
	tokenCmd.Flags().String("role", auth.RoleUser, "Role (user or staff)")
}
