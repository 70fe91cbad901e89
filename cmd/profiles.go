package cmd

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "User profile commands",
}

var profilesAssignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign a subscription plan to a user",
	Long: `Assign a plan to a user, creating the profile first if needed.

Example:
  image-craft profiles assign --user 42 --plan Premium`,
	Run: func(cmd *cobra.Command, args []string) {
		userID, _ := cmd.Flags().GetUint("user")
		planName, _ := cmd.Flags().GetString("plan")
		if userID == 0 || planName == "" {
			log.Fatal("--user and --plan are required")
		}

		container := newContainer(true)
		defer func() { _ = container.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		plan, err := container.Profiles.AssignPlan(ctx, userID, planName)
		if err != nil {
			log.Fatalf("Failed to assign plan: %v", err)
		}
		log.Printf("User %d is now on plan %s", userID, plan.Name)
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesAssignCmd)

	profilesAssignCmd.Flags().Uint("user", 0, "User id")
	profilesAssignCmd.Flags().String("plan", "", "Plan name (Basic, Premium, Enterprise)")
}
