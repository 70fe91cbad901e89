package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

// migrateCmd 数据库迁移命令
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	Long: `Run gorm AutoMigrate for subscription plans, user profiles and images.

Plans are not seeded here, use "image-craft plans seed".`,
	Run: func(cmd *cobra.Command, args []string) {
		container := newContainer(false)
		defer func() { _ = container.Close() }()

		if err := container.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
