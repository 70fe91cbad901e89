package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// plansCmd 套餐管理命令
var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Subscription plan commands",
}

var plansSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the plan definitions when the table is empty",
	Long: `Insert Basic, Premium and Enterprise (or the plans from plans_file)
when the subscription_plans table is empty. Safe to run repeatedly.`,
	Run: func(cmd *cobra.Command, args []string) {
		container := newContainer(true)
		defer func() { _ = container.Close() }()

		if err := container.Migrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := container.SeedPlans(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		if n == 0 {
			log.Println("Plans already present, nothing inserted")
			return
		}
		log.Printf("Inserted %d plans", n)
	},
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List subscription plans",
	Run: func(cmd *cobra.Command, args []string) {
		container := newContainer(true)
		defer func() { _ = container.Close() }()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		list, err := container.Plans.List(ctx)
		if err != nil {
			log.Fatalf("Failed to list plans: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tBASIC\tPREMIUM\tORIGINAL\tNON-EXPIRING")
		for _, p := range list {
			premium := "-"
			if size := p.PremiumSize(); size > 0 {
				premium = fmt.Sprintf("%d", size)
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%t\t%t\n",
				p.ID, p.Name, p.BasicThumbnailSize, premium, p.GrantsOriginalAccess, p.GrantsNonExpiringLinks)
		}
		_ = w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
	plansCmd.AddCommand(plansSeedCmd)
	plansCmd.AddCommand(plansListCmd)
}
