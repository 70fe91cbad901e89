package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Subscription plan cache management",
	Long:  "Warm or clear the subscription plan cache. Only meaningful with a shared (redis) cache.",
}

// cacheWarmCmd 预热套餐缓存
var cacheWarmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Load every plan into the cache",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCacheWarm(); err != nil {
			log.Fatalf("Cache warm failed: %v", err)
		}
	},
}

// cacheClearCmd 清除套餐缓存
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear plan cache entries",
	Long:  `Clear cached plans. Without --plan every plan is cleared.`,
	Run: func(cmd *cobra.Command, args []string) {
		planID, _ := cmd.Flags().GetUint("plan")
		if err := runCacheClear(planID); err != nil {
			log.Fatalf("Cache clear failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheWarmCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().Uint("plan", 0, "Only clear the plan with this id")
}

func runCacheWarm() error {
	container := newContainer(true)
	defer func() { _ = container.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Cache provider: %s", container.Cache.Name())
	n, err := container.Plans.Warm(ctx)
	if err != nil {
		return err
	}
	log.Printf("Warmed %d plans", n)
	return nil
}

func runCacheClear(planID uint) error {
	container := newContainer(true)
	defer func() { _ = container.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("Cache provider: %s", container.Cache.Name())

	if planID != 0 {
		if err := container.Plans.Invalidate(ctx, planID); err != nil {
			return fmt.Errorf("failed to clear plan %d: %w", planID, err)
		}
		log.Printf("Plan %d cleared from cache", planID)
		return nil
	}

	list, err := container.Plans.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		if err := container.Plans.Invalidate(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to clear plan %d: %w", p.ID, err)
		}
	}
	log.Printf("Cleared %d plans from cache", len(list))
	return nil
}
