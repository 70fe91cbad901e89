package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/image-craft/api/core"
	"github.com/anoixa/image-craft/config"
	"github.com/anoixa/image-craft/internal/app"
	"github.com/anoixa/image-craft/utils"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)

	if err := container.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := container.Migrate(); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	if err := container.InitAuth(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}
	if err := container.InitServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	inserted, err := container.SeedPlans(seedCtx)
	seedCancel()
	if err != nil {
		log.Fatalf("Failed to seed subscription plans: %v", err)
	}
	if inserted > 0 {
		log.Printf("[Plans] Seeded %d subscription plans", inserted)
	}

	utils.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := container.Plans.Warm(ctx)
		if err != nil {
			log.Printf("[Plans] Cache warm failed: %v", err)
			return
		}
		utils.LogIfDevf("[Plans] Warmed %d plans into cache", n)
	})

	server, cleanup := core.StartServer(&core.ServerDependencies{
		Config:   cfg,
		DB:       container.GetDatabaseProvider(),
		Cache:    container.Cache,
		Storage:  container.Storage,
		Metrics:  container.Metrics,
		Tokens:   container.JWT,
		Plans:    container.Plans,
		Profiles: container.Profiles,
		Uploads:  container.Uploads,
		Access:   container.Access,
		Log:      container.Log,
	})
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if cleanup != nil {
		cleanup()
	}

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited successfully")
}

// newContainer 初始化配置与数据库，供各子命令使用
func newContainer(withServices bool) *app.Container {
	config.InitConfig()
	container := app.NewContainer(config.Get())

	if err := container.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if withServices {
		if err := container.InitServices(); err != nil {
			log.Fatalf("Failed to initialize services: %v", err)
		}
	}
	return container
}
