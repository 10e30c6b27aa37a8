package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/casapps/casrecipes/src/internal/server"
	"github.com/casapps/casrecipes/src/pkg/utils"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDatabase()
			if err != nil {
				return err
			}
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get database instance: %w", err)
			}
			defer sqlDB.Close()

			e := echo.New()
			e.HidePort = true

			srv := server.New(e, cfg, db, utils.NewLogger())

			address := fmt.Sprintf("%s:%d", cfg.GetString("server.host"), cfg.GetInt("server.port"))
			log.Printf("CasRecipes v%s starting on %s", Version, address)

			go func() {
				if err := srv.Start(address); err != nil {
					log.Printf("server stopped: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			<-quit

			log.Println("Shutting down server...")
			timeout := cfg.GetDuration("server.shutdown_timeout")
			if timeout <= 0 {
				timeout = 10 * time.Second
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			return srv.Shutdown(ctx)
		},
	}
}
