// serve_command.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gewnthar/eof/config"
	"github.com/gewnthar/eof/database"
	"github.com/gewnthar/eof/handlers"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the orbit selection HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cleanup, err := newOrbitService("")
			if err != nil {
				return err
			}
			defer cleanup()

			mux := http.NewServeMux()
			(&handlers.OrbitHandler{Service: svc, DB: database.DB}).RegisterRoutes(mux)

			serverAddr := ":" + config.AppConfig.Server.Port
			server := &http.Server{Addr: serverAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			log.Printf("Server starting on http://localhost%s\n", serverAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Println("Server stopped.")
			return nil
		},
	}
}
