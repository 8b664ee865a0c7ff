package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hucha-app/hucha/internal/api"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Expose the ledger over an authenticated JSON API. Clients log in with
email and password and authenticate requests with bearer tokens.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			secret := viper.GetString("api.jwt_secret")
			if secret == "" {
				return fmt.Errorf("api.jwt_secret must be set (config file or HUCHA_API_JWT_SECRET)")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			server := api.NewServer(store, calendarClient(ctx), []byte(secret), slog.Default())
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
