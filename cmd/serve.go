package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/loog-project/instrux/internal/api"
	"github.com/loog-project/instrux/internal/config"
	"github.com/loog-project/instrux/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the instruction and revision API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return withService(cmd, func(cfg config.Config, svc *service.DocumentService) error {
			if cfg.Log.Level != "debug" && cfg.Log.Level != "trace" {
				gin.SetMode(gin.ReleaseMode)
			}
			log.Info().
				Str("driver", cfg.Store.Driver).
				Str("store", cfg.Store.Path).
				Bool("cache", cfg.Cache.Enabled).
				Msg("Starting API server")

			server := api.New(svc, api.Options{CORSOrigins: cfg.Server.CORSOrigins})
			return server.ListenAndServe(ctx, cfg.Server.Addr)
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().StringSlice("cors-origins", []string{"*"}, "Origins allowed to call the API")
	serveCmd.Flags().Bool("disable-cache", false, "Disable the in-memory cache of parsed revisions")

	mustBind("addr", viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr")))
	mustBind("cors-origins", viper.BindPFlag(config.KeyServerCORS, serveCmd.Flags().Lookup("cors-origins")))
	rootCmd.AddCommand(serveCmd)
}
