package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clario-app/clario/internal/suggestion"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the suggestions API that forwards feedback by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		log := newLogger(cmd, cfg)

		smtp := cfg.SMTP
		if smtp.User == "" || smtp.Pass == "" {
			log.Warn().Msg("SMTP credentials not set; suggestions will be rejected")
		}
		mailer := suggestion.NewSMTPMailer(smtp.Host, smtp.Port, smtp.User, smtp.Pass, smtp.To)

		srv := suggestion.NewServer(mailer, suggestion.ServerOptions{
			RateLimit:  cfg.Server.RateLimit,
			RateWindow: cfg.Server.RateWindow,
			Logger:     log,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
