package serve

import (
	"time"

	"github.com/spf13/cobra"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/internal/api/server"
)

var addr string

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the storage notification webhook",
	Long: `Serve the storage notification webhook

- POST /api/v1/events/start     starts jobs for created media objects
- POST /api/v1/events/beautify  writes transcripts for created results
- POST /api/v1/objects          runs a handler for a single object
- GET  /api/v1/history          lists processed objects
- GET  /health, GET /metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdutil.SignalContext(cmd.Context())
		defer cancel()

		env, err := cmdutil.Setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		listen := env.Config.Server.ListenAddr
		if addr != "" {
			listen = addr
		}

		srv := server.NewServer(
			server.Config{
				Addr:         listen,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 5 * time.Minute,
				IdleTimeout:  2 * time.Minute,
				Environment:  env.Config.Environment,
				Concurrency:  env.Config.Server.Concurrency,
			},
			server.Handlers{
				Start:    env.Services.StartHandler(),
				Beautify: env.Services.BeautifyHandler(),
			},
			env.Services.Ledger,
			env.Services.Registry,
			env.Logger,
		)
		return srv.Run(ctx)
	},
}
