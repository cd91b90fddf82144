package worker

import (
	"errors"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transcribe-beautifier/cmd/tb/cmd/cmdutil"
	"transcribe-beautifier/internal/app/temporal"
	"transcribe-beautifier/internal/app/temporal/activities"
	tbworker "transcribe-beautifier/internal/app/temporal/worker"
)

var healthAddr string

func init() {
	Cmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", `health endpoint address, "" to disable`)
}

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Run a Temporal worker for the transcription workflow",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdutil.SignalContext(cmd.Context())
		defer cancel()

		env, err := cmdutil.Setup(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		tcfg := env.Config.Temporal
		c, err := temporal.NewClient(tcfg)
		if err != nil {
			return err
		}
		defer c.Close()

		hostname, _ := os.Hostname()
		identity := "tb-worker@" + hostname
		status := tbworker.NewHealthStatus(identity, tcfg.TaskQueue)
		status.SetTemporal(tbworker.ConnectionStatus{Connected: true, Endpoint: tcfg.HostPort})
		status.SetStorage(tbworker.ConnectionStatus{Connected: true, Endpoint: env.Config.Storage.Endpoint})

		if healthAddr != "" {
			healthServer := &http.Server{Addr: healthAddr, Handler: tbworker.HealthRouter(status)}
			go func() {
				if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					env.Logger.Warn("health server failed", zap.String("addr", healthAddr), zap.Error(err))
				}
			}()
			defer healthServer.Close()
		}

		acts := activities.NewTranscriptionActivities(
			env.Services.Starter,
			env.Services.Beautifier,
			env.Services.Poller,
			env.Services.Settings,
		)
		w := tbworker.New(c, tcfg.TaskQueue, acts, tbworker.Options{
			Identity:    identity,
			Concurrency: env.Config.Server.Concurrency,
		})

		env.Logger.Info("starting worker",
			zap.String("task_queue", tcfg.TaskQueue),
			zap.String("identity", identity))
		status.SetStatus("running")

		interrupt := make(chan interface{})
		go func() {
			<-ctx.Done()
			close(interrupt)
		}()
		err = w.Run(interrupt)
		status.SetStatus("stopped")
		return err
	},
}

