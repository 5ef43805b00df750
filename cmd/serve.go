package cmd

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/docquiz/internal/extract"
	"github.com/abhisek/docquiz/internal/llm"
	"github.com/abhisek/docquiz/internal/pipeline"
	"github.com/abhisek/docquiz/internal/questiongen"
	"github.com/abhisek/docquiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Server.Addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repo, closeLog, err := openRequestLog()
		if err != nil {
			return err
		}
		defer closeLog()

		srvCfg := server.DefaultConfig()
		srvCfg.Addr = addr
		srvCfg.DefaultCount = cfg.Generate.Count

		ex := extract.New(log)
		var runner server.Runner

		provider, err := llm.NewProvider(ctx, cfg.ToLLMConfig(), repo, log)
		switch {
		case errors.Is(err, llm.ErrMissingCredential):
			// Extraction still works; generation answers 503.
			log.Warn("question generation disabled", zap.Error(err))
			srvCfg.Unavailable = err
		case err != nil:
			return err
		default:
			gen := questiongen.New(provider, questiongen.DefaultConfig(), log)
			runner = pipeline.New(ex, gen, log)
		}

		return server.New(srvCfg, ex, runner, log).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
}
