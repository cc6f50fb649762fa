package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dreamswag/ci5dev/internal/metrics"
	"github.com/dreamswag/ci5dev/internal/mockapi"
)

func mockAPICmd() *cobra.Command {
	var (
		addr     string
		manifest string
	)

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve a local stand-in for the ci5 verification API",
		Long: `mock-api serves the challenge, completion and identity endpoints of the
ci5 network API, plus the cork manifest. Point the browser at it with
--api-url and --manifest-url, then complete challenges with:

  curl -X POST localhost:8787/v1/challenge/complete \
    -H 'Content-Type: application/json' \
    -d '{"challenge":"ci5_...","hwid":"..."}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			opts := []mockapi.Option{
				mockapi.WithLogger(log),
				mockapi.WithMetrics(metrics.New()),
			}
			if manifest != "" {
				opt, err := mockapi.WithManifestFile(manifest)
				if err != nil {
					return err
				}
				opts = append(opts, opt)
			}

			success(cmd.OutOrStdout(), "Mock ci5 API on http://%s", addr)
			return mockapi.NewServer(opts...).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8787", "listen address")
	cmd.Flags().StringVar(&manifest, "manifest", "", "corks.json to serve at /corks.json")
	return cmd
}
