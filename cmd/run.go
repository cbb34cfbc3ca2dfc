package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vestor-labs/ingest-cli/internal/ingest"
)

var runCmd = &cobra.Command{
	Use:   "run <investor-id>",
	Short: "Run the ingestion pipeline for one investor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		investorID := args[0]

		o, st, err := initOrchestrator(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p, err := st.GetProfile(ctx, investorID)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		run, err := st.CreateRun(ctx, p.ID, p.UserID)
		if err != nil {
			return eris.Wrap(err, "create run")
		}

		if err := o.Execute(ctx, ingest.RunContext{
			RunID:      run.ID,
			InvestorID: p.ID,
			UserID:     p.UserID,
		}); err != nil {
			return err
		}

		finished, err := st.GetRun(ctx, run.ID)
		if err != nil {
			return eris.Wrap(err, "load finished run")
		}

		zap.L().Info("ingestion complete",
			zap.String("run_id", finished.ID),
			zap.String("status", string(finished.Status)),
			zap.Int("documents", finished.StepState.DocumentCounts.Total),
			zap.Int("failed", finished.StepState.DocumentCounts.Failed),
		)
		return printJSON(finished)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
