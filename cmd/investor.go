package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

var investorCmd = &cobra.Command{
	Use:   "investor",
	Short: "Manage investor profiles",
}

var investorCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft investor profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		name, _ := cmd.Flags().GetString("name")
		firm, _ := cmd.Flags().GetString("firm")
		website, _ := cmd.Flags().GetString("website")
		userID, _ := cmd.Flags().GetString("user")

		p, err := st.CreateProfile(ctx, model.InvestorProfile{
			UserID:  userID,
			Name:    name,
			Firm:    firm,
			Website: website,
		})
		if err != nil {
			return eris.Wrap(err, "investor create")
		}

		zap.L().Info("investor created",
			zap.String("investor_id", p.ID),
			zap.String("name", p.Name),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var investorShowCmd = &cobra.Command{
	Use:   "show <investor-id>",
	Short: "Show an investor profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		p, err := st.GetProfile(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "investor show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

func init() {
	investorCreateCmd.Flags().String("name", "", "investor name (required)")
	investorCreateCmd.Flags().String("firm", "", "firm name")
	investorCreateCmd.Flags().String("website", "", "firm website URL")
	investorCreateCmd.Flags().String("user", "", "owning user ID (required)")
	_ = investorCreateCmd.MarkFlagRequired("name")
	_ = investorCreateCmd.MarkFlagRequired("user")

	investorCmd.AddCommand(investorCreateCmd)
	investorCmd.AddCommand(investorShowCmd)
	rootCmd.AddCommand(investorCmd)
}
