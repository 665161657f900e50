package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/your-org/identity-vault/pkg/dto"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the configured source and target photos",
	Long: `Runs the face comparator against comparator.bucket, comparator.source and
comparator.target. --timeout plays the part of the function deadline; the
comparison is refused when less than a second of it is left.`,
	Args: cobra.NoArgs,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().Duration("timeout", 15*time.Second, "Invocation budget")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	app, err := loadApp(cmd, false)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := app.CompareHandler().Handle(ctx, dto.CompareRequest{})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
