package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentiserve/config"
	"github.com/spacesedan/sentiserve/internal/clients"
	"github.com/spacesedan/sentiserve/internal/db"
)

func newRunsCmd(cfg config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.TrainingTable == "" {
				return errors.New("DYNAMODB_TRAINING_TABLE is not set")
			}

			dynamo, err := clients.NewDynamoDBClient(cmd.Context(), clients.AWSConfig{
				Region:   cfg.AWSRegion,
				Endpoint: cfg.AWSEndpoint,
			})
			if err != nil {
				return err
			}

			runs, err := db.NewTrainingRunStore(dynamo, cfg.TrainingTable).ListTrainingRuns(cmd.Context())
			if err != nil {
				return err
			}
			sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tSOURCE\tFINGERPRINT\tACCURACY\tAUC")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\n",
					run.RunID, run.StartedAt.Format("2006-01-02 15:04:05"), run.DataSource,
					run.Fingerprint, run.Metrics.Accuracy, run.Metrics.AUC)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}
