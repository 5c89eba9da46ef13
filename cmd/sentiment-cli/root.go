package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spacesedan/sentiserve/config"
	"github.com/spacesedan/sentiserve/internal/bootstrap"
	"github.com/spacesedan/sentiserve/internal/ml"
	"github.com/spacesedan/sentiserve/internal/sentiment"
)

type trainFlags struct {
	dataPath     string
	source       string
	testFraction float64
	seed         int64
}

func NewRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "sentiment-cli",
		Short:        "Train and query the sentiment model from the command line",
		SilenceUsage: true,
	}

	root.AddCommand(
		newTrainCmd(cfg),
		newPredictCmd(cfg),
		newRunsCmd(cfg),
	)
	return root
}

func (f *trainFlags) register(cmd *cobra.Command, cfg config.Config) {
	cmd.Flags().StringVar(&f.dataPath, "data", cfg.DataPath, "Path to the tab separated training file")
	cmd.Flags().StringVar(&f.source, "source", cfg.DataSource, "Training data source (file or postgres)")
	cmd.Flags().Float64Var(&f.testFraction, "test-fraction", cfg.TestFraction, "Fraction of examples held out for evaluation")
	cmd.Flags().Int64Var(&f.seed, "seed", cfg.Seed, "Seed for the split and the solver")
}

// train builds a service from cfg overridden by the command flags.
func (f *trainFlags) train(ctx context.Context, cfg config.Config) (*sentiment.Service, error) {
	cfg.DataPath = f.dataPath
	cfg.DataSource = f.source
	cfg.Seed = f.seed

	loader, closeLoader, err := bootstrap.NewLoader(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer closeLoader()

	if cfg.TrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.TrainTimeout)
		defer cancel()
	}

	return sentiment.NewService(ctx, bootstrap.MLContext(cfg), loader, sentiment.Options{
		TestFraction: f.testFraction,
	})
}

func newTrainCmd(cfg config.Config) *cobra.Command {
	var flags trainFlags
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model and print its evaluation metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.train(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			metrics, _ := svc.Metrics()
			return printMetrics(cmd.OutOrStdout(), svc.Model(), metrics)
		},
	}
	flags.register(cmd, cfg)
	return cmd
}

func newPredictCmd(cfg config.Config) *cobra.Command {
	var flags trainFlags
	cmd := &cobra.Command{
		Use:     "predict [text]...",
		Short:   "Train a model and classify each argument",
		Example: `  sentiment-cli predict --data data/commentdata.txt "great product" "terrible service"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := flags.train(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			ctx := sentiment.WithSource(cmd.Context(), "cli")
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TEXT\tSENTIMENT\tPROBABILITY")
			for _, text := range args {
				prediction, err := svc.Predict(ctx, text)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%.4f\n", text, prediction.Label(), prediction.Probability)
			}
			return w.Flush()
		},
	}
	flags.register(cmd, cfg)
	return cmd
}

func printMetrics(out io.Writer, model *ml.Model, m ml.Metrics) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "fingerprint\t%s\n", model.Fingerprint())
	fmt.Fprintf(w, "vocabulary\t%d\n", model.VocabularySize())
	fmt.Fprintf(w, "train examples\t%d\n", m.TrainCount)
	fmt.Fprintf(w, "test examples\t%d\n", m.TestCount)
	fmt.Fprintf(w, "evaluated on\t%s\n", m.EvaluatedOn)
	fmt.Fprintf(w, "accuracy\t%.4f\n", m.Accuracy)
	fmt.Fprintf(w, "auc\t%.4f\n", m.AUC)
	fmt.Fprintf(w, "f1\t%.4f\n", m.F1)
	fmt.Fprintf(w, "precision\t%.4f\n", m.Precision)
	fmt.Fprintf(w, "recall\t%.4f\n", m.Recall)
	fmt.Fprintf(w, "log loss\t%.4f\n", m.LogLoss)
	return w.Flush()
}
