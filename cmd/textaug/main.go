// textaug augments a dataset with the augmenters described in a YAML configuration file.
//
//	textaug run --config augment.yaml --input data.json --output out.json
//	textaug list
//	textaug version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/go-textaug"
	"github.com/gomlx/go-textaug/augment"
	"github.com/gomlx/go-textaug/config"
	"github.com/gomlx/go-textaug/dataset"
	"github.com/gomlx/go-textaug/internal/files"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	inputPath  string
	outputPath string
	verbose    bool
	noColor    bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "textaug",
	Short: "Text data augmentation",
	Long: `textaug generates perturbed variants of the texts of a dataset, to make models trained on
it more robust: character, keyboard and OCR noise, word level edits, synonym and similar word
replacement, and model backed back-translation, summarization, paraphrasing and contextual word
replacement.`,
	SilenceUsage: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Augment a dataset",
	Long: `Reads the dataset in --input, augments it with the augmenters of --config and writes the
result to --output.

Dataset formats are selected by file extension: .json (array of strings, or of {"text", "label"}
objects), .txt (one text per line), .csv (with a "text" and an optional "label" column) and .db
(SQLite, the output is appended as a new batch). Labeled datasets are augmented per label, and
the variants keep the label of their originals.`,
	Args: cobra.NoArgs,
	RunE: runAugment,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available augmenters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		listAugmenters(cmd, aurora.NewAurora(!noColor))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "textaug %s\n", textaug.Version)
	},
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "augment.yaml", "YAML configuration of the augmenters")
	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "dataset to augment")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "where to write the augmented dataset")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	_ = runCmd.MarkFlagRequired("input")
	_ = runCmd.MarkFlagRequired("output")
	listCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colors")
	rootCmd.AddCommand(runCmd, listCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runAugment(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logger, err = newLogger(cfg.Logging, verbose); err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := dataset.Load(inputPath)
	if err != nil {
		return err
	}
	logger.Info("loaded dataset", zap.String("input", inputPath), zap.Int("texts", len(records)))
	pipeline, err := cfg.Build(ctx, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	augmented, err := augmentRecords(ctx, pipeline, records)
	if err != nil {
		return err
	}
	batch, err := dataset.Save(outputPath, augmented)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	logger.Info("saved dataset", zap.String("output", outputPath), zap.Int("texts", len(augmented)),
		zap.Duration("elapsed", elapsed))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Augmented %s texts into %s texts in %s\n",
		humanize.Comma(int64(len(records))), humanize.Comma(int64(len(augmented))), elapsed.Round(time.Millisecond))
	if batch != "" {
		fmt.Fprintf(w, "Saved as batch %s of %s\n", batch, outputPath)
	} else if info, err := os.Stat(outputPath); err == nil {
		fmt.Fprintf(w, "Wrote %s (%s)\n", outputPath, humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

// augmentRecords runs the augmenter on each group of records sharing a label, and labels the
// output with the group's label.
func augmentRecords(ctx context.Context, augmenter augment.Augmenter, records []dataset.Record) ([]dataset.Record, error) {
	var augmented []dataset.Record
	for _, group := range dataset.GroupByLabel(records) {
		texts, err := augmenter.Augment(ctx, group.Texts)
		if err != nil {
			if group.Label == "" {
				return nil, err
			}
			return nil, errors.WithMessagef(err, "augmenting texts labeled %q", group.Label)
		}
		augmented = append(augmented, dataset.Group{Label: group.Label, Texts: texts}.Records()...)
	}
	return augmented, nil
}

// newLogger builds a production zap logger to stderr, teeing to a rotating file if one is
// configured.
func newLogger(cfg config.Logging, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid logging level %q", cfg.Level)
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	l, err := zapConfig.Build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	if cfg.File == "" {
		return l, nil
	}

	filePath, err := files.ExpandHome(cfg.File)
	if err != nil {
		return nil, err
	}
	rotating := &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zapConfig.EncoderConfig), zapcore.AddSync(rotating), zapConfig.Level)
	return l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}
