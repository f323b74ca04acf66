// Package main provides the CLI entrypoint for plminer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/config"
	"github.com/verte-zerg/plminer/internal/extract"
	"github.com/verte-zerg/plminer/internal/logging"
	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/nlp"
	"github.com/verte-zerg/plminer/internal/patternfile"
	"github.com/verte-zerg/plminer/internal/stats"
	"github.com/verte-zerg/plminer/internal/store"
)

const (
	defaultLogLevel   = "info"
	defaultLogFormat  = "console"
	defaultFormat     = "yaml"
	defaultCacheSize  = 0
	defaultTopLimit   = 20
	defaultRunsLimit  = 10
	defaultClusterFld = "solution"
)

var (
	logLevel  string
	logFormat string
	logger    = zap.NewNop()

	analyzeInput      string
	analyzeOutput     string
	analyzeConfigPath string
	analyzeFormat     string
	analyzeDBPath     string

	extractFileType     string
	extractThreshold    int
	extractMinTokens    int
	extractScope        string
	extractPOSFiltering bool
	extractAllowedTags  []string
	extractBlocks       []string
	extractNgramMin     int
	extractNgramMax     int
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "plminer",
		Short:             "Mine recurring n-gram patterns from a text corpus",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: setupLogger,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (console or json)")

	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newEnrichCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newClusterCmd())
	rootCmd.AddCommand(newAssembleCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newRunsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func setupLogger(_ *cobra.Command, _ []string) error {
	l, err := logging.New(logLevel, logFormat)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	defaults := model.DefaultExtractConfig()
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract frequent n-gram patterns from a directory",
		Args:  cobra.NoArgs,
		RunE:  runAnalyzeCmd,
	}
	cmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "input directory")
	cmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "output directory for pattern files")
	cmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", config.DefaultConfigPath(), "config file (.yaml, .yml or .toml)")
	cmd.Flags().StringVar(&analyzeFormat, "format", defaultFormat, "pattern file format (yaml or json)")
	cmd.Flags().StringVar(&analyzeDBPath, "db", config.DefaultDBPath(), "run history database (empty disables recording)")

	cmd.Flags().StringVar(&extractFileType, "file-type", defaults.FileType, "file extension to load (txt, md, html)")
	cmd.Flags().IntVar(&extractThreshold, "frequency-threshold", defaults.FrequencyThreshold, "minimum occurrences to report a pattern")
	cmd.Flags().IntVar(&extractMinTokens, "minimum-token-count", defaults.MinimumTokenCount, "minimum tokens per sentence")
	cmd.Flags().StringVar(&extractScope, "scope", defaults.Scope.String(), "unit scope (document, line, sentence, block)")
	cmd.Flags().BoolVar(&extractPOSFiltering, "pos-filtering", defaults.POSFiltering, "keep only sentences whose tags are all allowed")
	cmd.Flags().StringSliceVar(&extractAllowedTags, "allowed-pos-tags", model.SortedSet(defaults.AllowedPOSTags), "allowed part-of-speech tags")
	cmd.Flags().StringSliceVar(&extractBlocks, "block-elements", model.SortedSet(defaults.BlockElements), "block elements for block scope")
	cmd.Flags().IntVar(&extractNgramMin, "ngram-min", defaults.NgramMin, "shortest n-gram length")
	cmd.Flags().IntVar(&extractNgramMax, "ngram-max", defaults.NgramMax, "longest n-gram length")
	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(analyzeInput, analyzeOutput); err != nil {
		return err
	}
	format, err := patternfile.ParseFormat(analyzeFormat)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}

	fileCfg, err := config.LoadConfig(analyzeConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyExtractionConfig(cmd, fileCfg.Extraction)
	cfg := buildExtractConfig()

	analyzer, err := nlp.NewProseAnalyzer(cfg.POSFiltering, defaultCacheSize)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	extractor, err := extract.New(cfg, analyzer, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	startedAt := time.Now()
	res, err := extractor.Run(ctx, analyzeInput)
	if err != nil {
		return err
	}
	endedAt := time.Now()

	writer, err := patternfile.NewDirWriter(analyzeOutput, format)
	if err != nil {
		return err
	}
	for _, p := range patternfile.FromRecords(res.Records) {
		if err := writer.Write(p); err != nil {
			return err
		}
	}
	logger.Info("wrote pattern files",
		zap.String("output", analyzeOutput),
		zap.Int("patterns", len(res.Records)),
		zap.Duration("elapsed", endedAt.Sub(startedAt)),
	)

	if analyzeDBPath != "" {
		run := model.Run{
			StartedAt: startedAt,
			EndedAt:   endedAt,
			InputDir:  analyzeInput,
			Scope:     cfg.Scope.String(),
			Documents: res.Stats.Documents,
		}
		if err := recordRun(ctx, analyzeDBPath, run, res.Records); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(res.Records) == 0 {
		if _, err := fmt.Fprintln(out, "0 patterns"); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := stats.RenderSummary(out, res.Records, res.Stats.Documents); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func recordRun(ctx context.Context, path string, run model.Run, records []model.PatternRecord) error {
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	id, err := st.InsertRun(ctx, run, records)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	logger.Debug("recorded run", zap.String("run", id), zap.String("db", path))
	return nil
}

func applyExtractionConfig(cmd *cobra.Command, ext config.ExtractionConfig) {
	applyStringConfig(cmd, "file-type", &extractFileType, ext.FileType)
	applyIntConfig(cmd, "frequency-threshold", &extractThreshold, ext.FrequencyThreshold)
	applyIntConfig(cmd, "minimum-token-count", &extractMinTokens, ext.MinimumTokenCount)
	applyStringConfig(cmd, "scope", &extractScope, ext.Scope)
	applyBoolConfig(cmd, "pos-filtering", &extractPOSFiltering, ext.POSFiltering)
	applyStringSliceConfig(cmd, "allowed-pos-tags", &extractAllowedTags, ext.AllowedPOSTags)
	applyStringSliceConfig(cmd, "block-elements", &extractBlocks, ext.BlockElements)
	applyIntConfig(cmd, "ngram-min", &extractNgramMin, ext.NgramMin)
	applyIntConfig(cmd, "ngram-max", &extractNgramMax, ext.NgramMax)
}

func buildExtractConfig() model.ExtractConfig {
	return model.ExtractConfig{
		FileType:           strings.TrimPrefix(strings.TrimSpace(extractFileType), "."),
		FrequencyThreshold: extractThreshold,
		MinimumTokenCount:  extractMinTokens,
		Scope:              model.ParseScope(extractScope),
		POSFiltering:       extractPOSFiltering,
		AllowedPOSTags:     model.NewSet(extractAllowedTags),
		BlockElements:      model.NewSet(extractBlocks),
		NgramMin:           extractNgramMin,
		NgramMax:           extractNgramMax,
	}
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	d := model.DefaultExtractConfig()
	return fmt.Sprintf(`# plminer configuration
# Every key below is required. CLI flags override config values, and
# %sPATTERN_EXTRACTION_<KEY> environment variables override the file.

pattern_extraction:
  file_type: %s              # txt, md or html
  frequency_threshold: %d      # Minimum occurrences to report a pattern
  minimum_token_count: %d      # Sentences shorter than this are skipped
  scope: %s             # document, line, sentence or block
  pos_filtering: %t        # Keep only sentences whose tags are all allowed
  allowed_pos_tags: []        # e.g. [NN, NNS, VB, DT, JJ]
  block_elements: [%s] # paragraph enables blank-line splitting in block scope
  ngram_min: %d
  ngram_max: %d
`,
		config.EnvPrefix,
		d.FileType,
		d.FrequencyThreshold,
		d.MinimumTokenCount,
		d.Scope,
		d.POSFiltering,
		strings.Join(model.SortedSet(d.BlockElements), ", "),
		d.NgramMin,
		d.NgramMax,
	)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// applyStringSliceConfig treats a nil slice as unset; an empty list in the file clears the default.
func applyStringSliceConfig(cmd *cobra.Command, name string, target *[]string, value []string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = append([]string(nil), value...)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
