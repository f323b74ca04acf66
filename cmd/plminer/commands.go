package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/plminer/internal/browse"
	"github.com/verte-zerg/plminer/internal/cluster"
	"github.com/verte-zerg/plminer/internal/config"
	"github.com/verte-zerg/plminer/internal/enrich"
	"github.com/verte-zerg/plminer/internal/generate"
	"github.com/verte-zerg/plminer/internal/graph"
	"github.com/verte-zerg/plminer/internal/nlp"
	"github.com/verte-zerg/plminer/internal/patternfile"
	"github.com/verte-zerg/plminer/internal/stats"
	"github.com/verte-zerg/plminer/internal/store"
)

var (
	enrichInput    string
	enrichOutput   string
	enrichConcepts bool

	generateInput    string
	generateOutput   string
	generateFormat   string
	generateTemplate string

	graphInput  string
	graphOutput string
	graphFormat string

	clusterInput     string
	clusterOutput    string
	clusterField     string
	clusterThreshold float64

	reportDBPath string
	reportColor  bool
	topRunID     string
	topLimit     int
	runsLimit    int

	browseInput string

	assembleInput  string
	assembleOutput string
)

func newEnrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Add titles, summaries, keywords and tags to pattern files",
		Args:  cobra.NoArgs,
		RunE:  runEnrichCmd,
	}
	cmd.Flags().StringVarP(&enrichInput, "input", "i", "", "directory of pattern files")
	cmd.Flags().StringVarP(&enrichOutput, "output", "o", "", "output directory")
	cmd.Flags().BoolVar(&enrichConcepts, "concepts", false, "derive noun concepts and info type with part-of-speech tagging")
	return cmd
}

func runEnrichCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(enrichInput, enrichOutput); err != nil {
		return err
	}
	var analyzer nlp.Analyzer
	if enrichConcepts {
		a, err := nlp.NewProseAnalyzer(true, defaultCacheSize)
		if err != nil {
			return fmt.Errorf("failed to create analyzer: %w", err)
		}
		analyzer = a
	}
	enricher := enrich.New(enrich.NewTagExtractor(nil), analyzer, logger)
	res, err := enricher.Run(enrichInput, enrichOutput)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Enriched %d pattern files\n", res.Enriched); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d pattern files could not be written", res.Failed)
	}
	return nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render one sentence per pattern",
		Args:  cobra.NoArgs,
		RunE:  runGenerateCmd,
	}
	cmd.Flags().StringVarP(&generateInput, "input", "i", "", "directory of pattern files")
	cmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file")
	cmd.Flags().StringVar(&generateFormat, "format", string(generate.Markdown), "output format (markdown, html, text)")
	cmd.Flags().StringVar(&generateTemplate, "template", generate.DefaultTemplate, "sentence template with {problem}, {context}, {solution}, {example}")
	return cmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(generateInput, generateOutput); err != nil {
		return err
	}
	format, err := generate.ParseFormat(generateFormat)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}
	gen, err := generate.New(generateTemplate, format, logger)
	if err != nil {
		return err
	}
	n, err := gen.Run(generateInput, generateOutput)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Generated %d sentences in %s\n", n, generateOutput); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export patterns, tags and concepts as a graph",
		Args:  cobra.NoArgs,
		RunE:  runGraphCmd,
	}
	cmd.Flags().StringVarP(&graphInput, "input", "i", "", "directory of pattern files")
	cmd.Flags().StringVarP(&graphOutput, "output", "o", "", "output file")
	cmd.Flags().StringVar(&graphFormat, "format", string(graph.GraphML), "graph format (graphml, mermaid, neo4j, json)")
	return cmd
}

func runGraphCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(graphInput, graphOutput); err != nil {
		return err
	}
	format, err := graph.ParseFormat(graphFormat)
	if err != nil {
		return fmt.Errorf("--format: %w", err)
	}
	files, err := patternfile.Load(graphInput, logger)
	if err != nil {
		return err
	}
	g := graph.Build(patternfile.Patterns(files))
	if err := graph.WriteFile(graphOutput, g, format); err != nil {
		return fmt.Errorf("failed to write graph: %w", err)
	}
	logger.Info("exported graph",
		zap.String("format", string(format)),
		zap.Int("nodes", len(g.Nodes())),
		zap.Int("edges", len(g.Edges())),
	)
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d nodes and %d edges to %s\n", len(g.Nodes()), len(g.Edges()), graphOutput); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newAssembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Write the subpattern structure of composite patterns as YAML",
		Args:  cobra.NoArgs,
		RunE:  runAssembleCmd,
	}
	cmd.Flags().StringVarP(&assembleInput, "input", "i", "", "directory of pattern files")
	cmd.Flags().StringVarP(&assembleOutput, "output", "o", "", "output YAML file")
	return cmd
}

func runAssembleCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(assembleInput, assembleOutput); err != nil {
		return err
	}
	files, err := patternfile.Load(assembleInput, logger)
	if err != nil {
		return err
	}
	n, err := patternfile.WriteAssembly(assembleOutput, patternfile.Patterns(files))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d document patterns to %s\n", n, assembleOutput); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newClusterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Group patterns by text similarity",
		Args:  cobra.NoArgs,
		RunE:  runClusterCmd,
	}
	cmd.Flags().StringVarP(&clusterInput, "input", "i", "", "directory of pattern files")
	cmd.Flags().StringVarP(&clusterOutput, "output", "o", "", "output JSON report")
	cmd.Flags().StringVar(&clusterField, "field", defaultClusterFld, "pattern field to compare")
	cmd.Flags().Float64Var(&clusterThreshold, "threshold", cluster.DefaultThreshold, "cosine similarity needed to join a cluster (0-1]")
	return cmd
}

func runClusterCmd(cmd *cobra.Command, _ []string) error {
	if err := requireDirs(clusterInput, clusterOutput); err != nil {
		return err
	}
	clusterer, err := cluster.New(nil, clusterField, clusterThreshold, logger)
	if err != nil {
		return err
	}
	files, err := patternfile.Load(clusterInput, logger)
	if err != nil {
		return err
	}
	clustered, n, err := clusterer.Cluster(cmd.Context(), patternfile.Patterns(files))
	if err != nil {
		return err
	}
	if err := cluster.WriteReport(clusterOutput, clustered); err != nil {
		return fmt.Errorf("failed to write cluster report: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Grouped %d patterns into %d clusters\n", len(clustered), n); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&reportDBPath, "db", config.DefaultDBPath(), "run history database")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored output")
}

func newTopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most frequent patterns of a stored run",
		Args:  cobra.NoArgs,
		RunE:  runTopCmd,
	}
	addReportFlags(cmd)
	cmd.Flags().StringVar(&topRunID, "run", "", "run id (default: latest)")
	cmd.Flags().IntVar(&topLimit, "limit", defaultTopLimit, "number of patterns")
	return cmd
}

func runTopCmd(cmd *cobra.Command, _ []string) error {
	if topLimit <= 0 {
		return fmt.Errorf("--limit must be > 0")
	}
	st, err := openReportStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	runID := strings.TrimSpace(topRunID)
	if runID == "" {
		runID, err = st.LatestRunID(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			logErrf("No runs recorded yet. Run: plminer analyze -i <dir> -o <dir>\n")
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to find latest run: %w", err)
		}
	}
	records, err := st.TopPatterns(ctx, runID, topLimit)
	if err != nil {
		return fmt.Errorf("failed to load patterns: %w", err)
	}
	out := cmd.OutOrStdout()
	opts := stats.Options{Width: stats.TerminalWidth(), UseColor: stats.ShouldUseColor(out, reportColor)}
	return stats.RenderTopPatterns(out, records, opts)
}

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored extraction runs",
		Args:  cobra.NoArgs,
		RunE:  runRunsCmd,
	}
	addReportFlags(cmd)
	cmd.Flags().IntVar(&runsLimit, "limit", defaultRunsLimit, "number of runs (0 for all)")
	return cmd
}

func runRunsCmd(cmd *cobra.Command, _ []string) error {
	if runsLimit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}
	st, err := openReportStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	out := cmd.OutOrStdout()
	return stats.RenderRuns(out, runs, stats.Options{UseColor: stats.ShouldUseColor(out, reportColor)})
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history PATTERN",
		Short: "Show how a pattern's frequency changed across runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryCmd,
	}
	addReportFlags(cmd)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	pattern := strings.ToLower(strings.Join(strings.Fields(args[0]), " "))
	if pattern == "" {
		return fmt.Errorf("pattern must not be empty")
	}
	st, err := openReportStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	points, err := st.PatternHistory(cmd.Context(), pattern)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	out := cmd.OutOrStdout()
	return stats.RenderHistory(out, pattern, points, stats.Options{UseColor: stats.ShouldUseColor(out, reportColor)})
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse pattern files interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	cmd.Flags().StringVarP(&browseInput, "input", "i", "", "directory of pattern files")
	return cmd
}

func runBrowseCmd(_ *cobra.Command, _ []string) error {
	if strings.TrimSpace(browseInput) == "" {
		return fmt.Errorf("--input must not be empty")
	}
	files, err := patternfile.Load(browseInput, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logErrf("No pattern files found in %s\n", browseInput)
		return fmt.Errorf("no patterns to browse")
	}
	m := browse.NewModel(patternfile.Patterns(files))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
}

func requireDirs(input, output string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("--input must not be empty")
	}
	if strings.TrimSpace(output) == "" {
		return fmt.Errorf("--output must not be empty")
	}
	return nil
}

func openReportStore() (*store.Store, error) {
	if strings.TrimSpace(reportDBPath) == "" {
		return nil, fmt.Errorf("--db must not be empty")
	}
	st, err := store.Open(reportDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logErrf("failed to close db: %v\n", err)
	}
}
