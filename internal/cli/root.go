// Package cli provides the command-line interface for dataheal.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/charmbracelet/lipgloss"
	"github.com/dataheal/dataheal/internal/action"
	"github.com/dataheal/dataheal/internal/catalog"
	"github.com/dataheal/dataheal/internal/config"
	"github.com/dataheal/dataheal/internal/healing"
	"github.com/dataheal/dataheal/internal/llm"
	"github.com/dataheal/dataheal/internal/metrics"
	"github.com/dataheal/dataheal/internal/nlquery"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	verbose    bool

	// Global config and logger
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
)

// Output styles, shared by the commands.
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FAFD7"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D787"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF005F"))
	hintStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#6C6C6C"))
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dataheal",
	Short: "Self-healing data pipeline operator",
	Long: `Dataheal drives an agentic data-engineering loop on AWS: it answers
natural-language questions against the warehouse through a safety-gated
Athena pipeline, and triages Glue job failures by collecting evidence,
asking a Bedrock agent for a diagnosis, and escalating to humans when the
agent cannot auto-remediate.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// runtime bundles the AWS-backed services a command needs. Built once per
// command invocation; commands that never touch AWS skip it entirely.
type runtime struct {
	collector *metrics.Collector
	queries   *nlquery.Pipeline
	healer    *healing.Pipeline
	invoker   *healing.Invoker
	handler   *action.Handler
}

func newRuntime(ctx context.Context) (*runtime, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	model, err := llm.NewModel(cfg, awsCfg)
	if err != nil {
		return nil, fmt.Errorf("init generation model: %w", err)
	}

	collector := metrics.NewCollector()
	glueClient := glue.NewFromConfig(awsCfg)

	fetcher := catalog.NewFetcher(glueClient, cfg.MaxSchemaTables, logger)
	executor := nlquery.NewExecutor(athena.NewFromConfig(awsCfg), nlquery.ExecutorConfig{
		OutputLocation: cfg.OutputLocation,
		WorkGroup:      cfg.WorkGroup,
		PollInterval:   cfg.PollInterval,
		Timeout:        cfg.QueryTimeout,
		MaxResultRows:  cfg.MaxResultRows,
	}, logger)
	queries := nlquery.NewPipeline(fetcher, model, executor, collector, logger)

	evidence := healing.NewCollector(cloudwatchlogs.NewFromConfig(awsCfg), glueClient, healing.CollectorConfig{
		LogGroup:      cfg.ErrorLogGroup,
		MaxLogLines:   cfg.MaxLogLines,
		MaxRunHistory: cfg.MaxRunHistory,
	}, logger)
	invoker := healing.NewInvoker(
		healing.NewBedrockAgent(awsCfg, cfg.AgentID, cfg.AgentAliasID),
		cfg.AgentTimeout,
		logger,
	)
	router := healing.NewRouter(
		cloudwatch.NewFromConfig(awsCfg),
		sns.NewFromConfig(awsCfg),
		cfg.MetricNamespace,
		cfg.EscalationTopicARN,
		logger,
	)
	healer := healing.NewPipeline(evidence, invoker, router, collector, logger)

	return &runtime{
		collector: collector,
		queries:   queries,
		healer:    healer,
		invoker:   invoker,
		handler:   action.NewHandler(queries, cfg.DefaultDatabase, logger),
	}, nil
}

// readInput reads an event payload from a file path, or stdin when the
// path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event file: %w", err)
	}
	return data, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(handleCmd)
}
