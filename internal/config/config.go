// Package config holds process-wide configuration for dataheal.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Generation provider identifiers.
const (
	ProviderBedrock = "bedrock"
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
)

// Config holds all configuration values. It is built once at startup and
// passed explicitly to every component constructor.
type Config struct {
	// AWS
	Region string

	// Generation model
	Provider     string
	ModelID      string
	MaxTokens    int
	OllamaHost   string
	OpenAIAPIKey string

	// Bedrock agent (failure triage)
	AgentID      string
	AgentAliasID string
	AgentTimeout time.Duration

	// Athena execution
	OutputLocation  string
	WorkGroup       string
	DefaultDatabase string
	PollInterval    time.Duration
	QueryTimeout    time.Duration
	MaxResultRows   int32

	// Catalog context
	MaxSchemaTables int

	// Failure evidence
	ErrorLogGroup string
	MaxLogLines   int32
	MaxRunHistory int32

	// Alerting / metrics
	EscalationTopicARN string
	MetricNamespace    string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables, then overlays the
// optional YAML config file when path is non-empty.
func Load(path string) (Config, error) {
	cfg := Config{
		Region: getEnv("AWS_REGION", "us-east-1"),

		Provider:     getEnv("DATAHEAL_PROVIDER", ProviderBedrock),
		ModelID:      getEnv("DATAHEAL_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		MaxTokens:    getEnvInt("DATAHEAL_MAX_TOKENS", 512),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		AgentID:      getEnv("DATAHEAL_AGENT_ID", ""),
		AgentAliasID: getEnv("DATAHEAL_AGENT_ALIAS_ID", "PROD"),
		AgentTimeout: getEnvDuration("DATAHEAL_AGENT_TIMEOUT", 120*time.Second),

		OutputLocation:  getEnv("DATAHEAL_ATHENA_OUTPUT", "s3://my-athena-results/agent-queries/"),
		WorkGroup:       getEnv("DATAHEAL_ATHENA_WORKGROUP", "primary"),
		DefaultDatabase: getEnv("DATAHEAL_DATABASE", "data_warehouse"),
		PollInterval:    getEnvDuration("DATAHEAL_POLL_INTERVAL", 2*time.Second),
		QueryTimeout:    getEnvDuration("DATAHEAL_QUERY_TIMEOUT", 60*time.Second),
		MaxResultRows:   int32(getEnvInt("DATAHEAL_MAX_RESULT_ROWS", 100)),

		MaxSchemaTables: getEnvInt("DATAHEAL_MAX_SCHEMA_TABLES", 10),

		ErrorLogGroup: getEnv("DATAHEAL_ERROR_LOG_GROUP", "/aws-glue/jobs/error"),
		MaxLogLines:   int32(getEnvInt("DATAHEAL_MAX_LOG_LINES", 20)),
		MaxRunHistory: int32(getEnvInt("DATAHEAL_MAX_RUN_HISTORY", 3)),

		EscalationTopicARN: getEnv("DATAHEAL_ESCALATION_TOPIC_ARN", ""),
		MetricNamespace:    getEnv("DATAHEAL_METRIC_NAMESPACE", "AgenticDE/SelfHealing"),

		LogFile:  getEnv("DATAHEAL_LOG_FILE", "/tmp/dataheal.log"),
		LogLevel: parseLogLevel(getEnv("DATAHEAL_LOG_LEVEL", "INFO")),
	}

	if path == "" {
		path = os.Getenv("DATAHEAL_CONFIG")
	}
	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, fmt.Errorf("load config file: %w", err)
		}
	}

	return cfg, nil
}

// fileConfig is the YAML shape of the optional config file. Only set fields
// override the environment.
type fileConfig struct {
	Region             string `yaml:"region"`
	Provider           string `yaml:"provider"`
	ModelID            string `yaml:"model_id"`
	AgentID            string `yaml:"agent_id"`
	AgentAliasID       string `yaml:"agent_alias_id"`
	AgentTimeout       string `yaml:"agent_timeout"`
	OutputLocation     string `yaml:"athena_output"`
	WorkGroup          string `yaml:"athena_workgroup"`
	DefaultDatabase    string `yaml:"database"`
	QueryTimeout       string `yaml:"query_timeout"`
	ErrorLogGroup      string `yaml:"error_log_group"`
	EscalationTopicARN string `yaml:"escalation_topic_arn"`
	LogFile            string `yaml:"log_file"`
	LogLevel           string `yaml:"log_level"`
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}

	setIf(&c.Region, fc.Region)
	setIf(&c.Provider, fc.Provider)
	setIf(&c.ModelID, fc.ModelID)
	setIf(&c.AgentID, fc.AgentID)
	setIf(&c.AgentAliasID, fc.AgentAliasID)
	setIf(&c.OutputLocation, fc.OutputLocation)
	setIf(&c.WorkGroup, fc.WorkGroup)
	setIf(&c.DefaultDatabase, fc.DefaultDatabase)
	setIf(&c.ErrorLogGroup, fc.ErrorLogGroup)
	setIf(&c.EscalationTopicARN, fc.EscalationTopicARN)
	setIf(&c.LogFile, fc.LogFile)

	if fc.AgentTimeout != "" {
		d, err := time.ParseDuration(fc.AgentTimeout)
		if err != nil {
			return fmt.Errorf("agent_timeout: %w", err)
		}
		c.AgentTimeout = d
	}
	if fc.QueryTimeout != "" {
		d, err := time.ParseDuration(fc.QueryTimeout)
		if err != nil {
			return fmt.Errorf("query_timeout: %w", err)
		}
		c.QueryTimeout = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = parseLogLevel(fc.LogLevel)
	}

	return nil
}

func setIf(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
