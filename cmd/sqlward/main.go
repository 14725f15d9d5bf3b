// Package main provides the entry point for the sqlward CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sqlward/sqlward/cmd/sqlward/config"
	"github.com/sqlward/sqlward/pkg/audit"
	"github.com/sqlward/sqlward/pkg/auth"
	"github.com/sqlward/sqlward/pkg/engine"
	"github.com/sqlward/sqlward/pkg/executor"
	"github.com/sqlward/sqlward/pkg/metrics"
	"github.com/sqlward/sqlward/pkg/models"
	"github.com/sqlward/sqlward/pkg/rbac"
	"github.com/sqlward/sqlward/pkg/sqlparse"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sqlward",
	Short: "SQL safety and access-control validation",
	Long: `Validate untrusted SQL against a safety policy and role-based access
control before it reaches a database.

sqlward decides whether a single SQL statement may run under the active
safety mode for the caller's roles, and explains every rejection.`,
	SilenceUsage: true,
}

var validateCmd = &cobra.Command{
	Use:   "validate [sql]",
	Short: "Validate a SQL statement without executing it",
	Long: `Validate a single SQL statement and print the decision.

The statement is read from the argument, or from stdin when no argument is
given. The exit code is 0 when the statement is allowed and 1 when it is
rejected.

Example:
  sqlward validate --mode strict --roles viewer "SELECT * FROM sales WHERE year_id = 2004"
  echo "DROP TABLE sales;" | sqlward validate --roles admin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

var runCmd = &cobra.Command{
	Use:   "run [sql]",
	Short: "Validate a SQL statement and execute it against DuckDB",
	Long: `Validate a single SQL statement and, if it passes every gate, execute it
against the configured DuckDB database.

Example:
  sqlward run --database ./warehouse.db --mode moderate --roles analyst "SELECT customername FROM customers"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExecute,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed access token for the given user and roles",
	RunE:  runToken,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(tokenCmd)

	// Flags shared by validate and run
	for _, cmd := range []*cobra.Command{validateCmd, runCmd} {
		cmd.Flags().StringP("config", "c", "", "config file path")
		cmd.Flags().String("mode", "strict", "safety mode (strict, moderate, permissive)")
		cmd.Flags().StringSlice("roles", nil, "caller role names")
		cmd.Flags().Bool("dangerous", false, "assert the dangerous-query capability")
		cmd.Flags().String("token", "", "bearer token carrying the caller identity")
		cmd.Flags().String("database", ":memory:", "DuckDB database path")
		cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
		cmd.Flags().Bool("json", false, "print the decision as JSON")
	}

	tokenCmd.Flags().StringP("config", "c", "", "config file path")
	tokenCmd.Flags().String("user", "", "token subject")
	tokenCmd.Flags().StringSlice("roles", nil, "role names to embed")
	tokenCmd.Flags().Bool("dangerous", false, "embed the dangerous-query capability")
	tokenCmd.Flags().String("secret", "", "signing secret")
	tokenCmd.Flags().Duration("ttl", time.Hour, "token lifetime")

	viper.SetEnvPrefix("SQLWARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sqlward\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogging(cfg.LogLevel)

	req, err := buildRequest(cmd, cfg, args)
	if err != nil {
		return err
	}

	eng := newEngine(cfg, logger)
	recorder := audit.NewLogRecorder(logger.With().Str("component", "audit").Logger())

	decision, err := eng.Validate(req)
	if err != nil {
		return err
	}
	recorder.Record(models.AuditRecord{
		Roles:  req.Roles,
		Mode:   req.Mode,
		Query:  req.SQL,
		Result: decision,
	})

	return printDecision(cmd, decision)
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := setupLogging(cfg.LogLevel)

	req, err := buildRequest(cmd, cfg, args)
	if err != nil {
		return err
	}

	eng := newEngine(cfg, logger)
	ex, err := executor.New(cfg.Database, eng, logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = ex.Close() }()

	decision, result, err := ex.Execute(context.Background(), req)
	if err != nil {
		if !decision.IsValid {
			_ = printDecision(cmd, decision)
			os.Exit(1)
		}
		return err
	}

	return printRows(cmd, result)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	secret, _ := cmd.Flags().GetString("secret")
	if secret == "" {
		secret = cfg.Auth.Secret
	}
	if secret == "" {
		return fmt.Errorf("a signing secret is required (--secret or config)")
	}
	user, _ := cmd.Flags().GetString("user")
	if user == "" {
		return fmt.Errorf("--user is required")
	}
	roles, _ := cmd.Flags().GetStringSlice("roles")
	dangerous, _ := cmd.Flags().GetBool("dangerous")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	verifier := auth.NewVerifier(auth.Config{
		Secret:   secret,
		Issuer:   cfg.Auth.Issuer,
		TokenTTL: ttl,
	}, zerolog.Nop())

	token, err := verifier.Issue(auth.Identity{
		Username:            user,
		Roles:               roles,
		MayExecuteDangerous: dangerous,
	}, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func newEngine(cfg *config.Config, logger zerolog.Logger) *engine.Engine {
	parser := sqlparse.NewParser()
	parser.MaxStatementLength = cfg.MaxStatementLength
	return engine.New(rbac.DefaultResolver(), logger, metrics.NewNoOpCollector()).WithParser(parser)
}

// buildRequest assembles a validation request from flags, config, and either
// the SQL argument or stdin. A bearer token, when given, is the identity
// source and overrides the role flags.
func buildRequest(cmd *cobra.Command, cfg *config.Config, args []string) (models.ValidationRequest, error) {
	sqlText, err := readSQL(cmd, args)
	if err != nil {
		return models.ValidationRequest{}, err
	}

	mode, _ := cmd.Flags().GetString("mode")
	if !cmd.Flags().Changed("mode") && cfg.Mode != "" {
		mode = cfg.Mode
	}

	roles, _ := cmd.Flags().GetStringSlice("roles")
	dangerous, _ := cmd.Flags().GetBool("dangerous")

	if token, _ := cmd.Flags().GetString("token"); token != "" {
		if cfg.Auth.Secret == "" {
			return models.ValidationRequest{}, fmt.Errorf("token verification requires an auth secret in the config")
		}
		verifier := auth.NewVerifier(auth.Config{
			Secret:   cfg.Auth.Secret,
			Issuer:   cfg.Auth.Issuer,
			TokenTTL: cfg.Auth.TokenTTL,
		}, zerolog.Nop())
		id, err := verifier.Verify(token)
		if err != nil {
			return models.ValidationRequest{}, err
		}
		roles = id.Roles
		dangerous = id.MayExecuteDangerous
	}

	return models.ValidationRequest{
		SQL:                 sqlText,
		Roles:               roles,
		MayExecuteDangerous: dangerous,
		Mode:                mode,
	}, nil
}

func readSQL(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read statement from stdin: %w", err)
	}
	return string(data), nil
}

// printDecision writes the decision and exits nonzero on rejection.
func printDecision(cmd *cobra.Command, decision models.ValidationResult) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(decision); err != nil {
			return err
		}
	} else if decision.IsValid {
		fmt.Fprintf(out, "ALLOWED  tables: %s\n", strings.Join(decision.TablesAccessed, ", "))
	} else {
		fmt.Fprintf(out, "REJECTED (%s): %s\n", decision.Reason, decision.ErrorMessage)
		if decision.Explanation != "" {
			fmt.Fprintln(out, decision.Explanation)
		}
	}

	if !decision.IsValid {
		os.Exit(1)
	}
	return nil
}

func printRows(cmd *cobra.Command, result *models.QueryResult) error {
	out := cmd.OutOrStdout()

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(out, strings.Join(result.Columns, "\t"))
	for _, row := range result.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(out, strings.Join(cells, "\t"))
	}
	if result.Truncated {
		fmt.Fprintf(out, "(truncated at %d rows)\n", result.RowCount)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	// Load config file if specified
	if configFile, _ := cmd.Flags().GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := config.DefaultConfig()
	if v := viper.GetString("database"); v != "" {
		cfg.Database = v
	}
	if v := viper.GetString("mode"); v != "" {
		cfg.Mode = v
	}
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetInt("max_statement_length"); v > 0 {
		cfg.MaxStatementLength = v
	}
	cfg.Auth.Enabled = viper.GetBool("auth.enabled")
	if v := viper.GetString("auth.secret"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := viper.GetString("auth.issuer"); v != "" {
		cfg.Auth.Issuer = v
	}
	if v := viper.GetDuration("auth.token_ttl"); v > 0 {
		cfg.Auth.TokenTTL = v
	}

	// Flags beat config file values
	if cmd.Flags().Changed("database") {
		cfg.Database, _ = cmd.Flags().GetString("database")
	}
	if cmd.Flags().Changed("mode") {
		cfg.Mode, _ = cmd.Flags().GetString("mode")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "sqlward")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}
