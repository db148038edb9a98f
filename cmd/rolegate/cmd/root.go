package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/config"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfg *config.Config

	envFile  string
	port     int
	logLevel string
}

// codec builds the token codec from the loaded configuration.
func (a *app) codec() *auth.TokenCodec {
	return auth.NewTokenCodec(auth.CodecConfig{
		Secret: a.cfg.Secret,
		TTL:    a.cfg.TokenTTL,
		Issuer: a.cfg.Issuer,
	})
}

// loadConfig reads the environment and applies flag overrides.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context(), config.Options{EnvFile: a.envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = a.port
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.cfg = cfg
	return nil
}

// NewRootCmd builds the rolegate command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "rolegate",
		Short: "Role-based JWT authentication gateway",
		Long: `rolegate issues signed bearer tokens on login and gates HTTP resources
by the role claim carried in those tokens.

Configuration is read from the environment and an optional .env file.
JWT_SECRET is required.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.loadConfig,
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "Path to a dotenv file (default .env if present)")
	root.PersistentFlags().IntVar(&a.port, "port", config.DefaultPort, "Listen port (env: PORT)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", config.DefaultLogLevel, "debug|info|warn|error (env: LOG_LEVEL)")

	root.AddCommand(
		newServeCmd(a),
		newTokenCmd(a),
		newUsersCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
