package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "SHIFTS"

var (
	configDir string
	clearData bool
)

var rootCmd = &cobra.Command{
	Use:   "shifts-logger",
	Short: "Shifts Logger",
	Long:  `Records employee work shifts behind token-authenticated sessions.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configKeys are bound to SHIFTS_* environment variables so a deployment
// can run without a config file.
var configKeys = []string{
	"http_server.port",
	"http_server.base_url",
	"http_server.allowed_origins",
	"http_server.openapi_path",
	"http_server.read_header_timeout",
	"http_server.read_timeout",
	"http_server.idle_timeout",
	"http_server.write_timeout",
	"database.source",
	"database.max_open_conns",
	"database.max_idle_conns",
	"database.conn_max_lifetime",
	"database.conn_max_idle_time",
	"security.jwt_key",
	"security.issuer",
	"security.audience",
	"security.access_token_duration",
	"security.refresh_token_expiration_days",
	"security.bcrypt_cost",
	"observability.metrics.enabled",
	"observability.metrics.path",
	"observability.logging.env",
	"observability.logging.level",
	"observability.logging.format",
	"client.base_url",
	"client.token_file",
	"client.timeout",
}

// readConfig loads config.yml from path, overlaid with SHIFTS_* variables,
// and fills defaults. It does not validate.
func readConfig(path string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

func loadConfig(path string) (*internal.Config, error) {
	cfg, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return cfg, nil
}

func setupLogger(cfg *internal.Config) *slog.Logger {
	return logger.Setup(logger.Options{
		Env:    cfg.Observability.Logging.Env,
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
	})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
