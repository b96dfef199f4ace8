package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/verte-zerg/tally/internal/app"
	"github.com/verte-zerg/tally/internal/config"
	"github.com/verte-zerg/tally/internal/model"
	"github.com/verte-zerg/tally/internal/store/redis"
)

const (
	defaultHistoryLimit = 0
	defaultLogLevel     = "info"
)

// options holds the persistent flags shared by every command.
type options struct {
	backend      string
	dbPath       string
	redisURL     string
	redisPrefix  string
	historyLimit int
	recent       int
	logLevel     string
	logFile      string

	// envErr holds the first TALLY_* value that failed to parse.
	envErr error
}

func bindPersistentFlags(cmd *cobra.Command, o *options) {
	v := viper.New()
	v.SetEnvPrefix("TALLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	redisDefaults := redis.DefaultConfig()
	fs.StringVar(&o.backend, "backend", app.BackendSQLite, "storage backend: sqlite, memory or redis (env: TALLY_BACKEND)")
	fs.StringVar(&o.dbPath, "db", config.DefaultDBPath(), "path to the SQLite database (env: TALLY_DB)")
	fs.StringVar(&o.redisURL, "redis-url", redisDefaults.URL, "redis connection URL (env: TALLY_REDIS_URL)")
	fs.StringVar(&o.redisPrefix, "redis-prefix", redisDefaults.Prefix, "namespace for redis keys (env: TALLY_REDIS_PREFIX)")
	fs.IntVar(&o.historyLimit, "history-limit", defaultHistoryLimit, "keep only the newest N games, 0 keeps all (env: TALLY_HISTORY_LIMIT)")
	fs.IntVar(&o.recent, "recent", model.DefaultRecent, "number of recent games shown (env: TALLY_RECENT)")
	fs.StringVar(&o.logLevel, "log-level", defaultLogLevel, "debug, info, warn or error (env: TALLY_LOG_LEVEL)")
	fs.StringVar(&o.logFile, "log-file", config.DefaultLogPath(), "path to the log file (env: TALLY_LOG_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			o.setEnvErr(fmt.Errorf("--%s: %w", f.Name, err))
			return
		}
		if err := v.BindEnv(f.Name); err != nil {
			o.setEnvErr(fmt.Errorf("--%s: %w", f.Name, err))
			return
		}
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		value := fmt.Sprintf("%v", v.Get(f.Name))
		if err := fs.Set(f.Name, value); err != nil {
			o.setEnvErr(fmt.Errorf("--%s: invalid %s value %q", f.Name, envName(f.Name), value))
		}
	})
}

func (o *options) setEnvErr(err error) {
	if o.envErr == nil {
		o.envErr = err
	}
}

func envName(flag string) string {
	return "TALLY_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// resolve fills unset flags from the config file and validates the result.
// Flags and environment variables take precedence over the file.
func (o *options) resolve(cmd *cobra.Command) error {
	if o.envErr != nil {
		return o.envErr
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "backend", &o.backend, fileCfg.Storage.Backend)
	applyStringConfig(cmd, "db", &o.dbPath, fileCfg.Storage.Path)
	applyStringConfig(cmd, "redis-url", &o.redisURL, fileCfg.Storage.RedisURL)
	applyStringConfig(cmd, "redis-prefix", &o.redisPrefix, fileCfg.Storage.RedisPrefix)
	applyIntConfig(cmd, "history-limit", &o.historyLimit, fileCfg.History.Limit)
	applyIntConfig(cmd, "recent", &o.recent, fileCfg.History.Recent)
	applyStringConfig(cmd, "log-level", &o.logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &o.logFile, fileCfg.Log.File)
	return o.validate()
}

func (o *options) validate() error {
	if !slices.Contains(app.Backends, o.backend) {
		return fmt.Errorf("--backend must be one of %s", strings.Join(app.Backends, ", "))
	}
	if o.backend == app.BackendSQLite && strings.TrimSpace(o.dbPath) == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if o.backend == app.BackendRedis && strings.TrimSpace(o.redisURL) == "" {
		return fmt.Errorf("--redis-url must not be empty")
	}
	if o.historyLimit < 0 {
		return fmt.Errorf("--history-limit must be >= 0")
	}
	if o.recent < 0 {
		return fmt.Errorf("--recent must be >= 0")
	}
	if _, err := config.ParseLevel(o.logLevel); err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	if strings.TrimSpace(o.logFile) == "" {
		return fmt.Errorf("--log-file must not be empty")
	}
	return nil
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
	redisDefaults := redis.DefaultConfig()
	return fmt.Sprintf(`# tally configuration
# Uncomment a value to enable it. Flags and TALLY_* environment variables
# override config values.

[storage]
# backend = %q          # sqlite, memory or redis
# path = %q
# redis-url = %q
# redis-prefix = %q

[history]
# limit = %d                   # Keep only the newest N games (0 keeps all)
# recent = %d                  # Recent games shown on the home screen

[log]
# level = %q
# file = %q
`,
		app.BackendSQLite,
		config.DefaultDBPath(),
		redisDefaults.URL,
		redisDefaults.Prefix,
		defaultHistoryLimit,
		model.DefaultRecent,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}
