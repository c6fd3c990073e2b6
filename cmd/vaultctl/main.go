// Command vaultctl runs token, KV v1 and mount operations from the shell.
//
//	vaultctl --address http://127.0.0.1:8200 --token root kv1 put kv_v1 mysecret/foo key1=value1
//	vaultctl kv1 get kv_v1 mysecret/foo
//
// Settings come from --config, then VAULT_* variables (optionally loaded
// from --env-file), then flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	vaultkit "github.com/vaultkit/client-go"
	"github.com/vaultkit/client-go/retry"
)

const defaultEnvFile = ".env"

// app holds the global flags shared by every subcommand.
type app struct {
	configPath string
	envFile    string
	address    string
	token      string
	namespace  string
	timeout    time.Duration
	retries    int
	logLevel   string

	logger zerolog.Logger
	stdout io.Writer
}

func run(args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "vaultctl",
		Short:         "Token, KV v1 and mount operations against a secrets server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(stderr, a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			return a.loadEnv()
		},
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.envFile, "env-file", defaultEnvFile, "dotenv file with VAULT_* variables")
	flags.StringVar(&a.address, "address", "", "server address (overrides VAULT_ADDR)")
	flags.StringVar(&a.token, "token", "", "token (overrides VAULT_TOKEN)")
	flags.StringVar(&a.namespace, "namespace", "", "namespace (overrides VAULT_NAMESPACE)")
	flags.DurationVar(&a.timeout, "timeout", 0, "per-request timeout")
	flags.IntVar(&a.retries, "retries", 0, "retries for transient failures")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default from "+envLogLevel+")")

	root.AddCommand(newTokenCommand(a), newKV1Command(a), newMountCommand(a))

	return root.ExecuteContext(context.Background())
}

// loadEnv loads the dotenv file without overriding variables already set.
// A missing default file is not an error.
func (a *app) loadEnv() error {
	if a.envFile == "" {
		return nil
	}
	err := godotenv.Load(a.envFile)
	if errors.Is(err, fs.ErrNotExist) && a.envFile == defaultEnvFile {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", a.envFile, err)
	}
	a.logger.Debug().Str("file", a.envFile).Msg("loaded environment file")
	return nil
}

func (a *app) client() (*vaultkit.Client, error) {
	cfg, err := vaultkit.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}

	opts := []vaultkit.Option{vaultkit.WithLogger(a.logger)}
	if a.address != "" {
		opts = append(opts, vaultkit.WithAddress(a.address))
	}
	if a.token != "" {
		opts = append(opts, vaultkit.WithToken(a.token))
	}
	if a.namespace != "" {
		opts = append(opts, vaultkit.WithNamespace(a.namespace))
	}
	if a.timeout > 0 {
		opts = append(opts, vaultkit.WithTimeout(a.timeout))
	}

	return vaultkit.NewFromConfig(cfg, opts...)
}

func (a *app) retryConfig() *retry.Config {
	cfg := retry.DefaultConfig()
	cfg.MaxRetries = a.retries
	cfg.BaseDelay = 200 * time.Millisecond
	return cfg
}

// withClient builds a client and runs fn under the retry policy.
func withClient[T any](cmd *cobra.Command, a *app, fn func(ctx context.Context, c *vaultkit.Client) (T, error)) (T, error) {
	c, err := a.client()
	if err != nil {
		var zero T
		return zero, err
	}
	return retry.Value(cmd.Context(), a.retryConfig(), func(ctx context.Context) (T, error) {
		result, err := fn(ctx, c)
		if err != nil {
			a.logger.Debug().Err(err).Str("command", cmd.CommandPath()).Msg("attempt failed")
		}
		return result, err
	})
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
