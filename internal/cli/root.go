// Package cli is the kiwoom command line. Configuration comes from flags,
// KIWOOM_* environment variables and an optional $HOME/.kiwoom.yaml.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"kiwoom/pkg/core"
	"kiwoom/pkg/kiwoom"
)

const envPrefix = "KIWOOM"

// Configuration keys. Each is also read from KIWOOM_<KEY>.
const (
	keyAppKey       = "app_key"
	keySecretKey    = "secret_key"
	keyServerType   = "api_server_type"
	keyAccessToken  = "access_token"
	keyLogLevel     = "log_level"
	keyBaseURL      = "base_url"
	keyWebSocketURL = "websocket_url"
	keyTimeout      = "timeout"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	out     io.Writer
	errOut  io.Writer
	logger  zerolog.Logger
}

// NewRootCommand builds the command tree writing results to out and logs to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut, logger: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "kiwoom",
		Short:         "Call the Kiwoom brokerage REST and WebSocket API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.kiwoom.yaml)")
	flags.String("server-type", "production", "server environment: production or sandbox")
	flags.String("log-level", "warn", "log level: debug, info, warn or error")
	flags.Duration("timeout", 10*time.Second, "HTTP request timeout")
	_ = a.v.BindPFlag(keyServerType, flags.Lookup("server-type"))
	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyTimeout, flags.Lookup("timeout"))

	root.AddCommand(
		a.tokenCommand(),
		a.stockInfoCommand(),
		a.streamCommand(),
	)
	return root
}

func (a *app) initConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	for _, key := range []string{keyAppKey, keySecretKey, keyAccessToken, keyBaseURL, keyWebSocketURL} {
		_ = a.v.BindEnv(key)
	}

	a.v.SetConfigType("yaml")
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigName(".kiwoom")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	level, err := zerolog.ParseLevel(a.v.GetString(keyLogLevel))
	if err != nil {
		return core.NewConfigurationError("invalid log level", err)
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{Out: a.errOut}).
		Level(level).
		With().Timestamp().Logger()

	return nil
}

func (a *app) config() (*core.Config, error) {
	serverType, err := core.ParseServerType(a.v.GetString(keyServerType))
	if err != nil {
		return nil, err
	}

	cfg := core.DefaultConfig().
		WithCredentials(a.v.GetString(keyAppKey), a.v.GetString(keySecretKey)).
		WithServerType(serverType).
		WithAccessToken(a.v.GetString(keyAccessToken)).
		WithTimeout(a.v.GetDuration(keyTimeout))
	cfg.BaseURL = a.v.GetString(keyBaseURL)
	cfg.WebSocketURL = a.v.GetString(keyWebSocketURL)
	cfg.LogLevel = a.v.GetString(keyLogLevel)

	return cfg, nil
}

// client builds a client and makes sure it holds a token, issuing one
// unless an access token was configured.
func (a *app) client(ctx context.Context) (*kiwoom.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	c, err := a.newClient(cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := c.Token(); !ok {
		if err := c.Authenticate(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (a *app) newClient(cfg *core.Config) (*kiwoom.Client, error) {
	return kiwoom.New(cfg, kiwoom.WithLogger(a.logger))
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, cancel := signalContext()
	defer cancel()

	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
