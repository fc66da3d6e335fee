package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"kiwoom/pkg/core"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (a *app) printJSON(v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

type tokenOutput struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func (a *app) tokenCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token (au10001)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			// Always exchange credentials, even when a token is configured.
			cfg.AccessToken = ""

			c, err := a.newClient(cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Authenticate(cmd.Context()); err != nil {
				return err
			}
			tok, _ := c.Token()

			out := tokenOutput{
				Token:     core.MaskSecret(tok.AccessToken),
				TokenType: tok.Type.OrElse(""),
			}
			if reveal {
				out.Token = tok.AccessToken
			}
			if exp, ok := tok.ExpiresAt.Get(); ok {
				out.ExpiresAt = exp.Format("2006-01-02T15:04:05Z07:00")
			}
			return a.printJSON(out)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the full token instead of a masked one")
	return cmd
}

func (a *app) stockInfoCommand() *cobra.Command {
	var quote bool

	cmd := &cobra.Command{
		Use:   "stock-info <stock-code>",
		Short: "Fetch basic stock information (ka10001)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			info, err := c.StockInfo.GetBasicInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !quote {
				return a.printJSON(info)
			}

			q, err := info.Quote()
			if err != nil {
				return err
			}
			return a.printJSON(q)
		},
	}
	cmd.Flags().BoolVar(&quote, "quote", false, "print parsed prices instead of the raw fields")
	return cmd
}

func (a *app) streamCommand() *cobra.Command {
	var send []string

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Open the websocket and print every inbound frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.client(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			s, err := c.ConnectWebSocket(ctx, func(data []byte) error {
				_, err := fmt.Fprintln(a.out, string(data))
				return err
			})
			if err != nil {
				return err
			}
			defer s.Close()

			for _, msg := range send {
				if !sonic.Valid([]byte(msg)) {
					return core.NewConfigurationError(fmt.Sprintf("--send value is not JSON: %s", msg), nil)
				}
				if err := s.Send([]byte(msg)); err != nil {
					return err
				}
			}

			err = s.Wait(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringArrayVar(&send, "send", nil, "JSON frame to send after connecting (repeatable)")
	return cmd
}
