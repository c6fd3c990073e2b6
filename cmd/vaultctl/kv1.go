package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	vaultkit "github.com/vaultkit/client-go"
	"github.com/vaultkit/client-go/kv1"
)

func newKV1Command(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "kv1", Short: "Read and write secrets in a KV version 1 engine"}
	cmd.AddCommand(
		newKV1GetCommand(a),
		newKV1PutCommand(a),
		newKV1ListCommand(a),
		newKV1DeleteCommand(a),
	)
	return cmd
}

func newKV1GetCommand(a *app) *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "get <mount> <path>",
		Short: "Print a secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (json.RawMessage, error) {
				return kv1.Get[json.RawMessage](ctx, c, args[0], args[1])
			})
			if err != nil {
				return err
			}
			if field != "" {
				value := gjson.GetBytes(data, gjson.Escape(field))
				if !value.Exists() {
					return fmt.Errorf("field %q not present", field)
				}
				_, err := fmt.Fprintln(a.stdout, value.String())
				return err
			}
			return a.printJSON(data)
		},
	}
	cmd.Flags().StringVar(&field, "field", "", "print only this key")
	return cmd
}

func newKV1PutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "put <mount> <path> key=value [key:=json ...]",
		Short: "Write a secret, replacing the previous value",
		Long: "Write a secret. key=value stores a string; key:=value stores raw JSON " +
			"such as numbers, booleans or objects.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := parsePairs(args[2:])
			if err != nil {
				return err
			}
			_, err = withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (struct{}, error) {
				return struct{}{}, kv1.Set(ctx, c, args[0], args[1], data)
			})
			if err != nil {
				return err
			}
			a.logger.Info().Str("path", args[0]+"/"+args[1]).Msg("secret written")
			return nil
		},
	}
}

// parsePairs assembles key=value and key:=json arguments into one object.
func parsePairs(pairs []string) (json.RawMessage, error) {
	out := []byte(`{}`)
	for _, pair := range pairs {
		var err error
		if key, raw, ok := strings.Cut(pair, ":="); ok && !strings.Contains(key, "=") {
			if key == "" || !gjson.Valid(raw) {
				return nil, fmt.Errorf("invalid pair %q: want key:=<json>", pair)
			}
			out, err = sjson.SetRawBytes(out, gjson.Escape(key), []byte(raw))
		} else {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("invalid pair %q: want key=value", pair)
			}
			out, err = sjson.SetBytes(out, gjson.Escape(key), value)
		}
		if err != nil {
			return nil, fmt.Errorf("set %q: %w", pair, err)
		}
	}
	return out, nil
}

func newKV1ListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <mount> [path]",
		Short: "List keys below a path, or at the mount root",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 2 {
				path = args[1]
			}
			keys, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) ([]string, error) {
				return kv1.List(ctx, c, args[0], path)
			})
			if err != nil {
				return err
			}
			for _, key := range keys {
				if _, err := fmt.Fprintln(a.stdout, key); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newKV1DeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <mount> <path>",
		Short: "Delete a secret",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (struct{}, error) {
				return struct{}{}, kv1.Delete(ctx, c, args[0], args[1])
			})
			if err != nil {
				return err
			}
			a.logger.Info().Str("path", args[0]+"/"+args[1]).Msg("secret deleted")
			return nil
		},
	}
}
