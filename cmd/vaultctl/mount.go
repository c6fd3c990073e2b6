package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	vaultkit "github.com/vaultkit/client-go"
	"github.com/vaultkit/client-go/sys"
)

func newMountCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "mount", Short: "Enable, list and disable secrets engines"}

	var (
		description string
		options     map[string]string
	)
	enable := &cobra.Command{
		Use:   "enable <path> <type>",
		Short: "Mount a secrets engine",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := sys.NewEnableMountRequest().Description(description).Options(options)
			_, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (struct{}, error) {
				return struct{}{}, sys.EnableMount(ctx, c, args[0], args[1], opts)
			})
			return err
		},
	}
	enable.Flags().StringVar(&description, "description", "", "human-readable description")
	enable.Flags().StringToStringVar(&options, "option", nil, "engine option key=value (repeatable)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List mounted engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mounts, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (map[string]sys.MountInfo, error) {
				return sys.ListMounts(ctx, c)
			})
			if err != nil {
				return err
			}
			for _, path := range slices.Sorted(maps.Keys(mounts)) {
				if _, err := fmt.Fprintf(a.stdout, "%s/\t%s\n", path, mounts[path].Type); err != nil {
					return err
				}
			}
			return nil
		},
	}

	disable := &cobra.Command{
		Use:   "disable <path>",
		Short: "Unmount a secrets engine and destroy its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (struct{}, error) {
				return struct{}{}, sys.DisableMount(ctx, c, args[0])
			})
			return err
		},
	}

	cmd.AddCommand(enable, list, disable)
	return cmd
}
