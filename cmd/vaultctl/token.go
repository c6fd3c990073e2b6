package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	vaultkit "github.com/vaultkit/client-go"
	"github.com/vaultkit/client-go/endpoint"
	"github.com/vaultkit/client-go/token"
)

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Look up, create, renew and revoke tokens"}
	cmd.AddCommand(
		newTokenLookupCommand(a),
		newTokenCreateCommand(a),
		newTokenRenewCommand(a),
		newTokenRevokeCommand(a),
		newTokenWatchCommand(a),
	)
	return cmd
}

func newTokenLookupCommand(a *app) *cobra.Command {
	var accessor bool
	cmd := &cobra.Command{
		Use:   "lookup [token|accessor]",
		Short: "Show token properties; without an argument, the calling token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (*token.LookupResponse, error) {
				switch {
				case len(args) == 0 && accessor:
					return nil, errors.New("--accessor needs an accessor argument")
				case len(args) == 0:
					return token.LookupSelf(ctx, c)
				case accessor:
					return token.LookupAccessor(ctx, c, args[0])
				default:
					return token.Lookup(ctx, c, args[0])
				}
			})
			if err != nil {
				return err
			}
			return a.printJSON(info)
		},
	}
	cmd.Flags().BoolVar(&accessor, "accessor", false, "treat the argument as an accessor")
	return cmd
}

// createFlags mirrors the optional fields of token creation.
type createFlags struct {
	role            string
	orphan          bool
	id              string
	policies        []string
	meta            map[string]string
	noDefaultPolicy bool
	renewable       bool
	ttl             string
	explicitMaxTTL  string
	period          string
	tokenType       string
	displayName     string
	numUses         int
	entityAlias     string
}

// createSetter is satisfied by every token creation builder.
type createSetter[B any] interface {
	ID(string) B
	Policies(...string) B
	Meta(map[string]string) B
	NoDefaultPolicy(bool) B
	Renewable(bool) B
	TTL(string) B
	ExplicitMaxTTL(string) B
	Period(string) B
	Type(string) B
	DisplayName(string) B
	NumUses(int) B
	EntityAlias(string) B
}

func applyCreateFlags[B createSetter[B]](cmd *cobra.Command, b B, f *createFlags) B {
	b.ID(f.id).
		Policies(f.policies...).
		Meta(f.meta).
		NoDefaultPolicy(f.noDefaultPolicy).
		TTL(f.ttl).
		ExplicitMaxTTL(f.explicitMaxTTL).
		Period(f.period).
		Type(f.tokenType).
		DisplayName(f.displayName).
		NumUses(f.numUses).
		EntityAlias(f.entityAlias)
	if cmd.Flags().Changed("renewable") {
		b.Renewable(f.renewable)
	}
	return b
}

func newTokenCreateCommand(a *app) *cobra.Command {
	f := &createFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a child, orphan or role-based token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.role != "" && f.orphan {
				return errors.New("--role and --orphan are mutually exclusive")
			}
			auth, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (*endpoint.AuthInfo, error) {
				switch {
				case f.role != "":
					return token.NewRole(ctx, c, f.role, applyCreateFlags(cmd, token.NewCreateRoleRequest(), f))
				case f.orphan:
					return token.NewOrphan(ctx, c, applyCreateFlags(cmd, token.NewCreateOrphanRequest(), f))
				default:
					return token.New(ctx, c, applyCreateFlags(cmd, token.NewCreateRequest(), f))
				}
			})
			if err != nil {
				return err
			}
			return a.printJSON(auth)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.role, "role", "", "create the token from this role")
	flags.BoolVar(&f.orphan, "orphan", false, "create the token without a parent")
	flags.StringVar(&f.id, "id", "", "token ID instead of a generated one")
	flags.StringSliceVar(&f.policies, "policy", nil, "policy to attach (repeatable)")
	flags.StringToStringVar(&f.meta, "metadata", nil, "metadata key=value (repeatable)")
	flags.BoolVar(&f.noDefaultPolicy, "no-default-policy", false, "leave out the default policy")
	flags.BoolVar(&f.renewable, "renewable", true, "allow renewal")
	flags.StringVar(&f.ttl, "ttl", "", "initial TTL, e.g. 1h")
	flags.StringVar(&f.explicitMaxTTL, "explicit-max-ttl", "", "hard lifetime cap")
	flags.StringVar(&f.period, "period", "", "make the token periodic")
	flags.StringVar(&f.tokenType, "type", "", "service or batch")
	flags.StringVar(&f.displayName, "display-name", "", "display name")
	flags.IntVar(&f.numUses, "use-limit", 0, "number of uses, 0 for unlimited")
	flags.StringVar(&f.entityAlias, "entity-alias", "", "entity alias (role tokens only)")
	return cmd
}

func newTokenRenewCommand(a *app) *cobra.Command {
	var (
		accessor  bool
		increment string
	)
	cmd := &cobra.Command{
		Use:   "renew [token|accessor]",
		Short: "Renew a token lease; without an argument, the calling token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (*endpoint.AuthInfo, error) {
				switch {
				case len(args) == 0 && accessor:
					return nil, errors.New("--accessor needs an accessor argument")
				case len(args) == 0:
					return token.RenewSelf(ctx, c, increment)
				case accessor:
					return token.RenewAccessor(ctx, c, args[0], increment)
				default:
					return token.Renew(ctx, c, args[0], increment)
				}
			})
			if err != nil {
				return err
			}
			return a.printJSON(auth)
		},
	}
	cmd.Flags().BoolVar(&accessor, "accessor", false, "treat the argument as an accessor")
	cmd.Flags().StringVar(&increment, "increment", "", "requested extension, e.g. 1h")
	return cmd
}

func newTokenRevokeCommand(a *app) *cobra.Command {
	var accessor, orphan, self bool
	cmd := &cobra.Command{
		Use:   "revoke [token|accessor]",
		Short: "Revoke a token and, unless --orphan, its children",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if self != (len(args) == 0) {
				return errors.New("pass either a token argument or --self")
			}
			_, err := withClient(cmd, a, func(ctx context.Context, c *vaultkit.Client) (struct{}, error) {
				switch {
				case self:
					return struct{}{}, token.RevokeSelf(ctx, c)
				case accessor:
					return struct{}{}, token.RevokeAccessor(ctx, c, args[0])
				case orphan:
					return struct{}{}, token.RevokeOrphan(ctx, c, args[0])
				default:
					return struct{}{}, token.Revoke(ctx, c, args[0])
				}
			})
			if err != nil {
				return err
			}
			a.logger.Info().Msg("token revoked")
			return nil
		},
	}
	cmd.Flags().BoolVar(&accessor, "accessor", false, "treat the argument as an accessor")
	cmd.Flags().BoolVar(&orphan, "orphan", false, "keep the token's children as orphans")
	cmd.Flags().BoolVar(&self, "self", false, "revoke the calling token")
	return cmd
}

func newTokenWatchCommand(a *app) *cobra.Command {
	var cfg token.WatcherConfig
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the calling token alive until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c, err := a.client()
			if err != nil {
				return err
			}
			info, err := token.LookupSelf(ctx, c)
			if err != nil {
				return err
			}

			var final error
			w := token.NewWatcher(c, info.Remaining(), cfg)
			w.OnRenewal(func(e token.RenewalEvent) {
				switch {
				case e.Final:
					final = e.Err
				case e.Err != nil:
					a.logger.Warn().Err(e.Err).Msg("renewal failed, retrying")
				default:
					a.logger.Info().Dur("lease", e.Auth.LeaseTTL()).Msg("token renewed")
				}
			})
			if err := w.Start(ctx); err != nil {
				return err
			}
			a.logger.Info().Str("accessor", info.Accessor).Dur("ttl", info.Remaining()).Msg("watching token")

			<-w.Done()
			return final
		},
	}
	cmd.Flags().StringVar(&cfg.Increment, "increment", "", "requested extension per renewal")
	cmd.Flags().DurationVar(&cfg.RetryInterval, "retry-interval", token.DefaultRetryInterval, "wait after a failed renewal")
	return cmd
}
