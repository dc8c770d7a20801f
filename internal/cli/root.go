// Package cli is the terminal storefront. Every invocation bootstraps the
// session from the persistent token store, the way a page load does.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/you/storefront/internal/app"
	"github.com/you/storefront/internal/config"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json"
	ConfigPath string
	APIURL     string
	Ephemeral  bool
}

// ValidFormats defines the allowed output formats
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Lumina storefront in the terminal",
		Long:          "Browse the catalog, manage the cart and wishlist, and place orders against a storefront API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats)}
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api", "", "API base URL, overrides the config")
	cmd.PersistentFlags().BoolVar(&opts.Ephemeral, "ephemeral", false, "keep the session in memory for this run only")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newCartCommand(opts),
		newWishlistCommand(opts),
		newProductsCommand(opts),
		newProductCommand(opts),
		newCategoriesCommand(opts),
		newCheckoutCommand(opts),
		newOrdersCommand(opts),
		newAdminCommand(opts),
	)
	return cmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		return GetExitCode(err)
	}
	return ExitSuccess
}

type shopFunc func(ctx context.Context, shop *app.Container, out *OutputFormatter) error

// withShop loads config, starts a container for the duration of fn and
// closes it afterwards
func (o *RootOptions) withShop(cmd *cobra.Command, fn shopFunc) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "configuration", err)
	}
	if o.APIURL != "" {
		cfg.APIBaseURL = o.APIURL
	}
	if o.Ephemeral {
		cfg.TokenDriver = "memory"
	}

	level := "error"
	if o.Verbose {
		level = "debug"
	}
	logger, err := app.NewLogger(level, o.Verbose)
	if err != nil {
		return WrapExitError(ExitCommandError, "logger", err)
	}
	defer logger.Sync()

	shop, err := app.NewContainer(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "startup", err)
	}
	defer shop.Close()

	ctx := cmd.Context()
	shop.Start(ctx)
	return fn(ctx, shop, &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()})
}
