package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/you/storefront/internal/app"
)

func emitCart(shop *app.Container, out *OutputFormatter) error {
	cart := shop.Cart.Snapshot()
	return out.Emit(cart, func(w io.Writer) { RenderCart(w, cart) })
}

func newCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Cart.Fetch(ctx); err != nil {
					return err
				}
				return emitCart(shop, out)
			})
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE:  cmd.RunE,
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Cart.Add(ctx, args[0], quantity); err != nil {
					return err
				}
				return emitCart(shop, out)
			})
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")

	update := &cobra.Command{
		Use:   "update <product-id> <quantity>",
		Short: "Set a line's quantity; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]), err)
			}
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Cart.Fetch(ctx); err != nil {
					return err
				}
				var err error
				if qty < 1 {
					err = shop.Cart.Remove(ctx, args[0])
				} else {
					err = shop.Cart.UpdateQuantity(ctx, args[0], qty)
				}
				if err != nil {
					return err
				}
				return emitCart(shop, out)
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Cart.Remove(ctx, args[0]); err != nil {
					return err
				}
				return emitCart(shop, out)
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Cart.Clear(ctx); err != nil {
					return err
				}
				return out.Message("Panier vidé")
			})
		},
	}

	cmd.AddCommand(show, add, update, remove, clearCmd)
	return cmd
}
