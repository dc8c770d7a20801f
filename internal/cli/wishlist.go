package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/you/storefront/internal/app"
)

func emitWishlist(shop *app.Container, out *OutputFormatter) error {
	wl := shop.Wishlist.Snapshot()
	return out.Emit(wl, func(w io.Writer) { RenderWishlist(w, wl) })
}

// wishlistAction builds a subcommand applying op to one product
func wishlistAction(opts *RootOptions, use, short string, op func(ctx context.Context, shop *app.Container, productID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := op(ctx, shop, args[0]); err != nil {
					return err
				}
				return emitWishlist(shop, out)
			})
		},
	}
}

func newWishlistCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show or change the wishlist (signed-in only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if err := shop.Wishlist.Fetch(ctx); err != nil {
					return err
				}
				return emitWishlist(shop, out)
			})
		},
	}

	show := &cobra.Command{Use: "show", Short: "Show the wishlist", Args: cobra.NoArgs, RunE: cmd.RunE}

	add := wishlistAction(opts, "add", "Save a product", func(ctx context.Context, shop *app.Container, id string) error {
		return shop.Wishlist.Add(ctx, id)
	})
	remove := wishlistAction(opts, "remove", "Drop a saved product", func(ctx context.Context, shop *app.Container, id string) error {
		return shop.Wishlist.Remove(ctx, id)
	})
	toggle := wishlistAction(opts, "toggle", "Save a product, or drop it if already saved", func(ctx context.Context, shop *app.Container, id string) error {
		// Toggle decides from the local mirror
		if err := shop.Wishlist.Fetch(ctx); err != nil {
			return err
		}
		return shop.Wishlist.Toggle(ctx, id)
	})

	cmd.AddCommand(show, add, remove, toggle)
	return cmd
}
