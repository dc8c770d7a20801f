package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/app"
)

func newProductsCommand(opts *RootOptions) *cobra.Command {
	var q domain.ProductQuery
	var featured, isNew, promo bool
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags left unset are not sent
			if cmd.Flags().Changed("featured") {
				q.Featured = &featured
			}
			if cmd.Flags().Changed("new") {
				q.IsNew = &isNew
			}
			if cmd.Flags().Changed("promo") {
				q.IsPromo = &promo
			}
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				products, err := shop.Catalog.Products(ctx, q)
				if err != nil {
					return err
				}
				return out.Emit(products, func(w io.Writer) {
					RenderProducts(w, products, shop.Wishlist.Contains)
				})
			})
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "category id")
	cmd.Flags().BoolVar(&featured, "featured", false, "featured products only")
	cmd.Flags().BoolVar(&isNew, "new", false, "new products only")
	cmd.Flags().BoolVar(&promo, "promo", false, "promotions only")
	cmd.Flags().IntVar(&q.Limit, "limit", 0, "maximum number of products")
	cmd.Flags().IntVar(&q.Skip, "skip", 0, "products to skip")
	return cmd
}

func newProductCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "product <product-id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				p, err := shop.Catalog.Product(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Emit(p, func(w io.Writer) { RenderProduct(w, *p) })
			})
		},
	}
}

func newCategoriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				categories, err := shop.Catalog.Categories(ctx)
				if err != nil {
					return err
				}
				return out.Emit(categories, func(w io.Writer) { RenderCategories(w, categories) })
			})
		},
	}
}
