package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/app"
	"github.com/you/storefront/internal/storefront"
)

func newCheckoutCommand(opts *RootOptions) *cobra.Command {
	var req domain.CheckoutRequest
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				// The order is built from the confirmed cart
				if err := shop.Cart.Fetch(ctx); err != nil {
					return err
				}
				order, err := shop.Checkout.PlaceOrder(ctx, req)
				if err != nil {
					return err
				}
				return out.Emit(order, func(w io.Writer) {
					RenderOrder(w, *order)
					fmt.Fprintln(w, "Merci pour votre commande !")
				})
			})
		},
	}
	s := &req.Shipping
	cmd.Flags().StringVar(&s.FullName, "name", "", "recipient full name")
	cmd.Flags().StringVar(&s.Phone, "phone", "", "recipient phone")
	cmd.Flags().StringVar(&s.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&s.City, "city", "", "city")
	cmd.Flags().StringVar(&s.Region, "region", "Dakar", "region")
	cmd.Flags().StringVar(&s.Notes, "notes", "", "delivery notes")
	cmd.Flags().StringVar(&req.PaymentMethod, "payment", storefront.DefaultPayment, fmt.Sprintf("payment method %v", storefront.PaymentMethods))
	return cmd
}

func newOrdersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "orders [order-id]",
		Short: "List your orders, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				if len(args) == 1 {
					order, err := shop.Checkout.Order(ctx, args[0])
					if err != nil {
						return err
					}
					return out.Emit(order, func(w io.Writer) { RenderOrder(w, *order) })
				}
				orders, err := shop.Checkout.Orders(ctx)
				if err != nil {
					return err
				}
				return out.Emit(orders, func(w io.Writer) { RenderOrders(w, orders) })
			})
		},
	}
}

func newAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin dashboard",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show shop statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				stats, err := shop.Admin.Stats(ctx)
				if err != nil {
					return err
				}
				return out.Emit(stats, func(w io.Writer) { RenderStats(w, *stats) })
			})
		},
	})
	return cmd
}
