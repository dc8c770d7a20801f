package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/you/storefront/domain"
	"github.com/you/storefront/internal/app"
)

// readPassword takes the first line of in when no --password was given
func readPassword(flag string, in io.Reader) string {
	if flag != "" {
		return flag
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		Long:  "Sign in with email and password. Without --password the password is read from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := readPassword(password, cmd.InOrStdin())
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				user, err := shop.Session.Login(ctx, email, pw)
				if err != nil {
					return err
				}
				return out.Emit(user, func(w io.Writer) {
					fmt.Fprintf(w, "Bienvenue, %s\n", user.Name)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var req domain.RegisterRequest
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Password = readPassword(req.Password, cmd.InOrStdin())
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				user, err := shop.Session.Register(ctx, req)
				if err != nil {
					return err
				}
				return out.Emit(user, func(w io.Writer) {
					fmt.Fprintf(w, "Compte créé. Bienvenue, %s\n", user.Name)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				shop.Session.Logout(ctx)
				return out.Message("Déconnexion réussie")
			})
		},
	}
}

func newWhoamiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withShop(cmd, func(ctx context.Context, shop *app.Container, out *OutputFormatter) error {
				session := shop.Session.Session()
				return out.Emit(session.User, func(w io.Writer) {
					RenderSession(w, session)
				})
			})
		},
	}
}
