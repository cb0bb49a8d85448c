package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"storefront/internal/client"
	"storefront/internal/model"
)

type app struct {
	server      string
	storagePath string
	timeout     time.Duration
	client      *client.Client
}

func newRootCmd(storagePath string) *cobra.Command {
	a := &app{storagePath: storagePath}

	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Browse the storefront, manage a cart and check out",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(a.server, client.NewFileStorage(a.storagePath), nil)
			if err != nil {
				return err
			}
			a.client = c
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", envOr("STOREFRONT_URL", "http://localhost:8080"), "storefront API base URL")
	root.PersistentFlags().StringVar(&a.storagePath, "storage", storagePath, "local state file")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(a.loginCmd(), a.logoutCmd(), a.whoamiCmd(), a.searchCmd(), a.cartCmd(), a.checkoutCmd(), a.ordersCmd())
	return root
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			user, err := a.client.Login(ctx, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s <%s>\n", user.Name, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			if err := a.client.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and whether the server still accepts the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			user := a.client.Session.User()
			if user == nil {
				fmt.Fprintln(out, "not signed in")
				return nil
			}
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			ok, err := a.client.CheckAuth(ctx)
			if err != nil {
				return err
			}
			role := "customer"
			if user.IsAdmin() {
				role = "admin"
			}
			fmt.Fprintf(out, "%s <%s> (%s)\n", user.Name, user.Email, role)
			if !ok {
				fmt.Fprintln(out, "session expired, run shopctl login")
			}
			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search products by name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			products, err := a.client.SearchProducts(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(products) == 0 {
				fmt.Fprintln(out, "No Products Found")
				return nil
			}
			fmt.Fprintf(out, "Found %d\n", len(products))
			printProducts(out, products)
			return nil
		},
	}
}

func (a *app) cartCmd() *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
	}

	cart.AddCommand(&cobra.Command{
		Use:   "add <product-slug>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			p, err := a.client.Product(ctx, args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("product %q not found", args[0])
			}
			if err := a.client.Cart.Add(cartItem(p)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s, cart has %d item(s)\n", p.Name, a.client.Cart.Len())
			return nil
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show cart lines and total",
		RunE: func(cmd *cobra.Command, args []string) error {
			printCart(cmd.OutOrStdout(), a.client.Cart)
			return nil
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove one line holding the product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			removed, err := a.client.Cart.Remove(id)
			if err != nil {
				return err
			}
			if !removed {
				return fmt.Errorf("product %s is not in the cart", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed, cart has %d item(s)\n", a.client.Cart.Len())
			return nil
		},
	})

	cart.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Cart.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	})
	return cart
}

func (a *app) checkoutCmd() *cobra.Command {
	var nonce string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the cart with a payment method nonce",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.client.Session.SignedIn() {
				return errors.New("please login to checkout")
			}
			if a.client.Cart.Len() == 0 {
				return errors.New("your cart is empty")
			}
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			total := a.client.Cart.Total()
			if err := a.client.Checkout(ctx, nonce); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment Completed Successfully, charged %s\n", total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&nonce, "nonce", "fake-valid-nonce", "payment method nonce from the payment widget")
	return cmd
}

func (a *app) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the signed-in shopper's orders as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, a.timeout)
			defer cancel()
			orders, err := a.client.Orders(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(orders)
		},
	}
}

func cartItem(p *model.Product) model.CartItem {
	return model.CartItem{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
	}
}

func printProducts(w io.Writer, products []model.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Slug, p.Name, p.Price.StringFixed(2))
	}
	_ = tw.Flush()
}

func printCart(w io.Writer, cart *client.Cart) {
	items := cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(w, "Your Cart Is Empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, item.Name, item.Price.StringFixed(2))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Total: %s\n", cart.Total().StringFixed(2))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
