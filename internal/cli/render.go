package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/you/storefront/domain"
)

// FormatPrice renders an FCFA amount with space-grouped thousands
func FormatPrice(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	return sign + b.String() + " FCFA"
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderSession prints who is signed in
func RenderSession(w io.Writer, s domain.Session) {
	if !s.IsAuthenticated() {
		fmt.Fprintln(w, "Non connecté")
		return
	}
	u := s.User
	fmt.Fprintf(w, "%s <%s>\n", u.Name, u.Email)
	fmt.Fprintf(w, "id:   %s\n", u.ID)
	fmt.Fprintf(w, "role: %s\n", u.Role)
	if u.Phone != "" {
		fmt.Fprintf(w, "tel:  %s\n", u.Phone)
	}
}

// RenderCart prints the cart lines and total
func RenderCart(w io.Writer, cart domain.Cart) {
	if len(cart.Items) == 0 {
		fmt.Fprintln(w, "Votre panier est vide")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PRODUIT\tNOM\tQTE\tPRIX\tSOUS-TOTAL")
	for _, l := range cart.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.ProductID, l.Name, l.Quantity, FormatPrice(l.Price), FormatPrice(l.Price*int64(l.Quantity)))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d article(s), total %s\n", cart.Count(), FormatPrice(cart.Total))
}

// RenderWishlist prints the saved products
func RenderWishlist(w io.Writer, wl domain.Wishlist) {
	if len(wl.Items) == 0 {
		fmt.Fprintln(w, "Aucun favori")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "PRODUIT\tNOM\tPRIX\tSTOCK")
	for _, l := range wl.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ProductID, l.Name, FormatPrice(l.Price), stockLabel(l.Stock))
	}
	tw.Flush()
}

func stockLabel(stock int) string {
	if stock <= 0 {
		return "rupture"
	}
	return strconv.Itoa(stock)
}

func productBadges(p domain.Product) string {
	var badges []string
	if p.IsNew {
		badges = append(badges, "nouveau")
	}
	if p.IsPromo {
		badges = append(badges, "promo")
	}
	if p.Featured {
		badges = append(badges, "vedette")
	}
	return strings.Join(badges, ",")
}

// RenderProducts prints a product listing. saved marks wishlist entries.
func RenderProducts(w io.Writer, products []domain.Product, saved func(string) bool) {
	if len(products) == 0 {
		fmt.Fprintln(w, "Aucun produit")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "\tPRODUIT\tNOM\tPRIX\tSTOCK\t")
	for _, p := range products {
		mark := " "
		if saved != nil && saved(p.ProductID) {
			mark = "♥"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			mark, p.ProductID, p.Name, FormatPrice(p.Price), stockLabel(p.Stock), productBadges(p))
	}
	tw.Flush()
}

// RenderProduct prints one product in detail
func RenderProduct(w io.Writer, p domain.Product) {
	fmt.Fprintf(w, "%s (%s)\n", p.Name, p.ProductID)
	price := FormatPrice(p.Price)
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		price += " au lieu de " + FormatPrice(*p.OriginalPrice)
	}
	fmt.Fprintf(w, "prix:      %s\n", price)
	fmt.Fprintf(w, "stock:     %s\n", stockLabel(p.Stock))
	category := p.Category
	if p.Subcategory != "" {
		category += " / " + p.Subcategory
	}
	fmt.Fprintf(w, "categorie: %s\n", category)
	if badges := productBadges(p); badges != "" {
		fmt.Fprintf(w, "badges:    %s\n", badges)
	}
	if p.ShortDescription != "" {
		fmt.Fprintf(w, "\n%s\n", p.ShortDescription)
	}
	if len(p.Specs) > 0 {
		fmt.Fprintln(w)
		tw := table(w)
		keys := make([]string, 0, len(p.Specs))
		for k := range p.Specs {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "  %s\t%s\n", k, p.Specs[k])
		}
		tw.Flush()
	}
}

// RenderCategories prints the category list
func RenderCategories(w io.Writer, categories []domain.Category) {
	tw := table(w)
	for _, c := range categories {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	tw.Flush()
}

// RenderOrder prints an order receipt
func RenderOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "Commande %s (%s, paiement %s)\n", o.OrderID, o.OrderStatus, o.PaymentStatus)
	if !o.CreatedAt.IsZero() {
		fmt.Fprintf(w, "passée le %s\n", o.CreatedAt.UTC().Format("02/01/2006 15:04"))
	}
	tw := table(w)
	for _, item := range o.Items {
		fmt.Fprintf(tw, "  %s\tx%d\t%s\n", item.Name, item.Quantity, FormatPrice(item.Price*int64(item.Quantity)))
	}
	tw.Flush()
	fmt.Fprintf(w, "sous-total: %s\n", FormatPrice(o.Subtotal))
	fmt.Fprintf(w, "livraison:  %s\n", FormatPrice(o.ShippingCost))
	fmt.Fprintf(w, "total:      %s\n", FormatPrice(o.Total))
	s := o.Shipping
	fmt.Fprintf(w, "livrer à:   %s, %s, %s", s.FullName, s.Address, s.City)
	if s.Region != "" {
		fmt.Fprintf(w, " (%s)", s.Region)
	}
	fmt.Fprintln(w)
}

// RenderOrders prints the order history
func RenderOrders(w io.Writer, orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "Aucune commande")
		return
	}
	tw := table(w)
	fmt.Fprintln(tw, "COMMANDE\tDATE\tSTATUT\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			o.OrderID, o.CreatedAt.UTC().Format("02/01/2006"), o.OrderStatus, FormatPrice(o.Total))
	}
	tw.Flush()
}

// RenderStats prints the admin dashboard
func RenderStats(w io.Writer, s domain.AdminStats) {
	tw := table(w)
	fmt.Fprintf(tw, "commandes\t%d\n", s.TotalOrders)
	fmt.Fprintf(tw, "en attente\t%d\n", s.PendingOrders)
	fmt.Fprintf(tw, "produits\t%d\n", s.TotalProducts)
	fmt.Fprintf(tw, "clients\t%d\n", s.TotalUsers)
	fmt.Fprintf(tw, "revenu\t%s\n", FormatPrice(s.TotalRevenue))
	tw.Flush()
}
