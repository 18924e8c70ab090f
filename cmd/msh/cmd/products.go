package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	apiclient "github.com/vieirasantos/meli-seller-hub/internal/api/client"
)

func productsCmd() *cobra.Command {
	productsRoot := &cobra.Command{
		Use:   "products",
		Short: "Browse synchronized products",
		Long: "Browse the products synchronized from all linked seller accounts.\n" +
			"Listings can be filtered by account, status, and a title search, and\n" +
			"ordered by price, sales, views, or title.",
	}

	productsRoot.AddCommand(
		productsListCmd(),
		productsGetCmd(),
	)

	return productsRoot
}

func productsListCmd() *cobra.Command {
	var (
		account string
		status  string
		search  string
		orderBy string
		limit   int
		offset  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Example: `  # All products of one account
  msh products list --account LOJA_CENTRO

  # Paused listings with "iphone" in the title, most sold first
  msh products list --status paused --search iphone --order-by sales`,
		RunE: func(_ *cobra.Command, _ []string) error {
			c := newClient()
			products, total, err := c.ListProducts(context.Background(), apiclient.ProductFilters{
				Account: account,
				Status:  status,
				Search:  search,
				OrderBy: orderBy,
				Limit:   limit,
				Offset:  offset,
			})
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(map[string]any{"products": products, "total": total})
			}
			if len(products) == 0 {
				fmt.Println("No products found.")
				return nil
			}
			return printProductTable(products, total)
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "filter by account nickname")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, paused, ended)")
	cmd.Flags().StringVar(&search, "search", "", "title search term")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort field (price, sales, views, title)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to return")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")

	return cmd
}

func productsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <item_id>",
		Short: "Show product details",
		Example: `  msh products get MLB123456789
  msh products get MLB123456789 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			c := newClient()
			p, err := c.GetProduct(context.Background(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(p)
			}
			return printProductDetail(p)
		},
	}
}
