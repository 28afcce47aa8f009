package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var productTags []string

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage products (named groups of repository topics)",
}

var productCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a product from a name and a set of topic tags",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductCreate,
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all products",
	Args:  cobra.NoArgs,
	RunE:  runProductList,
}

var productShowCmd = &cobra.Command{
	Use:   "show <product-id>",
	Short: "Show one product and its current repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductShow,
}

var productDeleteCmd = &cobra.Command{
	Use:   "delete <product-id>",
	Short: "Delete a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProductDelete,
}

func init() {
	productCreateCmd.Flags().StringSliceVar(&productTags, "tags", nil, "topic tags grouped by this product (comma separated)")
	productCmd.AddCommand(productCreateCmd, productListCmd, productShowCmd, productDeleteCmd)
	rootCmd.AddCommand(productCmd)
}

func runProductCreate(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	if err := c.Service.CreateProduct(args[0], productTags); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created product %q with tags %s\n", args[0], strings.Join(productTags, ", "))
	return nil
}

func runProductList(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	products, err := c.Service.ListProducts()
	if err != nil {
		return err
	}

	if len(products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No products yet. Run 'fleetwatch product create' to add one.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAGS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, strings.Join(p.Tags, ", "))
	}
	return w.Flush()
}

func runProductShow(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	product, err := c.Service.GetProduct(args[0])
	if err != nil {
		return err
	}

	repos, err := c.Service.ListRepositoriesForProduct(product.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Product: %s (%s)\n", product.Name, product.ID)
	fmt.Fprintf(out, "Tags: %s\n\n", strings.Join(product.Tags, ", "))

	if len(repos) == 0 {
		fmt.Fprintln(out, "No repositories match this product's tags yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPOSITORY\tTOPIC\tURL")
	for _, r := range repos {
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, r.Topic, r.URL)
	}
	return w.Flush()
}

func runProductDelete(cmd *cobra.Command, args []string) error {
	c, err := bootstrap()
	if err != nil {
		return err
	}
	defer c.Store.Close()

	if err := c.Service.DeleteProduct(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "deleted product %s\n", args[0])
	return nil
}

// bootstrap loads config and initializes components for the read-side
// commands.
func bootstrap() (*components, error) {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	c, err := initComponents(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing components: %w", err)
	}

	if err := c.Worker.Init(); err != nil {
		c.Store.Close()
		return nil, err
	}

	return c, nil
}
