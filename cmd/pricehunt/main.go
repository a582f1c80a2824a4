// PriceHunt CLI - compare prices for a product across retailers
//
// Usage:
//
//	pricehunt search --name "iPhone 15" --brand Apple
//	pricehunt similar "iPhone 15" --limit 5
//	pricehunt deals --category Electronics
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pricehunt/backend/config"
	"github.com/pricehunt/backend/internal/app"
	"github.com/pricehunt/backend/internal/domain"
	"github.com/pricehunt/backend/internal/infrastructure/logging"
	"github.com/pricehunt/backend/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "pricehunt",
		Usage:   "Search retailers for a product and rank the offers",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PRICEHUNT_CLI_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Commands: []*cli.Command{
			searchCommand(),
			similarCommand(),
			dealsCommand(),
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Find exact matches and similar products",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Product name"},
			&cli.StringFlag{Name: "brand", Aliases: []string{"b"}, Usage: "Brand"},
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Free-text description"},
			&cli.Float64Flag{Name: "confidence", Value: 1, Usage: "Identification confidence in [0, 1]"},
			&cli.StringFlag{Name: "query-id", Usage: "Query id to echo back (generated when empty)"},
		},
		Action: func(c *cli.Context) error {
			svc, err := buildService(c)
			if err != nil {
				return err
			}

			query := domain.ProductInfo{
				Name:        c.String("name"),
				Brand:       c.String("brand"),
				Category:    c.String("category"),
				Description: c.String("description"),
				Confidence:  c.Float64("confidence"),
			}
			result, err := svc.Search(c.Context, query, c.String("query-id"))
			if err != nil {
				return err
			}

			if c.String("format") == "json" {
				return writeJSON(c.App.Writer, result)
			}
			fmt.Fprintf(c.App.Writer, "Query %s (%.2fs)\n\nExact matches\n", result.QueryID, result.ProcessingTime)
			if err := writeOffers(c.App.Writer, result.ExactMatches); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, "\nSimilar products")
			return writeOffers(c.App.Writer, result.SimilarProducts)
		},
	}
}

func similarCommand() *cli.Command {
	return &cli.Command{
		Name:      "similar",
		Usage:     "List products related to a name",
		ArgsUsage: "<product name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 10, Usage: "Maximum results (1-50)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("similar expects exactly one product name", 2)
			}
			if limit := c.Int("limit"); limit < 1 || limit > 50 {
				return cli.Exit("limit must be between 1 and 50", 2)
			}

			svc, err := buildService(c)
			if err != nil {
				return err
			}

			result, err := svc.SimilarProducts(c.Context, c.Args().First(), c.String("category"), c.Int("limit"))
			if err != nil {
				return err
			}

			if c.String("format") == "json" {
				return writeJSON(c.App.Writer, result)
			}
			fmt.Fprintf(c.App.Writer, "%d products similar to %q\n", result.TotalFound, result.ProductName)
			return writeOffers(c.App.Writer, result.SimilarProducts)
		},
	}
}

func dealsCommand() *cli.Command {
	return &cli.Command{
		Name:  "deals",
		Usage: "Show the best in-stock deals",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Category"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 5, Usage: "Maximum deals (1-20)"},
		},
		Action: func(c *cli.Context) error {
			if limit := c.Int("limit"); limit < 1 || limit > 20 {
				return cli.Exit("limit must be between 1 and 20", 2)
			}

			svc, err := buildService(c)
			if err != nil {
				return err
			}

			result, err := svc.BestDeals(c.Context, c.String("category"), c.Int("limit"))
			if err != nil {
				return err
			}

			if c.String("format") == "json" {
				return writeJSON(c.App.Writer, result)
			}
			fmt.Fprintf(c.App.Writer, "%d best deals\n", result.TotalDeals)
			return writeOffers(c.App.Writer, result.BestDeals)
		},
	}
}

// buildService loads configuration and logs to stderr so stdout stays parseable
func buildService(c *cli.Context) (*usecase.SearchService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(c.App.ErrWriter, c.String("log-level"), "console")
	return app.NewSearchService(cfg, logger), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeOffers(w io.Writer, offers []domain.Offer) error {
	if len(offers) == 0 {
		_, err := fmt.Fprintln(w, "  (none)")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tPRICE\tSCORE\tAVAILABILITY\tNAME\tURL")
	for _, o := range offers {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\t%s\n",
			o.Quote.Source,
			decimal.NewFromFloat(o.Quote.Price).StringFixed(2),
			o.Quote.Currency,
			decimal.NewFromFloat(o.OverallScore).StringFixed(3),
			o.Quote.Availability,
			o.Product.Name,
			o.Quote.URL,
		)
	}
	return tw.Flush()
}
