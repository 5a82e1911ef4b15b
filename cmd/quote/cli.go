package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/rLg1290/7crm-sub003/internal/filter"
	"github.com/rLg1290/7crm-sub003/internal/legs"
	"github.com/rLg1290/7crm-sub003/internal/models"
	"github.com/rLg1290/7crm-sub003/internal/offers"
	"github.com/rLg1290/7crm-sub003/internal/providers"
	"github.com/rLg1290/7crm-sub003/internal/session"
)

// newCLIApp builds the offline quoting tool. Output goes to out.
func newCLIApp(out io.Writer) *cli.App {
	app := &cli.App{
		Name:    "quote",
		Usage:   "Price a saved provider response offline",
		Version: Version,
		Writer:  out,
		Commands: []*cli.Command{
			priceCmd(out),
			offersCmd(out),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func fileFlag() cli.Flag {
	return &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Provider response JSON"}
}

func priceCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "price",
		Usage: "Print priced, filtered and sorted lines",
		Flags: []cli.Flag{
			fileFlag(),
			&cli.IntFlag{Name: "adults", Aliases: []string{"a"}, Value: 1, Usage: "Adult passengers"},
			&cli.IntFlag{Name: "children", Aliases: []string{"c"}, Usage: "Child passengers"},
			&cli.IntFlag{Name: "infants", Aliases: []string{"i"}, Usage: "Infant passengers"},
			&cli.Float64Flag{Name: "markup", Aliases: []string{"m"}, Usage: "Service markup rate in percent"},
			&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: string(filter.PriceAsc), Usage: "Sort key"},
			&cli.StringFlag{Name: "airlines", Usage: "Comma-separated airline allow-list"},
			&cli.BoolFlag{Name: "baggage-only", Usage: "Only fares with checked baggage"},
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			pax := models.PassengerCounts{
				Adults:   c.Int("adults"),
				Children: c.Int("children"),
				Infants:  c.Int("infants"),
			}
			if err := pax.Validate(); err != nil {
				return err
			}
			markup := c.Float64("markup")
			if err := models.ValidateMarkupRate(markup); err != nil {
				return err
			}
			key, err := filter.ParseSortKey(c.String("sort"))
			if err != nil {
				return err
			}

			merged, err := loadOffers(c.Context, c.String("file"))
			if err != nil {
				return err
			}

			criteria := filter.Criteria{
				Airlines:    parseList(c.String("airlines")),
				BaggageOnly: c.Bool("baggage-only"),
				Sort:        key,
			}
			result := session.Derive(merged, pax, markup, criteria, nil)

			if c.Bool("json") {
				return writeJSON(out, result)
			}
			return writeTable(out, result)
		},
	}
}

func offersCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "offers",
		Usage: "Print merged offers with their fare variants",
		Flags: []cli.Flag{fileFlag()},
		Action: func(c *cli.Context) error {
			merged, err := loadOffers(c.Context, c.String("file"))
			if err != nil {
				return err
			}
			return writeJSON(out, merged)
		},
	}
}

func loadOffers(ctx context.Context, path string) ([]models.Offer, error) {
	body, err := providers.NewFileProvider(path).Search(ctx, models.SearchParams{})
	if err != nil {
		return nil, err
	}
	parsed, err := legs.ParseResponse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return offers.Merge(parsed), nil
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(out io.Writer, result filter.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTION\tAIRLINE\tFLIGHT\tDEPARTURE\tARRIVAL\tFARE\tBAGS\tTOTAL\tID")
	for _, group := range [][]models.PricedLine{result.Outbound, result.Return} {
		for _, l := range group {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
				l.Direction, l.Airline, l.FlightNumber, l.Departure, l.Arrival,
				l.FareLabel, l.CheckedBaggage, l.TotalFormatted, l.ID)
		}
	}
	return w.Flush()
}
