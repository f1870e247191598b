package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/checkout/internal/catalog"
	"github.com/eugenenazirov/checkout/internal/checkout"
	"github.com/eugenenazirov/checkout/internal/logging"
)

func main() {
	logger, err := logging.New("warn")
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, logger))
}

// run prices each basket given on the command line, or each line of stdin
// when no basket arguments are given, and prints one total per line.
// Invalid baskets print checkout.InvalidTotal.
func run(args []string, stdin io.Reader, stdout io.Writer, logger *zap.Logger) int {
	app := kingpin.New("checkout", "Prices shopping baskets against a catalog of prices and deals")
	app.Writer(stdout)
	app.Terminate(nil)
	catalogFile := app.Flag("catalog", "Path to a CSV or YAML catalog file (defaults to the built-in catalog)").Short('c').ExistingFile()
	optimal := app.Flag("optimal", "Search for the cheapest deal combination instead of applying deals greedily").Bool()
	dealCap := app.Flag("deal-application-cap", "Maximum applications of a single deal per basket").Default("10").Int()
	verbose := app.Flag("verbose", "Print applied deals and leftover items").Short('v').Bool()
	baskets := app.Arg("basket", "Baskets such as \"AAAB\" or \"3A,2B,C\"").Strings()

	if _, err := app.Parse(args); err != nil {
		logger.Error("invalid arguments", zap.Error(err))
		return 2
	}

	cat := catalog.Default()
	if *catalogFile != "" {
		loaded, err := catalog.LoadFile(*catalogFile)
		if err != nil {
			logger.Error("failed to load catalog", zap.String("path", *catalogFile), zap.Error(err))
			return 1
		}
		cat = loaded
	}

	pricer := cat.Pricer(checkout.WithApplicationCap(*dealCap))
	for _, rejected := range pricer.Rejected() {
		logger.Warn("deal dropped",
			zap.String("item", rejected.Item),
			zap.String("deal", rejected.Text),
			zap.Error(rejected.Err),
		)
	}

	price := func(basket string) {
		var (
			receipt checkout.Receipt
			err     error
		)
		if *optimal {
			receipt, err = pricer.Optimal(basket)
		} else {
			receipt, err = pricer.Total(basket)
		}
		if err != nil {
			logger.Debug("basket rejected", zap.String("basket", basket), zap.Error(err))
			fmt.Fprintln(stdout, checkout.InvalidTotal)
			return
		}
		fmt.Fprintln(stdout, receipt.Total)
		if *verbose {
			for _, d := range receipt.Deals {
				fmt.Fprintf(stdout, "  %dx %s = %d\n", d.Count, d.Text, d.Subtotal)
			}
			for _, l := range receipt.Leftover {
				fmt.Fprintf(stdout, "  %d%s @ %d = %d\n", l.Quantity, l.Item, l.UnitPrice, l.Subtotal)
			}
		}
	}

	if len(*baskets) > 0 {
		for _, basket := range *baskets {
			price(basket)
		}
		return 0
	}

	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		price(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logger.Error("failed to read baskets", zap.Error(err))
		return 1
	}
	return 0
}
