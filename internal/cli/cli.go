// Package cli holds the advisorctl admin commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"digital-advisor/bootstrap"
	"digital-advisor/internal/application/dataset"

	"github.com/google/subcommands"
)

// Env is shared by all commands. Open is called once per command run.
type Env struct {
	Open func() (*bootstrap.Deps, error)
	Out  io.Writer
	Err  io.Writer
}

func (e *Env) deps() (*bootstrap.Deps, subcommands.ExitStatus) {
	d, err := e.Open()
	if err != nil {
		fmt.Fprintf(e.Err, "Error opening stores: %v\n", err)
		return nil, subcommands.ExitFailure
	}
	return d, subcommands.ExitSuccess
}

func (e *Env) fail(format string, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitFailure
}

// Commands returns every advisorctl command bound to env.
func Commands(env *Env) []subcommands.Command {
	if env.Out == nil {
		env.Out = os.Stdout
	}
	if env.Err == nil {
		env.Err = os.Stderr
	}
	return []subcommands.Command{
		&migrateCmd{env: env},
		&importCmd{env: env},
		&pricesCmd{env: env},
		&predictCmd{env: env},
	}
}

type migrateCmd struct{ env *Env }

func (*migrateCmd) Name() string             { return "migrate" }
func (*migrateCmd) Synopsis() string         { return "create or update the database schema" }
func (*migrateCmd) Usage() string            { return "migrate\n" }
func (*migrateCmd) SetFlags(_ *flag.FlagSet) {}

func (c *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, status := c.env.deps()
	if d == nil {
		return status
	}
	defer d.Close()
	fmt.Fprintln(c.env.Out, "Schema is up to date.")
	return subcommands.ExitSuccess
}

type importCmd struct {
	env   *Env
	batch int
}

func (*importCmd) Name() string     { return "import-dataset" }
func (*importCmd) Synopsis() string { return "upsert historical market data from CSV files" }
func (*importCmd) Usage() string {
	return `import-dataset [-batch n] <file.csv>...

  Each file needs a header row with the cleaned_dataset column names:
  company_prefix, date_value, open_value, high_value, low_value, close_value
  and volume are required; the macro columns are optional. Rows already
  present for a (ticker, date) are overwritten.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.batch, "batch", 500, "rows per insert batch")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.Err, "Error: at least one CSV file is required.")
		return subcommands.ExitUsageError
	}
	d, status := c.env.deps()
	if d == nil {
		return status
	}
	defer d.Close()

	im := &dataset.Importer{DB: d.DB, BatchSize: c.batch}
	total := 0
	for _, path := range f.Args() {
		file, err := os.Open(path)
		if err != nil {
			return c.env.fail("%v", err)
		}
		n, err := im.Import(ctx, file)
		file.Close()
		if err != nil {
			return c.env.fail("%s: %v", path, err)
		}
		fmt.Fprintf(c.env.Out, "%s: %d rows\n", path, n)
		total += n
	}
	fmt.Fprintf(c.env.Out, "Imported %d rows.\n", total)
	return subcommands.ExitSuccess
}

type pricesCmd struct{ env *Env }

func (*pricesCmd) Name() string             { return "prices" }
func (*pricesCmd) Synopsis() string         { return "print the latest close for tickers" }
func (*pricesCmd) Usage() string            { return "prices <TICKER>...\n" }
func (*pricesCmd) SetFlags(_ *flag.FlagSet) {}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(c.env.Err, "Error: at least one ticker is required.")
		return subcommands.ExitUsageError
	}
	d, status := c.env.deps()
	if d == nil {
		return status
	}
	defer d.Close()

	prices, err := d.Prices.LatestPrices(ctx, f.Args())
	if err != nil {
		return c.env.fail("%v", err)
	}
	tickers := make([]string, 0, f.NArg())
	for _, t := range f.Args() {
		tickers = append(tickers, strings.ToUpper(strings.TrimSpace(t)))
	}
	sort.Strings(tickers)
	for _, t := range tickers {
		if p, ok := prices[t]; ok {
			fmt.Fprintf(c.env.Out, "%s\t%s\n", t, strconv.FormatFloat(p, 'f', -1, 64))
		} else {
			fmt.Fprintf(c.env.Out, "%s\tn/a\n", t)
		}
	}
	return subcommands.ExitSuccess
}

type predictCmd struct{ env *Env }

func (*predictCmd) Name() string             { return "predict" }
func (*predictCmd) Synopsis() string         { return "predict the next-minute close for a ticker" }
func (*predictCmd) Usage() string            { return "predict <TICKER>\n" }
func (*predictCmd) SetFlags(_ *flag.FlagSet) {}

func (c *predictCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(c.env.Err, "Error: exactly one ticker is required.")
		return subcommands.ExitUsageError
	}
	d, status := c.env.deps()
	if d == nil {
		return status
	}
	defer d.Close()

	r, err := d.Prediction.GetOrCompute(ctx, f.Arg(0))
	if err != nil {
		return c.env.fail("%v", err)
	}
	source := "computed"
	if r.Cached {
		source = "cached"
	}
	if r.Degraded {
		source += ", degraded"
	}
	fmt.Fprintf(c.env.Out, "%s %s %s (%s)\n", r.Ticker, r.PredictedFor.Format(time.RFC3339),
		strconv.FormatFloat(r.PredictedClose, 'f', 4, 64), source)
	return subcommands.ExitSuccess
}
