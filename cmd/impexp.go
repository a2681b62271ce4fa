package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/etnz/folio"
	"github.com/google/subcommands"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// formatOf returns the explicit format, or the one implied by the file extension.
func formatOf(explicit, file string) (string, error) {
	f := strings.ToLower(explicit)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
	}
	switch f {
	case formatJSON, formatCSV:
		return f, nil
	case "":
		return formatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q: use json or csv", f)
}

type exportCmd struct {
	output string
	format string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the positions as json or csv" }
func (*exportCmd) Usage() string {
	return `pft export [-o <file>] [-format json|csv]

  Writes every position to a file, or to the standard output.
  The format defaults to the file extension, then to json.

Usage Examples:
$ pft export -o portfolio.json
$ pft export -format csv > portfolio.csv
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, defaults to the standard output")
	f.StringVar(&c.format, "format", "", "json or csv")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	format, err := formatOf(c.format, c.output)
	if err != nil {
		return usage("%v", err)
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	w := stdout
	if c.output != "" {
		file, err := os.Create(c.output)
		if err != nil {
			return fail(err)
		}
		defer file.Close()
		w = file
	}

	stocks := a.portfolio.Stocks()
	write := folio.Export
	if format == formatCSV {
		write = folio.ExportCSV
	}
	if err := write(w, stocks); err != nil {
		return fail(err)
	}
	if c.output != "" {
		fmt.Fprintf(stdout, "Exported %d positions to %s.\n", len(stocks), c.output)
	}
	return subcommands.ExitSuccess
}

type importCmd struct {
	format string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import positions from json or csv files" }
func (*importCmd) Usage() string {
	return `pft import [-format json|csv] <file|pattern>...

  Adds the positions of the files to the portfolio. Tickers already held are skipped.
  Patterns follow the doublestar syntax, like 'exports/**/*.json'. '-' reads the standard input.

Usage Examples:
$ pft import portfolio.json
$ pft import -format csv 'backups/**/*.csv'
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.format, "format", "", "json or csv, defaults to the file extension")
}

// expand resolves the glob patterns in 'args' into file names, keeping "-" as is.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no such file", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

// read decodes the stocks of one file. Rejected stocks are reported on stderr.
func (c *importCmd) read(name string, stdin io.Reader) ([]folio.Stock, error) {
	format, err := formatOf(c.format, name)
	if err != nil {
		return nil, err
	}
	r := stdin
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	decode := folio.Import
	if format == formatCSV {
		decode = folio.ImportCSV
	}
	stocks, err := decode(r)
	if err != nil && len(stocks) == 0 {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err != nil {
		log.Printf("import %s: %v", name, err)
		fmt.Fprintf(stderr, "Warning: %s: some positions were rejected: %v\n", name, err)
	}
	return stocks, nil
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage("import needs at least one file")
	}
	if _, err := formatOf(c.format, ""); err != nil {
		return usage("%v", err)
	}
	files, err := expand(f.Args())
	if err != nil {
		return fail(err)
	}

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	var stocks []folio.Stock
	for _, name := range files {
		s, err := c.read(name, os.Stdin)
		if err != nil {
			return fail(err)
		}
		stocks = append(stocks, s...)
	}

	res, err := a.portfolio.Merge(stocks)
	if err != nil {
		return fail(err)
	}
	for _, s := range res.Added {
		if err := a.store.SaveStock(ctx, a.user(), s); err != nil {
			return fail(err)
		}
	}
	fmt.Fprintf(stdout, "Imported %d positions.\n", len(res.Added))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(stdout, "Skipped %d already held: %s.\n", len(res.Skipped), strings.Join(res.Skipped, ", "))
	}
	return subcommands.ExitSuccess
}
