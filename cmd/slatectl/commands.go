package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/urfave/cli.v1"

	"github.com/eigerco/slatedb-go/pkg/slatedb"
)

var (
	ttlFlag = cli.DurationFlag{
		Name:  "ttl",
		Usage: "expire the value after this long; zero uses the database default",
	}
	noExpiryFlag = cli.BoolFlag{
		Name:  "no-expiry",
		Usage: "never expire the value",
	}
	asyncFlag = cli.BoolFlag{
		Name:  "async",
		Usage: "return before the write is durable",
	}
	pageSizeFlag = cli.IntFlag{
		Name:  "page-size",
		Value: 100,
		Usage: "entries per page",
	}
	diffFlag = cli.BoolFlag{
		Name:  "diff",
		Usage: "print a unified diff against the engine defaults",
	}
	fileFlag = cli.StringFlag{
		Name:  "file",
		Usage: "read settings from a json, toml or yaml file",
	}
	envPrefixFlag = cli.StringFlag{
		Name:  "env",
		Usage: "read settings from variables with this prefix",
	}
	loadFlag = cli.BoolFlag{
		Name:  "load",
		Usage: "read settings from SlateDb.* in the working directory and SLATEDB_ variables",
	}
)

var commandPut = cli.Command{
	Name:      "put",
	Usage:     "store a value",
	ArgsUsage: "<key> <value>",
	Flags:     []cli.Flag{ttlFlag, noExpiryFlag, asyncFlag},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 2 {
			return cli.NewExitError("put needs a key and a value", 2)
		}
		put := slatedb.DefaultTTL()
		switch {
		case ctx.Bool(noExpiryFlag.Name):
			put = slatedb.NoExpiry()
		case ctx.Duration(ttlFlag.Name) > 0:
			put = slatedb.ExpireAfter(ctx.Duration(ttlFlag.Name))
		}
		write := slatedb.WriteOptions{AwaitDurable: !ctx.Bool(asyncFlag.Name)}
		return withDB(ctx, func(db *slatedb.DB) error {
			key, value := ctx.Args().Get(0), ctx.Args().Get(1)
			return db.PutWithOptions(slatedb.EncodeString(key), slatedb.EncodeString(value), put, write)
		})
	},
}

var commandGet = cli.Command{
	Name:      "get",
	Usage:     "print a value",
	ArgsUsage: "<key>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.NewExitError("get needs a key", 2)
		}
		return withDB(ctx, func(db *slatedb.DB) error {
			v, ok, err := db.GetString(ctx.Args().First())
			if err != nil {
				return err
			}
			if !ok {
				return cli.NewExitError("not found", 1)
			}
			fmt.Println(v)
			return nil
		})
	},
}

var commandDelete = cli.Command{
	Name:      "delete",
	Usage:     "remove a key",
	ArgsUsage: "<key>",
	Flags:     []cli.Flag{asyncFlag},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.NewExitError("delete needs a key", 2)
		}
		write := slatedb.WriteOptions{AwaitDurable: !ctx.Bool(asyncFlag.Name)}
		return withDB(ctx, func(db *slatedb.DB) error {
			return db.DeleteWithOptions(slatedb.EncodeString(ctx.Args().First()), write)
		})
	},
}

var commandScan = cli.Command{
	Name:      "scan",
	Usage:     "print the entries in [start, end)",
	ArgsUsage: "[start] [end]",
	Action: func(ctx *cli.Context) error {
		var start, end []byte
		if s := ctx.Args().Get(0); s != "" {
			start = slatedb.EncodeString(s)
		}
		if s := ctx.Args().Get(1); s != "" {
			end = slatedb.EncodeString(s)
		}
		return withDB(ctx, func(db *slatedb.DB) error {
			it, err := db.Scan(start, end, nil)
			if err != nil {
				return err
			}
			return printAll(os.Stdout, it)
		})
	},
}

var commandPrefix = cli.Command{
	Name:      "prefix",
	Usage:     "print the entries whose key starts with prefix",
	ArgsUsage: "<prefix>",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return cli.NewExitError("prefix needs a prefix", 2)
		}
		return withDB(ctx, func(db *slatedb.DB) error {
			it, err := db.ScanPrefix(slatedb.EncodeString(ctx.Args().First()), nil)
			if err != nil {
				return err
			}
			return printAll(os.Stdout, it)
		})
	},
}

var commandPaginate = cli.Command{
	Name:      "paginate",
	Usage:     "print the entries under prefix one page at a time",
	ArgsUsage: "<prefix>",
	Flags:     []cli.Flag{pageSizeFlag},
	Action: func(ctx *cli.Context) error {
		prefix := slatedb.EncodeString(ctx.Args().First())
		return withDB(ctx, func(db *slatedb.DB) error {
			p := slatedb.PaginatePrefix(db, prefix, ctx.Int(pageSizeFlag.Name))
			for n := 1; !p.Done(); n++ {
				page, err := p.NextPage()
				if err != nil {
					return err
				}
				if len(page) == 0 {
					break
				}
				fmt.Printf("# page %d\n", n)
				for _, kv := range page {
					fmt.Printf("%s\t%s\n", kv.KeyString(), kv.ValueString())
				}
			}
			return nil
		})
	},
}

var commandMetrics = cli.Command{
	Name:  "metrics",
	Usage: "print the engine metrics",
	Action: func(ctx *cli.Context) error {
		return withDB(ctx, func(db *slatedb.DB) error {
			doc, err := db.Metrics()
			if err != nil {
				return err
			}
			return printJSON(os.Stdout, doc)
		})
	},
}

var commandSettings = cli.Command{
	Name:  "settings",
	Usage: "print a settings document (the defaults unless a source is given)",
	Flags: []cli.Flag{fileFlag, envPrefixFlag, loadFlag, diffFlag},
	Action: func(ctx *cli.Context) error {
		rt, err := engineRuntime(ctx)
		if err != nil {
			return err
		}
		defaults, err := rt.SettingsDefault()
		if err != nil {
			return err
		}

		doc := defaults
		switch {
		case ctx.String(fileFlag.Name) != "":
			doc, err = rt.SettingsFromFile(ctx.String(fileFlag.Name))
		case ctx.String(envPrefixFlag.Name) != "":
			doc, err = rt.SettingsFromEnv(ctx.String(envPrefixFlag.Name))
		case ctx.Bool(loadFlag.Name):
			doc, err = rt.SettingsLoad()
		}
		if err != nil {
			return err
		}

		if ctx.Bool(diffFlag.Name) {
			return printDiff(os.Stdout, defaults, doc)
		}
		return printJSON(os.Stdout, doc)
	},
}

func printAll(w io.Writer, it *slatedb.Iterator) error {
	defer it.Close()
	for kv, err := range it.All() {
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", kv.KeyString(), kv.ValueString())
	}
	return it.Close()
}

func indent(doc string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out) + "\n", nil
}

func printJSON(w io.Writer, doc string) error {
	out, err := indent(doc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func printDiff(w io.Writer, from, to string) error {
	a, err := indent(from)
	if err != nil {
		return err
	}
	b, err := indent(to)
	if err != nil {
		return err
	}
	return difflib.WriteUnifiedDiff(w, difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "defaults",
		ToFile:   "settings",
		Context:  2,
	})
}
