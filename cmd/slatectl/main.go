// slatectl reads and writes a SlateDB database from the command line.
//
//	slatectl --url file:///var/lib/slate put user:1 alice
//	slatectl --url file:///var/lib/slate paginate --page-size 10 user:
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/eigerco/slatedb-go/pkg/slatedb"
)

var app *cli.App

var (
	pathFlag = cli.StringFlag{
		Name:  "path",
		Value: "db",
		Usage: "database path inside the object store",
	}
	urlFlag = cli.StringFlag{
		Name:  "url",
		Usage: "object store url (file:// or memory://); empty reads the provider from --env-file",
	}
	envFileFlag = cli.StringFlag{
		Name:  "env-file",
		Usage: "env file naming the object store provider",
	}
	libraryFlag = cli.StringFlag{
		Name:   "library",
		Usage:  "slatedb_c shared library to load instead of the embedded engine",
		EnvVar: "SLATEDB_LIBRARY_PATH",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "engine log level (trace, debug, info, warn, error); empty disables logging",
	}
	blockSizeFlag = cli.IntFlag{
		Name:  "sst-block-size",
		Value: -1,
		Usage: "sst block size code, 0 (1KiB) through 6 (64KiB)",
	}
	settingsFlag = cli.StringFlag{
		Name:  "settings",
		Usage: "settings file (json, toml or yaml) applied when opening the database",
	}
)

func init() {
	app = cli.NewApp()
	app.Name = "slatectl"
	app.Usage = "inspect and modify a SlateDB database"
	app.Flags = []cli.Flag{pathFlag, urlFlag, envFileFlag, libraryFlag, logLevelFlag, blockSizeFlag, settingsFlag}
	app.Commands = []cli.Command{
		commandPut,
		commandGet,
		commandDelete,
		commandScan,
		commandPrefix,
		commandPaginate,
		commandMetrics,
		commandSettings,
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// engineRuntime binds the engine selected by the global flags.
func engineRuntime(ctx *cli.Context) (*slatedb.Runtime, error) {
	var rt *slatedb.Runtime
	if lib := ctx.GlobalString(libraryFlag.Name); lib != "" {
		var err error
		if rt, err = slatedb.LoadLibrary(lib); err != nil {
			return nil, err
		}
	} else {
		rt = slatedb.Embedded()
	}
	if name := ctx.GlobalString(logLevelFlag.Name); name != "" {
		level, err := slatedb.ParseLogLevel(name)
		if err != nil {
			return nil, err
		}
		if err := rt.InitLogging(level); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// openDB opens the database named by the global flags through a Builder.
func openDB(ctx *cli.Context) (*slatedb.DB, error) {
	rt, err := engineRuntime(ctx)
	if err != nil {
		return nil, err
	}
	bl, err := rt.Builder(ctx.GlobalString(pathFlag.Name), ctx.GlobalString(urlFlag.Name), ctx.GlobalString(envFileFlag.Name))
	if err != nil {
		return nil, err
	}
	defer bl.Close()

	if code := ctx.GlobalInt(blockSizeFlag.Name); code >= 0 {
		if err := bl.WithSstBlockSize(slatedb.SstBlockSize(code)); err != nil {
			return nil, err
		}
	}
	if file := ctx.GlobalString(settingsFlag.Name); file != "" {
		doc, err := rt.SettingsFromFile(file)
		if err != nil {
			return nil, err
		}
		if err := bl.WithSettingsJSON(doc); err != nil {
			return nil, err
		}
	}
	return bl.Build()
}

// withDB runs fn against the database and closes it afterwards.
func withDB(ctx *cli.Context, fn func(*slatedb.DB) error) (err error) {
	db, err := openDB(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(db)
}
