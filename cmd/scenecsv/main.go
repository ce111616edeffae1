// Command scenecsv runs a single spawn from the command line or opens the
// interactive menu.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/scenecsv/internal/application"
	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/config"
	"github.com/JonMunkholm/scenecsv/internal/core"
	"github.com/JonMunkholm/scenecsv/internal/logging"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/source"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", core.FormatUserError(err))
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("scenecsv", flag.ContinueOnError)
	var (
		profileName = fs.String("profile", "", "profile to spawn")
		profilesDir = fs.String("profiles", "", "profile directory (overrides PROFILES_DIR)")
		sourceRoot  = fs.String("source-root", "", "source directory (overrides SOURCE_ROOT)")
		prefabs     = fs.String("prefabs", "", "comma separated prefab names (overrides CATALOG_PREFABS)")
		dump        = fs.Bool("dump", false, "dump parsed rows and records instead of spawning")
		export      = fs.Bool("export", false, "print the profile as YAML instead of spawning")
		tui         = fs.Bool("tui", false, "open the interactive menu")
		envFile     = fs.String("env", ".env", "optional env file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Load keeps shell variables; the file only fills gaps
	_ = godotenv.Load(*envFile)

	overrides := map[string]string{
		"PROFILES_DIR":    *profilesDir,
		"SOURCE_ROOT":     *sourceRoot,
		"CATALOG_PREFABS": *prefabs,
	}
	cfg, err := config.LoadFrom(func(key string) string {
		if v := overrides[key]; v != "" {
			return v
		}
		return os.Getenv(key)
	})
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if *tui {
		logger = logging.Discard()
	}

	profiles, err := profile.LoadDir(cfg.Profiles.Dir)
	if err != nil {
		return err
	}

	cat := catalog.NewMemory()
	cat.RegisterNames(cfg.Catalog.Prefabs...)

	provider := source.NewFileProvider(cfg.Source.Root, cfg.Source.MaxSize)
	svc, err := core.NewService(core.Options{
		Profiles:      profiles,
		Source:        provider,
		Catalog:       cat,
		MaxConcurrent: cfg.Spawn.MaxConcurrent,
		MaxWait:       cfg.Spawn.MaxWaitTime,
		Timeout:       cfg.Spawn.Timeout,
		HistorySize:   cfg.Spawn.HistorySize,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *tui {
		return application.Run(ctx, svc)
	}

	if *profileName == "" {
		fmt.Fprintln(out, "Profiles:")
		for _, p := range svc.Profiles() {
			fmt.Fprintf(out, "  %-20s %s\n", p.Name, p.Source)
		}
		names, err := provider.List()
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Sources:")
		for _, name := range names {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	}

	if *export {
		p, err := svc.Profile(*profileName)
		if err != nil {
			return err
		}
		data, err := profile.MarshalYAML(p)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}

	if *dump {
		pv, err := svc.Preview(ctx, *profileName)
		if err != nil {
			return err
		}
		dumper := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		dumper.Fdump(out, pv.Header, pv.Rows, pv.Records, pv.Skipped)
		return nil
	}

	res, err := svc.Spawn(core.ContextWithOrigin(ctx, core.Origin{Via: "cli"}), *profileName)
	if err != nil {
		return err
	}
	printResult(out, res)
	return nil
}

func printResult(out io.Writer, res *core.SpawnResult) {
	fmt.Fprintf(out, "Spawned %s from %s in %s\n", res.Profile, res.Source, res.Duration())
	fmt.Fprintf(out, "  rows:       %d\n", res.Rows)
	fmt.Fprintf(out, "  placed:     %d\n", len(res.Placed))
	fmt.Fprintf(out, "  unresolved: %d\n", len(res.Unresolved))
	fmt.Fprintf(out, "  skipped:    %d\n", len(res.Skipped))

	if len(res.Unresolved) > 0 {
		fmt.Fprintf(out, "Missing prefabs: %s\n", strings.Join(res.Unresolved, ", "))
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "  row %d: %s=%q is not a number (%s)\n", s.Row, s.Column, s.Value, s.Attribute)
	}
}
