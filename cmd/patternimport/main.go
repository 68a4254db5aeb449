// patternimport moves bullet pattern tables between YAML and PostgreSQL.
//
// Usage:
//
//	go run ./cmd/patternimport <command> [-config path] [-file path]
//
// Commands: check, import, export
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/barrage/server/internal/config"
	"github.com/barrage/server/internal/data"
	"github.com/barrage/server/internal/persist"
)

func printUsage() {
	fmt.Println("Usage: patternimport <command> [-config path] [-file path]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  check    validate a pattern YAML file without touching the database")
	fmt.Println("  import   upsert every pattern in the YAML file into the database")
	fmt.Println("  export   write every database pattern to the YAML file")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}

	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	cfgPath := fs.String("config", config.Path(), "server config (database section)")
	file := fs.String("file", "", "pattern YAML file (default: data.patterns from config)")
	_ = fs.Parse(os.Args[2:])

	commands := map[string]func(*config.Config, string) error{
		"check":  checkPatterns,
		"import": importPatterns,
		"export": exportPatterns,
	}
	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
	path := *file
	if path == "" {
		path = cfg.Data.Patterns
	}
	if err := fn(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}

func checkPatterns(_ *config.Config, path string) error {
	tbl, err := data.LoadPatternTable(path)
	if err != nil {
		return err
	}
	for _, name := range tbl.Names() {
		e := tbl.Get(name)
		fmt.Printf("  %-24s %2d steps  repeat=%t\n", name, len(e.Steps), e.Repeat)
	}
	fmt.Printf("%d patterns OK\n", tbl.Count())
	return nil
}

func openDB(ctx context.Context, cfg *config.Config) (*persist.DB, error) {
	db, err := persist.NewDB(ctx, cfg.Database, zap.NewNop())
	if err != nil {
		return nil, err
	}
	if err := persist.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func importPatterns(cfg *config.Config, path string) error {
	tbl, err := data.LoadPatternTable(path)
	if err != nil {
		return err
	}
	entries := make([]data.PatternEntry, 0, tbl.Count())
	for _, name := range tbl.Names() {
		entries = append(entries, *tbl.Get(name))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := persist.NewPatternRepo(db).Upsert(ctx, entries); err != nil {
		return err
	}
	fmt.Printf("imported %d patterns from %s\n", len(entries), path)
	return nil
}

type patternFileYAML struct {
	Patterns []data.PatternEntry `yaml:"patterns"`
}

func exportPatterns(cfg *config.Config, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := persist.NewPatternRepo(db).LoadAll(ctx)
	if err != nil {
		return err
	}
	if _, err := data.NewPatternTable(entries); err != nil {
		return fmt.Errorf("database holds invalid patterns: %w", err)
	}

	out, err := yaml.Marshal(patternFileYAML{Patterns: entries})
	if err != nil {
		return fmt.Errorf("marshal patterns: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("exported %d patterns to %s\n", len(entries), path)
	return nil
}
