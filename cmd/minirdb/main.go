// Command minirdb is a small relational database over per-table files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"minirdb/internal/backup"
	"minirdb/internal/config"
	"minirdb/internal/engine"
	"minirdb/internal/logging"
	"minirdb/internal/repl"
	"minirdb/internal/storage/filestore"
)

const version = "0.1.0"

// CLI defines the command-line interface for minirdb.
type CLI struct {
	config.Config `embed:""`

	Repl    ReplCmd    `cmd:"" default:"1" help:"Start the interactive shell (default)"`
	Exec    ExecCmd    `cmd:"" help:"Execute SQL statements and exit"`
	Tables  TablesCmd  `cmd:"" help:"List tables"`
	Schema  SchemaCmd  `cmd:"" help:"Show a table's schema"`
	Backup  BackupCmd  `cmd:"" help:"Write the data directory to a tar.xz archive"`
	Restore RestoreCmd `cmd:"" help:"Restore tables from a tar.xz archive"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func openStore(cfg *config.Config) (*filestore.FileEngine, error) {
	return filestore.New(cfg.DataDir)
}

// ReplCmd starts the interactive shell on stdin.
type ReplCmd struct{}

func (c *ReplCmd) Run(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	return repl.Run(engine.New(store), os.Stdin, os.Stdout)
}

// ExecCmd runs statements given as arguments or read from a file.
type ExecCmd struct {
	SQL  []string `arg:"" optional:"" help:"SQL text; statements are separated by ';'"`
	File string   `short:"f" type:"existingfile" help:"Read SQL from file"`
	JSON bool     `help:"Print SELECT rows as JSON objects"`
}

func (c *ExecCmd) Run(cfg *config.Config) error {
	input := strings.Join(c.SQL, " ")
	if c.File != "" {
		b, err := os.ReadFile(c.File)
		if err != nil {
			return fmt.Errorf("read %s: %w", c.File, err)
		}
		input = string(b) + "\n" + input
	}
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("no SQL given")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	results, err := engine.New(store).ExecuteSQL(input)
	for _, res := range results {
		if perr := printResult(os.Stdout, res, c.JSON); perr != nil {
			return perr
		}
	}
	return err
}

func printResult(w io.Writer, res *engine.Result, asJSON bool) error {
	if !asJSON || !res.IsQuery() {
		repl.WriteResult(w, res)
		return nil
	}
	enc := json.NewEncoder(w)
	for _, rec := range res.Records() {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// TablesCmd lists the tables in the data directory.
type TablesCmd struct{}

func (c *TablesCmd) Run(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	tables, err := engine.New(store).ListTables()
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}

// SchemaCmd prints a table's columns and schema metadata.
type SchemaCmd struct {
	Table string `arg:"" help:"Table name"`
}

func (c *SchemaCmd) Run(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	cols, err := engine.New(store).TableSchema(c.Table)
	if err != nil {
		return err
	}
	s, err := store.Describe(c.Table)
	if err != nil {
		return err
	}
	fmt.Printf("table:    %s\n", s.Table)
	fmt.Printf("id:       %s\n", s.ID)
	fmt.Printf("checksum: %s\n", s.Checksum)
	for _, col := range cols {
		fmt.Printf("  %s %s\n", col.Name, col.Type)
	}
	return nil
}

// BackupCmd archives every table.
type BackupCmd struct {
	Output string `arg:"" help:"Archive path (.tar.xz)" type:"path"`
}

func (c *BackupCmd) Run(cfg *config.Config) error {
	f, err := os.OpenFile(c.Output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	tables, err := backup.Write(cfg.DataDir, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(c.Output)
		return err
	}
	fmt.Printf("backed up %d table(s) to %s\n", len(tables), c.Output)
	return nil
}

// RestoreCmd extracts an archive into the data directory.
type RestoreCmd struct {
	Input string `arg:"" help:"Archive path (.tar.xz)" type:"existingfile"`
}

func (c *RestoreCmd) Run(cfg *config.Config) error {
	f, err := os.Open(c.Input)
	if err != nil {
		return err
	}
	defer f.Close()
	tables, err := backup.Restore(f, cfg.DataDir)
	if err != nil {
		return err
	}
	fmt.Printf("restored %d table(s): %s\n", len(tables), strings.Join(tables, ", "))
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("minirdb version %s\n", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("minirdb"),
		kong.Description("A minimal relational database over per-table files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	level, format, err := cli.Config.Validate()
	ctx.FatalIfErrorf(err)
	logging.InitLogger(level, format, os.Stderr)
	logging.Debug("starting", "command", ctx.Command(), "data_dir", cli.DataDir)

	err = ctx.Run(&cli.Config)
	ctx.FatalIfErrorf(err)
}
