// Command migrate manages the gratitude database schema.
//
//	migrate up            apply pending SQL migrations
//	migrate auto          AutoMigrate the models (refused in production)
//	migrate status        list applied and pending migrations
//	migrate down VERSION  roll back one migration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"gratitude/internal/bootstrap"
	"gratitude/internal/config"
	"gratitude/internal/database"

	"gorm.io/gorm"
)

type command struct {
	usage string
	run   func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error
}

var commands = map[string]command{
	"up":     {"up", runUp},
	"auto":   {"auto", runAuto},
	"status": {"status", runStatus},
	"down":   {"down VERSION", runDown},
}

var errUsage = errors.New("usage: migrate <up|auto|status|down VERSION>")

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "abort after this long")
	flag.Parse()

	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		log.Fatal(errUsage)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipSchema: true})
	if err != nil {
		log.Fatalf("connect: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	err = cmd.run(ctx, rt.DB, cfg, flag.Args()[1:])
	cancel()
	_ = rt.Close(context.Background())
	if err != nil {
		log.Fatalf("migrate %s: %v", cmd.usage, err)
	}
}

func runUp(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	ran, err := database.MigrateUp(ctx, db)
	if err != nil {
		return err
	}
	if len(ran) == 0 {
		log.Println("schema is up to date")
	}
	for _, m := range ran {
		log.Printf("applied %s", m)
	}
	return nil
}

func runAuto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return err
	}
	log.Println("models auto-migrated")
	return nil
}

func runStatus(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return err
	}
	return printStatus(os.Stdout, status)
}

func printStatus(w io.Writer, status *database.SchemaStatus) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := status.Plan
	fmt.Fprintf(tw, "mode\t%s\n", p.Mode)
	fmt.Fprintf(tw, "env\t%s\n", p.Env)
	fmt.Fprintf(tw, "sql migrations\t%t\n", p.SQL)
	fmt.Fprintf(tw, "automigrate\t%t\n", p.AutoMigrate)
	fmt.Fprintf(tw, "applied\t%d\n", len(status.Applied))
	for _, m := range status.Pending {
		fmt.Fprintf(tw, "pending\t%s\n", m)
	}
	return tw.Flush()
}

func runDown(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("version %q: %w", args[0], err)
	}
	m, err := database.MigrateDown(ctx, db, version)
	if err != nil {
		return err
	}
	log.Printf("rolled back %s", m)
	return nil
}
