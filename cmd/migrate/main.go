package main

import (
	"context"
	"flag"
	"log"

	"focusflow/internal/config"
	"focusflow/internal/db"
	"focusflow/migrations"
)

func main() {
	local := flag.Bool("local", false, "apply the client ledger schema instead of the server schema")
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	cfg := config.Load()
	schema := migrations.Server()
	if *local {
		schema = migrations.Local()
	}
	schema = migrations.Resolve(cfg.MigrationsDir, schema)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	pending, err := db.PendingMigrations(context.Background(), database, schema)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	for _, name := range pending {
		log.Printf("pending: %s", name)
	}
	if *dryRun || len(pending) == 0 {
		log.Printf("%d pending migrations for %s", len(pending), cfg.DBPath)
		return
	}

	if err := db.RunMigrations(database, schema); err != nil {
		log.Fatalf("run migrations: %v", err)
	}
	log.Printf("applied %d migrations to %s", len(pending), cfg.DBPath)
}
