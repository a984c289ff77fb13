package main

import (
	"log"

	"focusflow/internal/config"
	"focusflow/internal/db"
	"focusflow/internal/router"
	"focusflow/migrations"
)

func main() {
	cfg := config.Load()

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, migrations.Resolve(cfg.MigrationsDir, migrations.Server())); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	engine := router.Wire(database, cfg.JWTSecret, cfg.TokenTTL, cfg.CORSOrigins)
	log.Printf("focusflow server listening on :%s", cfg.Port)
	if err := engine.Run(":" + cfg.Port); err != nil {
		log.Fatalf("run server: %v", err)
	}
}
