package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/zapper13/Major-Mern-Stack-Project/internal/config"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/db"
	"github.com/zapper13/Major-Mern-Stack-Project/internal/seed"
)

func main() {
	destroy := flag.Bool("d", false, "destroy all data instead of importing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBDriver)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close(gdb)

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	if *destroy {
		if err := seed.Destroy(ctx, gdb); err != nil {
			log.Fatalf("destroy: %v", err)
		}
		log.Println("data destroyed")
		return
	}

	if err := seed.Import(ctx, gdb); err != nil {
		log.Fatalf("import: %v", err)
	}
	log.Println("data imported")
}
