package main

import (
	"context"
	"fmt"
	"go-blog-app/internal/cache"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/fixture"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/service"
	"os"

	flag "github.com/spf13/pflag"
)

func main() {
	file := flag.StringP("file", "f", "db.json", "path to the JSON dump to import")
	purge := flag.Bool("purge", false, "delete existing users, taxonomy, posts and comments first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log, os.Stdout)

	db, err := data.NewDB(cfg.DB)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	if err := data.ApplyMigrations(db, cfg.DB.Driver); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}

	ctx := context.Background()
	if *purge {
		log.Warn("Purging existing content...")
		if err := data.PurgeContent(ctx, db); err != nil {
			log.Fatal(err, "Failed to purge content")
		}
		// Expired rendered bodies go too.
		if renderCache, err := cache.New(cfg.Cache); err != nil {
			log.Error(err, "Failed to open cache for purging")
		} else {
			if err := renderCache.Purge(); err != nil {
				log.Error(err, "Failed to purge cache")
			}
			renderCache.Close()
		}
	}

	in, err := os.Open(*file)
	if err != nil {
		log.Fatal(err, "Failed to open dump")
	}
	defer in.Close()

	loader := fixture.NewLoader(fixture.Stores{
		Locations:  data.NewLocationRepository(db),
		Users:      data.NewSQLUserRepository(db),
		Categories: data.NewCategoryRepository(db),
		Posts:      data.NewSQLPostRepository(db),
	}, service.UTCNow, log)

	summary, err := loader.Load(ctx, in)
	if err != nil {
		log.Fatal(err, "Import failed")
	}
	fields := make(map[string]interface{}, len(summary))
	for model, n := range summary {
		fields[model] = n
	}
	log.With(fields).Info("Data processing complete.")
}
