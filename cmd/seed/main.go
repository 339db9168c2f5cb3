// Command seed loads draft-shaped records from a YAML file and inserts
// them through the same decode path the dashboard uses.
//
// Usage: seed <file.yaml>
package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/blockedby/recruiting-os/internal/codec"
	"github.com/blockedby/recruiting-os/internal/config"
	"github.com/blockedby/recruiting-os/internal/database"
	"github.com/blockedby/recruiting-os/internal/logger"
	"github.com/blockedby/recruiting-os/internal/schema"
	"github.com/blockedby/recruiting-os/internal/storage"
)

// seedFile maps entity names to draft-shaped entries.
type seedFile map[string][]seedEntry

type seedEntry struct {
	Values map[string]string `yaml:"values"`
	Flags  map[string]bool   `yaml:"flags"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: seed <file.yaml>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.LogLevel, ""); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal().Err(err).Str("path", os.Args[1]).Msg("failed to read seed file")
	}

	var seeds seedFile
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		log.Fatal().Err(err).Msg("invalid seed file")
	}

	ctx := context.Background()
	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer cleanup()

	registry := schema.ByEntity()
	inserted := 0
	for entity, entries := range seeds {
		s, ok := registry[entity]
		if !ok {
			log.Fatal().Str("entity", entity).Msg("unknown entity in seed file")
		}

		for i, entry := range entries {
			d := schema.Draft{Values: entry.Values, Flags: entry.Flags}
			if d.Values == nil {
				d.Values = map[string]string{}
			}
			if d.Flags == nil {
				d.Flags = map[string]bool{}
			}

			rec, err := codec.Decode(d, s)
			if err != nil {
				log.Fatal().Err(err).Str("entity", entity).Int("entry", i).Msg("invalid seed entry")
			}

			if err := store.Insert(ctx, entity, &rec); err != nil {
				log.Fatal().Err(err).Str("entity", entity).Int("entry", i).Msg("insert failed")
			}
			inserted++
		}
	}

	log.Info().Int("records", inserted).Msg("seed complete")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, func(), error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		gdb, err := database.NewSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		st := storage.NewGorm(gdb, schema.All())
		if err := st.Migrate(); err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil

	case "gorm-postgres":
		gdb, err := database.NewGormPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		st := storage.NewGorm(gdb, schema.All())
		if err := st.Migrate(); err != nil {
			return nil, nil, err
		}
		return st, func() {}, nil

	default:
		db, err := database.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgres(db.Pool, schema.All()), db.Close, nil
	}
}
