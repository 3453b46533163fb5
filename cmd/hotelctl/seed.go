package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gopkg.in/yaml.v3"

	redisad "hotel_booking/internal/adapters/redis"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

type fixtureFile struct {
	Hotels []map[string]any `yaml:"hotels"`
}

func loadFixtures(path string) ([]map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f fixtureFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return f.Hotels, nil
}

type hotelImporter interface {
	ImportHotel(ctx context.Context, raw map[string]any, ownerID string) (domain.Hotel, error)
}

type seedResult struct {
	Imported int64
	Skipped  int64
}

// seedHotels imports records with at most `workers` in flight. Invalid records
// are skipped; any other failure stops the run.
func seedHotels(ctx context.Context, imp hotelImporter, records []map[string]any, workers int, ownerID string) (seedResult, error) {
	if workers < 1 {
		workers = 1
	}
	var res seedResult
	sem := semaphore.NewWeighted(int64(workers))
	g, gctx := errgroup.WithContext(ctx)

	for i, rec := range records {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, rec := i, rec
		g.Go(func() error {
			defer sem.Release(1)
			h, err := imp.ImportHotel(gctx, rec, ownerID)
			if errors.Is(err, domain.ErrPrecondition) {
				atomic.AddInt64(&res.Skipped, 1)
				log.Warn().Int("record", i).Err(err).Msg("fixture skipped")
				return nil
			}
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			atomic.AddInt64(&res.Imported, 1)
			log.Debug().Str("hotel_id", h.ID).Msg("fixture imported")
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	return res, err
}

func seedCmd(cfg shared.Config) *cobra.Command {
	var (
		file    string
		owner   string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import hotel fixtures from a YAML file",
		Long: `Import hotel fixtures into the catalog.

The file holds a top-level "hotels" list. Field names are matched loosely
(pricePerNight, price_per_night and price are all accepted).

Examples:
  hotelctl seed --file fixtures/hotels.yaml
  hotelctl seed -f hotels.yaml --owner 6f1c... --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadFixtures(file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := mysqlrepo.New(db)
			cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
			defer cache.Close()
			imp := app.NewImportService(repo, app.NewQueryService(repo, cache, cfg.CacheTTL))

			log.Info().Str("file", file).Int("records", len(records)).Int("workers", workers).Msg("seeding hotels")
			res, err := seedHotels(ctx, imp, records, workers, owner)
			log.Info().Int64("imported", res.Imported).Int64("skipped", res.Skipped).Msg("seeding finished")
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures/hotels.yaml", "YAML fixture file")
	cmd.Flags().StringVar(&owner, "owner", "", "owner user id for records that name none")
	cmd.Flags().IntVarP(&workers, "workers", "w", cfg.SeedWorkers, "concurrent imports")
	return cmd
}
