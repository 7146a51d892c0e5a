// Command catalog-import bulk-loads catalog items from gzipped JSONL export
// shards. Each line is one product: {"shop": ..., "id": ..., "price": ...,
// "data": {...}}.
//
// Export shards are supposed to be disjoint. A (shop, id) key appearing in
// more than one shard means the export is ambiguous for that product, so
// those keys are detected up front (bloom filter per shard, then an exact
// cross-check) and skipped with a warning instead of letting whichever
// shard imports last win silently.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/oroshi/storefront/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

type productLine struct {
	Shop  string          `json:"shop"`
	ID    string          `json:"id"`
	Price decimal.Decimal `json:"price"`
	Data  json.RawMessage `json:"data"`
}

func (p *productLine) key() string {
	return p.Shop + "/" + p.ID
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing products-*.jsonl.gz shards")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "products-*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "glob shards")
	}
	if len(files) == 0 {
		return errors.Errorf("no products-*.jsonl.gz shards in %s", dataDir)
	}

	// Pass 1: one bloom filter per shard, built concurrently.
	slog.Info("pass 1: building shard filters", slog.Int("files", len(files)))

	filters, err := buildShardFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build shard filters")
	}

	// Pass 2: find keys that appear in more than one shard.
	slog.Info("pass 2: detecting cross-shard duplicates")

	duplicates, err := findDuplicateKeys(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find duplicate keys")
	}

	if len(duplicates) > 0 {
		slog.Warn("ambiguous products skipped", slog.Int("count", len(duplicates)))
	}

	// Pass 3: upsert everything that is not ambiguous.
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	for _, f := range files {
		if err := importShard(ctx, pool, f, duplicates); err != nil {
			return errors.Wrapf(err, "import shard %s", f)
		}
	}

	return nil
}

// buildShardFilters creates one bloom filter per shard, concurrently.
func buildShardFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForShard(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForShard(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamShard(ctx, path, func(p *productLine) {
			filter.AddString(p.key())
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress",
					slog.Int("file", idx+1),
					slog.Uint64("products", count),
				)
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for shard %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_products", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findDuplicateKeys re-streams each shard and checks keys against OTHER
// shards' bloom filters. A filter hit may be a false positive, so candidate
// keys are confirmed by counting the shards that actually contain them.
func findDuplicateKeys(ctx context.Context, files []string, filters []*bloom.BloomFilter) (map[string]bool, error) {
	results := make([]map[string]uint, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInShard(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge shard bitmasks; keys genuinely present in 2+ shards are
	// ambiguous and excluded from the import.
	merged := make(map[string]uint)
	for _, candidates := range results {
		for key, mask := range candidates {
			merged[key] |= mask
		}
	}

	duplicates := make(map[string]bool)
	for key, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			duplicates[key] = true
		}
	}

	return duplicates, nil
}

func findCandidatesInShard(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []map[string]uint,
) func() error {
	return func() error {
		candidates := make(map[string]uint)
		shardBit := uint(1) << uint(idx)

		if err := streamShard(ctx, path, func(p *productLine) {
			key := p.key()
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(key) {
					candidates[key] |= shardBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan shard %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = candidates
		return nil
	}
}

// importShard streams one shard and upserts every unambiguous product.
func importShard(ctx context.Context, pool *pgxpool.Pool, path string, skip map[string]bool) error {
	const upsert = `INSERT INTO products (shop_id, id, price, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop_id, id) DO UPDATE SET price = EXCLUDED.price, data = EXCLUDED.data`

	var written, skipped uint64
	err := streamShard(ctx, path, func(p *productLine) {
		if skip[p.key()] {
			skipped++
			return
		}
		if _, err := pool.Exec(ctx, upsert, p.Shop, p.ID, p.Price, p.Data); err != nil {
			slog.Error("upsert product failed",
				slog.String("key", p.key()),
				slog.String("error", err.Error()),
			)
			return
		}
		written++
		if written%progressEvery == 0 {
			slog.Info("import progress", slog.String("file", path), slog.Uint64("written", written))
		}
	})
	if err != nil {
		return err
	}

	slog.Info("shard imported",
		slog.String("file", path),
		slog.Uint64("written", written),
		slog.Uint64("skipped", skipped),
	)
	return nil
}

// streamShard opens a gzip-compressed JSONL shard and calls fn for each
// parseable product line. Malformed lines are counted and skipped.
func streamShard(ctx context.Context, path string, fn func(p *productLine)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	var malformed uint64
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p productLine
		if err := json.Unmarshal(line, &p); err != nil || p.Shop == "" || p.ID == "" {
			malformed++
			continue
		}
		fn(&p)
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	if malformed > 0 {
		slog.Warn("malformed lines skipped", slog.String("file", path), slog.Uint64("count", malformed))
	}

	return nil
}
