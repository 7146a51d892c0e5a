// Command seed-db loads shops, catalog items, and optionally an API key
// into the database from a JSON fixture.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oroshi/storefront/internal/domain/identity"
	"github.com/oroshi/storefront/internal/repository"
)

type seedFile struct {
	Shops    []shopJSON    `json:"shops"`
	Products []productJSON `json:"products"`
}

type shopJSON struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

type productJSON struct {
	Shop  string          `json:"shop"`
	ID    string          `json:"id"`
	Price decimal.Decimal `json:"price"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	var (
		databaseURL  string
		seedPath     string
		apiKey       string
		apiKeyUser   string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedPath, "seed-file", "db/seed/storefront.json", "path to seed JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed, optional (or STOREFRONT_SEED_API_KEY env)")
	flag.StringVar(&apiKeyUser, "api-key-user", "seed-user", "user identifier the seeded API key resolves to")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STOREFRONT_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STOREFRONT_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STOREFRONT_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedPath, apiKey, apiKeyUser, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedPath, apiKey, apiKeyUser, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seed, err := readSeedFile(seedPath)
	if err != nil {
		return errors.Wrap(err, "read seed file")
	}

	if err := seedShops(ctx, pool, seed.Shops); err != nil {
		return errors.Wrap(err, "seed shops")
	}

	if err := seedProducts(ctx, pool, seed.Products); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyUser, pepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}

	return nil
}

func readSeedFile(path string) (*seedFile, error) {
	slog.Info("reading seed file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, errors.Wrap(err, "parse seed JSON")
	}
	return &seed, nil
}

func seedShops(ctx context.Context, pool *pgxpool.Pool, shops []shopJSON) error {
	const upsert = `INSERT INTO shops (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`

	for _, s := range shops {
		if _, err := pool.Exec(ctx, upsert, s.ID, s.Data); err != nil {
			return errors.Wrapf(err, "upsert shop %s", s.ID)
		}
	}

	slog.Info("shops seeded", slog.Int("count", len(shops)))
	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, products []productJSON) error {
	const upsert = `INSERT INTO products (shop_id, id, price, data) VALUES ($1, $2, $3, $4)
		ON CONFLICT (shop_id, id) DO UPDATE SET price = EXCLUDED.price, data = EXCLUDED.data`

	for _, p := range products {
		if _, err := pool.Exec(ctx, upsert, p.Shop, p.ID, p.Price, p.Data); err != nil {
			return errors.Wrapf(err, "upsert product %s/%s", p.Shop, p.ID)
		}
	}

	slog.Info("products seeded", slog.Int("count", len(products)))
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, user, pepper string) error {
	const upsert = `INSERT INTO api_keys (key_hash, user_id, scopes) VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO UPDATE SET user_id = EXCLUDED.user_id, active = TRUE`

	hash := identity.HashKey([]byte(apiKey), []byte(pepper))
	if _, err := pool.Exec(ctx, upsert, hash, user, []string{"orders:create"}); err != nil {
		return errors.Wrap(err, "upsert api key")
	}

	slog.Info("api key seeded", slog.String("user", user))
	return nil
}
