// Command seed-db applies the schema and loads the embedded catalog plus an
// admin API key into PostgreSQL. Safe to re-run: every write is an upsert.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/db"
	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/storage/postgres"
)

type productJSON struct {
	SKU              string           `json:"sku"`
	StyleNumber      string           `json:"style_number"`
	Name             string           `json:"name"`
	Brand            string           `json:"brand"`
	Category         string           `json:"category"`
	Colour           string           `json:"colour"`
	ImageURL         string           `json:"image_url"`
	Price            decimal.Decimal  `json:"price"`
	MarginPercentage decimal.Decimal  `json:"margin_percentage"`
	IsSpecialOffer   bool             `json:"is_special_offer"`
	OfferDiscount    *decimal.Decimal `json:"offer_discount_percentage"`
	StockQuantity    int              `json:"stock_quantity"`
	ReorderPoint     int              `json:"reorder_point"`
}

type catalogJSON struct {
	Brands     []string      `json:"brands"`
	Categories []string      `json:"categories"`
	Products   []productJSON `json:"products"`
}

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SHOP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	var seed catalogJSON
	if err := json.Unmarshal(db.Seed, &seed); err != nil {
		return errors.Wrap(err, "parse embedded catalog")
	}

	if err := seedCatalog(ctx, pool, &seed); err != nil {
		return errors.Wrap(err, "seed catalog")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

const upsertProductSQL = `INSERT INTO products
	(sku, style_number, name, brand_id, category_id, colour, image_url,
	 price, margin_percentage, calculated_price, is_special_offer,
	 offer_discount_percentage, final_price, stock_quantity, reorder_point)
	VALUES ($1, $2, $3,
		(SELECT id FROM brands WHERE name = $4),
		(SELECT id FROM categories WHERE name = $5),
		$6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (sku) DO UPDATE SET
		style_number = EXCLUDED.style_number,
		name = EXCLUDED.name,
		brand_id = EXCLUDED.brand_id,
		category_id = EXCLUDED.category_id,
		colour = EXCLUDED.colour,
		image_url = EXCLUDED.image_url,
		price = EXCLUDED.price,
		margin_percentage = EXCLUDED.margin_percentage,
		calculated_price = EXCLUDED.calculated_price,
		is_special_offer = EXCLUDED.is_special_offer,
		offer_discount_percentage = EXCLUDED.offer_discount_percentage,
		final_price = EXCLUDED.final_price,
		updated_at = now()`

func seedCatalog(ctx context.Context, pool *pgxpool.Pool, seed *catalogJSON) error {
	for _, name := range seed.Brands {
		if _, err := pool.Exec(ctx,
			`INSERT INTO brands (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return errors.Wrapf(err, "upsert brand %s", name)
		}
	}
	for _, name := range seed.Categories {
		if _, err := pool.Exec(ctx,
			`INSERT INTO categories (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return errors.Wrapf(err, "upsert category %s", name)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(seed.Products)))

	for _, p := range seed.Products {
		calculated, final := catalog.Reprice(p.Price, p.MarginPercentage, p.IsSpecialOffer, p.OfferDiscount)

		if _, err := pool.Exec(ctx, upsertProductSQL,
			p.SKU, p.StyleNumber, p.Name, p.Brand, p.Category, p.Colour, p.ImageURL,
			p.Price, p.MarginPercentage, calculated, p.IsSpecialOffer,
			p.OfferDiscount, final, p.StockQuantity, p.ReorderPoint,
		); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.SKU)
		}

		slog.Info("upserted product", slog.String("sku", p.SKU), slog.String("name", p.Name))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, true)
		ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, active = true`,
		"admin", keyHash, "Back office key", []string{"admin"},
	); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", "admin"))

	return nil
}
