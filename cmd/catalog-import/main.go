// Command catalog-import loads supplier catalog feeds (gzipped JSON lines,
// one product per line) into the database. Phase 1 builds a bloom filter of
// SKUs already present so existing rows take the update path; phase 2 parses
// the feed files in parallel and upserts each product with derived prices.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	progressEvery = 10_000
)

// feedProduct is one supplier feed line.
type feedProduct struct {
	SKU           string
	StyleNumber   string
	Name          string
	Brand         string
	Category      string
	Colour        string
	ImageURL      string
	Price         decimal.Decimal
	Margin        decimal.Decimal
	StockQuantity int
	ReorderPoint  int
}

func main() {
	var (
		feedDir     string
		databaseURL string
		workers     int
	)

	flag.StringVar(&feedDir, "feed-dir", "feeds", "directory containing *.jsonl.gz supplier feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", 4, "number of files parsed concurrently")
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

	if err := run(ctx, feedDir, databaseURL, workers); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, feedDir, databaseURL string, workers int) error {
	files, err := filepath.Glob(filepath.Join(feedDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", feedDir)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Phase 1: known SKUs into a bloom filter so the importer can report
	// how much of the feed is new versus updated.
	slog.Info("phase 1: loading known SKUs")

	known, err := knownSKUs(ctx, pool)
	if err != nil {
		return errors.Wrap(err, "load known skus")
	}

	// Phase 2: parse and upsert feed files in parallel.
	slog.Info("phase 2: importing feeds",
		slog.Int("files", len(files)),
		slog.Int("workers", workers),
	)

	var inserted, updated atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		g.Go(func() error {
			return importFeed(ctx, pool, path, known, &inserted, &updated)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("import summary",
		slog.Int64("inserted", inserted.Load()),
		slog.Int64("updated", updated.Load()),
	)

	return nil
}

// knownSKUs streams every existing SKU into a bloom filter.
func knownSKUs(ctx context.Context, pool *pgxpool.Pool) (*bloom.BloomFilter, error) {
	filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)

	rows, err := pool.Query(ctx, `SELECT sku FROM products`)
	if err != nil {
		return nil, errors.Wrap(err, "query skus")
	}
	skus, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Wrap(err, "collect skus")
	}
	for _, sku := range skus {
		filter.AddString(sku)
	}

	slog.Info("phase 1 complete", slog.Int("known_skus", len(skus)))

	return filter, nil
}

const upsertFeedProductSQL = `INSERT INTO products
	(sku, style_number, name, brand_id, category_id, colour, image_url,
	 price, margin_percentage, calculated_price, final_price,
	 stock_quantity, reorder_point)
	VALUES ($1, $2, $3,
		(SELECT id FROM brands WHERE name = $4),
		(SELECT id FROM categories WHERE name = $5),
		$6, $7, $8, $9, $10, $11, $12, $13)
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
		final_price = EXCLUDED.final_price,
		updated_at = now()`

func importFeed(ctx context.Context, pool *pgxpool.Pool, path string, known *bloom.BloomFilter, inserted, updated *atomic.Int64) error {
	name := filepath.Base(path)
	var count uint64

	err := streamFeed(ctx, path, func(p *feedProduct) error {
		calculated, final := catalog.Reprice(p.Price, p.Margin, false, nil)

		if _, err := pool.Exec(ctx, upsertFeedProductSQL,
			p.SKU, p.StyleNumber, p.Name, p.Brand, p.Category, p.Colour, p.ImageURL,
			p.Price, p.Margin, calculated, final, p.StockQuantity, p.ReorderPoint,
		); err != nil {
			return errors.Wrapf(err, "upsert %s", p.SKU)
		}

		if known.TestString(p.SKU) {
			updated.Add(1)
		} else {
			inserted.Add(1)
			known.AddString(p.SKU)
		}

		count++
		if count%progressEvery == 0 {
			slog.Info("import progress", slog.String("file", name), slog.Uint64("products", count))
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "import %s", name)
	}

	slog.Info("file complete", slog.String("file", name), slog.Uint64("products", count))

	return nil
}

// streamFeed opens a gzipped JSON-lines file and calls fn for each parsed
// product. Lines missing a SKU or price are skipped, not fatal.
func streamFeed(ctx context.Context, path string, fn func(*feedProduct) error) error {
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

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		p, err := parseFeedLine(line)
		if err != nil {
			slog.Warn("skipping malformed feed line", slog.String("error", err.Error()))
			continue
		}
		if p.SKU == "" || p.Price.IsZero() {
			continue
		}

		if err := fn(p); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

// parseFeedLine decodes one feed line without allocating an intermediate
// map. Unknown fields are skipped so feeds can carry supplier extras.
func parseFeedLine(line []byte) (*feedProduct, error) {
	var p feedProduct
	d := jx.DecodeBytes(line)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sku":
			v, err := d.Str()
			p.SKU = v
			return err
		case "style_number":
			v, err := d.Str()
			p.StyleNumber = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "brand":
			v, err := d.Str()
			p.Brand = v
			return err
		case "category":
			v, err := d.Str()
			p.Category = v
			return err
		case "colour":
			v, err := d.Str()
			p.Colour = v
			return err
		case "image_url":
			v, err := d.Str()
			p.ImageURL = v
			return err
		case "price":
			return decodeDecimal(d, &p.Price)
		case "margin_percentage":
			return decodeDecimal(d, &p.Margin)
		case "stock_quantity":
			v, err := d.Int()
			p.StockQuantity = v
			return err
		case "reorder_point":
			v, err := d.Int()
			p.ReorderPoint = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*out = v
		return nil
	default:
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(raw.String())
		if err != nil {
			return err
		}
		*out = v
		return nil
	}
}
