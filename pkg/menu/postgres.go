package menu

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the menu schema up to date using the embedded goose
// migrations. It opens its own database/sql connection because goose does
// not speak pgx pools.
func Migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run menu migrations: %w", err)
	}
	return nil
}

// PostgresSource loads the catalog from the menu tables.
type PostgresSource struct {
	Pool *pgxpool.Pool
}

// Connect opens a pool for the given DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to menu database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping menu database: %w", err)
	}
	return pool, nil
}

// Load reads restaurant info, categories and items in display order.
func (p PostgresSource) Load(ctx context.Context) (*Catalog, error) {
	var c Catalog

	row := p.Pool.QueryRow(ctx, `
		SELECT name, address, prep_time_minutes, greeting
		FROM restaurant
		ORDER BY id
		LIMIT 1`)
	if err := row.Scan(&c.Restaurant.Name, &c.Restaurant.Address, &c.Restaurant.PrepTimeMinutes, &c.Restaurant.Greeting); err != nil {
		return nil, fmt.Errorf("load restaurant: %w", err)
	}

	rows, err := p.Pool.Query(ctx, `
		SELECT c.name, i.id, i.name, i.description, i.price_cents
		FROM menu_categories c
		JOIN menu_items i ON i.category_id = c.id
		ORDER BY c.position, i.position`)
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string]int)
	for rows.Next() {
		var catName string
		var it Item
		if err := rows.Scan(&catName, &it.ID, &it.Name, &it.Description, &it.PriceCents); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		idx, ok := byCategory[catName]
		if !ok {
			idx = len(c.Categories)
			byCategory[catName] = idx
			c.Categories = append(c.Categories, Category{Name: catName})
		}
		c.Categories[idx].Items = append(c.Categories[idx].Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menu items: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
