// Package menu holds the restaurant catalog the assistant sells from.
// Catalogs are loaded once at startup from a Source; item prices are in
// centavos.
package menu

import (
	"context"
	"fmt"
	"strings"
)

// Restaurant is the venue the gateway answers for.
type Restaurant struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	PrepTimeMinutes int    `json:"prep_time_minutes"`
	Greeting        string `json:"greeting"`
}

// Item is one sellable catalog entry.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
}

// Category groups items the way the menu is read out.
type Category struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Catalog is the full menu plus restaurant info.
type Catalog struct {
	Restaurant Restaurant `json:"restaurant"`
	Categories []Category `json:"categories"`
}

// Source loads a catalog at startup.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

// FindItem looks up an item by id across all categories.
func (c *Catalog) FindItem(id string) (Item, bool) {
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if it.ID == id {
				return it, true
			}
		}
	}
	return Item{}, false
}

// PromptText renders the menu the way the dialogue model consumes it.
func (c *Catalog) PromptText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== CARDÁPIO - %s ===\n", c.Restaurant.Name)
	for _, cat := range c.Categories {
		fmt.Fprintf(&b, "\n[%s]\n", strings.ToUpper(cat.Name))
		for _, it := range cat.Items {
			fmt.Fprintf(&b, "  - %s (ID: %s): R$ %d.%02d — %s\n",
				it.Name, it.ID, it.PriceCents/100, it.PriceCents%100, it.Description)
		}
	}
	return b.String()
}

// Validate rejects catalogs the gateway cannot serve from.
func (c *Catalog) Validate() error {
	if strings.TrimSpace(c.Restaurant.Name) == "" {
		return fmt.Errorf("menu: restaurant name is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("menu: at least one category is required")
	}
	seen := make(map[string]struct{})
	for _, cat := range c.Categories {
		for _, it := range cat.Items {
			if strings.TrimSpace(it.ID) == "" {
				return fmt.Errorf("menu: item %q has no id", it.Name)
			}
			if _, dup := seen[it.ID]; dup {
				return fmt.Errorf("menu: duplicate item id %q", it.ID)
			}
			seen[it.ID] = struct{}{}
			if it.PriceCents < 0 {
				return fmt.Errorf("menu: item %q has a negative price", it.ID)
			}
		}
	}
	return nil
}
