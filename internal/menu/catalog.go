// Package menu serves the restaurant menu from a TTL cache in front of the
// backend.
package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jcmexdev/restaurant-checkout/internal/domain"
	"github.com/jcmexdev/restaurant-checkout/internal/pkg/cache"
)

const DefaultTTL = 5 * time.Minute

// Fetcher loads the full menu from the backend.
type Fetcher interface {
	MenuItems(ctx context.Context) ([]domain.MenuItem, error)
}

type Catalog struct {
	fetcher Fetcher
	cache   cache.Cache
	ttl     time.Duration
}

func NewCatalog(fetcher Fetcher, c cache.Cache, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{fetcher: fetcher, cache: c, ttl: ttl}
}

func (c *Catalog) key() string {
	return c.cache.GenerateKey("menu", "items")
}

// Items returns the menu. Cache failures degrade to a backend fetch.
func (c *Catalog) Items(ctx context.Context) ([]domain.MenuItem, error) {
	if raw, err := c.cache.Get(ctx, c.key()); err != nil {
		slog.WarnContext(ctx, "menu cache read failed", "error", err)
	} else if raw != "" {
		var items []domain.MenuItem
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			return items, nil
		}
		slog.WarnContext(ctx, "discarding undecodable menu cache entry")
	}

	items, err := c.fetcher.MenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu: fetch items: %w", err)
	}

	if b, err := json.Marshal(items); err == nil {
		if err := c.cache.Set(ctx, c.key(), b, c.ttl); err != nil {
			slog.WarnContext(ctx, "menu cache write failed", "error", err)
		}
	}
	return items, nil
}

// Invalidate drops the cached menu so the next Items call refetches.
func (c *Catalog) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, c.key())
}

// Line builds a cart line for itemID in size from the current menu. ok is
// false when the item or the size is unknown.
func (c *Catalog) Line(ctx context.Context, itemID, size string) (line domain.CartLine, ok bool, err error) {
	items, err := c.Items(ctx)
	if err != nil {
		return domain.CartLine{}, false, err
	}

	for _, it := range items {
		if strconv.Itoa(it.ID) != itemID {
			continue
		}
		price := float64(it.Price)
		if size != "" {
			found := false
			for _, s := range it.Sizes {
				if s.Size == size {
					price, found = float64(s.Price), true
					break
				}
			}
			if !found {
				return domain.CartLine{}, false, nil
			}
		}
		name := it.Name
		if size != "" {
			name = fmt.Sprintf("%s (%s)", it.Name, size)
		}
		return domain.CartLine{
			ID:       domain.LineID(itemID, size),
			Name:     name,
			Price:    price,
			Quantity: 1,
			Image:    it.Image,
		}, true, nil
	}
	return domain.CartLine{}, false, nil
}
