// Package inventory keeps the session-scoped set of collected item names.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	goccy "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jwebster45206/quell/pkg/storage"
)

// RecordName is the session value the inventory is persisted under.
const RecordName = "inventory"

// Inventory is a set of item names, unique by name, in collection order.
// Items can be added but never removed.
type Inventory struct {
	store     storage.SessionStore
	sessionID uuid.UUID
	logger    *slog.Logger
	items     []string
}

func New(store storage.SessionStore, sessionID uuid.UUID, logger *slog.Logger) *Inventory {
	return &Inventory{
		store:     store,
		sessionID: sessionID,
		logger:    logger,
	}
}

// Load replaces the in-memory set with the persisted record. A missing or
// malformed record yields an empty inventory; only store failures are errors.
func (inv *Inventory) Load(ctx context.Context) error {
	raw, err := inv.store.Load(ctx, inv.sessionID, RecordName)
	if err != nil {
		inv.items = nil
		return fmt.Errorf("failed to load inventory: %w", err)
	}
	inv.items = Decode(raw, inv.logger)
	return nil
}

// Add inserts name if absent and persists the updated set. It reports whether
// an insertion occurred. The write merges with whatever the store holds, so
// concurrent adds to one session never drop each other's items. On a
// persistence error the item stays in memory.
func (inv *Inventory) Add(ctx context.Context, name string) (bool, error) {
	if inv.Has(name) {
		return false, nil
	}
	inv.items = append(inv.items, name)

	var merged []string
	added := true
	err := inv.store.Update(ctx, inv.sessionID, RecordName, func(current string) (string, error) {
		merged = Decode(current, inv.logger)
		added = !slices.Contains(merged, name)
		for _, item := range inv.items {
			if !slices.Contains(merged, item) {
				merged = append(merged, item)
			}
		}
		return Encode(merged)
	})
	if err != nil {
		return true, fmt.Errorf("failed to save inventory: %w", err)
	}

	inv.items = merged
	inv.logger.Debug("Item added to inventory", "item", name, "items", inv.items, "added", added)
	return added, nil
}

func (inv *Inventory) Has(name string) bool {
	return slices.Contains(inv.items, name)
}

// Items returns a copy of the collected names.
func (inv *Inventory) Items() []string {
	return slices.Clone(inv.items)
}

func (inv *Inventory) Len() int {
	return len(inv.items)
}

// Encode serializes items as a JSON array of strings.
func Encode(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := goccy.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal inventory: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted record. Anything that is not a JSON array of
// strings decodes to an empty inventory. Duplicates are collapsed.
func Decode(raw string, logger *slog.Logger) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := goccy.Unmarshal([]byte(raw), &items); err != nil {
		if logger != nil {
			logger.Warn("Discarding malformed inventory record", "error", err)
		}
		return nil
	}

	unique := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(unique, item) {
			unique = append(unique, item)
		}
	}
	return unique
}
