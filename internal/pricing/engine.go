package pricing

import (
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tiffinworks/commerce-backend/internal/catalog"
)

// Entry is one raw key/value pair of the price-threshold feed, kept exactly
// as the server supplied it.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Engine maps category prefixes to discount thresholds. The derived map is
// always a pure function of the raw list.
type Engine struct {
	mu         sync.RWMutex
	raw        []Entry
	thresholds map[string]decimal.Decimal
}

// NewEngine builds an empty pricing engine.
func NewEngine() *Engine {
	return &Engine{thresholds: map[string]decimal.Decimal{}}
}

// SetAll replaces the raw list with an exact copy and rebuilds the map.
func (e *Engine) SetAll(entries []Entry) {
	raw := append([]Entry(nil), entries...)
	e.mu.Lock()
	e.raw = raw
	e.thresholds = buildThresholds(raw)
	e.mu.Unlock()
}

// UpsertOne replaces the raw entry with a matching key, or appends, then
// rebuilds the map.
func (e *Engine) UpsertOne(entry Entry) {
	e.mu.Lock()
	replaced := false
	for i := range e.raw {
		if e.raw[i].Key == entry.Key {
			e.raw[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		e.raw = append(e.raw, entry)
	}
	e.thresholds = buildThresholds(e.raw)
	e.mu.Unlock()
}

// Clear empties the raw list and the derived map.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.raw = nil
	e.thresholds = map[string]decimal.Decimal{}
	e.mu.Unlock()
}

// Raw returns a copy of the raw list in feed order.
func (e *Engine) Raw() []Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Entry(nil), e.raw...)
}

// Threshold returns the parsed threshold for a category, if registered.
func (e *Engine) Threshold(category string) (decimal.Decimal, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.thresholds[normalizePrefix(category)]
	return t, ok
}

// buildThresholds derives the prefix map from the raw list. Entries with an
// empty prefix or a non-finite value are dropped from the map only; later
// entries for the same prefix overwrite earlier ones.
func buildThresholds(raw []Entry) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(raw))
	for _, entry := range raw {
		prefix := normalizePrefix(strings.SplitN(entry.Key, "_", 2)[0])
		if prefix == "" {
			continue
		}
		value := strings.TrimSpace(entry.Value)
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			continue
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			continue
		}
		out[prefix] = d
	}
	return out
}

func normalizePrefix(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Apply returns the group with each item's displayed price reduced by the
// category threshold, floored at zero and truncated to the decimal-place
// count of the item's original price string. Groups without a registered
// threshold come back unchanged. Apply never mutates its input.
func (e *Engine) Apply(group catalog.CategoryGroup) catalog.CategoryGroup {
	threshold, ok := e.Threshold(group.Key)
	if !ok {
		return group
	}

	items := make([]catalog.Item, len(group.Items))
	for i, item := range group.Items {
		item.Price = discountPrice(item.Price, threshold)
		items[i] = item
	}
	return catalog.CategoryGroup{Key: group.Key, Items: items}
}

// ApplyAll maps Apply over a full day catalog.
func (e *Engine) ApplyAll(groups []catalog.CategoryGroup) []catalog.CategoryGroup {
	out := make([]catalog.CategoryGroup, len(groups))
	for i, group := range groups {
		out[i] = e.Apply(group)
	}
	return out
}

func discountPrice(price string, threshold decimal.Decimal) string {
	orig, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return price
	}

	var places int32
	if exp := orig.Exponent(); exp < 0 {
		places = -exp
	}

	result := orig.Sub(threshold)
	if result.IsNegative() {
		result = decimal.Zero
	}
	return result.Truncate(places).StringFixed(places)
}
