package catalog

import (
	"strings"
	"sync"
)

// Category keys a day menu is grouped by.
const (
	CategoryProbiotics = "probiotics"
	CategoryProtein    = "protein"
	CategorySides      = "sides"
	CategoryVeggies    = "veggies"
)

var validCategories = map[string]struct{}{
	CategoryProbiotics: {},
	CategoryProtein:    {},
	CategorySides:      {},
	CategoryVeggies:    {},
}

// IsValidCategory reports whether key names a known menu category.
func IsValidCategory(key string) bool {
	_, ok := validCategories[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

var weekdays = map[string]struct{}{
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
}

// IsWeekday reports whether day is one of the seven weekday names.
func IsWeekday(day string) bool {
	_, ok := weekdays[day]
	return ok
}

// Item is a purchasable catalog entry. Price keeps the exact decimal string
// the commerce backend supplied.
type Item struct {
	ID          string   `json:"id"`
	VariantID   string   `json:"variant_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Image       string   `json:"image,omitempty"`
	Price       string   `json:"price"`
}

// CategoryGroup is one ordered category section of a day menu.
type CategoryGroup struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// Store holds per-day menus with atomic wholesale replacement per day and a
// single current-day pointer. Single authoritative writer, many readers.
type Store struct {
	mu          sync.RWMutex
	days        map[string][]CategoryGroup
	currentDay  string
	subscribers map[int]func()
	nextSubID   int
}

// NewStore builds an empty catalog store.
func NewStore() *Store {
	return &Store{
		days:        make(map[string][]CategoryGroup),
		subscribers: make(map[int]func()),
	}
}

// SetCurrentDay points the store at the given day.
func (s *Store) SetCurrentDay(day string) {
	s.mu.Lock()
	s.currentDay = day
	s.mu.Unlock()
	s.notify()
}

// CurrentDay returns the current-day pointer, empty when unset.
func (s *Store) CurrentDay() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentDay
}

// UpsertDay replaces the given day's catalog wholesale, leaving other days
// untouched. Partial merges are not possible through this API.
func (s *Store) UpsertDay(day string, groups []CategoryGroup) {
	s.mu.Lock()
	s.days[day] = copyGroups(groups)
	s.mu.Unlock()
	s.notify()
}

// DayEntry pairs a day with its catalog for bulk updates.
type DayEntry struct {
	Day    string          `json:"day"`
	Groups []CategoryGroup `json:"groups"`
}

// UpsertMany applies UpsertDay per entry; the last write for a duplicated day
// wins. A single notification covers the whole batch.
func (s *Store) UpsertMany(entries []DayEntry) {
	s.mu.Lock()
	for _, entry := range entries {
		s.days[entry.Day] = copyGroups(entry.Groups)
	}
	s.mu.Unlock()
	s.notify()
}

// ClearDay removes the day's entry; when it was the current day, the current
// day becomes unset.
func (s *Store) ClearDay(day string) {
	s.mu.Lock()
	delete(s.days, day)
	if s.currentDay == day {
		s.currentDay = ""
	}
	s.mu.Unlock()
	s.notify()
}

// ClearAll empties the store and unsets the current day.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.days = make(map[string][]CategoryGroup)
	s.currentDay = ""
	s.mu.Unlock()
	s.notify()
}

// CatalogFor returns the stored catalog for the day, or an empty list when
// absent. The returned slice is a copy; callers never observe later writes.
func (s *Store) CatalogFor(day string) []CategoryGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups, ok := s.days[day]
	if !ok {
		return []CategoryGroup{}
	}
	return copyGroups(groups)
}

// CurrentDayCatalog composes CurrentDay and CatalogFor.
func (s *Store) CurrentDayCatalog() []CategoryGroup {
	return s.CatalogFor(s.CurrentDay())
}

// Subscribe registers fn to run after every mutation and returns an
// unsubscribe function.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// notify runs subscribers outside the lock so they can read the store.
func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

func copyGroups(groups []CategoryGroup) []CategoryGroup {
	out := make([]CategoryGroup, len(groups))
	for i, group := range groups {
		items := make([]Item, len(group.Items))
		for j, item := range group.Items {
			if len(item.Tags) > 0 {
				item.Tags = append([]string(nil), item.Tags...)
			}
			items[j] = item
		}
		out[i] = CategoryGroup{Key: group.Key, Items: items}
	}
	return out
}
