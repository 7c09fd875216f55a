package catalog

import (
	"testing"
)

func groupWith(key string, titles ...string) CategoryGroup {
	items := make([]Item, 0, len(titles))
	for _, title := range titles {
		items = append(items, Item{ID: title, VariantID: "v-" + title, Title: title, Price: "10"})
	}
	return CategoryGroup{Key: key, Items: items}
}

func TestUpsertDayReplacesWholesale(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertDay("Wednesday", []CategoryGroup{groupWith(CategoryProtein, "dal", "paneer")})
	store.UpsertDay("Thursday", []CategoryGroup{groupWith(CategorySides, "raita")})
	store.UpsertDay("Wednesday", []CategoryGroup{groupWith(CategoryVeggies, "bhindi")})

	wed := store.CatalogFor("Wednesday")
	if len(wed) != 1 || wed[0].Key != CategoryVeggies {
		t.Fatalf("expected wednesday fully replaced, got %+v", wed)
	}

	thu := store.CatalogFor("Thursday")
	if len(thu) != 1 || thu[0].Key != CategorySides || thu[0].Items[0].Title != "raita" {
		t.Fatalf("expected thursday untouched, got %+v", thu)
	}
}

func TestCatalogForAbsentDayIsEmpty(t *testing.T) {
	t.Parallel()

	store := NewStore()
	if got := store.CatalogFor("Friday"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestUpsertManyLastWriteWins(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertMany([]DayEntry{
		{Day: "Monday", Groups: []CategoryGroup{groupWith(CategoryProtein, "first")}},
		{Day: "Tuesday", Groups: []CategoryGroup{groupWith(CategorySides, "salad")}},
		{Day: "Monday", Groups: []CategoryGroup{groupWith(CategoryProtein, "second")}},
	})

	mon := store.CatalogFor("Monday")
	if mon[0].Items[0].Title != "second" {
		t.Fatalf("expected last write to win, got %+v", mon)
	}
	if len(store.CatalogFor("Tuesday")) != 1 {
		t.Fatal("expected tuesday present")
	}
}

func TestClearDayUnsetsCurrentDay(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertDay("Monday", []CategoryGroup{groupWith(CategoryProtein, "dal")})
	store.SetCurrentDay("Monday")

	store.ClearDay("Monday")

	if store.CurrentDay() != "" {
		t.Fatalf("expected current day unset, got %q", store.CurrentDay())
	}
	if len(store.CatalogFor("Monday")) != 0 {
		t.Fatal("expected monday cleared")
	}
}

func TestClearDayKeepsUnrelatedCurrentDay(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.SetCurrentDay("Tuesday")
	store.UpsertDay("Monday", []CategoryGroup{groupWith(CategoryProtein, "dal")})

	store.ClearDay("Monday")

	if store.CurrentDay() != "Tuesday" {
		t.Fatalf("expected current day kept, got %q", store.CurrentDay())
	}
}

func TestClearAll(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertDay("Monday", []CategoryGroup{groupWith(CategoryProtein, "dal")})
	store.SetCurrentDay("Monday")

	store.ClearAll()

	if store.CurrentDay() != "" || len(store.CatalogFor("Monday")) != 0 {
		t.Fatal("expected empty store and unset current day")
	}
}

func TestCurrentDayCatalog(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertDay("Sunday", []CategoryGroup{groupWith(CategoryProbiotics, "lassi")})
	store.SetCurrentDay("Sunday")

	groups := store.CurrentDayCatalog()
	if len(groups) != 1 || groups[0].Items[0].Title != "lassi" {
		t.Fatalf("unexpected current day catalog %+v", groups)
	}
}

func TestReadsAreIsolatedFromWriters(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.UpsertDay("Monday", []CategoryGroup{groupWith(CategoryProtein, "dal")})

	read := store.CatalogFor("Monday")
	read[0].Items[0].Title = "mutated"

	again := store.CatalogFor("Monday")
	if again[0].Items[0].Title != "dal" {
		t.Fatal("reader mutation leaked into the store")
	}
}

func TestSubscribersNotifiedOnMutation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	var calls int
	unsubscribe := store.Subscribe(func() { calls++ })

	store.UpsertDay("Monday", nil)
	store.SetCurrentDay("Monday")
	store.ClearAll()

	if calls != 3 {
		t.Fatalf("expected 3 notifications, got %d", calls)
	}

	unsubscribe()
	store.UpsertDay("Tuesday", nil)
	if calls != 3 {
		t.Fatalf("expected no notification after unsubscribe, got %d", calls)
	}
}

func TestIsWeekday(t *testing.T) {
	t.Parallel()

	if !IsWeekday("Wednesday") {
		t.Fatal("Wednesday should be valid")
	}
	if IsWeekday("wednesday") {
		t.Fatal("lowercase should not be valid")
	}
	if IsWeekday("Someday") {
		t.Fatal("Someday should not be valid")
	}
}

func TestIsValidCategory(t *testing.T) {
	t.Parallel()

	for _, key := range []string{CategoryProbiotics, CategoryProtein, CategorySides, CategoryVeggies, " Protein "} {
		if !IsValidCategory(key) {
			t.Fatalf("%q should be valid", key)
		}
	}
	if IsValidCategory("dessert") {
		t.Fatal("dessert should not be valid")
	}
}
