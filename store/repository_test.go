package store

import (
	"context"
	"testing"
	"time"

	"github.com/nyccc7/A-Canteen-User-Behavior-Analysis-System/core"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seedRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()
	pop := 0.9
	dishes := []core.Dish{
		{ID: "d1", Name: "麻婆豆腐", Category: "热菜", Price: 12, Calories: 450, Tags: []string{"辣"}},
		{ID: "d2", Name: "豆浆", Category: "早餐", Price: 3, Calories: 120, Popularity: &pop},
		{ID: "d3", Name: "紫菜蛋汤", Category: "汤", Price: 4, Calories: 80, Tags: []string{"咸"}},
	}
	for _, d := range dishes {
		if err := repo.AddDish(ctx, d); err != nil {
			t.Fatalf("AddDish %s: %v", d.ID, err)
		}
	}
	events := []core.OrderEvent{
		{UserID: "u1", DishID: "d1", Timestamp: t0},
		{UserID: "u2", DishID: "d1", Timestamp: t0.Add(time.Hour)},
		{UserID: "u1", DishID: "d2", Timestamp: t0.Add(2 * time.Hour)},
		{UserID: "u1", DishID: "d3", Timestamp: t0.Add(3 * time.Hour), Action: "view"},
		{UserID: "u1", DishID: "d3", Timestamp: t0.Add(4 * time.Hour)},
	}
	for _, e := range events {
		if err := repo.AppendOrder(ctx, e); err != nil {
			t.Fatalf("AppendOrder: %v", err)
		}
	}
}

func dishIDs(events []core.OrderEvent) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.UserID + "/" + e.DishID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// exerciseRepository 是三种仓库共用的行为检查。
func exerciseRepository(t *testing.T, repo Repository) {
	ctx := context.Background()
	seedRepository(t, repo)

	dishes, err := repo.ListDishes(ctx)
	if err != nil {
		t.Fatalf("ListDishes: %v", err)
	}
	if len(dishes) != 3 {
		t.Fatalf("ListDishes = %d dishes, want 3", len(dishes))
	}
	for _, d := range dishes {
		if d.ID == "d2" && (d.Popularity == nil || *d.Popularity != 0.9) {
			t.Errorf("d2 popularity = %v", d.Popularity)
		}
		if d.ID == "d1" && !d.HasTag("辣") {
			t.Errorf("d1 tags = %v", d.Tags)
		}
	}

	recent, err := repo.RecentOrders(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("RecentOrders: %v", err)
	}
	if got, want := dishIDs(recent), []string{"u1/d3", "u1/d2", "u1/d1"}; !equalStrings(got, want) {
		t.Errorf("RecentOrders = %v, want %v", got, want)
	}
	if !recent[0].Timestamp.Equal(t0.Add(4 * time.Hour)) {
		t.Errorf("timestamp = %v", recent[0].Timestamp)
	}

	limited, _ := repo.RecentOrders(ctx, "u1", 2)
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d", len(limited))
	}

	all, err := repo.AllPeerOrders(ctx)
	if err != nil {
		t.Fatalf("AllPeerOrders: %v", err)
	}
	if got, want := dishIDs(all), []string{"u1/d1", "u2/d1", "u1/d2", "u1/d3"}; !equalStrings(got, want) {
		t.Errorf("AllPeerOrders = %v, want %v", got, want)
	}

	if err := repo.AppendOrder(ctx, core.OrderEvent{DishID: "d1", Timestamp: t0}); !core.IsInputError(err) {
		t.Errorf("empty user id: err = %v", err)
	}

	if err := repo.ResetHistory(ctx, "u1"); err != nil {
		t.Fatalf("ResetHistory: %v", err)
	}
	recent, _ = repo.RecentOrders(ctx, "u1", 0)
	if len(recent) != 0 {
		t.Errorf("after reset RecentOrders = %v", recent)
	}
	all, _ = repo.AllPeerOrders(ctx)
	if got, want := dishIDs(all), []string{"u2/d1"}; !equalStrings(got, want) {
		t.Errorf("after reset AllPeerOrders = %v, want %v", got, want)
	}
}

func TestKVRepository(t *testing.T) {
	repo := NewKVRepository(NewMemoryStore())
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestKVRepository_DailySales(t *testing.T) {
	ctx := context.Background()
	repo := NewKVRepository(NewMemoryStore())
	defer repo.Close()
	seedRepository(t, repo)

	sales, err := repo.DailySales(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	// d1 ×2，d2 ×1，d3 ×1（view 不计）
	if len(sales) != 3 || sales[0].DishID != "d1" || sales[0].Count != 2 {
		t.Errorf("DailySales = %+v", sales)
	}
	top, _ := repo.DailySales(ctx, 1)
	if len(top) != 1 {
		t.Errorf("DailySales(1) = %+v", top)
	}

	_ = repo.ResetHistory(ctx, "u1")
	sales, _ = repo.DailySales(ctx, 0)
	if len(sales) != 1 || sales[0].DishID != "d1" || sales[0].Count != 1 {
		t.Errorf("after reset DailySales = %+v", sales)
	}
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer repo.Close()

	v, err := repo.SchemaVersion(ctx)
	if err != nil || v != len(migrations) {
		t.Fatalf("SchemaVersion = %d, %v", v, err)
	}
	exerciseRepository(t, repo)

	// 覆盖写入
	if err := repo.AddDish(ctx, core.Dish{ID: "d1", Name: "麻婆豆腐", Price: 15}); err != nil {
		t.Fatal(err)
	}
	dishes, _ := repo.ListDishes(ctx)
	if len(dishes) != 3 || dishes[0].Price != 15 || len(dishes[0].Tags) != 0 {
		t.Errorf("after upsert = %+v", dishes[0])
	}
}

func TestSQLiteRepository_MigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/canteen.db"
	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	_ = repo.AddDish(ctx, core.Dish{ID: "d1", Name: "豆浆"})
	_ = repo.Close()

	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	dishes, _ := repo.ListDishes(ctx)
	if len(dishes) != 1 {
		t.Errorf("dishes after reopen = %v", dishes)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	repo, err := Open(ctx, Options{Driver: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.(*KVRepository); !ok {
		t.Errorf("memory driver returned %T", repo)
	}
	_ = repo.Close()

	if _, err := Open(ctx, Options{Driver: "cassandra"}); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestMongoIDs(t *testing.T) {
	hex := "65f0a1b2c3d4e5f601234567"
	if got := idString(idValue(hex)); got != hex {
		t.Errorf("round trip = %q", got)
	}
	if got, ok := idValue("user-1").(string); !ok || got != "user-1" {
		t.Errorf("non-hex id = %v", idValue("user-1"))
	}
	if idString(nil) != "" {
		t.Error("nil id should be empty")
	}
}
