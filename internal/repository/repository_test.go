package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"jam-board/internal/domain"
	"jam-board/internal/infrastructure/cache"
	"jam-board/internal/infrastructure/metrics"
	"jam-board/pkg/database"

	"github.com/prometheus/client_golang/prometheus"
)

func newTestRepository(t *testing.T) AdRepository {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "board.db"))
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	repoMetrics := metrics.NewRepositoryMetrics(prometheus.NewRegistry())
	return NewSQLiteAdRepository(db, cache.NewMemoryCache(), repoMetrics)
}

func TestGetAllAdsEmptyStore(t *testing.T) {
	repo := newTestRepository(t)

	ads, err := repo.GetAllAds(context.Background())
	if err != nil {
		t.Fatalf("GetAllAds: %v", err)
	}
	if len(ads) != 0 {
		t.Fatalf("got %d ads, want 0", len(ads))
	}
}

func TestGetAllAdsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, title := range []string{"A", "B", "C"} {
		if _, err := repo.CreateAd(ctx, &domain.Ad{Title: title}); err != nil {
			t.Fatalf("CreateAd(%s): %v", title, err)
		}
	}

	ads, err := repo.GetAllAds(ctx)
	if err != nil {
		t.Fatalf("GetAllAds: %v", err)
	}
	if len(ads) != 3 {
		t.Fatalf("got %d ads, want 3", len(ads))
	}
	for i, want := range []string{"C", "B", "A"} {
		if ads[i].Title != want {
			t.Errorf("ads[%d].Title = %q, want %q", i, ads[i].Title, want)
		}
	}
}

func TestCreateAdRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created, err := repo.CreateAd(ctx, &domain.Ad{
		Title:       "Fender Stratocaster",
		Description: "Sunburst, 2018",
		Price:       650,
	})
	if err != nil {
		t.Fatalf("CreateAd: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created ad has no id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("created ad has no timestamp")
	}

	got, err := repo.GetAdByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAdByID: %v", err)
	}
	if got.Title != "Fender Stratocaster" {
		t.Errorf("Title = %q", got.Title)
	}
	if got.Price != 650 {
		t.Errorf("Price = %d, want 650", got.Price)
	}
}

func TestGetAdByIDUnknown(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetAdByID(context.Background(), 999999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestCreateAdRejectsEmptyTitle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CreateAd(ctx, &domain.Ad{Title: "   "}); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}

	count, err := repo.CountAds(ctx)
	if err != nil {
		t.Fatalf("CountAds: %v", err)
	}
	if count != 0 {
		t.Fatalf("row count = %d after rejected insert, want 0", count)
	}
}

func TestListReflectsCreateAfterCachedRead(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	if _, err := repo.CreateAd(ctx, &domain.Ad{Title: "Erste"}); err != nil {
		t.Fatalf("CreateAd: %v", err)
	}
	// Prime the list cache.
	if _, err := repo.GetAllAds(ctx); err != nil {
		t.Fatalf("GetAllAds: %v", err)
	}
	if _, err := repo.CreateAd(ctx, &domain.Ad{Title: "Zweite"}); err != nil {
		t.Fatalf("CreateAd: %v", err)
	}

	ads, err := repo.GetAllAds(ctx)
	if err != nil {
		t.Fatalf("GetAllAds: %v", err)
	}
	if len(ads) != 2 {
		t.Fatalf("got %d ads, want 2 (stale list cache?)", len(ads))
	}
	if ads[0].Title != "Zweite" {
		t.Fatalf("ads[0].Title = %q, want Zweite", ads[0].Title)
	}
}
