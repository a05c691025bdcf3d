package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"jam-board/internal/domain"
	"jam-board/internal/infrastructure/cache"
	"jam-board/internal/infrastructure/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmptyTitle rejects inserts with a blank title. The validator catches
// this earlier; the repository is the last line of defense before the row
// is written.
var ErrEmptyTitle = errors.New("ad title must not be empty")

const (
	listCacheKey = "ads:list"
	cacheTTL     = 5 * time.Minute
)

type AdRepository interface {
	GetAllAds(ctx context.Context) ([]*domain.Ad, error)
	GetAdByID(ctx context.Context, id int64) (*domain.Ad, error)
	CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
	CountAds(ctx context.Context) (int, error)
}

type sqliteAdRepository struct {
	db      *sql.DB
	cache   cache.Cache
	metrics *metrics.RepositoryMetrics
	tracer  trace.Tracer
}

func NewSQLiteAdRepository(db *sql.DB, cache cache.Cache, metrics *metrics.RepositoryMetrics) AdRepository {
	tracer := otel.Tracer("jam-board/repository")
	return &sqliteAdRepository{
		db:      db,
		cache:   cache,
		metrics: metrics,
		tracer:  tracer,
	}
}

func (r *sqliteAdRepository) GetAllAds(ctx context.Context) ([]*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAllAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("GetAllAds", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("GetAllAds", status).Observe(duration)
	}()

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Get")
	cached, err := r.cache.Get(cacheSpanCtx, listCacheKey)
	cacheSpan.End()

	if err == nil {
		var ads []*domain.Ad
		if err := json.Unmarshal([]byte(cached), &ads); err == nil {
			return ads, nil
		}
	}

	// Newest first; ties on created_at (second resolution) break on id.
	query := `
		SELECT id, title, COALESCE(description, ''), price, COALESCE(image_url, ''), created_at
		FROM ads
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to retrieve ads: %w", err)
	}
	defer rows.Close()

	ads := []*domain.Ad{}
	for rows.Next() {
		var ad domain.Ad
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.Description, &ad.Price, &ad.ImageURL, &ad.CreatedAt); err != nil {
			status = "error"
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, &ad)
	}

	if err := rows.Err(); err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if adsJSON, err := json.Marshal(ads); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Set")
		r.cache.Set(cacheSpanCtx, listCacheKey, string(adsJSON), cacheTTL)
		cacheSpan.End()
	}

	return ads, nil
}

func (r *sqliteAdRepository) GetAdByID(ctx context.Context, id int64) (*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository GetAdByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("ad.id", id))

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("GetAdByID", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("GetAdByID", status).Observe(duration)
	}()

	cacheKey := fmt.Sprintf("ad:%d", id)

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Get")
	cached, err := r.cache.Get(cacheSpanCtx, cacheKey)
	cacheSpan.End()

	if err == nil {
		var ad domain.Ad
		if err := json.Unmarshal([]byte(cached), &ad); err == nil {
			return &ad, nil
		}
	}

	query := `
		SELECT id, title, COALESCE(description, ''), price, COALESCE(image_url, ''), created_at
		FROM ads
		WHERE id = ?`

	ad := &domain.Ad{}
	err = r.db.QueryRowContext(ctx, query, id).Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.Price,
		&ad.ImageURL,
		&ad.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, err
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	if adJSON, err := json.Marshal(ad); err == nil {
		cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Set")
		r.cache.Set(cacheSpanCtx, cacheKey, string(adJSON), cacheTTL)
		cacheSpan.End()
	}

	return ad, nil
}

func (r *sqliteAdRepository) CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CreateAd")
	defer span.End()

	span.SetAttributes(
		attribute.String("ad.title", ad.Title),
		attribute.Int64("ad.price", ad.Price),
	)

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("CreateAd", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("CreateAd", status).Observe(duration)
	}()

	if strings.TrimSpace(ad.Title) == "" {
		status = "error"
		return nil, ErrEmptyTitle
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO ads (title, description, price, image_url) VALUES (?, ?, ?, ?)",
		ad.Title, ad.Description, ad.Price, ad.ImageURL)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to insert ad: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	var insertedAd domain.Ad
	err = r.db.QueryRowContext(ctx,
		"SELECT id, title, COALESCE(description, ''), price, COALESCE(image_url, ''), created_at FROM ads WHERE id = ?", id).Scan(
		&insertedAd.ID,
		&insertedAd.Title,
		&insertedAd.Description,
		&insertedAd.Price,
		&insertedAd.ImageURL,
		&insertedAd.CreatedAt,
	)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch inserted ad: %w", err)
	}

	cacheSpanCtx, cacheSpan := r.tracer.Start(ctx, "Cache Delete")
	r.cache.Delete(cacheSpanCtx, listCacheKey)
	cacheSpan.End()

	return &insertedAd, nil
}

func (r *sqliteAdRepository) CountAds(ctx context.Context) (int, error) {
	ctx, span := r.tracer.Start(ctx, "Repository CountAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.QueryCount.WithLabelValues("CountAds", status).Inc()
		r.metrics.QueryDuration.WithLabelValues("CountAds", status).Observe(duration)
	}()

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ads").Scan(&count); err != nil {
		status = "error"
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count ads: %w", err)
	}
	return count, nil
}
