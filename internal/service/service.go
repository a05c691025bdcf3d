package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"jam-board/internal/domain"
	"jam-board/internal/infrastructure/metrics"
	"jam-board/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidID  = errors.New("invalid ad ID")
	ErrAdNotFound = errors.New("ad not found")
)

type AdService interface {
	GetAllAds(ctx context.Context) ([]*domain.Ad, error)
	GetAdByID(ctx context.Context, id int64) (*domain.Ad, error)
	CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error)
}

type adService struct {
	repository repository.AdRepository
	metrics    *metrics.ServiceMetrics
	tracer     trace.Tracer
}

func NewAdService(repository repository.AdRepository, metrics *metrics.ServiceMetrics) AdService {
	tracer := otel.Tracer("jam-board/service")
	return &adService{
		repository: repository,
		metrics:    metrics,
		tracer:     tracer,
	}
}

// GetAllAds returns every ad, newest first. An empty store yields an empty
// slice, never an error.
func (s *adService) GetAllAds(ctx context.Context) ([]*domain.Ad, error) {
	ctx, span := s.tracer.Start(ctx, "GetAllAds")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetAllAds", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetAllAds", status).Observe(duration)
	}()

	ads, err := s.repository.GetAllAds(ctx)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("ads.count", len(ads)))
	return ads, nil
}

func (s *adService) GetAdByID(ctx context.Context, id int64) (*domain.Ad, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	ctx, span := s.tracer.Start(ctx, "GetAdByID")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("GetAdByID", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("GetAdByID", status).Observe(duration)
	}()

	ad, err := s.repository.GetAdByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			status = "not_found"
			return nil, ErrAdNotFound
		}
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("ad.id", id))
	return ad, nil
}

func (s *adService) CreateAd(ctx context.Context, ad *domain.Ad) (*domain.Ad, error) {
	ctx, span := s.tracer.Start(ctx, "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		s.metrics.MethodCount.WithLabelValues("CreateAd", status).Inc()
		s.metrics.MethodDuration.WithLabelValues("CreateAd", status).Observe(duration)
	}()

	createdAd, err := s.repository.CreateAd(ctx, ad)
	if err != nil {
		status = "error"
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("ad.id", createdAd.ID),
		attribute.String("ad.title", createdAd.Title),
		attribute.Int64("ad.price", createdAd.Price),
	)
	return createdAd, nil
}
