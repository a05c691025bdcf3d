package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"jam-board/internal/domain"
	"jam-board/internal/service"
	"jam-board/internal/validation"
	"jam-board/pkg/logger"
	"jam-board/pkg/utils"

	"jam-board/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:embed templates/*.html
var templatesFS embed.FS

// User-facing messages, kept in German like the rest of the board.
const (
	msgTitleMissing = "Titel fehlt."
	msgSaveFailed   = "Speichern fehlgeschlagen."
	msgNotFound     = "Anzeige nicht gefunden."
	msgBadID        = "Ungültige Anzeigen-ID."
	msgListFailed   = "Anzeigen konnten nicht geladen werden."
	msgPriceTooLow  = "Preis liegt unter dem Minimum."
)

type AdHandler struct {
	service   service.AdService
	validator *validation.Validator
	logger    *logger.Loggers
	metrics   *metrics.HandlerMetrics
	tracer    trace.Tracer
	templates *template.Template
}

func NewAdHandler(service service.AdService, validator *validation.Validator, logger *logger.Loggers, metrics *metrics.HandlerMetrics) *AdHandler {
	tracer := otel.Tracer("jam-board/handler")
	templates := template.Must(template.ParseFS(templatesFS, "templates/*.html"))
	return &AdHandler{
		service:   service,
		validator: validator,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		templates: templates,
	}
}

func (h *AdHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.ErrorLogger.Error("failed to render template", "template", name, utils.Err(err))
	}
}

// Home renders the listing view, newest ads first.
func (h *AdHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Home")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/", status).Observe(duration)
	}()

	ads, err := h.service.GetAllAds(ctx)
	if err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("failed to retrieve ads", utils.Err(err))
		span.RecordError(err)
		http.Error(w, msgListFailed, http.StatusInternalServerError)
		return
	}

	h.render(w, http.StatusOK, "home.html", map[string]interface{}{"Ads": ads})
}

// Detail renders a single ad or a not-found page.
func (h *AdHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Detail")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/ad/{id}", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/ad/{id}", status).Observe(duration)
	}()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		status = "error"
		http.Error(w, msgBadID, http.StatusBadRequest)
		return
	}

	span.SetAttributes(attribute.Int64("ad.id", id))

	ad, err := h.service.GetAdByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) || errors.Is(err, service.ErrInvalidID) {
			status = "not_found"
			http.Error(w, msgNotFound, http.StatusNotFound)
		} else {
			status = "error"
			h.logger.ErrorLogger.Error("failed to get ad by ID", utils.Err(err))
			span.RecordError(err)
			http.Error(w, msgListFailed, http.StatusInternalServerError)
		}
		return
	}

	h.render(w, http.StatusOK, "detail.html", map[string]interface{}{"Ad": ad})
}

// NewAdForm renders the blank submission form.
func (h *AdHandler) NewAdForm(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/admin/new", "success").Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/admin/new", "success").Observe(duration)
	}()

	h.render(w, http.StatusOK, "new.html", nil)
}

// CreateAd handles the form submission and redirects to the new ad.
func (h *AdHandler) CreateAd(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAd")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("POST", "/admin/new", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("POST", "/admin/new", status).Observe(duration)
	}()

	if err := r.ParseForm(); err != nil {
		status = "error"
		http.Error(w, msgSaveFailed, http.StatusBadRequest)
		return
	}

	ad, err := h.validator.ParseForm(r.PostForm)
	if err != nil {
		status = "error"
		switch {
		case errors.Is(err, validation.ErrTitleMissing):
			http.Error(w, msgTitleMissing, http.StatusBadRequest)
		case errors.Is(err, validation.ErrPriceBelowFloor):
			http.Error(w, msgPriceTooLow, http.StatusBadRequest)
		default:
			http.Error(w, msgSaveFailed, http.StatusBadRequest)
		}
		return
	}

	span.SetAttributes(
		attribute.String("ad.title", ad.Title),
		attribute.Int64("ad.price", ad.Price),
	)

	createdAd, err := h.service.CreateAd(ctx, ad)
	if err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("could not create ad", utils.Err(err))
		span.RecordError(err)
		http.Error(w, msgSaveFailed, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/ad/"+strconv.FormatInt(createdAd.ID, 10), http.StatusSeeOther)
}

// ListAdsJSON is the API counterpart of Home.
func (h *AdHandler) ListAdsJSON(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListAdsJSON")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/api/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/api/ads", status).Observe(duration)
	}()

	ads, err := h.service.GetAllAds(ctx)
	if err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("failed to retrieve ads", utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "could not retrieve ads")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ads)
}

// GetAdJSON is the API counterpart of Detail.
func (h *AdHandler) GetAdJSON(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetAdJSON")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("GET", "/api/ads/{id}", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("GET", "/api/ads/{id}", status).Observe(duration)
	}()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	ad, err := h.service.GetAdByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrAdNotFound) || errors.Is(err, service.ErrInvalidID) {
			status = "not_found"
			utils.RespondWithErrorJSON(w, http.StatusNotFound, "ad not found")
		} else {
			status = "error"
			h.logger.ErrorLogger.Error("failed to get ad by ID", utils.Err(err))
			span.RecordError(err)
			utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ad)
}

// CreateAdJSON accepts the same payload as the form, as JSON.
func (h *AdHandler) CreateAdJSON(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateAdJSON")
	defer span.End()

	startTime := time.Now()
	status := "success"

	defer func() {
		duration := time.Since(startTime).Seconds()
		h.metrics.RequestCount.WithLabelValues("POST", "/api/ads", status).Inc()
		h.metrics.RequestDuration.WithLabelValues("POST", "/api/ads", status).Observe(duration)
	}()

	var adReq domain.Ad
	if err := json.NewDecoder(r.Body).Decode(&adReq); err != nil {
		status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if err := h.validator.Normalize(&adReq); err != nil {
		status = "error"
		utils.RespondWithErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	createdAd, err := h.service.CreateAd(ctx, &adReq)
	if err != nil {
		status = "error"
		h.logger.ErrorLogger.Error("could not create ad", utils.Err(err))
		span.RecordError(err)
		utils.RespondWithErrorJSON(w, http.StatusInternalServerError, "could not create ad")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, createdAd)
}
