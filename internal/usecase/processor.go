package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"
	"vip-manifest-service/pkg/logger"
	"vip-manifest-service/pkg/manifest"
	"vip-manifest-service/pkg/metrics"
)

var (
	subjectDatePattern    = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
	subjectAirportPattern = regexp.MustCompile(`MANIFEST\s+([A-Z]{3})\b`)
)

// ManifestProcessor drains staged manifests and reconciles them. It is also
// the handler for VIP manifest subjects.
type ManifestProcessor struct {
	reconciler         *Reconciler
	manifestRepo       repository.ManifestRepository
	airportRepo        repository.AirportRepository
	notifier           repository.NotifierRepository
	metrics            *metrics.Metrics
	logger             logger.Logger
	router             SubjectRouter
	defaultAirportCode string
	staleAge           time.Duration
}

// NewManifestProcessor creates a new manifest processor and registers it with
// the router
func NewManifestProcessor(
	reconciler *Reconciler,
	manifestRepo repository.ManifestRepository,
	airportRepo repository.AirportRepository,
	notifier repository.NotifierRepository,
	router SubjectRouter,
	m *metrics.Metrics,
	logger logger.Logger,
	defaultAirportCode string,
	staleAge time.Duration,
) *ManifestProcessor {
	p := &ManifestProcessor{
		reconciler:         reconciler,
		manifestRepo:       manifestRepo,
		airportRepo:        airportRepo,
		notifier:           notifier,
		metrics:            m,
		logger:             logger,
		router:             router,
		defaultAirportCode: defaultAirportCode,
		staleAge:           staleAge,
	}
	router.Register(p)
	return p
}

// CanHandle claims subjects announcing a VIP manifest
func (p *ManifestProcessor) CanHandle(subject string) bool {
	return strings.Contains(strings.ToUpper(subject), "VIP MANIFEST")
}

// Process reconciles one staged manifest end to end
func (p *ManifestProcessor) Process(ctx context.Context, m *entity.Manifest) error {
	p.logger.Info("Starting manifest processing", "messageId", m.MessageID, "subject", m.Subject)
	start := time.Now()

	if err := p.manifestRepo.UpdateStatus(ctx, m.MessageID, entity.StatusProcessing, start); err != nil {
		p.logger.Error("Failed to update status to PROCESSING", "error", err)
		return err
	}

	airportCode := p.extractAirportCode(m.Subject)
	flightDate := p.extractFlightDate(m)

	// Validate the airport against reference data; an unknown or unreachable
	// lookup falls back to the code as given
	if airport, err := p.airportRepo.GetByCode(ctx, airportCode); err != nil {
		p.logger.Warn("Airport lookup failed, using code as-is", "code", airportCode, "error", err)
	} else {
		p.logger.Info("Resolved airport", "code", airport.Code, "name", airport.Name)
	}

	result, parsed := p.reconciler.ReconcileManifest(ctx, m.Body, flightDate, airportCode)

	steps := entity.ProcessSteps{
		LinesParsed:     true,
		GroupsResolved:  len(manifest.GroupByFlight(parsed.Entries)),
		EntriesResolved: result.Created + result.Found,
		TotalEntries:    len(parsed.Entries),
	}
	p.manifestRepo.UpdateProcessSteps(ctx, m.MessageID, steps)

	if p.metrics != nil {
		p.metrics.ManifestsProcessed.Inc()
		p.metrics.PassengersCreated.Add(float64(result.Created))
		p.metrics.PassengersFound.Add(float64(result.Found))
		p.metrics.DuplicatesDetected.Add(float64(len(result.Duplicates)))
		p.metrics.ParseErrors.Add(float64(len(parsed.Errors)))
		p.metrics.ReconcileTime.Observe(time.Since(start).Seconds())
	}

	finalStatus := entity.StatusCompleted
	errorDetail := ""
	if len(parsed.Entries) == 0 {
		finalStatus = entity.StatusSkipped
		errorDetail = "No valid manifest lines found"
		if len(parsed.Errors) > 0 {
			errorDetail = "No valid manifest lines found; " + strings.Join(parsed.Errors, "; ")
		}
	}

	// Skipped manifests carry nothing worth paging operators about
	if len(parsed.Entries) > 0 {
		if err := p.notifier.SendSummary(ctx, airportCode, result); err != nil {
			p.logger.Error("Failed to notify operators", "error", err)
		}
	}

	extracted := map[string]interface{}{
		"airportCode": airportCode,
		"flightDate":  flightDate.Format("2006-01-02"),
		"processed":   result.Processed,
		"created":     result.Created,
		"found":       result.Found,
		"duplicates":  len(result.Duplicates),
		"parseErrors": parsed.Errors,
		"summary":     result.Summary,
	}

	if err := p.manifestRepo.MarkProcessed(ctx, m.MessageID, finalStatus, errorDetail, extracted); err != nil {
		p.logger.Error("Failed to mark manifest as processed", "error", err)
		return err
	}

	p.logger.Info("Manifest processing completed",
		"messageId", m.MessageID,
		"status", finalStatus,
		"summary", result.Summary)
	return nil
}

// ProcessPending drains staged manifests oldest first, strictly one at a time
func (p *ManifestProcessor) ProcessPending(ctx context.Context) error {
	if err := p.manifestRepo.ResetStaleProcessing(ctx, p.staleAge); err != nil {
		p.logger.Error("Failed to reset stale processing manifests", "error", err)
	}

	pending, err := p.manifestRepo.FindUnprocessed(ctx, 10)
	if err != nil {
		p.logger.Error("Failed to fetch pending manifests", "error", err)
		return err
	}

	for _, m := range pending {
		handler := p.router.GetHandler(m.Subject)
		if handler == nil {
			p.logger.Info("No handler for subject, skipping", "subject", m.Subject)
			p.manifestRepo.MarkProcessed(ctx, m.MessageID, entity.StatusSkipped, "no handler for subject", nil)
			continue
		}

		if err := handler.Process(ctx, m); err != nil {
			p.logger.Error("Manifest processing failed", "messageId", m.MessageID, "error", err)
			p.manifestRepo.MarkProcessed(ctx, m.MessageID, entity.StatusFailed, err.Error(), nil)
		}
	}

	return nil
}

// extractAirportCode pulls the IATA code out of a subject like
// "VIP MANIFEST EZE 2026-08-28", falling back to the configured default
func (p *ManifestProcessor) extractAirportCode(subject string) string {
	match := subjectAirportPattern.FindStringSubmatch(strings.ToUpper(subject))
	if len(match) == 2 {
		return match[1]
	}
	return p.defaultAirportCode
}

// extractFlightDate pulls an ISO date out of the subject, falling back to the
// day the manifest was received
func (p *ManifestProcessor) extractFlightDate(m *entity.Manifest) time.Time {
	match := subjectDatePattern.FindStringSubmatch(m.Subject)
	if len(match) == 2 {
		if date, err := time.Parse("2006-01-02", match[1]); err == nil {
			return date
		}
	}

	received := m.ReceivedAt
	return time.Date(received.Year(), received.Month(), received.Day(), 0, 0, 0, 0, time.UTC)
}
