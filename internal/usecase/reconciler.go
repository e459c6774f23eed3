package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/internal/domain/repository"
	"vip-manifest-service/pkg/logger"
	"vip-manifest-service/pkg/manifest"
	"vip-manifest-service/pkg/metrics"
)

const (
	// fuzzyMatchThreshold is the minimum similarity for a non-exact name
	// match to be accepted as the same person
	fuzzyMatchThreshold = 0.85

	documentIDPrefix = "VIP-"
	documentNameLen  = 10
)

// Reconciler merges parsed manifests into the passenger/flight registry.
// All registry calls go through the injected repositories; any of them may
// fail and the batch still completes with whatever could be resolved.
type Reconciler struct {
	passengerRepo repository.PassengerRepository
	flightRepo    repository.FlightRepository
	parser        *manifest.Parser
	metrics       *metrics.Metrics
	logger        logger.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(
	passengerRepo repository.PassengerRepository,
	flightRepo repository.FlightRepository,
	parser *manifest.Parser,
	m *metrics.Metrics,
	logger logger.Logger,
) *Reconciler {
	return &Reconciler{
		passengerRepo: passengerRepo,
		flightRepo:    flightRepo,
		parser:        parser,
		metrics:       m,
		logger:        logger,
	}
}

// registryError counts a tolerated registry failure by operation
func (r *Reconciler) registryError(operation string) {
	if r.metrics != nil {
		r.metrics.RegistryErrors.WithLabelValues(operation).Inc()
	}
}

// ReconcileManifest parses the manifest text, groups entries by flight and
// merges each group into the registry. It never returns an error for bad
// lines or failing registry calls; the result carries the counters and the
// duplicate audit either way. Groups and entries are processed strictly in
// order because later entries may match records created earlier in the run.
func (r *Reconciler) ReconcileManifest(ctx context.Context, text string, flightDate time.Time, airportID string) (*entity.ReconcileResult, *manifest.ParseResult) {
	parsed := r.parser.Parse(text)

	result := &entity.ReconcileResult{
		Duplicates: make([]entity.DuplicateAudit, 0),
	}

	groups := manifest.GroupByFlight(parsed.Entries)
	r.logger.Info("Starting reconciliation",
		"entries", len(parsed.Entries),
		"groups", len(groups),
		"airportId", airportID,
		"flightDate", flightDate.Format("2006-01-02"))

	for _, group := range groups {
		r.reconcileGroup(ctx, group, flightDate, airportID, result)
	}

	result.Summary = fmt.Sprintf("Processed %d passengers: %d created, %d found, %d possible duplicates flagged",
		result.Processed, result.Created, result.Found, len(result.Duplicates))

	r.logger.Info("Reconciliation completed",
		"processed", result.Processed,
		"created", result.Created,
		"found", result.Found,
		"duplicates", len(result.Duplicates))

	return result, parsed
}

// reconcileGroup resolves the group's flight and then each passenger in
// arrival order
func (r *Reconciler) reconcileGroup(ctx context.Context, group *manifest.FlightGroup, flightDate time.Time, airportID string, result *entity.ReconcileResult) {
	flight := r.resolveFlight(ctx, group, flightDate, airportID)
	if flight == nil {
		r.logger.Warn("Skipping group, flight could not be resolved",
			"flight", group.FlightNumber, "destination", group.Destination)
		return
	}

	for _, entry := range group.Entries {
		passenger, created := r.resolvePassenger(ctx, entry, airportID, result)
		if passenger == nil {
			continue
		}

		if created {
			result.Created++
		} else {
			result.Found++
		}

		r.linkPassenger(ctx, flight, passenger, entry, result)
	}
}

// resolveFlight finds the group's flight among the flights already registered
// for the date and airport, creating it when absent. A failed lookup counts
// as "no flights registered".
func (r *Reconciler) resolveFlight(ctx context.Context, group *manifest.FlightGroup, flightDate time.Time, airportID string) *entity.Flight {
	flights, err := r.flightRepo.ListByDate(ctx, flightDate, airportID)
	if err != nil {
		r.logger.Error("Flight lookup failed, treating as empty",
			"flight", group.FlightNumber, "error", err)
		r.registryError("list_flights")
		flights = nil
	}

	for _, flight := range flights {
		if flight.FlightNumber == group.FlightNumber && flight.Destination == group.Destination {
			return flight
		}
	}

	flight := &entity.Flight{
		FlightNumber: group.FlightNumber,
		Destination:  group.Destination,
		Date:         flightDate,
		AirportID:    airportID,
	}
	if err := r.flightRepo.Create(ctx, flight); err != nil {
		r.logger.Error("Failed to create flight",
			"flight", group.FlightNumber, "destination", group.Destination, "error", err)
		r.registryError("create_flight")
		return nil
	}

	r.logger.Info("Created flight", "flight", group.FlightNumber, "destination", group.Destination, "id", flight.ID)
	return flight
}

// resolvePassenger matches the manifest entry against registry candidates,
// creating a new record when nothing scores above the threshold. The first
// exact match wins immediately; otherwise the best candidate at or above the
// threshold is taken, audited, and upgraded when the manifest category
// outranks the stored one.
func (r *Reconciler) resolvePassenger(ctx context.Context, entry manifest.ParsedEntry, airportID string, result *entity.ReconcileResult) (passenger *entity.Passenger, created bool) {
	candidates, err := r.passengerRepo.SearchByName(ctx, searchFragment(entry.Name), airportID)
	if err != nil {
		r.logger.Error("Passenger search failed, treating as no candidates",
			"name", entry.Name, "error", err)
		r.registryError("search_passengers")
		candidates = nil
	}

	var best *entity.Passenger
	var bestScore float64

	for _, candidate := range candidates {
		score := manifest.Similarity(entry.Name, candidate.Name)
		if score == 1.0 {
			best = candidate
			bestScore = score
			break
		}
		if score >= fuzzyMatchThreshold && score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	if best != nil {
		if bestScore < 1.0 {
			result.Duplicates = append(result.Duplicates, entity.DuplicateAudit{
				ManifestName:      entry.Name,
				MatchedName:       best.Name,
				MatchedDocumentID: best.DocumentID,
				SimilarityPercent: int(math.Round(bestScore * 100)),
			})
			r.logger.Info("Fuzzy match accepted",
				"manifestName", entry.Name,
				"matchedName", best.Name,
				"score", bestScore)
		}

		if manifest.ShouldUpgrade(entry.Category, best.Category) {
			if err := r.passengerRepo.UpdateCategory(ctx, best.ID, entry.Category); err != nil {
				r.logger.Error("Failed to upgrade passenger category",
					"passengerId", best.ID, "category", entry.Category, "error", err)
				r.registryError("update_passenger")
			} else {
				best.Category = entry.Category
			}
		}

		return best, false
	}

	newPassenger := &entity.Passenger{
		Name:       entry.Name,
		DocumentID: placeholderDocumentID(entry.Name),
		Category:   entry.Category,
		AirportID:  airportID,
	}
	if err := r.passengerRepo.Create(ctx, newPassenger); err != nil {
		r.logger.Error("Failed to create passenger", "name", entry.Name, "error", err)
		r.registryError("create_passenger")
		return nil, false
	}

	r.logger.Info("Created passenger", "name", entry.Name, "documentId", newPassenger.DocumentID)
	return newPassenger, true
}

// linkPassenger seats the passenger on the flight unless already seated.
// The existence check makes re-runs of the same manifest idempotent.
func (r *Reconciler) linkPassenger(ctx context.Context, flight *entity.Flight, passenger *entity.Passenger, entry manifest.ParsedEntry, result *entity.ReconcileResult) {
	if flight.HasPassenger(passenger.ID) {
		r.logger.Debug("Passenger already on flight, skipping link",
			"passengerId", passenger.ID, "flightId", flight.ID)
		return
	}

	if err := r.flightRepo.LinkPassenger(ctx, flight.ID, passenger.ID, entry.Seat, entry.Status); err != nil {
		r.logger.Error("Failed to link passenger to flight",
			"passengerId", passenger.ID, "flightId", flight.ID, "error", err)
		r.registryError("link_passenger")
		return
	}

	flight.Passengers = append(flight.Passengers, entity.SeatAssignment{
		PassengerID: passenger.ID,
		Seat:        entry.Seat,
		Status:      entry.Status,
	})
	result.Processed++
}

// searchFragment takes the first two words of the manifest name to bound the
// candidate set returned by the registry
func searchFragment(name string) string {
	words := strings.Fields(name)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}

// placeholderDocumentID builds a temporary document id for passengers created
// from a manifest before their real document is known. The random suffix
// keeps ids from colliding when many passengers are created within the same
// second.
func placeholderDocumentID(name string) string {
	stripped := strings.ToUpper(strings.Join(strings.Fields(name), ""))
	if len(stripped) > documentNameLen {
		stripped = stripped[:documentNameLen]
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	if len(timestamp) > 4 {
		timestamp = timestamp[len(timestamp)-4:]
	}

	return fmt.Sprintf("%s%s%s-%04d", documentIDPrefix, stripped, timestamp, rand.Intn(10000))
}
