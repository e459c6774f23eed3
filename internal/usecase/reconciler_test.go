package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"vip-manifest-service/internal/domain/entity"
	"vip-manifest-service/pkg/logger"
	"vip-manifest-service/pkg/manifest"
	"vip-manifest-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePassengerRepo keeps passengers in memory. SearchByName returns every
// passenger at the airport, as if the registry pre-filter matched broadly;
// the reconciler re-scores all candidates anyway.
type fakePassengerRepo struct {
	passengers []*entity.Passenger
	searchErr  error
	createErr  error
	updateErr  error
	updates    []string
	nextID     int
}

func (f *fakePassengerRepo) SearchByName(_ context.Context, _, airportID string) ([]*entity.Passenger, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []*entity.Passenger
	for _, p := range f.passengers {
		if p.AirportID == airportID {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakePassengerRepo) Create(_ context.Context, passenger *entity.Passenger) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	passenger.ID = fmt.Sprintf("p%d", f.nextID)
	stored := *passenger
	f.passengers = append(f.passengers, &stored)
	return nil
}

func (f *fakePassengerRepo) UpdateCategory(_ context.Context, id, category string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, id+":"+category)
	for _, p := range f.passengers {
		if p.ID == id {
			p.Category = category
		}
	}
	return nil
}

func (f *fakePassengerRepo) seed(name, documentID, category, airportID string) *entity.Passenger {
	f.nextID++
	p := &entity.Passenger{
		ID:         fmt.Sprintf("p%d", f.nextID),
		Name:       name,
		DocumentID: documentID,
		Category:   category,
		AirportID:  airportID,
	}
	f.passengers = append(f.passengers, p)
	return p
}

// fakeFlightRepo keeps flights in memory and returns copies from ListByDate,
// the way records decoded from a real registry would be fresh values
type fakeFlightRepo struct {
	flights   []*entity.Flight
	listErr   error
	createErr error
	linkErr   error
	linkCalls int
	nextID    int
}

func (f *fakeFlightRepo) ListByDate(_ context.Context, _ time.Time, airportID string) ([]*entity.Flight, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entity.Flight
	for _, fl := range f.flights {
		if fl.AirportID == airportID {
			copied := *fl
			copied.Passengers = append([]entity.SeatAssignment(nil), fl.Passengers...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeFlightRepo) Create(_ context.Context, flight *entity.Flight) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	flight.ID = fmt.Sprintf("f%d", f.nextID)
	stored := *flight
	f.flights = append(f.flights, &stored)
	return nil
}

func (f *fakeFlightRepo) LinkPassenger(_ context.Context, flightID, passengerID, seat, status string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	f.linkCalls++
	for _, fl := range f.flights {
		if fl.ID == flightID {
			fl.Passengers = append(fl.Passengers, entity.SeatAssignment{
				PassengerID: passengerID,
				Seat:        seat,
				Status:      status,
			})
			return nil
		}
	}
	return errors.New("flight not found")
}

func newTestReconciler(passengers *fakePassengerRepo, flights *fakeFlightRepo) *Reconciler {
	log := logger.NewNop()
	return NewReconciler(passengers, flights, manifest.NewParser(log), nil, log)
}

var testDate = time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

func TestReconcileFreshManifest(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	r := newTestReconciler(passengers, flights)

	text := "AA100,MIA,Jane Doe,gold,confirmado,12A\n" +
		"AA100,MIA,John Roe,platinum,confirmado,12B\n" +
		"AA200,JFK,Ana Diaz,black,pendiente,3F"
	result, parsed := r.ReconcileManifest(context.Background(), text, testDate, "EZE")

	require.True(t, parsed.Success)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 0, result.Found)
	assert.Equal(t, 3, result.Processed)
	assert.Empty(t, result.Duplicates)
	assert.Len(t, flights.flights, 2)
	assert.Len(t, passengers.passengers, 3)
	assert.Contains(t, result.Summary, "3 created")
	assert.Contains(t, result.Summary, "0 found")
}

func TestReconcileRerunIsIdempotent(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	r := newTestReconciler(passengers, flights)

	text := "AA100,MIA,Jane Doe,gold,confirmado,12A\n" +
		"AA200,JFK,Ana Diaz,black,pendiente,3F"
	first, _ := r.ReconcileManifest(context.Background(), text, testDate, "EZE")
	require.Equal(t, 2, first.Created)
	require.Equal(t, 2, first.Processed)

	second, _ := r.ReconcileManifest(context.Background(), text, testDate, "EZE")

	// Search finds the records created on the first run and the link
	// existence check stops re-linking
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Found)
	assert.Equal(t, 0, second.Processed)
	assert.Len(t, flights.flights, 2)
	assert.Len(t, passengers.passengers, 2)
	assert.Equal(t, 2, flights.linkCalls)
}

func TestReconcileExactMatchUpgradesCategory(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	seeded := passengers.seed("Maria Garcia", "DOC-001", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Maria Garcia,platinum,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 0, result.Created)
	// Exact matches are never audited
	assert.Empty(t, result.Duplicates)
	assert.Equal(t, []string{seeded.ID + ":PLATINUM"}, passengers.updates)
}

func TestReconcileExactMatchNoDowngrade(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("Maria Garcia", "DOC-001", manifest.CategorySignature, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Maria Garcia,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Found)
	assert.Empty(t, passengers.updates)
}

func TestReconcileFuzzyMatchIsAudited(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("Maria Garcia Lopez", "DOC-002", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Maria Garcia,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Duplicates, 1)

	audit := result.Duplicates[0]
	assert.Equal(t, "Maria Garcia", audit.ManifestName)
	assert.Equal(t, "Maria Garcia Lopez", audit.MatchedName)
	assert.Equal(t, "DOC-002", audit.MatchedDocumentID)
	assert.Equal(t, 90, audit.SimilarityPercent)
}

func TestReconcileAccentedNameFuzzyMatch(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("José Aguilar", "DOC-007", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	// One accented character differs: one edit over twelve characters,
	// which must land above the threshold rather than creating a second
	// record for the same person
	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jose Aguilar,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 0, result.Created)
	assert.Len(t, passengers.passengers, 1)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "José Aguilar", result.Duplicates[0].MatchedName)
	assert.Equal(t, 92, result.Duplicates[0].SimilarityPercent)
}

func TestReconcileFuzzyPercentRounding(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("Mary Johnsen", "DOC-003", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	// Edit distance 1 over length 12: similarity 0.9166..., reported as 92
	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Mary Johnson,gold,confirmado,4C", testDate, "EZE")

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, 92, result.Duplicates[0].SimilarityPercent)
}

func TestReconcileExactMatchBeatsBetterScannedFuzzy(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("Jane Doe Smith", "DOC-F", manifest.CategoryGold, "EZE")
	exact := passengers.seed("Jane Doe", "DOC-E", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Found)
	assert.Empty(t, result.Duplicates)
	require.Len(t, flights.flights, 1)
	require.Len(t, flights.flights[0].Passengers, 1)
	assert.Equal(t, exact.ID, flights.flights[0].Passengers[0].PassengerID)
}

func TestReconcileFirstExactMatchWins(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	first := passengers.seed("Jane Doe", "DOC-1", manifest.CategoryGold, "EZE")
	passengers.seed("Jane Doe", "DOC-2", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	require.Len(t, flights.flights, 1)
	require.Len(t, flights.flights[0].Passengers, 1)
	assert.Equal(t, first.ID, flights.flights[0].Passengers[0].PassengerID)
}

func TestReconcileBelowThresholdCreates(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	passengers.seed("Robert Brown", "DOC-004", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Found)
	assert.Empty(t, result.Duplicates)
	assert.Len(t, passengers.passengers, 2)
}

func TestReconcileDuplicateLinesResolveToOneRecord(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	r := newTestReconciler(passengers, flights)

	// The second line must find the record the first one just created,
	// and the link existence check must keep it from double-linking
	text := "AA100,MIA,Jane Doe,gold,confirmado,12A\n" +
		"AA100,MIA,Jane Doe,gold,confirmado,12A"
	result, _ := r.ReconcileManifest(context.Background(), text, testDate, "EZE")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, passengers.passengers, 1)
	assert.Equal(t, 1, flights.linkCalls)
}

func TestReconcileSearchFailureFallsBackToCreate(t *testing.T) {
	passengers := &fakePassengerRepo{searchErr: errors.New("registry down")}
	flights := &fakeFlightRepo{}
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Processed)
}

func TestReconcileFlightListFailureStillCreatesFlight(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{listErr: errors.New("registry down")}
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Processed)
	assert.Len(t, flights.flights, 1)
}

func TestReconcileFlightCreateFailureSkipsGroup(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{createErr: errors.New("registry down")}
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Found)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, passengers.passengers)
}

func TestReconcileLinkFailureNotCountedAsProcessed(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{linkErr: errors.New("registry down")}
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Processed)
}

func TestReconcileUpdateFailureKeepsMatch(t *testing.T) {
	passengers := &fakePassengerRepo{updateErr: errors.New("registry down")}
	flights := &fakeFlightRepo{}
	passengers.seed("Maria Garcia", "DOC-001", manifest.CategoryGold, "EZE")
	r := newTestReconciler(passengers, flights)

	result, _ := r.ReconcileManifest(context.Background(),
		"AA100,MIA,Maria Garcia,platinum,confirmado,4C", testDate, "EZE")

	// The upgrade write failed but the matched passenger still counts
	assert.Equal(t, 1, result.Found)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Processed)
}

func TestReconcileBadLinesSkipped(t *testing.T) {
	passengers := &fakePassengerRepo{}
	flights := &fakeFlightRepo{}
	r := newTestReconciler(passengers, flights)

	text := "not a valid line\n" +
		"AA100,MIA,Jane Doe,gold,confirmado,12A"
	result, parsed := r.ReconcileManifest(context.Background(), text, testDate, "EZE")

	assert.False(t, parsed.Success)
	require.Len(t, parsed.Errors, 1)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Processed)
}

func TestReconcileRegistryErrorsCounted(t *testing.T) {
	passengers := &fakePassengerRepo{searchErr: errors.New("registry down")}
	flights := &fakeFlightRepo{linkErr: errors.New("registry down")}
	log := logger.NewNop()
	m := metrics.NewMetrics("vipmanifest_test")
	r := NewReconciler(passengers, flights, manifest.NewParser(log), m, log)

	r.ReconcileManifest(context.Background(),
		"AA100,MIA,Jane Doe,gold,confirmado,4C", testDate, "EZE")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistryErrors.WithLabelValues("search_passengers")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistryErrors.WithLabelValues("link_passenger")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RegistryErrors.WithLabelValues("create_flight")))
}

func TestPlaceholderDocumentID(t *testing.T) {
	id := placeholderDocumentID("Jane Doe")
	assert.Regexp(t, regexp.MustCompile(`^VIP-JANEDOE\d{4}-\d{4}$`), id)

	// Long names truncate to ten characters
	long := placeholderDocumentID("Maximiliano Fernandez de la Vega")
	assert.Regexp(t, regexp.MustCompile(`^VIP-MAXIMILIAN\d{4}-\d{4}$`), long)
}
