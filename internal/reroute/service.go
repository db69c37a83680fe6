package reroute

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/trainreroute/trainreroute/internal/train"
)

const instrumentationName = "github.com/trainreroute/trainreroute/internal/reroute"

// Service errors.
var (
	// ErrTrainNotFound is returned when the requested train does not exist.
	ErrTrainNotFound = train.ErrTrainNotFound

	// ErrRepositoryUnavailable wraps any other failure of the train repository.
	ErrRepositoryUnavailable = errors.New("train repository unavailable")
)

// Outcomes recorded on the computation counter.
const (
	outcomeNotRequired = "not_required"
	outcomeDeparted    = "already_departed"
	outcomeRerouted    = "rerouted"
	outcomeError       = "error"
)

// ServiceConfig holds configuration for the reroute service.
type ServiceConfig struct {
	Repository train.Repository
	Policy     Policy

	// Clock returns the reference time. Defaults to time.Now.
	Clock func() time.Time

	// Location pins bare clock schedules to a timezone. Defaults to the
	// clock's own location.
	Location *time.Location

	Logger zerolog.Logger
	Tracer trace.Tracer
	Meter  metric.Meter
}

// Service computes reroute suggestions.
type Service struct {
	repo     train.Repository
	policy   Policy
	clock    func() time.Time
	location *time.Location
	logger   zerolog.Logger
	tracer   trace.Tracer

	computations metric.Int64Counter
}

// NewService creates a new reroute service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("reroute: repository is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(instrumentationName)
	}
	if cfg.Meter == nil {
		cfg.Meter = otel.Meter(instrumentationName)
	}

	computations, err := cfg.Meter.Int64Counter(
		"reroute.computations",
		metric.WithDescription("Number of reroute computations by outcome"),
		metric.WithUnit("{computation}"),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		repo:         cfg.Repository,
		policy:       cfg.Policy.withDefaults(),
		clock:        cfg.Clock,
		location:     cfg.Location,
		logger:       cfg.Logger,
		tracer:       cfg.Tracer,
		computations: computations,
	}, nil
}

// Compute loads trainID and builds its reroute result.
func (s *Service) Compute(ctx context.Context, trainID string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "reroute.Compute",
		trace.WithAttributes(attribute.String("train.id", trainID)),
	)
	defer span.End()

	result, err := s.compute(ctx, trainID)
	outcome := outcomeOf(result, err)
	s.computations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	span.SetAttributes(attribute.String("reroute.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("reroute.same_station_count", result.SameStationCount),
		attribute.Int("reroute.nearby_station_count", result.NearbyStationCount),
	)
	return result, nil
}

func (s *Service) compute(ctx context.Context, trainID string) (*Result, error) {
	now := s.now()

	original, err := s.repo.FindByID(ctx, trainID)
	if err != nil {
		return nil, repositoryError(err)
	}

	necessity, err := Classify(original, now, s.policy)
	if err != nil {
		return nil, err
	}

	if !necessity.Required {
		return s.notRequired(original, necessity), nil
	}

	reason := fmt.Sprintf("Train delayed by %d minutes", original.EffectiveDelay())
	if necessity.Cancelled {
		reason = "Train has been cancelled"
	}

	pool, err := s.repo.FindActiveByDestination(ctx, original.Destination, original.ID)
	if err != nil {
		return nil, repositoryError(err)
	}

	alternatives, err := FindAlternatives(original, pool, now, s.policy)
	if err != nil {
		return nil, err
	}
	for _, skipped := range alternatives.Skipped {
		s.logger.Warn().
			Str("train_id", original.ID).
			Str("candidate_id", skipped.TrainID).
			Str("departure_time", skipped.Value).
			Msg("skipping candidate with malformed schedule")
	}

	situation := Situation{
		Train:         original,
		Departure:     necessity,
		Alternatives:  alternatives,
		Reason:        reason,
		Now:           now,
		UrgencyWindow: s.policy.UrgencyWindow,
	}

	sameStation := s.explainCandidates(situation, KindSameStation, alternatives.SameStation)
	nearby := s.explainCandidates(situation, KindNearbyStation, alternatives.Nearby)

	situation.Kind = OverallKind(necessity.Cancelled, alternatives)

	s.logger.Debug().
		Str("train_id", original.ID).
		Str("explanation", situation.Kind.String()).
		Int("same_station_count", len(sameStation)).
		Int("nearby_station_count", len(nearby)).
		Msg("reroute computed")

	return &Result{
		RerouteRequired:           true,
		Reason:                    &reason,
		Explanation:               Explain(situation),
		Train:                     NewTrainSnapshot(original),
		SameStationAlternatives:   sameStation,
		SameStationCount:          len(sameStation),
		NearbyStationAlternatives: nearby,
		NearbyStationCount:        len(nearby),
		SuggestedStations:         alternatives.SuggestedStations,
		Message:                   summarize(original.StationName, len(sameStation), len(nearby)),
	}, nil
}

func (s *Service) now() time.Time {
	now := s.clock()
	if s.location != nil {
		now = now.In(s.location)
	}
	return now
}

func (s *Service) notRequired(original *train.Train, necessity Necessity) *Result {
	situation := Situation{
		Kind:      KindNoReroute,
		Train:     original,
		Departure: necessity,
	}

	message := "Train is running on schedule. No reroute needed"
	if delay := original.EffectiveDelay(); delay > 0 {
		message = fmt.Sprintf("Train is delayed by %d minutes but still on schedule. No reroute needed", delay)
	}
	if necessity.AlreadyDeparted {
		situation.Kind = KindAlreadyDeparted
		message = msgAlreadyDeparted
	}

	return &Result{
		RerouteRequired:           false,
		Explanation:               Explain(situation),
		Train:                     NewTrainSnapshot(original),
		SameStationAlternatives:   []AlternativeTrain{},
		NearbyStationAlternatives: []AlternativeTrain{},
		SuggestedStations:         []string{},
		Message:                   message,
	}
}

func (s *Service) explainCandidates(base Situation, kind Kind, candidates []*Candidate) []AlternativeTrain {
	out := make([]AlternativeTrain, 0, len(candidates))
	for _, c := range candidates {
		situation := base
		situation.Kind = kind
		situation.Candidate = c
		out = append(out, AlternativeTrain{
			TrainSnapshot: NewTrainSnapshot(c.Train),
			Explanation:   Explain(situation),
		})
	}
	return out
}

func summarize(station string, sameCount, nearbyCount int) string {
	switch {
	case sameCount > 0 && nearbyCount > 0:
		return fmt.Sprintf("Found %d alternative train(s) at %s and %d at nearby stations", sameCount, station, nearbyCount)
	case sameCount > 0:
		return fmt.Sprintf("Found %d alternative train(s) at %s", sameCount, station)
	case nearbyCount > 0:
		return fmt.Sprintf("No alternatives at %s. Found %d at nearby stations", station, nearbyCount)
	default:
		return "No alternative trains available at this time"
	}
}

func repositoryError(err error) error {
	if errors.Is(err, train.ErrTrainNotFound) {
		return ErrTrainNotFound
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
}

func outcomeOf(result *Result, err error) string {
	switch {
	case err != nil:
		return outcomeError
	case result.RerouteRequired:
		return outcomeRerouted
	case result.Message == msgAlreadyDeparted:
		return outcomeDeparted
	default:
		return outcomeNotRequired
	}
}
