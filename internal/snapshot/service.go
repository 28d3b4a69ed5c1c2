// Package snapshot assembles the caregiver dashboard view of one adult: the
// merged profile plus every telemetry collection, fetched in one fan-out.
package snapshot

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"carelink/internal/platform/metrics"
	"carelink/internal/presence"
	"carelink/internal/registry"
	"carelink/internal/vitals"
	id "carelink/pkg/domain"
)

var tracer = otel.Tracer("carelink/snapshot")

// Snapshot is the aggregate read model. Presence is newest-first; the other
// collections keep insertion order. Empty collections are empty slices.
type Snapshot struct {
	Adult          registry.AdultProfile
	Temperatures   []vitals.Temperature
	Presence       []presence.HistoryRecord
	BloodPressures []vitals.BloodPressure
	Medications    []vitals.MedicationReminder
}

// ProfileReader is the registry slice the aggregator needs.
type ProfileReader interface {
	GetAdult(ctx context.Context, adultID id.AdultID) (*registry.AdultProfile, error)
}

// PresenceReader is the presence slice the aggregator needs.
type PresenceReader interface {
	ListPresence(ctx context.Context, adultID id.AdultID) ([]presence.HistoryRecord, error)
}

// VitalsReader is the vitals slice the aggregator needs.
type VitalsReader interface {
	ListTemperatures(ctx context.Context, adultID id.AdultID) ([]vitals.Temperature, error)
	ListBloodPressures(ctx context.Context, adultID id.AdultID) ([]vitals.BloodPressure, error)
	ListMedications(ctx context.Context, adultID id.AdultID) ([]vitals.MedicationReminder, error)
}

type Service struct {
	profiles      ProfileReader
	presenceReads PresenceReader
	vitalsReads   VitalsReader
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewService(
	profiles ProfileReader,
	presenceReads PresenceReader,
	vitalsReads VitalsReader,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		profiles:      profiles,
		presenceReads: presenceReads,
		vitalsReads:   vitalsReads,
		metrics:       m,
		logger:        logger,
	}
}

// GetAdultSnapshot reads the profile first, then fans out over the four
// telemetry collections concurrently. Any failed read fails the snapshot; a
// partial aggregate is worse for a caregiver than a retryable error.
func (s *Service) GetAdultSnapshot(ctx context.Context, adultID id.AdultID) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "snapshot.get", trace.WithAttributes(
		attribute.String("adult_id", adultID.String()),
	))
	defer span.End()

	started := time.Now()

	profile, err := s.profiles.GetAdult(ctx, adultID)
	if err != nil {
		return nil, err
	}

	out := Snapshot{Adult: *profile}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(s.timedRead(gctx, "temperatures", func(ctx context.Context) error {
		temps, err := s.vitalsReads.ListTemperatures(ctx, adultID)
		if err != nil {
			return err
		}
		out.Temperatures = temps
		return nil
	}))
	g.Go(s.timedRead(gctx, "presence", func(ctx context.Context) error {
		records, err := s.presenceReads.ListPresence(ctx, adultID)
		if err != nil {
			return err
		}
		out.Presence = records
		return nil
	}))
	g.Go(s.timedRead(gctx, "blood_pressures", func(ctx context.Context) error {
		pressures, err := s.vitalsReads.ListBloodPressures(ctx, adultID)
		if err != nil {
			return err
		}
		out.BloodPressures = pressures
		return nil
	}))
	g.Go(s.timedRead(gctx, "medications", func(ctx context.Context) error {
		medications, err := s.vitalsReads.ListMedications(ctx, adultID)
		if err != nil {
			return err
		}
		out.Medications = medications
		return nil
	}))

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "snapshot fan-out failed",
			"error", err,
			"adult_id", adultID.String(),
		)
		return nil, err
	}

	if out.Presence == nil {
		out.Presence = []presence.HistoryRecord{}
	}
	if s.metrics != nil {
		s.metrics.ObserveSnapshot(time.Since(started))
	}
	return &out, nil
}

func (s *Service) timedRead(ctx context.Context, collection string, read func(context.Context) error) func() error {
	return func() error {
		ctx, span := tracer.Start(ctx, "snapshot.read", trace.WithAttributes(
			attribute.String("collection", collection),
		))
		defer span.End()

		started := time.Now()
		err := read(ctx)
		if s.metrics != nil {
			s.metrics.ObserveSnapshotRead(collection, time.Since(started))
		}
		return err
	}
}
