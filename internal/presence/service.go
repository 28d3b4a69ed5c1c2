package presence

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"carelink/internal/audit"
	"carelink/internal/platform/metrics"
	"carelink/internal/registry"
	id "carelink/pkg/domain"
	dErrors "carelink/pkg/domain-errors"
	"carelink/pkg/platform/sentinel"
	stringutil "carelink/pkg/platform/strings"
	"carelink/pkg/requestcontext"
)

var tracer = otel.Tracer("carelink/presence")

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}

// AdultDirectory is the slice of the registry store this engine needs: the
// existence checks that must precede every telemetry insert.
type AdultDirectory interface {
	FindAdultByID(ctx context.Context, adultID id.AdultID) (registry.Adult, error)
	FindAdultsByIDs(ctx context.Context, adultIDs []id.AdultID) ([]registry.Adult, error)
}

// Service converts untrusted device reports into authoritative, durable time
// windows.
type Service struct {
	events     EventStore
	excursions ExcursionStore
	adults     AdultDirectory
	sink       audit.Sink
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(
	events EventStore,
	excursions ExcursionStore,
	adults AdultDirectory,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		events:     events,
		excursions: excursions,
		adults:     adults,
		sink:       sink,
		metrics:    m,
		logger:     logger,
	}
}

// RecordPresence persists one room visit. The entry timestamp is the server's
// request time and the exit is entry plus the reported duration; a device can
// say how long, never when.
func (s *Service) RecordPresence(ctx context.Context, req ReportRequest) (*Event, *Confirmation, error) {
	ctx, span := tracer.Start(ctx, "presence.record", trace.WithAttributes(
		attribute.String("zone", req.Zone),
	))
	defer span.End()

	zone := strings.TrimSpace(req.Zone)
	if zone == "" || len(zone) > 100 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "zone label is required")
	}
	// Devices retry; a group report may carry the same adult twice.
	rawIDs := stringutil.DedupeAndTrim(req.AdultIDs)
	if len(rawIDs) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "at least one adult id is required")
	}

	adultIDs := make([]id.AdultID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		adultID, err := id.ParseAdultID(raw)
		if err != nil {
			return nil, nil, err
		}
		adultIDs = append(adultIDs, adultID)
	}

	duration := DefaultReportSeconds
	if req.DurationSeconds != nil {
		if *req.DurationSeconds <= 0 {
			return nil, nil, dErrors.New(dErrors.CodeInvalidInput, "duration must be positive")
		}
		duration = *req.DurationSeconds
	}

	// Existence check strictly precedes the insert: no presence row may
	// reference a nonexistent adult.
	adults, err := s.adults.FindAdultsByIDs(ctx, adultIDs)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adults")
	}
	if len(adults) != len(adultIDs) {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "adult not found")
	}

	entry := requestcontext.Now(ctx)
	event := Event{
		ID:              id.NewRecordID(),
		AdultIDs:        adultIDs,
		Zone:            zone,
		ReportedSeconds: duration,
		EnteredAt:       entry,
		ExpectedExitAt:  entry.Add(secondsToDuration(duration)),
	}

	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist presence event")
	}

	if s.metrics != nil {
		s.metrics.ObserveTelemetryWrite("presence")
	}
	s.emit(ctx, audit.Event{
		Kind:    audit.EventPresenceRecorded,
		AdultID: adultIDs[0].String(),
		Attrs:   map[string]string{"zone": zone},
	})
	s.logger.InfoContext(ctx, "presence recorded",
		"adult_id", adultIDs[0].String(),
		"zone", zone,
		"duration_seconds", duration,
		"request_id", requestcontext.RequestID(ctx),
	)

	primaryName := adults[0].Name
	for _, adult := range adults {
		if adult.ID == adultIDs[0] {
			primaryName = adult.Name
			break
		}
	}
	confirmation := &Confirmation{
		AdultName: primaryName,
		Zone:      zone,
		EnteredAt: entry,
	}
	return &event, confirmation, nil
}

// ListPresence returns the adult's presence history newest-first, each row
// carrying the adult's display name.
func (s *Service) ListPresence(ctx context.Context, adultID id.AdultID) ([]HistoryRecord, error) {
	adult, err := s.adults.FindAdultByID(ctx, adultID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "adult not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adult")
	}

	events, err := s.events.ListEventsByAdult(ctx, adultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list presence events")
	}

	out := make([]HistoryRecord, 0, len(events))
	for _, event := range events {
		out = append(out, HistoryRecord{
			Zone:            event.Zone,
			DurationSeconds: event.ReportedSeconds,
			EntryTime:       event.EnteredAt,
			ExitTime:        event.ExpectedExitAt,
			AdultName:       adult.Name,
		})
	}
	return out, nil
}

// RecordExcursionStart opens an outdoor excursion. Coordinates are
// [longitude, latitude]; the departure defaults to server time when the
// device omits it.
func (s *Service) RecordExcursionStart(ctx context.Context, req ExcursionStartRequest) (*Excursion, error) {
	ctx, span := tracer.Start(ctx, "presence.excursion_start")
	defer span.End()

	adultID, err := id.ParseAdultID(req.AdultID)
	if err != nil {
		return nil, err
	}
	if len(req.Coordinates) != 2 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "coordinates must be [longitude, latitude]")
	}
	lon, lat := req.Coordinates[0], req.Coordinates[1]
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "coordinates out of range")
	}

	// Check-then-insert, uniformly: an excursion row must never reference a
	// nonexistent adult.
	if _, err := s.adults.FindAdultByID(ctx, adultID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "adult not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adult")
	}

	now := requestcontext.Now(ctx)
	departed := now
	if req.DepartedAt != nil && req.DepartedAt.Before(now) {
		departed = *req.DepartedAt
	}

	excursion := Excursion{
		ID:         id.NewRecordID(),
		AdultID:    adultID,
		Longitude:  lon,
		Latitude:   lat,
		DepartedAt: departed,
	}

	// A finished excursion may arrive as one report. Closing it in the same
	// insert keeps the row from ever being observable half-open.
	if req.ReturnedAt != nil {
		returned := *req.ReturnedAt
		if returned.After(now) {
			returned = now
		}
		if returned.Before(departed) {
			return nil, dErrors.New(dErrors.CodeInvalidInput, "return cannot precede departure")
		}
		elapsed := int64(returned.Sub(departed).Seconds())
		excursion.ReturnedAt = &returned
		excursion.ElapsedOutside = &elapsed
	}

	if err := s.excursions.CreateExcursion(ctx, excursion); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist excursion")
	}

	if s.metrics != nil {
		s.metrics.ObserveTelemetryWrite("excursion")
	}
	s.emit(ctx, audit.Event{
		Kind:    audit.EventExcursionStarted,
		AdultID: adultID.String(),
	})
	if excursion.ReturnedAt != nil {
		s.emit(ctx, audit.Event{
			Kind:    audit.EventExcursionClosed,
			AdultID: adultID.String(),
		})
	}
	return &excursion, nil
}

// CloseExcursion bounds an open excursion. The elapsed-outside duration is
// computed here and stored so downstream alerting reads one row, not two.
func (s *Service) CloseExcursion(ctx context.Context, excursionID id.RecordID, returnedAt *time.Time) (*Excursion, error) {
	ctx, span := tracer.Start(ctx, "presence.excursion_close")
	defer span.End()

	existing, err := s.excursions.FindExcursionByID(ctx, excursionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "excursion not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up excursion")
	}

	now := requestcontext.Now(ctx)
	returned := now
	if returnedAt != nil && returnedAt.Before(now) {
		returned = *returnedAt
	}
	if returned.Before(existing.DepartedAt) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "return cannot precede departure")
	}
	elapsed := int64(returned.Sub(existing.DepartedAt).Seconds())

	closed, err := s.excursions.CloseExcursion(ctx, excursionID, returned, elapsed)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, dErrors.New(dErrors.CodeConflict, "excursion already closed")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "excursion not found")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to close excursion")
		}
	}

	s.emit(ctx, audit.Event{
		Kind:    audit.EventExcursionClosed,
		AdultID: closed.AdultID.String(),
	})
	return &closed, nil
}

// ListExcursions returns the adult's excursions, oldest first.
func (s *Service) ListExcursions(ctx context.Context, adultID id.AdultID) ([]Excursion, error) {
	if _, err := s.adults.FindAdultByID(ctx, adultID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "adult not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up adult")
	}
	excursions, err := s.excursions.ListExcursionsByAdult(ctx, adultID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list excursions")
	}
	return excursions, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"error", err,
			"kind", string(event.Kind),
		)
	}
}
