//go:build integration

package presence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"carelink/internal/presence"
	"carelink/internal/registry"
	id "carelink/pkg/domain"
	"carelink/pkg/platform/sentinel"
	"carelink/pkg/testutil/containers"
)

type PresencePostgresSuite struct {
	suite.Suite
	pg         *containers.PostgresContainer
	events     *presence.PostgresEventStore
	excursions *presence.PostgresExcursionStore
	adults     *registry.PostgresAdultStore
	accounts   *registry.PostgresAccountStore
	ctx        context.Context
	adultID    id.AdultID
}

func TestPresencePostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PresencePostgresSuite))
}

func (s *PresencePostgresSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.events = presence.NewPostgresEventStore(s.pg.DB)
	s.excursions = presence.NewPostgresExcursionStore(s.pg.DB)
	s.adults = registry.NewPostgresAdultStore(s.pg.DB)
	s.accounts = registry.NewPostgresAccountStore(s.pg.DB)
}

func (s *PresencePostgresSuite) SetupTest() {
	require.NoError(s.T(), s.pg.Truncate(s.ctx, "accounts"))

	account := registry.Account{
		ID:           id.NewAccountID(),
		Username:     "maria",
		Email:        "maria@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         id.RoleCaregiver,
	}
	require.NoError(s.T(), s.accounts.CreateAccount(s.ctx, account))

	adult := registry.Adult{
		ID: id.NewAdultID(), Name: "Rosa", Age: 84,
		BloodPressureLimit: 140, RoomTimeLimit: 3600, AccountID: account.ID,
	}
	require.NoError(s.T(), s.adults.CreateAdult(s.ctx, adult))
	s.adultID = adult.ID
}

func (s *PresencePostgresSuite) newEvent(zone string, enteredAt time.Time) presence.Event {
	return presence.Event{
		ID:              id.NewRecordID(),
		AdultIDs:        []id.AdultID{s.adultID},
		Zone:            zone,
		ReportedSeconds: 10,
		EnteredAt:       enteredAt,
		ExpectedExitAt:  enteredAt.Add(10 * time.Second),
	}
}

func (s *PresencePostgresSuite) TestEventsNewestFirst() {
	base := time.Now().UTC().Truncate(time.Second)
	for i, zone := range []string{"kitchen", "bedroom", "bathroom"} {
		s.Require().NoError(s.events.CreateEvent(s.ctx, s.newEvent(zone, base.Add(time.Duration(i)*time.Minute))))
	}

	events, err := s.events.ListEventsByAdult(s.ctx, s.adultID)
	s.Require().NoError(err)
	s.Require().Len(events, 3)
	s.Equal("bathroom", events[0].Zone)
	s.Equal("kitchen", events[2].Zone)
	s.Equal([]id.AdultID{s.adultID}, events[0].AdultIDs)
}

func (s *PresencePostgresSuite) TestEventsOtherAdultInvisible() {
	s.Require().NoError(s.events.CreateEvent(s.ctx, s.newEvent("kitchen", time.Now().UTC())))

	events, err := s.events.ListEventsByAdult(s.ctx, id.NewAdultID())
	s.Require().NoError(err)
	s.Empty(events)
}

func (s *PresencePostgresSuite) TestExcursionLifecycle() {
	departed := time.Now().UTC().Truncate(time.Second)
	excursion := presence.Excursion{
		ID:         id.NewRecordID(),
		AdultID:    s.adultID,
		Longitude:  -3.7,
		Latitude:   40.4,
		DepartedAt: departed,
	}
	s.Require().NoError(s.excursions.CreateExcursion(s.ctx, excursion))

	returned := departed.Add(25 * time.Minute)
	closed, err := s.excursions.CloseExcursion(s.ctx, excursion.ID, returned, 25*60)
	s.Require().NoError(err)
	s.Require().NotNil(closed.ReturnedAt)
	s.Equal(int64(25*60), *closed.ElapsedOutside)

	// Double close loses the race inside Postgres.
	_, err = s.excursions.CloseExcursion(s.ctx, excursion.ID, returned, 25*60)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	// Absent id is not-found, never invalid-state.
	_, err = s.excursions.CloseExcursion(s.ctx, id.NewRecordID(), returned, 0)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
