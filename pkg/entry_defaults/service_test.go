package entry_defaults

import (
	"context"
	"testing"
	"time"

	"github.com/klokku/timesheet/internal/event_bus"
	"github.com/klokku/timesheet/internal/utils"
	"github.com/klokku/timesheet/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 7, Uid: "b1c9f0a4-54a5-4f8e-8d8b-1d0a0b3b9d11", Username: "ana"})

var repoStub = NewRepositoryStub()
var clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC)}

func setup(t *testing.T) (*ServiceImpl, *event_bus.EventBus, func()) {
	bus := event_bus.NewEventBus()
	service := NewService(repoStub, bus, clock)
	return service, bus, func() {
		t.Log("Teardown after test")
		repoStub.Reset()
	}
}

func TestServiceImpl_StoreDefaults(t *testing.T) {
	t.Run("should store defaults for current user", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		defaults := Defaults{
			ProjectId:  3,
			WorkTypeId: 1,
			Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			UnitAmount: decimal.NewNullDecimal(decimal.NewFromInt(8)),
		}

		// when
		_, err := service.StoreDefaults(ctx, defaults)
		require.NoError(t, err)
		stored, err := service.GetDefaults(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, defaults, stored)
	})

	t.Run("should reject negative unit amount", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.StoreDefaults(ctx, Defaults{UnitAmount: decimal.NewNullDecimal(decimal.NewFromInt(-1))})

		// then
		assert.ErrorIs(t, err, ErrDefaultsInvalid)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.StoreDefaults(context.Background(), Defaults{})

		// then
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get current user")
	})
}

func TestServiceImpl_Resolve(t *testing.T) {
	t.Run("should fall back to today when nothing is stored", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		defaults, err := service.Resolve(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), defaults.Date)
		assert.Zero(t, defaults.WorkTypeId)
	})

	t.Run("should return stored defaults", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.StoreDefaults(ctx, Defaults{EmployeeId: 11, Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)

		// when
		defaults, err := service.Resolve(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 11, defaults.EmployeeId)
		assert.Equal(t, time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), defaults.Date)
	})
}

func TestServiceImpl_AdvanceDate(t *testing.T) {
	t.Run("should move date to the day after an updated entry", func(t *testing.T) {
		_, bus, teardown := setup(t)
		defer teardown()

		// given
		require.NoError(t, repoStub.StoreDefaults(ctx, 7, Defaults{ProjectId: 1}))

		// when
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.TimesheetEntryUpdatedEvent, event_bus.TimesheetEntryUpdated{
			UserId:  7,
			EntryId: 1,
			Date:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		}))

		// then
		require.NoError(t, err)
		stored, _ := repoStub.GetDefaults(ctx, 7)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), stored.Date)
		assert.Equal(t, 1, stored.ProjectId)
	})

	t.Run("should move date after a split entry", func(t *testing.T) {
		_, bus, teardown := setup(t)
		defer teardown()

		// given
		require.NoError(t, repoStub.StoreDefaults(ctx, 7, Defaults{}))

		// when
		err := bus.Publish(event_bus.NewEvent(ctx, event_bus.TimesheetEntrySplitEvent, event_bus.TimesheetEntrySplit{
			UserId: 7,
			Date:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		}))

		// then
		require.NoError(t, err)
		stored, _ := repoStub.GetDefaults(ctx, 7)
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), stored.Date)
	})

	t.Run("should not create defaults for users without them", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		err := service.AdvanceDateAfter(ctx, 42, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

		// then
		require.NoError(t, err)
		_, getErr := repoStub.GetDefaults(ctx, 42)
		assert.ErrorIs(t, getErr, ErrDefaultsNotFound)
	})
}
