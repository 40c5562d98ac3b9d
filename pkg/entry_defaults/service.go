package entry_defaults

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/timesheet/internal/event_bus"
	"github.com/klokku/timesheet/internal/utils"
	"github.com/klokku/timesheet/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrDefaultsInvalid = errors.New("invalid entry defaults")

type Service interface {
	GetDefaults(ctx context.Context) (Defaults, error)
	StoreDefaults(ctx context.Context, defaults Defaults) (Defaults, error)
	// Resolve returns the defaults to apply to a new entry of the current user. The date falls
	// back to today when none is stored.
	Resolve(ctx context.Context) (Defaults, error)
	// AdvanceDateAfter moves the stored default date to the day after date. Users without
	// stored defaults are left alone.
	AdvanceDateAfter(ctx context.Context, userId int, date time.Time) error
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	service := &ServiceImpl{repo: repo, clock: clock}
	event_bus.SubscribeTyped[event_bus.TimesheetEntryUpdated](
		eventBus,
		event_bus.TimesheetEntryUpdatedEvent,
		func(e event_bus.EventT[event_bus.TimesheetEntryUpdated]) error {
			log.Debugf("received timesheet entry updated event: %+v", e.Data)
			return service.AdvanceDateAfter(e.Context(), e.Data.UserId, e.Data.Date)
		},
	)
	event_bus.SubscribeTyped[event_bus.TimesheetEntrySplit](
		eventBus,
		event_bus.TimesheetEntrySplitEvent,
		func(e event_bus.EventT[event_bus.TimesheetEntrySplit]) error {
			log.Debugf("received timesheet entry split event: %+v", e.Data)
			return service.AdvanceDateAfter(e.Context(), e.Data.UserId, e.Data.Date)
		},
	)
	return service
}

func (s *ServiceImpl) GetDefaults(ctx context.Context) (Defaults, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Defaults{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetDefaults(ctx, userId)
}

func (s *ServiceImpl) StoreDefaults(ctx context.Context, defaults Defaults) (Defaults, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Defaults{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if defaults.UnitAmount.Valid && defaults.UnitAmount.Decimal.IsNegative() {
		return Defaults{}, fmt.Errorf("%w: unit amount must not be negative", ErrDefaultsInvalid)
	}
	if err := s.repo.StoreDefaults(ctx, userId, defaults); err != nil {
		return Defaults{}, err
	}
	return defaults, nil
}

func (s *ServiceImpl) Resolve(ctx context.Context) (Defaults, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Defaults{}, fmt.Errorf("failed to get current user: %w", err)
	}
	defaults, err := s.repo.GetDefaults(ctx, userId)
	if err != nil && !errors.Is(err, ErrDefaultsNotFound) {
		return Defaults{}, err
	}
	if defaults.Date.IsZero() {
		defaults.Date = utils.Today(s.clock)
	}
	return defaults, nil
}

func (s *ServiceImpl) AdvanceDateAfter(ctx context.Context, userId int, date time.Time) error {
	if date.IsZero() {
		return nil
	}
	advanced, err := s.repo.AdvanceDate(ctx, userId, dayAfter(date))
	if err != nil {
		return fmt.Errorf("failed to advance default date: %w", err)
	}
	if !advanced {
		log.Tracef("user %d has no entry defaults, date not advanced", userId)
	}
	return nil
}
