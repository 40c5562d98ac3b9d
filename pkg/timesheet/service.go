package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klokku/timesheet/internal/event_bus"
	"github.com/klokku/timesheet/pkg/entry_defaults"
	"github.com/klokku/timesheet/pkg/user"
	"github.com/klokku/timesheet/pkg/work_type"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrEntryInvalid = errors.New("invalid timesheet entry")
var ErrEntryLocked = errors.New("timesheet entry is used in payroll and cannot be changed")

type Service interface {
	// CreateEntry stores a new entry. Fields left at their zero value are taken from the user's
	// entry defaults.
	CreateEntry(ctx context.Context, entry Entry) (Entry, error)
	GetEntry(ctx context.Context, entryId int) (Entry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error)
	UpdateEntry(ctx context.Context, entry Entry) (Entry, error)
	DeleteEntry(ctx context.Context, entryId int) (bool, error)
	// SplitAsNeeded splits the entry in two when hoursToSpend is strictly between zero and its
	// quantity. The updated entry and its copy are stored in one transaction. Returns false,
	// without error, when no split was needed.
	SplitAsNeeded(ctx context.Context, entryId int, hoursToSpend decimal.Decimal, foodDaysRest int) (SplitResult, bool, error)
	ExportCsv(ctx context.Context, filter EntryFilter) (string, error)
}

type ServiceImpl struct {
	repo        Repository
	workTypes   work_type.Service
	defaults    entry_defaults.Service
	eventBus    *event_bus.EventBus
	csvRenderer CsvRenderer
}

func NewService(
	repo Repository,
	workTypes work_type.Service,
	defaults entry_defaults.Service,
	eventBus *event_bus.EventBus,
	csvRenderer CsvRenderer,
) *ServiceImpl {
	return &ServiceImpl{
		repo:        repo,
		workTypes:   workTypes,
		defaults:    defaults,
		eventBus:    eventBus,
		csvRenderer: csvRenderer,
	}
}

func (s *ServiceImpl) CreateEntry(ctx context.Context, entry Entry) (Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	defaults, err := s.defaults.Resolve(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to resolve entry defaults: %w", err)
	}
	entry = applyDefaults(entry, defaults)

	entry, err = s.validate(ctx, entry)
	if err != nil {
		return Entry{}, err
	}

	id, err := s.repo.StoreEntry(ctx, userId, entry)
	if err != nil {
		return Entry{}, err
	}
	log.Debugf("created timesheet entry %d for user %d", id, userId)
	return s.repo.GetEntry(ctx, userId, id)
}

func (s *ServiceImpl) GetEntry(ctx context.Context, entryId int) (Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEntry(ctx, userId, entryId)
}

func (s *ServiceImpl) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListEntries(ctx, userId, filter)
}

func (s *ServiceImpl) UpdateEntry(ctx context.Context, entry Entry) (Entry, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var previous, updated Entry
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		previous, err = repo.GetEntry(ctx, userId, entry.Id)
		if err != nil {
			return err
		}
		if previous.Locked() {
			return ErrEntryLocked
		}
		entry, err = s.validate(ctx, entry)
		if err != nil {
			return err
		}
		ok, err := repo.UpdateEntry(ctx, userId, entry)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEntryLocked
		}
		updated, err = repo.GetEntry(ctx, userId, entry.Id)
		return err
	})
	if err != nil {
		return Entry{}, err
	}

	// the update is committed, subscribers cannot undo it
	err = s.eventBus.Publish(event_bus.NewEvent(
		ctx,
		event_bus.TimesheetEntryUpdatedEvent,
		event_bus.TimesheetEntryUpdated{
			UserId:  userId,
			EntryId: updated.Id,
			Date:    previous.Date,
		},
	))
	if err != nil {
		log.Errorf("failed to publish timesheet entry update event for entry %d: %v", updated.Id, err)
	}
	return updated, nil
}

func (s *ServiceImpl) DeleteEntry(ctx context.Context, entryId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deleted := false
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		entry, err := repo.GetEntry(ctx, userId, entryId)
		if err != nil {
			if errors.Is(err, ErrEntryNotFound) {
				return nil
			}
			return err
		}
		if entry.Locked() {
			return ErrEntryLocked
		}
		deleted, err = repo.DeleteEntry(ctx, userId, entryId)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *ServiceImpl) SplitAsNeeded(ctx context.Context, entryId int, hoursToSpend decimal.Decimal, foodDaysRest int) (SplitResult, bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return SplitResult{}, false, fmt.Errorf("failed to get current user: %w", err)
	}

	if !fitsQuantityScale(hoursToSpend) {
		return SplitResult{}, false, fmt.Errorf("%w: hours to spend must not have more than %d decimal places",
			ErrEntryInvalid, quantityScale)
	}

	var (
		result SplitResult
		split  bool
		date   time.Time
	)
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		entry, err := repo.GetEntry(ctx, userId, entryId)
		if err != nil {
			return err
		}
		result, split, err = Split(entry, hoursToSpend, foodDaysRest, s.variantResolver(ctx))
		if err != nil || !split {
			return err
		}
		if entry.Locked() {
			return ErrEntryLocked
		}
		date = entry.Date

		ok, err := repo.UpdateEntry(ctx, userId, result.First)
		if err != nil {
			return err
		}
		if !ok {
			return ErrEntryLocked
		}
		copyId, err := repo.CopyEntry(ctx, userId, entry.Id, CopyOverrides{
			WorkType: result.Second.WorkType,
			Quantity: result.Second.Quantity,
			Label:    result.Second.Label,
		})
		if err != nil {
			return err
		}
		if result.First, err = repo.GetEntry(ctx, userId, entry.Id); err != nil {
			return err
		}
		result.Second, err = repo.GetEntry(ctx, userId, copyId)
		return err
	})
	if err != nil {
		return SplitResult{}, false, err
	}
	if !split {
		log.Debugf("timesheet entry %d not split, %s hours to spend", entryId, hoursToSpend)
		return SplitResult{}, false, nil
	}
	log.Debugf("timesheet entry %d split into %s + %s hours, copy %d",
		entryId, result.First.Quantity, result.Second.Quantity, result.Second.Id)

	err = s.eventBus.Publish(event_bus.NewEvent(
		ctx,
		event_bus.TimesheetEntrySplitEvent,
		event_bus.TimesheetEntrySplit{
			UserId:        userId,
			EntryId:       result.First.Id,
			CopiedEntryId: result.Second.Id,
			Date:          date,
		},
	))
	if err != nil {
		log.Errorf("failed to publish timesheet entry split event for entry %d: %v", result.First.Id, err)
	}
	return result, true, nil
}

func (s *ServiceImpl) ExportCsv(ctx context.Context, filter EntryFilter) (string, error) {
	entries, err := s.ListEntries(ctx, filter)
	if err != nil {
		return "", err
	}
	return s.csvRenderer.RenderEntries(entries)
}

// variantResolver looks up work types only when a food entry is split, and only the pair of that
// entry's work type.
func (s *ServiceImpl) variantResolver(ctx context.Context) VariantResolver {
	return VariantResolverFunc(func(wt work_type.WorkType) (work_type.WorkType, error) {
		return s.workTypes.WithoutFoodVariant(ctx, wt)
	})
}

func (s *ServiceImpl) validate(ctx context.Context, entry Entry) (Entry, error) {
	if entry.WorkType.Id == 0 {
		return Entry{}, fmt.Errorf("%w: work type is required", ErrEntryInvalid)
	}
	if entry.Date.IsZero() {
		return Entry{}, fmt.Errorf("%w: date is required", ErrEntryInvalid)
	}
	if entry.Quantity.IsNegative() {
		return Entry{}, fmt.Errorf("%w: quantity must not be negative", ErrEntryInvalid)
	}
	if !fitsQuantityScale(entry.Quantity) {
		return Entry{}, fmt.Errorf("%w: quantity must not have more than %d decimal places", ErrEntryInvalid, quantityScale)
	}
	workType, err := s.workTypes.GetWorkType(ctx, entry.WorkType.Id)
	if err != nil {
		if errors.Is(err, work_type.ErrWorkTypeNotFound) {
			return Entry{}, fmt.Errorf("%w: %w", ErrEntryInvalid, err)
		}
		return Entry{}, err
	}
	entry.WorkType = workType
	entry.Date = dateOnly(entry.Date)
	return entry, nil
}

func applyDefaults(entry Entry, defaults entry_defaults.Defaults) Entry {
	if entry.ProjectId == 0 {
		entry.ProjectId = defaults.ProjectId
	}
	if entry.TaskId == 0 {
		entry.TaskId = defaults.TaskId
	}
	if entry.Date.IsZero() {
		entry.Date = defaults.Date
	}
	if entry.EmployeeId == 0 {
		entry.EmployeeId = defaults.EmployeeId
	}
	if entry.WorkType.Id == 0 {
		entry.WorkType.Id = defaults.WorkTypeId
	}
	if entry.Quantity.IsZero() && defaults.UnitAmount.Valid {
		entry.Quantity = defaults.UnitAmount.Decimal
	}
	return entry
}
