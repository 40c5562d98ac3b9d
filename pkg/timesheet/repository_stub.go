package timesheet

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub keeps entries in memory. Transactions are emulated by restoring a snapshot
// when the function fails.
type RepositoryStub struct {
	nextId  int
	entries map[int]Entry
	payroll map[int]time.Time
	copyErr error
	inTx    bool
}

func NewRepositoryStub() *RepositoryStub {
	stub := &RepositoryStub{}
	stub.Reset()
	return stub
}

func (s *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	entries := maps.Clone(s.entries)
	nextId := s.nextId
	s.inTx = true
	err := fn(s)
	s.inTx = false
	if err != nil {
		s.entries = entries
		s.nextId = nextId
	}
	return err
}

func (s *RepositoryStub) StoreEntry(ctx context.Context, userId int, entry Entry) (int, error) {
	s.nextId++
	entry.Id = s.nextId
	entry.UserId = userId
	if entry.Uid == "" {
		entry.Uid = uuid.NewString()
	}
	entry.InPayroll = nil
	s.entries[entry.Id] = entry
	return entry.Id, nil
}

func (s *RepositoryStub) GetEntry(ctx context.Context, userId int, entryId int) (Entry, error) {
	entry, ok := s.entries[entryId]
	if !ok || entry.UserId != userId {
		return Entry{}, ErrEntryNotFound
	}
	if date, locked := s.payroll[entryId]; locked {
		entry.InPayroll = &date
	}
	return entry, nil
}

func (s *RepositoryStub) ListEntries(ctx context.Context, userId int, filter EntryFilter) ([]Entry, error) {
	var result []Entry
	for id := range s.entries {
		entry, err := s.GetEntry(ctx, userId, id)
		if err != nil {
			continue
		}
		if filter.matches(entry) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Id < result[j].Id
	})
	return result, nil
}

func (s *RepositoryStub) UpdateEntry(ctx context.Context, userId int, entry Entry) (bool, error) {
	stored, err := s.GetEntry(ctx, userId, entry.Id)
	if err != nil || stored.Locked() {
		return false, nil
	}
	entry.Uid = stored.Uid
	entry.UserId = userId
	entry.InPayroll = nil
	s.entries[entry.Id] = entry
	return true, nil
}

func (s *RepositoryStub) CopyEntry(ctx context.Context, userId int, sourceId int, overrides CopyOverrides) (int, error) {
	if s.copyErr != nil {
		return 0, s.copyErr
	}
	source, err := s.GetEntry(ctx, userId, sourceId)
	if err != nil {
		return 0, err
	}
	source.Uid = ""
	source.WorkType = overrides.WorkType
	source.Quantity = overrides.Quantity
	source.Label = overrides.Label
	return s.StoreEntry(ctx, userId, source)
}

func (s *RepositoryStub) DeleteEntry(ctx context.Context, userId int, entryId int) (bool, error) {
	entry, err := s.GetEntry(ctx, userId, entryId)
	if err != nil || entry.Locked() {
		return false, nil
	}
	delete(s.entries, entryId)
	return true, nil
}

// LockInPayroll marks the entry as consumed by a payslip ending on date.
func (s *RepositoryStub) LockInPayroll(entryId int, date time.Time) {
	s.payroll[entryId] = dateOnly(date)
}

// FailCopies makes every following CopyEntry call fail with err until Reset.
func (s *RepositoryStub) FailCopies(err error) {
	s.copyErr = err
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.entries = map[int]Entry{}
	s.payroll = map[int]time.Time{}
	s.copyErr = nil
	s.inTx = false
}
