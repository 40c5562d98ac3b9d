package entry_defaults

import (
	"context"
	"time"
)

type RepositoryStub struct {
	defaults map[int]Defaults
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{defaults: map[int]Defaults{}}
}

func (s *RepositoryStub) GetDefaults(ctx context.Context, userId int) (Defaults, error) {
	defaults, ok := s.defaults[userId]
	if !ok {
		return Defaults{}, ErrDefaultsNotFound
	}
	return defaults, nil
}

func (s *RepositoryStub) StoreDefaults(ctx context.Context, userId int, defaults Defaults) error {
	s.defaults[userId] = defaults
	return nil
}

func (s *RepositoryStub) AdvanceDate(ctx context.Context, userId int, date time.Time) (bool, error) {
	defaults, ok := s.defaults[userId]
	if !ok {
		return false, nil
	}
	defaults.Date = date
	s.defaults[userId] = defaults
	return true, nil
}

func (s *RepositoryStub) Reset() {
	s.defaults = map[int]Defaults{}
}
