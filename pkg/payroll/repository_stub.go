package payroll

import (
	"context"
	"sort"
)

// RepositoryStub keeps payslips in memory. Entries are accepted when the owner callback says so.
type RepositoryStub struct {
	nextId     int
	payslips   map[int]Payslip
	owners     map[int]int
	workedDays map[int]WorkedDays
	entryOwner func(entryId int) (userId int, ok bool)
}

func NewRepositoryStub(entryOwner func(entryId int) (int, bool)) *RepositoryStub {
	stub := &RepositoryStub{entryOwner: entryOwner}
	stub.Reset()
	return stub
}

func (s *RepositoryStub) CreatePayslip(ctx context.Context, userId int, payslip Payslip) (Payslip, error) {
	s.nextId++
	payslip.Id = s.nextId
	s.payslips[payslip.Id] = payslip
	s.owners[payslip.Id] = userId
	return payslip, nil
}

func (s *RepositoryStub) GetPayslip(ctx context.Context, userId int, payslipId int) (Payslip, error) {
	payslip, ok := s.payslips[payslipId]
	if !ok || s.owners[payslipId] != userId {
		return Payslip{}, ErrPayslipNotFound
	}
	return payslip, nil
}

func (s *RepositoryStub) DeletePayslip(ctx context.Context, userId int, payslipId int) (bool, error) {
	if _, err := s.GetPayslip(ctx, userId, payslipId); err != nil {
		return false, nil
	}
	delete(s.payslips, payslipId)
	delete(s.owners, payslipId)
	for id, wd := range s.workedDays {
		if wd.PayslipId == payslipId {
			delete(s.workedDays, id)
		}
	}
	return true, nil
}

func (s *RepositoryStub) StoreWorkedDays(ctx context.Context, userId int, workedDays WorkedDays) (WorkedDays, error) {
	if _, err := s.GetPayslip(ctx, userId, workedDays.PayslipId); err != nil {
		return WorkedDays{}, err
	}
	for _, entryId := range workedDays.EntryIds {
		owner, ok := s.entryOwner(entryId)
		if !ok || owner != userId {
			return WorkedDays{}, ErrEntryNotAvailable
		}
	}
	s.nextId++
	workedDays.Id = s.nextId
	s.workedDays[workedDays.Id] = workedDays
	return workedDays, nil
}

func (s *RepositoryStub) ListWorkedDays(ctx context.Context, userId int, payslipId int) ([]WorkedDays, error) {
	if _, err := s.GetPayslip(ctx, userId, payslipId); err != nil {
		return nil, nil
	}
	var result []WorkedDays
	for _, wd := range s.workedDays {
		if wd.PayslipId == payslipId {
			result = append(result, wd)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

// PayrollDate returns the DateTo of the payslip the entry is linked to first.
func (s *RepositoryStub) PayrollDate(entryId int) (Payslip, bool) {
	ids := make([]int, 0, len(s.workedDays))
	for id := range s.workedDays {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		wd := s.workedDays[id]
		for _, linked := range wd.EntryIds {
			if linked == entryId {
				return s.payslips[wd.PayslipId], true
			}
		}
	}
	return Payslip{}, false
}

func (s *RepositoryStub) Reset() {
	s.nextId = 0
	s.payslips = map[int]Payslip{}
	s.owners = map[int]int{}
	s.workedDays = map[int]WorkedDays{}
}
