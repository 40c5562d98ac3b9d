package payroll

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/klokku/timesheet/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrPayslipInvalid = errors.New("invalid payslip")
var ErrWorkedDaysInvalid = errors.New("invalid worked days")

type Service interface {
	CreatePayslip(ctx context.Context, payslip Payslip) (Payslip, error)
	GetPayslip(ctx context.Context, payslipId int) (Payslip, error)
	// DeletePayslip removes the payslip with its worked days, which unlocks the linked entries.
	DeletePayslip(ctx context.Context, payslipId int) (bool, error)
	AddWorkedDays(ctx context.Context, workedDays WorkedDays) (WorkedDays, error)
	ListWorkedDays(ctx context.Context, payslipId int) ([]WorkedDays, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) CreatePayslip(ctx context.Context, payslip Payslip) (Payslip, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to get current user: %w", err)
	}
	payslip.Name = strings.TrimSpace(payslip.Name)
	if payslip.Name == "" {
		return Payslip{}, fmt.Errorf("%w: name is required", ErrPayslipInvalid)
	}
	if payslip.DateFrom.IsZero() || payslip.DateTo.IsZero() {
		return Payslip{}, fmt.Errorf("%w: period is required", ErrPayslipInvalid)
	}
	if payslip.DateTo.Before(payslip.DateFrom) {
		return Payslip{}, fmt.Errorf("%w: period ends before it starts", ErrPayslipInvalid)
	}
	return s.repo.CreatePayslip(ctx, userId, payslip)
}

func (s *ServiceImpl) GetPayslip(ctx context.Context, payslipId int) (Payslip, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetPayslip(ctx, userId, payslipId)
}

func (s *ServiceImpl) DeletePayslip(ctx context.Context, payslipId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	deleted, err := s.repo.DeletePayslip(ctx, userId, payslipId)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Infof("payslip %d deleted, its timesheet entries are unlocked", payslipId)
	}
	return deleted, nil
}

func (s *ServiceImpl) AddWorkedDays(ctx context.Context, workedDays WorkedDays) (WorkedDays, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return WorkedDays{}, fmt.Errorf("failed to get current user: %w", err)
	}
	workedDays.Code = strings.TrimSpace(workedDays.Code)
	if workedDays.Code == "" {
		return WorkedDays{}, fmt.Errorf("%w: code is required", ErrWorkedDaysInvalid)
	}
	if workedDays.Hours.IsNegative() {
		return WorkedDays{}, fmt.Errorf("%w: hours must not be negative", ErrWorkedDaysInvalid)
	}
	workedDays.EntryIds = uniqueIds(workedDays.EntryIds)
	if len(workedDays.EntryIds) == 0 {
		return WorkedDays{}, fmt.Errorf("%w: at least one timesheet entry is required", ErrWorkedDaysInvalid)
	}
	stored, err := s.repo.StoreWorkedDays(ctx, userId, workedDays)
	if err != nil {
		return WorkedDays{}, err
	}
	log.Debugf("linked %d timesheet entries to payslip %d", len(stored.EntryIds), stored.PayslipId)
	return stored, nil
}

func (s *ServiceImpl) ListWorkedDays(ctx context.Context, payslipId int) ([]WorkedDays, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.repo.GetPayslip(ctx, userId, payslipId); err != nil {
		return nil, err
	}
	return s.repo.ListWorkedDays(ctx, userId, payslipId)
}

func uniqueIds(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Ints(unique)
	return unique
}
