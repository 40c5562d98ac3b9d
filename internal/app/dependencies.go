package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/timesheet/internal/config"
	"github.com/klokku/timesheet/internal/event_bus"
	"github.com/klokku/timesheet/internal/utils"
	"github.com/klokku/timesheet/pkg/entry_defaults"
	"github.com/klokku/timesheet/pkg/payroll"
	"github.com/klokku/timesheet/pkg/timesheet"
	"github.com/klokku/timesheet/pkg/user"
	"github.com/klokku/timesheet/pkg/work_type"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	EventBus *event_bus.EventBus
	Clock    utils.Clock

	UserService user.Service
	UserHandler *user.Handler

	WorkTypeService *work_type.ServiceImpl
	WorkTypeHandler *work_type.Handler

	EntryDefaultsService *entry_defaults.ServiceImpl
	EntryDefaultsHandler *entry_defaults.Handler

	PayrollService *payroll.ServiceImpl
	PayrollHandler *payroll.Handler

	TimesheetRepo    *timesheet.RepositoryImpl
	TimesheetService *timesheet.ServiceImpl
	TimesheetHandler *timesheet.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.EventBus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.WorkTypeService = work_type.NewService(work_type.NewRepository(db), cfg.WorkType.FoodPairs)
	deps.WorkTypeHandler = work_type.NewHandler(deps.WorkTypeService)

	deps.EntryDefaultsService = entry_defaults.NewService(entry_defaults.NewRepository(db), deps.EventBus, deps.Clock)
	deps.EntryDefaultsHandler = entry_defaults.NewHandler(deps.EntryDefaultsService)

	deps.PayrollService = payroll.NewService(payroll.NewRepository(db))
	deps.PayrollHandler = payroll.NewHandler(deps.PayrollService)

	deps.TimesheetRepo = timesheet.NewRepository(db)
	deps.TimesheetService = timesheet.NewService(
		deps.TimesheetRepo,
		deps.WorkTypeService,
		deps.EntryDefaultsService,
		deps.EventBus,
		timesheet.NewCsvRenderer(),
	)
	deps.TimesheetHandler = timesheet.NewHandler(deps.TimesheetService)

	return deps
}
