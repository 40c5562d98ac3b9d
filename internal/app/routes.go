package app

import (
	"github.com/gorilla/mux"
	"github.com/klokku/timesheet/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")

	// Work types
	r.HandleFunc("/api/worktype", deps.WorkTypeHandler.ListWorkTypes).Methods("GET")
	r.HandleFunc("/api/worktype", deps.WorkTypeHandler.CreateWorkType).Methods("POST")
	r.HandleFunc("/api/worktype/catalog/validation", deps.WorkTypeHandler.ValidateCatalog).Methods("GET")

	// Entry defaults
	r.HandleFunc("/api/timesheet/defaults", deps.EntryDefaultsHandler.GetDefaults).Methods("GET")
	r.HandleFunc("/api/timesheet/defaults", deps.EntryDefaultsHandler.StoreDefaults).Methods("PUT")

	// Timesheet
	r.HandleFunc("/api/timesheet", deps.TimesheetHandler.CreateEntry).Methods("POST")
	r.HandleFunc("/api/timesheet", deps.TimesheetHandler.ListEntries).Methods("GET")
	r.HandleFunc("/api/timesheet/export", deps.TimesheetHandler.ExportCsv).Methods("GET")
	r.HandleFunc("/api/timesheet/{entryId:[0-9]+}", deps.TimesheetHandler.GetEntry).Methods("GET")
	r.HandleFunc("/api/timesheet/{entryId:[0-9]+}", deps.TimesheetHandler.UpdateEntry).Methods("PUT")
	r.HandleFunc("/api/timesheet/{entryId:[0-9]+}", deps.TimesheetHandler.DeleteEntry).Methods("DELETE")
	r.HandleFunc("/api/timesheet/{entryId:[0-9]+}/split", deps.TimesheetHandler.SplitEntry).Methods("POST")

	// Payroll
	r.HandleFunc("/api/payslip", deps.PayrollHandler.CreatePayslip).Methods("POST")
	r.HandleFunc("/api/payslip/{payslipId:[0-9]+}", deps.PayrollHandler.GetPayslip).Methods("GET")
	r.HandleFunc("/api/payslip/{payslipId:[0-9]+}", deps.PayrollHandler.DeletePayslip).Methods("DELETE")
	r.HandleFunc("/api/payslip/{payslipId:[0-9]+}/workeddays", deps.PayrollHandler.AddWorkedDays).Methods("POST")
	r.HandleFunc("/api/payslip/{payslipId:[0-9]+}/workeddays", deps.PayrollHandler.ListWorkedDays).Methods("GET")
}
