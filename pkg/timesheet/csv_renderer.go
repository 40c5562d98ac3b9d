package timesheet

import (
	"bytes"
	"encoding/csv"
	"strconv"

	log "github.com/sirupsen/logrus"
)

type CsvRenderer interface {
	RenderEntries(entries []Entry) (string, error)
}

type CsvRendererImpl struct{}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

var csvHeader = []string{"Date", "Employee", "Project", "Task", "Work type", "Hours", "Label", "In payroll"}

func (r *CsvRendererImpl) RenderEntries(entries []Entry) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.Write(csvHeader); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	for _, entry := range entries {
		inPayroll := ""
		if entry.InPayroll != nil {
			inPayroll = entry.InPayroll.Format(dateLayout)
		}
		row := []string{
			entry.Date.Format(dateLayout),
			idToString(entry.EmployeeId),
			idToString(entry.ProjectId),
			idToString(entry.TaskId),
			entry.WorkTypeCode(),
			entry.Quantity.String(),
			entry.Label,
			inPayroll,
		}
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func idToString(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
