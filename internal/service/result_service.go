package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/btesedu/scholarex-backend/internal/model"
	"github.com/btesedu/scholarex-backend/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ResultService exposes per-schedule result listings and spreadsheet
// downloads for the dashboard.
type ResultService struct {
	results   *repository.ResultRepository
	schedules *repository.ScheduleRepository
	students  *repository.StudentRepository
}

// NewResultService creates a new ResultService.
func NewResultService(
	results *repository.ResultRepository,
	schedules *repository.ScheduleRepository,
	students *repository.StudentRepository,
) *ResultService {
	return &ResultService{results: results, schedules: schedules, students: students}
}

// ListBySchedule returns a snapshot's scored students, best score first.
func (s *ResultService) ListBySchedule(ctx context.Context, historyID int, filter model.ResultFilter) ([]repository.ScoredStudent, error) {
	if _, err := s.schedules.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}
	results, err := s.results.ListBySchedule(ctx, historyID, filter)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []repository.ScoredStudent{}
	}
	return results, nil
}

// ExportResults builds an xlsx workbook of a snapshot's results.
func (s *ResultService) ExportResults(ctx context.Context, historyID int, filter model.ResultFilter) (*excelize.File, error) {
	results, err := s.ListBySchedule(ctx, historyID, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []any{"Rank", "Hall Ticket", "Name", "Email", "Mobile", "Score", "Total", "Submitted At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, r := range results {
		cell := "A" + strconv.Itoa(i+2)
		row := []any{
			i + 1, r.HallTicket, r.Name, r.Email, r.MobileNumber,
			r.Score, r.Total, r.SubmittedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// ExportRegistrations builds an xlsx workbook of a snapshot's registered
// students.
func (s *ResultService) ExportRegistrations(ctx context.Context, historyID int) (*excelize.File, error) {
	if _, err := s.schedules.GetHistory(ctx, historyID); err != nil {
		return nil, err
	}
	students, err := s.students.ListBySchedule(ctx, historyID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []any{"Hall Ticket", "Name", "Email", "Mobile", "Stream", "Registered At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, st := range students {
		cell := "A" + strconv.Itoa(i+2)
		row := []any{
			st.HallTicket, st.Name, st.Email, st.MobileNumber,
			string(st.Stream), st.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}
