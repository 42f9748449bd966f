package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/training-service/internal/metrics"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

const rosterSheet = "Roster"

var rosterHeaders = []string{
	"Registration ID", "Participant", "Registration Status",
	"Payment Status", "Amount", "Payment Reference", "Registered At",
}

type rosterExportService struct {
	repo    repositories.Repository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewRosterExportService(repo repositories.Repository, m *metrics.Metrics, logger *slog.Logger) RosterExportService {
	return &rosterExportService{repo: repo, metrics: m, logger: logger}
}

func (s *rosterExportService) ExportClassRoster(ctx context.Context, classID uint, w io.Writer) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("export_roster", KindOf(err), start) }()

	class, err := s.repo.Class().GetByID(ctx, nil, classID)
	if err != nil {
		return lookupErr("Class", classID, err)
	}

	entries, err := s.repo.Registration().ListRosterByClass(ctx, nil, classID)
	if err != nil {
		return storeErr("list roster", err)
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("Failed to close roster workbook", "error", cerr)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), rosterSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	title := fmt.Sprintf("Class %d (quota %d)", class.ID, class.Quota)
	if err := f.SetCellValue(rosterSheet, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.SetSheetRow(rosterSheet, "A2", &rosterHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		row := []interface{}{
			e.RegistrationID, e.ParticipantName, e.RegStatus,
			e.PaymentStatus, e.Amount, e.PaymentReference,
			e.RegistrationDate.Format(time.RFC3339),
		}
		if err := f.SetSheetRow(rosterSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.InfoContext(ctx, "Roster exported", "class_id", classID, "rows", len(entries))
	return nil
}
