package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
	"github.com/Gopher0727/Himo/internal/store"
)

// IReportService handles abuse reports. Anyone may file; only admins may
// list or resolve.
type IReportService interface {
	FileReport(ctx context.Context, reporterID, reportedUserID int64, reason string) (*model.Report, error)
	ResolveReport(ctx context.Context, actorID, reportID int64) (*model.Report, error)
	ListReports(ctx context.Context, actorID int64, status model.ReportStatus) ([]model.Report, error)
}

type ReportService struct {
	store  store.IStore
	clock  Clock
	logger *zap.Logger
}

func NewReportService(st store.IStore, clock Clock, logger *zap.Logger) IReportService {
	return &ReportService{store: st, clock: clock, logger: logger}
}

func (s *ReportService) FileReport(ctx context.Context, reporterID, reportedUserID int64, reason string) (*model.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyInput
	}
	if reporterID == reportedUserID {
		return nil, ErrSelfAction
	}

	var created model.Report
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if c.UserByID(reporterID) == nil || c.UserByID(reportedUserID) == nil {
			return ErrNotFound
		}
		created = model.Report{
			ID:             c.NextReportID(),
			ReporterID:     reporterID,
			ReportedUserID: reportedUserID,
			Reason:         reason,
			Timestamp:      stamp(s.clock),
			Status:         model.ReportPending,
		}
		c.Reports = append(c.Reports, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Report filed",
		zap.Int64("report_id", created.ID),
		zap.Int64("reported_user_id", reportedUserID),
	)
	return &created, nil
}

// ResolveReport moves a report to resolved. Resolving twice is a no-op.
func (s *ReportService) ResolveReport(ctx context.Context, actorID, reportID int64) (*model.Report, error) {
	var report model.Report
	err := s.store.Update(ctx, func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		r := c.ReportByID(reportID)
		if r == nil {
			return ErrNotFound
		}
		r.Status = model.ReportResolved
		report = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports returns reports in filing order; an empty status means all.
func (s *ReportService) ListReports(_ context.Context, actorID int64, status model.ReportStatus) ([]model.Report, error) {
	var reports []model.Report
	err := s.store.View(func(c *store.Collections) error {
		if err := requireAdmin(c, actorID); err != nil {
			return err
		}
		for _, r := range c.Reports {
			if status == "" || r.Status == status {
				reports = append(reports, r)
			}
		}
		return nil
	})
	return reports, err
}
