package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/Gopher0727/Himo/internal/model"
)

// Admin panel operations act as the signed-in user; the services decide
// whether that user may.

func (s *Session) BanUser(ctx context.Context, userID int64) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Moderation.BanUser(ctx, id, userID)
}

func (s *Session) UnbanUser(ctx context.Context, userID int64) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Moderation.UnbanUser(ctx, id, userID)
}

func (s *Session) PromoteToAdmin(ctx context.Context, userID int64) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Moderation.PromoteToAdmin(ctx, id, userID)
}

func (s *Session) VerifyUser(ctx context.Context, userID int64) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Moderation.VerifyUser(ctx, id, userID)
}

func (s *Session) DeleteUser(ctx context.Context, userID int64) error {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return err
	}
	if err := s.svc.Moderation.DeleteUser(ctx, id, userID); err != nil {
		s.log.WarnContext(ctx, "Delete rejected", zap.Int64("target", userID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Session) Users(ctx context.Context) ([]model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Moderation.ListUsers(ctx, id)
}

func (s *Session) CreatePrefix(ctx context.Context, name, color, emoji string) (*model.Prefix, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Prefixes.CreatePrefix(ctx, id, name, color, emoji)
}

func (s *Session) AssignPrefix(ctx context.Context, userID int64, prefixName string) (*model.User, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Prefixes.AssignPrefix(ctx, id, userID, prefixName)
}

func (s *Session) Prefixes(ctx context.Context) ([]model.Prefix, error) {
	ctx, _, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Prefixes.ListPrefixes(ctx)
}

// FileReport is open to every signed-in user.
func (s *Session) FileReport(ctx context.Context, reportedUserID int64, reason string) (*model.Report, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Reports.FileReport(ctx, id, reportedUserID, reason)
}

func (s *Session) ResolveReport(ctx context.Context, reportID int64) (*model.Report, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Reports.ResolveReport(ctx, id, reportID)
}

func (s *Session) Reports(ctx context.Context, status model.ReportStatus) ([]model.Report, error) {
	ctx, id, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}
	return s.svc.Reports.ListReports(ctx, id, status)
}
