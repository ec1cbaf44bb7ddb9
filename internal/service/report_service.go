package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/knowshare/knowshare-api/internal/model"
	"github.com/knowshare/knowshare-api/internal/repository"
	"github.com/knowshare/knowshare-api/pkg/apperror"
	"gorm.io/gorm"
)

type CreateReportRequest struct {
	ReportableType string  `json:"reportable_type" binding:"required,oneof=question answer user"`
	ReportableID   string  `json:"reportable_id" binding:"required,uuid"`
	Reason         string  `json:"reason" binding:"required,oneof=spam harassment inappropriate copyright other"`
	Description    *string `json:"description" binding:"omitempty,max=1000"`
}

type ReviewReportRequest struct {
	Status     string  `json:"status" binding:"required,oneof=pending reviewed resolved dismissed"`
	AdminNotes *string `json:"admin_notes" binding:"omitempty,max=2000"`
}

type PagedReports struct {
	Items []model.Report `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type ReportService interface {
	Create(ctx context.Context, reporterID uuid.UUID, req CreateReportRequest) (*model.Report, error)
	List(ctx context.Context, status string, page, limit int) (*PagedReports, error)
	Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, req ReviewReportRequest) (*model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reportService struct {
	db         *gorm.DB
	reportRepo repository.ReportRepository
}

func NewReportService(db *gorm.DB, reportRepo repository.ReportRepository) ReportService {
	return &reportService{
		db:         db,
		reportRepo: reportRepo,
	}
}

func (s *reportService) Create(ctx context.Context, reporterID uuid.UUID, req CreateReportRequest) (*model.Report, error) {
	reportableType := model.ReportableType(req.ReportableType)
	reportableID, err := uuid.Parse(req.ReportableID)
	if err != nil {
		return nil, fmt.Errorf("invalid reportable id: %w", apperror.ErrInvalidInput)
	}

	if err := s.ensureReportableExists(ctx, reportableType, reportableID); err != nil {
		return nil, err
	}

	exists, err := s.reportRepo.Exists(ctx, reporterID, reportableType, reportableID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you have already reported this content: %w", apperror.ErrDuplicate)
	}

	report := &model.Report{
		ReporterID:     reporterID,
		ReportableType: reportableType,
		ReportableID:   reportableID,
		Reason:         req.Reason,
		Description:    req.Description,
		Status:         model.ReportPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		// A racing duplicate insert trips the unique index instead of the
		// existence check above; report it the same way.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("you have already reported this content: %w", apperror.ErrDuplicate)
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) ensureReportableExists(ctx context.Context, reportableType model.ReportableType, id uuid.UUID) error {
	var err error
	switch reportableType {
	case model.ReportableQuestion:
		_, err = repository.NewQuestionRepository(s.db).FindByID(ctx, id)
	case model.ReportableAnswer:
		_, err = repository.NewAnswerRepository(s.db).FindByID(ctx, id)
	case model.ReportableUser:
		_, err = repository.NewUserRepository(s.db).FindByID(ctx, id)
	default:
		return fmt.Errorf("unknown reportable type %q: %w", reportableType, apperror.ErrInvalidInput)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reported entity not found: %w", apperror.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *reportService) List(ctx context.Context, status string, page, limit int) (*PagedReports, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var filter model.ReportStatus
	switch status {
	case "", "all":
		filter = ""
	case string(model.ReportPending), string(model.ReportReviewed), string(model.ReportResolved), string(model.ReportDismissed):
		filter = model.ReportStatus(status)
	default:
		return nil, fmt.Errorf("unknown report status %q: %w", status, apperror.ErrInvalidInput)
	}

	reports, total, err := s.reportRepo.ListByStatus(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &PagedReports{Items: reports, Total: total, Page: page, Limit: limit}, nil
}

func (s *reportService) Review(ctx context.Context, id uuid.UUID, reviewerID uuid.UUID, req ReviewReportRequest) (*model.Report, error) {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("report %s: %w", id, apperror.ErrNotFound)
		}
		return nil, err
	}

	now := time.Now()
	report.Status = model.ReportStatus(req.Status)
	report.AdminNotes = req.AdminNotes
	report.ReviewerID = &reviewerID
	report.ReviewedAt = &now

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.reportRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("report %s: %w", id, apperror.ErrNotFound)
		}
		return err
	}
	return s.reportRepo.Delete(ctx, id)
}
