package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
)

var (
	ErrBlockNotFound    = dao.ErrBlockNotFound
	ErrBlockExists      = dao.ErrBlockExists
	ErrBlockLocked      = dao.ErrBlockLocked
	ErrMonthHasBookings = dao.ErrMonthHasBookings
)

type AvailabilityDAO interface {
	ReplaceWeekly(ctx context.Context, tutorID uint, blocks []dao.WeeklyBlock) ([]dao.WeeklyBlock, error)
	FindWeekly(ctx context.Context, tutorID uint) ([]dao.WeeklyBlock, error)
	ReplaceMonth(ctx context.Context, tutorID uint, from, to time.Time, blocks []dao.MonthlyBlock) (int, error)
	FindMonthly(ctx context.Context, tutorID uint, from, to time.Time) ([]dao.MonthlyBlock, error)
	FindBlockByID(ctx context.Context, id uint) (dao.MonthlyBlock, error)
	DeleteBlock(ctx context.Context, id uint) error
	UpdateModality(ctx context.Context, id uint, modality string) (dao.MonthlyBlock, error)
	FindAvailableBySubject(ctx context.Context, subjectID uint, from, to time.Time) ([]dao.MonthlyBlock, error)
	RevokeTutor(ctx context.Context, tutorID uint, roleName, approvedStatus, revokedStatus string) error
}

type AvailabilityRepository struct {
	dao AvailabilityDAO
}

func NewAvailabilityRepository(dao AvailabilityDAO) *AvailabilityRepository {
	return &AvailabilityRepository{
		dao: dao,
	}
}

func (r *AvailabilityRepository) ReplaceWeekly(ctx context.Context, tutorID uint, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error) {
	rows := make([]dao.WeeklyBlock, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, dao.WeeklyBlock{
			Day:       string(b.Day),
			StartTime: b.Start.String(),
			EndTime:   b.End.String(),
			Modality:  string(b.Modality),
		})
	}

	saved, err := r.dao.ReplaceWeekly(ctx, tutorID, rows)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ReplaceWeekly -> %w", err)
	}

	return weeklyDaoToDomain(saved), nil
}

func (r *AvailabilityRepository) FindWeekly(ctx context.Context, tutorID uint) ([]domain.WeeklyBlock, error) {
	found, err := r.dao.FindWeekly(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindWeekly -> %w", err)
	}

	return weeklyDaoToDomain(found), nil
}

// ReplaceMonth swaps every block of the tutor within [from, to).
func (r *AvailabilityRepository) ReplaceMonth(ctx context.Context, tutorID uint, from, to domain.Date, blocks []domain.MonthlyBlock) (int, error) {
	rows := make([]dao.MonthlyBlock, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, dao.MonthlyBlock{
			TutorID:   tutorID,
			SlotDate:  b.Date.Time(),
			StartTime: b.Start.String(),
			EndTime:   b.End.String(),
			Modality:  string(b.Modality),
			Status:    string(b.Status),
			Origin:    string(b.Origin),
		})
	}

	n, err := r.dao.ReplaceMonth(ctx, tutorID, from.Time(), to.Time(), rows)
	if err != nil {
		return 0, fmt.Errorf("r.dao.ReplaceMonth -> %w", err)
	}

	return n, nil
}

// FindMonthly lists the tutor's blocks within [from, to).
func (r *AvailabilityRepository) FindMonthly(ctx context.Context, tutorID uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	found, err := r.dao.FindMonthly(ctx, tutorID, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindMonthly -> %w", err)
	}

	return monthlyDaoToDomain(found), nil
}

func (r *AvailabilityRepository) FindBlockByID(ctx context.Context, id uint) (domain.MonthlyBlock, error) {
	found, err := r.dao.FindBlockByID(ctx, id)
	if err != nil {
		return domain.MonthlyBlock{}, fmt.Errorf("r.dao.FindBlockByID -> %w", err)
	}

	return monthlyBlockDaoToDomain(found), nil
}

func (r *AvailabilityRepository) DeleteBlock(ctx context.Context, id uint) error {
	if err := r.dao.DeleteBlock(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteBlock -> %w", err)
	}

	return nil
}

func (r *AvailabilityRepository) UpdateModality(ctx context.Context, id uint, modality domain.Modality) (domain.MonthlyBlock, error) {
	updated, err := r.dao.UpdateModality(ctx, id, string(modality))
	if err != nil {
		return domain.MonthlyBlock{}, fmt.Errorf("r.dao.UpdateModality -> %w", err)
	}

	return monthlyBlockDaoToDomain(updated), nil
}

func (r *AvailabilityRepository) FindAvailableBySubject(ctx context.Context, subjectID uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	found, err := r.dao.FindAvailableBySubject(ctx, subjectID, from.Time(), to.Time())
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAvailableBySubject -> %w", err)
	}

	return monthlyDaoToDomain(found), nil
}

func (r *AvailabilityRepository) RevokeTutor(ctx context.Context, tutorID uint) error {
	err := r.dao.RevokeTutor(ctx, tutorID, domain.RoleTutor, string(domain.RequestApproved), string(domain.RequestRevoked))
	if err != nil {
		return fmt.Errorf("r.dao.RevokeTutor -> %w", err)
	}

	return nil
}

func weeklyDaoToDomain(rows []dao.WeeklyBlock) []domain.WeeklyBlock {
	blocks := make([]domain.WeeklyBlock, 0, len(rows))
	for _, row := range rows {
		start, _ := domain.ParseClock(row.StartTime)
		end, _ := domain.ParseClock(row.EndTime)
		blocks = append(blocks, domain.WeeklyBlock{
			ID:       row.ID,
			TutorID:  row.TutorID,
			Day:      domain.DayOfWeek(row.Day),
			Start:    start,
			End:      end,
			Modality: domain.Modality(row.Modality),
		})
	}

	return blocks
}

func monthlyDaoToDomain(rows []dao.MonthlyBlock) []domain.MonthlyBlock {
	blocks := make([]domain.MonthlyBlock, 0, len(rows))
	for _, row := range rows {
		blocks = append(blocks, monthlyBlockDaoToDomain(row))
	}

	return blocks
}

func monthlyBlockDaoToDomain(row dao.MonthlyBlock) domain.MonthlyBlock {
	start, _ := domain.ParseClock(row.StartTime)
	end, _ := domain.ParseClock(row.EndTime)

	return domain.MonthlyBlock{
		ID:        row.ID,
		TutorID:   row.TutorID,
		TutorName: userDaoToDomain(row.Tutor).FullName(),
		Date:      domain.DateOf(row.SlotDate),
		Start:     start,
		End:       end,
		Modality:  domain.Modality(row.Modality),
		Status:    domain.BlockStatus(row.Status),
		Origin:    domain.BlockOrigin(row.Origin),
	}
}
