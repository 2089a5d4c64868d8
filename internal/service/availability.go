package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/repository"
)

var (
	ErrBlockNotFound      = repository.ErrBlockNotFound
	ErrBlockLocked        = repository.ErrBlockLocked
	ErrMonthHasBookings   = repository.ErrMonthHasBookings
	ErrBlockExists        = repository.ErrBlockExists
	ErrNoTutorSubjects    = errors.New("the tutor has no assigned subjects")
	ErrInvalidBlock       = errors.New("invalid availability block")
	ErrDuplicateBlock     = errors.New("the template has two blocks on the same day and hour")
	ErrEmptyTemplate      = errors.New("a weekly template is required before generating the month")
	ErrRegistrationClosed = errors.New("the registration deadline for the month has passed")
	ErrInvalidMonth       = errors.New("invalid month")
	ErrInvalidDateRange   = errors.New("the start date must not be after the end date")
)

var (
	dayOpens  = domain.NewClock(6, 0)
	dayCloses = domain.NewClock(22, 0)
)

const blockLength = time.Hour

type AvailabilityRepository interface {
	ReplaceWeekly(ctx context.Context, tutorID uint, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error)
	FindWeekly(ctx context.Context, tutorID uint) ([]domain.WeeklyBlock, error)
	// ReplaceMonth and FindMonthly work on the half-open range [from, to).
	ReplaceMonth(ctx context.Context, tutorID uint, from, to domain.Date, blocks []domain.MonthlyBlock) (int, error)
	FindMonthly(ctx context.Context, tutorID uint, from, to domain.Date) ([]domain.MonthlyBlock, error)
	FindBlockByID(ctx context.Context, id uint) (domain.MonthlyBlock, error)
	DeleteBlock(ctx context.Context, id uint) error
	UpdateModality(ctx context.Context, id uint, modality domain.Modality) (domain.MonthlyBlock, error)
	FindAvailableBySubject(ctx context.Context, subjectID uint, from, to domain.Date) ([]domain.MonthlyBlock, error)
}

type TutorSubjectCounter interface {
	CountTutorSubjects(ctx context.Context, tutorID uint) (int, error)
}

type AvailabilityService struct {
	repo     AvailabilityRepository
	subjects TutorSubjectCounter
	now      func() time.Time
	loc      *time.Location
}

func NewAvailabilityService(repo AvailabilityRepository, subjects TutorSubjectCounter, loc *time.Location) *AvailabilityService {
	return &AvailabilityService{
		repo:     repo,
		subjects: subjects,
		now:      time.Now,
		loc:      loc,
	}
}

func (s *AvailabilityService) today() domain.Date {
	return domain.DateOf(s.now().In(s.loc))
}

// RegistrationDeadline is the last day a tutor may generate the blocks of a month.
func RegistrationDeadline(year int, month time.Month) domain.Date {
	first, _ := domain.MonthBounds(year, month)
	return first.AddDays(-1)
}

func validateWeeklyBlock(b domain.WeeklyBlock) error {
	switch {
	case !b.Day.Valid():
		return fmt.Errorf("%w: unknown day %q", ErrInvalidBlock, b.Day)
	case !b.Modality.Valid():
		return fmt.Errorf("%w: unknown modality %q", ErrInvalidBlock, b.Modality)
	case b.Start < dayOpens || b.End > dayCloses:
		return fmt.Errorf("%w: blocks must fall between %s and %s", ErrInvalidBlock, dayOpens, dayCloses)
	case b.Start.Add(blockLength) != b.End:
		return fmt.Errorf("%w: blocks must last exactly one hour", ErrInvalidBlock)
	}

	return nil
}

func (s *AvailabilityService) SaveWeeklyTemplate(ctx context.Context, tutorID uint, blocks []domain.WeeklyBlock) ([]domain.WeeklyBlock, error) {
	count, err := s.subjects.CountTutorSubjects(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("s.subjects.CountTutorSubjects -> %w", err)
	}
	if count == 0 {
		return nil, ErrNoTutorSubjects
	}

	type slot struct {
		day   domain.DayOfWeek
		start domain.Clock
	}
	seen := make(map[slot]bool, len(blocks))
	for _, b := range blocks {
		if err = validateWeeklyBlock(b); err != nil {
			return nil, err
		}

		key := slot{b.Day, b.Start}
		if seen[key] {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateBlock, b.Day, b.Start)
		}
		seen[key] = true
	}

	saved, err := s.repo.ReplaceWeekly(ctx, tutorID, blocks)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ReplaceWeekly -> %w", err)
	}
	sortWeekly(saved)

	return saved, nil
}

func (s *AvailabilityService) WeeklyTemplate(ctx context.Context, tutorID uint) ([]domain.WeeklyBlock, error) {
	blocks, err := s.repo.FindWeekly(ctx, tutorID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindWeekly -> %w", err)
	}
	sortWeekly(blocks)

	return blocks, nil
}

func sortWeekly(blocks []domain.WeeklyBlock) {
	order := make(map[domain.DayOfWeek]int, 7)
	for i, d := range domain.DaysOfWeek() {
		order[d] = i
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Day != blocks[j].Day {
			return order[blocks[i].Day] < order[blocks[j].Day]
		}
		return blocks[i].Start < blocks[j].Start
	})
}

func checkMonth(year int, month time.Month) error {
	if month < time.January || month > time.December || year < 2000 || year > 9999 {
		return fmt.Errorf("%w: %d/%d", ErrInvalidMonth, month, year)
	}

	return nil
}

// GenerateMonthly expands the weekly template into dated blocks for the month,
// replacing any blocks the month already had.
func (s *AvailabilityService) GenerateMonthly(ctx context.Context, tutorID uint, year int, month time.Month) (domain.GenerationResult, error) {
	if err := checkMonth(year, month); err != nil {
		return domain.GenerationResult{}, err
	}

	deadline := RegistrationDeadline(year, month)
	if s.today().After(deadline) {
		return domain.GenerationResult{}, fmt.Errorf("%w: the deadline for %d/%d was %s", ErrRegistrationClosed, month, year, deadline)
	}

	template, err := s.repo.FindWeekly(ctx, tutorID)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("s.repo.FindWeekly -> %w", err)
	}
	if len(template) == 0 {
		return domain.GenerationResult{}, ErrEmptyTemplate
	}
	sortWeekly(template)

	first, next := domain.MonthBounds(year, month)
	var blocks []domain.MonthlyBlock
	for day := first; day.Before(next); day = day.AddDays(1) {
		dow := domain.DayOf(day.Weekday())
		for _, t := range template {
			if t.Day != dow {
				continue
			}
			blocks = append(blocks, domain.MonthlyBlock{
				TutorID:  tutorID,
				Date:     day,
				Start:    t.Start,
				End:      t.End,
				Modality: t.Modality,
				Status:   domain.BlockAvailable,
				Origin:   domain.OriginTemplate,
			})
		}
	}

	generated, err := s.repo.ReplaceMonth(ctx, tutorID, first, next, blocks)
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("s.repo.ReplaceMonth -> %w", err)
	}

	return domain.GenerationResult{
		Success:   true,
		Message:   fmt.Sprintf("availability generated for %d/%d", month, year),
		Generated: generated,
		Deadline:  deadline,
	}, nil
}

func (s *AvailabilityService) Monthly(ctx context.Context, tutorID uint, year int, month time.Month) ([]domain.MonthlyBlock, error) {
	if err := checkMonth(year, month); err != nil {
		return nil, err
	}

	first, next := domain.MonthBounds(year, month)
	blocks, err := s.repo.FindMonthly(ctx, tutorID, first, next)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindMonthly -> %w", err)
	}

	return blocks, nil
}

func (s *AvailabilityService) ValidateMonth(ctx context.Context, tutorID uint, year int, month time.Month) (domain.MonthValidation, error) {
	blocks, err := s.Monthly(ctx, tutorID, year, month)
	if err != nil {
		return domain.MonthValidation{}, err
	}

	count, err := s.subjects.CountTutorSubjects(ctx, tutorID)
	if err != nil {
		return domain.MonthValidation{}, fmt.Errorf("s.subjects.CountTutorSubjects -> %w", err)
	}

	result := domain.MonthValidation{
		Valid:                 true,
		Errors:                []string{},
		Warnings:              []string{},
		BlocksWithoutModality: []domain.BlockRef{},
	}
	if len(blocks) == 0 {
		result.Errors = append(result.Errors, "there are no availability blocks for the month")
	}
	if count == 0 {
		result.Errors = append(result.Errors, "the tutor has no assigned subjects")
	}

	sundays := 0
	for _, b := range blocks {
		if !b.Modality.Valid() {
			result.BlocksWithoutModality = append(result.BlocksWithoutModality, domain.BlockRef{
				ID: b.ID, Date: b.Date, Start: b.Start, End: b.End,
			})
		}
		if b.Date.Weekday() == time.Sunday {
			sundays++
		}
	}
	if len(result.BlocksWithoutModality) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("%d blocks have no modality", len(result.BlocksWithoutModality)))
	}
	if sundays > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%d blocks fall on a Sunday, resting is recommended", sundays))
	}
	result.Valid = len(result.Errors) == 0

	return result, nil
}

func (s *AvailabilityService) ownBlock(ctx context.Context, tutorID, blockID uint) (domain.MonthlyBlock, error) {
	block, err := s.repo.FindBlockByID(ctx, blockID)
	if err != nil {
		return domain.MonthlyBlock{}, fmt.Errorf("s.repo.FindBlockByID -> %w", err)
	}
	if block.TutorID != tutorID {
		return domain.MonthlyBlock{}, ErrPermissionDenied
	}
	if block.Status.Locked() {
		return domain.MonthlyBlock{}, ErrBlockLocked
	}

	return block, nil
}

func (s *AvailabilityService) DeleteBlock(ctx context.Context, tutorID, blockID uint) error {
	if _, err := s.ownBlock(ctx, tutorID, blockID); err != nil {
		return err
	}

	if err := s.repo.DeleteBlock(ctx, blockID); err != nil {
		return fmt.Errorf("s.repo.DeleteBlock -> %w", err)
	}

	return nil
}

func (s *AvailabilityService) ChangeModality(ctx context.Context, tutorID, blockID uint, modality domain.Modality) (domain.MonthlyBlock, error) {
	if !modality.Valid() {
		return domain.MonthlyBlock{}, fmt.Errorf("%w: unknown modality %q", ErrInvalidBlock, modality)
	}
	if _, err := s.ownBlock(ctx, tutorID, blockID); err != nil {
		return domain.MonthlyBlock{}, err
	}

	updated, err := s.repo.UpdateModality(ctx, blockID, modality)
	if err != nil {
		return domain.MonthlyBlock{}, fmt.Errorf("s.repo.UpdateModality -> %w", err)
	}

	return updated, nil
}

func (s *AvailabilityService) BySubject(ctx context.Context, subjectID uint, from, to domain.Date) ([]domain.MonthlyBlock, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	blocks, err := s.repo.FindAvailableBySubject(ctx, subjectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAvailableBySubject -> %w", err)
	}

	return blocks, nil
}
