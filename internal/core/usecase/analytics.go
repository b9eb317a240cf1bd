package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

type AnalyticsUseCase struct {
	repo     ports.PetitionRepository
	renderer ports.ReportRenderer
	storage  ports.ReportStorage
	now      func() time.Time
}

func NewAnalyticsUseCase(
	repo ports.PetitionRepository,
	renderer ports.ReportRenderer,
	storage ports.ReportStorage,
) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		repo:     repo,
		renderer: renderer,
		storage:  storage,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UrgencyDistribution returns one entry per tier, most urgent first, including empty tiers.
func (uc *AnalyticsUseCase) UrgencyDistribution(ctx context.Context) ([]domain.UrgencyCount, error) {
	counts, err := uc.repo.UrgencyDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("urgency distribution: %w", err)
	}
	byLevel := make(map[domain.UrgencyLevel]int, len(counts))
	for _, c := range counts {
		byLevel[c.Urgency] += c.Count
	}
	levels := domain.UrgencyLevels()
	out := make([]domain.UrgencyCount, 0, len(levels))
	for i := len(levels) - 1; i >= 0; i-- {
		out = append(out, domain.UrgencyCount{Urgency: levels[i], Count: byLevel[levels[i]]})
	}
	return out, nil
}

func (uc *AnalyticsUseCase) DepartmentStats(ctx context.Context) ([]domain.DepartmentStat, error) {
	stats, err := uc.repo.DepartmentStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("department stats: %w", err)
	}
	return stats, nil
}

func (uc *AnalyticsUseCase) report(ctx context.Context) (domain.AnalyticsReport, error) {
	urgency, err := uc.UrgencyDistribution(ctx)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}
	departments, err := uc.DepartmentStats(ctx)
	if err != nil {
		return domain.AnalyticsReport{}, err
	}
	return domain.AnalyticsReport{Urgency: urgency, Departments: departments}, nil
}

// Export renders the current analytics report into w.
func (uc *AnalyticsUseCase) Export(ctx context.Context, w io.Writer) error {
	if uc.renderer == nil {
		return errors.New("analytics renderer is not configured")
	}
	report, err := uc.report(ctx)
	if err != nil {
		return err
	}
	if err := uc.renderer.RenderAnalytics(report, w); err != nil {
		return fmt.Errorf("render analytics: %w", err)
	}
	return nil
}

// Archive renders the report and stores it under a timestamped key.
func (uc *AnalyticsUseCase) Archive(ctx context.Context) (string, error) {
	if uc.storage == nil {
		return "", errors.New("report storage is not configured")
	}
	var buf bytes.Buffer
	if err := uc.Export(ctx, &buf); err != nil {
		return "", err
	}
	key := fmt.Sprintf("analytics_%s.xlsx", uc.now().Format("20060102T150405Z"))
	if err := uc.storage.Save(ctx, key, &buf); err != nil {
		return "", fmt.Errorf("save analytics report: %w", err)
	}
	return key, nil
}
