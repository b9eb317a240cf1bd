package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/core/ports"
)

// ProcessPetitionEventUseCase fans petition events out to the routing graph and,
// for critical automatic classifications, to the officer alert channel.
type ProcessPetitionEventUseCase struct {
	notifier ports.Notifier
	graph    ports.RoutingGraph
	logger   *slog.Logger
}

func NewProcessPetitionEventUseCase(notifier ports.Notifier, graph ports.RoutingGraph, logger *slog.Logger) *ProcessPetitionEventUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessPetitionEventUseCase{notifier: notifier, graph: graph, logger: logger}
}

func (uc *ProcessPetitionEventUseCase) HandlePetitionEvent(ctx context.Context, event domain.PetitionEvent) error {
	if event.PetitionID <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "handle petition event", errors.New("event without petition id"))
	}

	var errs []error
	if uc.graph != nil {
		if err := uc.graph.ProjectPetition(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("project petition: %w", err))
		}
	}
	if uc.notifier != nil && shouldAlert(event) {
		if err := uc.notifier.NotifyCritical(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notify critical petition: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	uc.logger.Debug("petition_event_processed", "petition_id", event.PetitionID, "event_type", event.Type)
	return nil
}

func shouldAlert(event domain.PetitionEvent) bool {
	return event.Type == domain.EventPetitionClassified && event.UrgencyLevel == domain.UrgencyCritical
}
