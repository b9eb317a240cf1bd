package nats

import (
	"encoding/json"
	"fmt"

	"github.com/grievease/petition-triage/internal/core/domain"
)

const headerEventType = "Triage-Event-Type"

func encodeEvent(event domain.PetitionEvent) ([]byte, error) {
	if event.PetitionID <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode petition event", fmt.Errorf("petition id is required"))
	}
	if !knownEventType(event.Type) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "encode petition event", fmt.Errorf("unknown event type %q", event.Type))
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal petition event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (domain.PetitionEvent, error) {
	var event domain.PetitionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return domain.PetitionEvent{}, fmt.Errorf("unmarshal petition event: %w", err)
	}
	if event.PetitionID <= 0 || !knownEventType(event.Type) {
		return domain.PetitionEvent{}, fmt.Errorf("malformed petition event: type=%q petition_id=%d", event.Type, event.PetitionID)
	}
	return event, nil
}

func knownEventType(t domain.PetitionEventType) bool {
	return t == domain.EventPetitionClassified || t == domain.EventPetitionReclassified
}
