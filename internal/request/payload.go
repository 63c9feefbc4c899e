package request

import (
	"encoding/json"
	"fmt"
)

// Request payloads are a typed union keyed by the request type. They are
// decoded and compared field by field; duplicate detection never compares
// serialized JSON strings.

type PlanChangeData struct {
	PlanID         int64  `json:"planId"`
	PreviousPlanID *int64 `json:"previousPlanId,omitempty"`
}

type ModuleActivationData struct {
	ModuleID int64 `json:"moduleId"`
}

func encodeData(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request data: %w", err)
	}
	return data, nil
}

func decodeModuleData(raw json.RawMessage) (ModuleActivationData, error) {
	var d ModuleActivationData
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("decode module request data: %w", err)
	}
	return d, nil
}

func decodePlanData(raw json.RawMessage) (PlanChangeData, error) {
	var d PlanChangeData
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("decode plan request data: %w", err)
	}
	return d, nil
}
