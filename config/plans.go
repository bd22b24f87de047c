package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yoockh/teachback/internal/models"
)

// defaultPlans are the shipped daily allotments. -1 means unlimited.
var defaultPlans = map[models.Plan]models.PlanLimits{
	models.PlanFree:    {TextPerDay: 0, VoicePerDay: 0},
	models.PlanStudent: {TextPerDay: 5, VoicePerDay: 2},
	models.PlanPro:     {TextPerDay: 20, VoicePerDay: 10},
	models.PlanAdmin:   {TextPerDay: -1, VoicePerDay: -1},
}

// LoadPlans returns the quota table, with PLAN_LIMITS_JSON overriding or
// extending the defaults, e.g.:
//
//	PLAN_LIMITS_JSON={"student":{"text_per_day":10,"voice_per_day":4}}
func LoadPlans() (map[models.Plan]models.PlanLimits, error) {
	plans := make(map[models.Plan]models.PlanLimits, len(defaultPlans))
	for k, v := range defaultPlans {
		plans[k] = v
	}

	raw := os.Getenv("PLAN_LIMITS_JSON")
	if raw == "" {
		return plans, nil
	}

	var override map[models.Plan]models.PlanLimits
	if err := json.Unmarshal([]byte(raw), &override); err != nil {
		return nil, fmt.Errorf("PLAN_LIMITS_JSON: %w", err)
	}
	for k, v := range override {
		plans[k] = v
	}
	return plans, nil
}
