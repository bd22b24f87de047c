package models

// Plan is the billing tier attached to a user identity. Assigned by the
// surrounding platform; this core only reads it.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStudent Plan = "student"
	PlanPro     Plan = "pro"
	PlanAdmin   Plan = "admin"
)

// PlanLimits are daily session allotments for one plan. A negative limit
// means unlimited.
type PlanLimits struct {
	TextPerDay  int `json:"text_per_day"`
	VoicePerDay int `json:"voice_per_day"`
}

func (l PlanLimits) Unlimited(isVoice bool) bool {
	if isVoice {
		return l.VoicePerDay < 0
	}
	return l.TextPerDay < 0
}

// Quota is the caller-facing view of one user's daily usage.
type Quota struct {
	TextUsed   int `json:"text_used"`
	TextLimit  int `json:"text_limit"`
	VoiceUsed  int `json:"voice_used"`
	VoiceLimit int `json:"voice_limit"`
}
