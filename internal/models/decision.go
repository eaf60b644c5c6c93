package models

// ReasonCode — причина решения о доступе.
type ReasonCode string

const (
	ReasonPublic         ReasonCode = "PUBLIC"
	ReasonTierMatch      ReasonCode = "TIER_MATCH"
	ReasonMentorOverride ReasonCode = "MENTOR_OVERRIDE"
	ReasonTierRestricted ReasonCode = "TIER_RESTRICTED"
)

// AccessDecision — результат проверки доступа к одному элементу.
type AccessDecision struct {
	Granted       bool       `json:"granted"`
	Reason        ReasonCode `json:"reason_code"`
	RequiredTiers []Tier     `json:"required_tiers,omitempty"`
}
