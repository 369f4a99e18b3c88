package models

import "time"

// TradingPlan is the trader's self-declared rule set. One active plan per
// trader, upsert semantics; the analytics core treats it as read-only.
type TradingPlan struct {
	MaxTradesPerDay       int
	RiskPercentPerTrade   float64
	TargetRiskRewardRatio float64
	PreferredSessions     []Session
	StopLossDiscipline    StopLossDiscipline
	UpdatedAt             time.Time
}

// AllowsSession reports whether trading s complies with the plan.
// An empty preferred set means no session restriction.
func (p *TradingPlan) AllowsSession(s Session) bool {
	if len(p.PreferredSessions) == 0 {
		return true
	}
	for _, ps := range p.PreferredSessions {
		if ps == s {
			return true
		}
	}
	return false
}

// HasSessionPreference reports whether the plan restricts sessions at all.
func (p *TradingPlan) HasSessionPreference() bool {
	return len(p.PreferredSessions) > 0
}
