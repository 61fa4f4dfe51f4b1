package billing

import (
	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

// TrialDays is how long a new account can chat before subscribing.
const TrialDays = 14

// PeriodDays is the usage accounting period for accounts without a
// subscription; subscribers inherit the processor's billing period.
const PeriodDays = 30

// TierLimits is the static configuration of one subscription tier.
type TierLimits struct {
	// MessagesPerPeriod is the message quota per billing period.
	MessagesPerPeriod int32
	// MemoryDays bounds how far back conversation history is loaded.
	MemoryDays int
	// Channels is the number of connected channels; -1 means unlimited.
	Channels int
	// Models lists the model classes the tier may be routed to.
	Models []ai.ModelClass
	// MonthlyPriceUSD is the sticker price; zero for the trial.
	MonthlyPriceUSD int
}

var tierLimits = map[store.Tier]TierLimits{
	store.TierTrial: {
		MessagesPerPeriod: 50,
		MemoryDays:        7,
		Channels:          2,
		Models:            []ai.ModelClass{ai.ModelClassHaiku, ai.ModelClassSonnet, ai.ModelClassOpus},
	},
	store.TierSolo: {
		MessagesPerPeriod: 1000,
		MemoryDays:        7,
		Channels:          2,
		Models:            []ai.ModelClass{ai.ModelClassHaiku, ai.ModelClassSonnet},
		MonthlyPriceUSD:   39,
	},
	store.TierPro: {
		MessagesPerPeriod: 3000,
		MemoryDays:        30,
		Channels:          5,
		Models:            []ai.ModelClass{ai.ModelClassHaiku, ai.ModelClassSonnet, ai.ModelClassOpus},
		MonthlyPriceUSD:   79,
	},
	store.TierBusiness: {
		MessagesPerPeriod: 10000,
		MemoryDays:        90,
		Channels:          -1,
		Models:            []ai.ModelClass{ai.ModelClassHaiku, ai.ModelClassSonnet, ai.ModelClassOpus},
		MonthlyPriceUSD:   149,
	},
}

// LimitsFor returns the limits for a tier; unknown tiers get trial limits.
func LimitsFor(tier store.Tier) TierLimits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[store.TierTrial]
}

// AllowsModel reports whether the tier may use the given model class.
func (l TierLimits) AllowsModel(class ai.ModelClass) bool {
	for _, m := range l.Models {
		if m == class {
			return true
		}
	}
	return false
}

// AllowsChannels reports whether the tier supports this many channels.
func (l TierLimits) AllowsChannels(count int) bool {
	return l.Channels == -1 || count <= l.Channels
}

var tierOrder = []store.Tier{store.TierTrial, store.TierSolo, store.TierPro, store.TierBusiness}

// NextTier returns the next tier up, for upgrade hints.
func NextTier(tier store.Tier) (store.Tier, bool) {
	for i, t := range tierOrder {
		if t == tier && i < len(tierOrder)-1 {
			return tierOrder[i+1], true
		}
	}
	return "", false
}
