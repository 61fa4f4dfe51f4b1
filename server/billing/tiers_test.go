package billing

import (
	"testing"

	"github.com/openclaw/assistant/plugin/ai"
	"github.com/openclaw/assistant/store"
)

func TestLimitsFor(t *testing.T) {
	if got := LimitsFor(store.TierSolo).MessagesPerPeriod; got != 1000 {
		t.Errorf("solo quota = %d, want 1000", got)
	}
	if got := LimitsFor(store.TierBusiness).Channels; got != -1 {
		t.Errorf("business channels = %d, want unlimited", got)
	}
	// Unknown tiers degrade to trial limits.
	if got := LimitsFor(store.Tier("enterprise")).MessagesPerPeriod; got != 50 {
		t.Errorf("unknown tier quota = %d, want trial's 50", got)
	}
}

func TestTierLimits_AllowsModel(t *testing.T) {
	solo := LimitsFor(store.TierSolo)
	if !solo.AllowsModel(ai.ModelClassSonnet) {
		t.Error("solo must allow sonnet")
	}
	if solo.AllowsModel(ai.ModelClassOpus) {
		t.Error("solo must not allow opus")
	}
	if !LimitsFor(store.TierPro).AllowsModel(ai.ModelClassOpus) {
		t.Error("pro must allow opus")
	}
}

func TestTierLimits_AllowsChannels(t *testing.T) {
	if !LimitsFor(store.TierBusiness).AllowsChannels(40) {
		t.Error("business channels are unlimited")
	}
	if LimitsFor(store.TierSolo).AllowsChannels(3) {
		t.Error("solo is capped at 2 channels")
	}
}

func TestNextTier(t *testing.T) {
	next, ok := NextTier(store.TierTrial)
	if !ok || next != store.TierSolo {
		t.Errorf("NextTier(trial) = %v, %v", next, ok)
	}
	if _, ok := NextTier(store.TierBusiness); ok {
		t.Error("business has no next tier")
	}
}
