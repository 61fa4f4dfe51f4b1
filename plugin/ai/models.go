package ai

import (
	"math"
)

// ModelClass is the capability/cost class a request is routed to. Classes are
// stable identifiers; the upstream model behind a class may change.
type ModelClass string

const (
	ModelClassHaiku  ModelClass = "haiku"
	ModelClassSonnet ModelClass = "sonnet"
	ModelClassOpus   ModelClass = "opus"
)

func (c ModelClass) IsValid() bool {
	switch c {
	case ModelClassHaiku, ModelClassSonnet, ModelClassOpus:
		return true
	}
	return false
}

// ModelSpec describes one model class: default upstream name, pricing per
// million tokens in USD, and the response token cap.
type ModelSpec struct {
	Name            string
	InputCostPer1M  float64
	OutputCostPer1M float64
	MaxTokens       int
}

var modelSpecs = map[ModelClass]ModelSpec{
	ModelClassHaiku: {
		Name:            "claude-3-5-haiku-20241022",
		InputCostPer1M:  1.0,
		OutputCostPer1M: 5.0,
		MaxTokens:       8192,
	},
	ModelClassSonnet: {
		Name:            "claude-3-5-sonnet-20241022",
		InputCostPer1M:  3.0,
		OutputCostPer1M: 15.0,
		MaxTokens:       8192,
	},
	ModelClassOpus: {
		Name:            "claude-3-opus-20240229",
		InputCostPer1M:  15.0,
		OutputCostPer1M: 75.0,
		MaxTokens:       4096,
	},
}

// Spec returns the spec for the class. Unknown classes fall back to sonnet.
func (c ModelClass) Spec() ModelSpec {
	if spec, ok := modelSpecs[c]; ok {
		return spec
	}
	return modelSpecs[ModelClassSonnet]
}

// CostCents prices a completion in whole cents, rounded up so that no
// completion is ever free.
func CostCents(class ModelClass, tokensIn, tokensOut int) int32 {
	spec := class.Spec()
	cost := float64(tokensIn)*spec.InputCostPer1M/1_000_000*100 +
		float64(tokensOut)*spec.OutputCostPer1M/1_000_000*100
	return int32(math.Ceil(cost))
}

// EstimateTokens approximates the token count of a text. The 4 chars/token
// heuristic is good enough for quota math and summarization thresholds.
func EstimateTokens(text string) int {
	return len(text) / 4
}
