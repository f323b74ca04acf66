package extract

import (
	"github.com/verte-zerg/plminer/internal/model"
	"github.com/verte-zerg/plminer/internal/nlp"
)

// posGate decides whether a tokenized sentence may contribute n-grams.
type posGate func(tokens []nlp.Token) bool

func acceptAll([]nlp.Token) bool { return true }

// newPOSGate selects the gate once from configuration. With filtering enabled a sentence passes
// only when every token's tag is allowed.
func newPOSGate(cfg model.ExtractConfig) posGate {
	if !cfg.POSFiltering {
		return acceptAll
	}
	allowed := cfg.AllowedPOSTags
	return func(tokens []nlp.Token) bool {
		for _, tok := range tokens {
			if _, ok := allowed[tok.Tag]; !ok {
				return false
			}
		}
		return true
	}
}
