// Package region resolves the set of administrative areas a crawl cycle
// should visit.
package region

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// Defaults is the constant set of regions monitored regardless of any
// user-configured rules.
var Defaults = []model.RegionTarget{
	{SidoCode: "26", SiguCode: "350"}, // 부산 해운대구
}

// RuleSource provides the dynamically configured (sido, sigu) pairs,
// typically the distinct region codes of the active notification rules.
type RuleSource interface {
	ActiveRegionPairs(ctx context.Context) ([]model.RegionTarget, error)
}

// Resolver merges Defaults with rule-derived pairs, normalises code
// encoding inconsistencies and drops malformed entries.
type Resolver struct {
	rules RuleSource
	log   *slog.Logger
}

// NewResolver constructs a Resolver. rules may be nil, in which case only
// Defaults are produced.
func NewResolver(rules RuleSource, log *slog.Logger) *Resolver {
	return &Resolver{rules: rules, log: log}
}

// Targets returns the deduplicated, validated list of regions for one
// crawl cycle. Rule lookup failures are logged and ignored — this resolver
// never blocks the cycle, and Defaults are always included.
func (r *Resolver) Targets(ctx context.Context) []model.RegionTarget {
	raw := make([]model.RegionTarget, 0, len(Defaults))
	raw = append(raw, Defaults...)

	if r.rules != nil {
		pairs, err := r.rules.ActiveRegionPairs(ctx)
		if err != nil {
			r.log.Warn("region resolver: rule lookup failed, using defaults only", "error", err)
		} else {
			raw = append(raw, pairs...)
		}
	}

	seen := make(map[model.RegionTarget]struct{}, len(raw))
	targets := make([]model.RegionTarget, 0, len(raw))
	for _, t := range raw {
		normalised, ok := Normalize(t)
		if !ok {
			r.log.Warn("region resolver: dropping malformed region pair",
				"sido_code", t.SidoCode, "sigu_code", t.SiguCode)
			continue
		}
		if _, dup := seen[normalised]; dup {
			continue
		}
		seen[normalised] = struct{}{}
		targets = append(targets, normalised)
	}

	return targets
}

// Normalize cleans one region pair. Stored sigu codes sometimes carry a
// redundant leading sido code ("26350" instead of "350"); the prefix is
// stripped. The pair is rejected when the sido is missing or when the
// stripped sigu is empty or a pure zero filler ("0" … "0000").
func Normalize(t model.RegionTarget) (model.RegionTarget, bool) {
	sido := strings.TrimSpace(t.SidoCode)
	sigu := strings.TrimSpace(t.SiguCode)

	if sido == "" {
		return model.RegionTarget{}, false
	}
	if strings.HasPrefix(sigu, sido) {
		sigu = sigu[len(sido):]
	}
	if sigu == "" || isZeroFiller(sigu) {
		return model.RegionTarget{}, false
	}

	return model.RegionTarget{SidoCode: sido, SiguCode: sigu}, true
}

func isZeroFiller(s string) bool {
	if len(s) > 4 {
		return false
	}
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}
