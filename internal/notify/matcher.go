package notify

import (
	"strconv"
	"strings"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// MatchesRule reports whether an auction satisfies every condition a rule
// sets. Unset conditions (empty string, nil or zero bound) always pass, so
// a rule with no conditions matches everything.
func MatchesRule(rule model.NotificationRule, auction model.AuctionRecord) bool {
	if rule.Category != "" && rule.Category != auction.Category {
		return false
	}

	if rule.SidoCode != "" {
		if atoiOr(rule.SidoCode, 0) != atoiOr(auction.SidoCode, 0) {
			return false
		}
	}

	// Rules store the full five-digit code; auctions keep the sigu part
	// with the leading sido digits already stripped.
	if rule.SiguCode != "" {
		ruleSigu := rule.SiguCode
		if len(ruleSigu) > 2 {
			ruleSigu = ruleSigu[2:]
		}
		auctionSigu := auction.SiguCode
		if auctionSigu == "" {
			auctionSigu = "0"
		}
		if ruleSigu != auctionSigu {
			return false
		}
	}

	// A stored bound of zero counts as unset, same as NULL.
	price := parseFloatOr(auction.MinimumPrice, 0)
	if boundSet(rule.PriceMin) && price < *rule.PriceMin {
		return false
	}
	if boundSet(rule.PriceMax) && price > *rule.PriceMax {
		return false
	}

	area := parseFloatOr(auction.Area, 0)
	if boundSet(rule.AreaMin) && area < *rule.AreaMin {
		return false
	}
	if boundSet(rule.AreaMax) && area > *rule.AreaMax {
		return false
	}

	if rule.Keyword != "" && !strings.Contains(auction.Address, rule.Keyword) {
		return false
	}

	return true
}

func boundSet(b *float64) bool {
	return b != nil && *b != 0
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloatOr(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fallback
	}
	return f
}
