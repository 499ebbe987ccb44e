package notify

import (
	"fmt"
	"strings"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// Channel types as stored in notification_channels.type.
const (
	ChannelTelegram = "telegram"
	ChannelSlack    = "slack"
)

// messageFields normalises the auction and rule values shared by every
// channel's template, substituting Korean placeholders for missing data.
type messageFields struct {
	ruleName  string
	category  string
	address   string
	areaText  string
	priceText string
	dateText  string
	thumbnail string
}

func newMessageFields(auction model.AuctionRecord, rule model.NotificationRule) messageFields {
	f := messageFields{
		ruleName:  rule.Name,
		category:  auction.Category,
		address:   auction.Address,
		areaText:  "면적 정보 없음",
		priceText: formatPrice(auction.MinimumPrice),
		dateText:  auction.AuctionDate,
		thumbnail: auction.ThumbnailSrc,
	}
	if auction.Area != "" {
		f.areaText = auction.Area + "㎡"
	}
	if f.dateText == "" {
		f.dateText = "미정"
	}
	if f.address == "" {
		f.address = "주소 정보 없음"
	}
	if f.category == "" {
		f.category = "분류 없음"
	}
	if f.ruleName == "" {
		f.ruleName = "-"
	}
	return f
}

// telegramMessage renders the alert in Telegram Markdown. Also the default
// rendering for the delivery log when no messenger handles a channel type.
func telegramMessage(auction model.AuctionRecord, rule model.NotificationRule) string {
	f := newMessageFields(auction, rule)
	return fmt.Sprintf(
		"📢 *새 매물 알림!*\n"+
			"━━━━━━━━━━━━━━━\n"+
			"🏷 *규칙:* %s\n"+
			"🏠 *종류:* %s\n"+
			"📍 *주소:* %s\n"+
			"📏 *면적:* %s\n"+
			"💰 *최저가:* %s\n"+
			"🗓 *매각기일:* %s\n"+
			"━━━━━━━━━━━━━━━\n"+
			"🔗 [매물 이미지 보기](%s)",
		f.ruleName, f.category, f.address, f.areaText, f.priceText, f.dateText, f.thumbnail,
	)
}

// slackMessage renders the alert in Slack mrkdwn.
func slackMessage(auction model.AuctionRecord, rule model.NotificationRule) string {
	f := newMessageFields(auction, rule)
	return fmt.Sprintf(
		":rotating_light: *새 매물 알림!*\n"+
			"> *알림명:* %s\n"+
			"> *종류:* %s\n"+
			"> *주소:* %s\n"+
			"> *면적:* %s\n"+
			"> *최저가:* %s\n"+
			"> *매각기일:* %s\n"+
			"> <%s|이미지 보기>",
		f.ruleName, f.category, f.address, f.areaText, f.priceText, f.dateText, f.thumbnail,
	)
}

// formatPrice renders a won amount in the customary 억/만원 units,
// discarding anything below ten thousand won.
func formatPrice(raw string) string {
	price := int64(parseFloatOr(raw, 0))
	switch {
	case price >= 100_000_000:
		eok := price / 100_000_000
		man := (price % 100_000_000) / 10_000
		if man > 0 {
			return fmt.Sprintf("%d억 %s만원", eok, groupDigits(man))
		}
		return fmt.Sprintf("%d억", eok)
	case price >= 10_000:
		return groupDigits(price/10_000) + "만원"
	default:
		return "가격 정보 없음"
	}
}

// groupDigits inserts thousands separators into a non-negative number.
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
