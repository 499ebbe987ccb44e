package notify

import (
	"strings"
	"testing"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"250000000", "2억 5,000만원"},
		{"100000000", "1억"},
		{"1234567890", "12억 3,456만원"},
		{"85000000", "8,500만원"},
		{"10000", "1만원"},
		{"9999", "가격 정보 없음"},
		{"", "가격 정보 없음"},
		{"미정", "가격 정보 없음"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.raw); got != tt.want {
			t.Errorf("formatPrice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.n); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestFormatMessageTelegram(t *testing.T) {
	auction := sampleAuction()
	auction.AuctionDate = "2024.11.05"
	auction.ThumbnailSrc = "http://img.example.com/a.jpg"
	rule := model.NotificationRule{Name: "해운대 아파트"}

	msg := NewTelegramMessenger("tok").Format(auction, rule)

	for _, want := range []string{
		"📢 *새 매물 알림!*",
		"*규칙:* 해운대 아파트",
		"*종류:* 아파트",
		"*면적:* 84.98㎡",
		"*최저가:* 2억 5,000만원",
		"*매각기일:* 2024.11.05",
		"[매물 이미지 보기](http://img.example.com/a.jpg)",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("telegram message missing %q\nmessage:\n%s", want, msg)
		}
	}
}

func TestFormatMessageSlack(t *testing.T) {
	auction := sampleAuction()
	auction.ThumbnailSrc = "http://img.example.com/a.jpg"

	msg := NewSlackMessenger("tok").Format(auction, model.NotificationRule{})

	for _, want := range []string{
		":rotating_light: *새 매물 알림!*",
		"> *알림명:* -",
		"> *매각기일:* 미정",
		"<http://img.example.com/a.jpg|이미지 보기>",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("slack message missing %q\nmessage:\n%s", want, msg)
		}
	}
}

func TestFormatMessageMissingFields(t *testing.T) {
	msg := telegramMessage(model.AuctionRecord{}, model.NotificationRule{})

	for _, want := range []string{"면적 정보 없음", "가격 정보 없음", "주소 정보 없음", "분류 없음", "미정"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing placeholder %q", want)
		}
	}
}
