package cache

import (
	"testing"
	"time"

	"github.com/socialsmoker223/quants-lab/internal/config"
)

func TestNewTTLSet(t *testing.T) {
	set := NewTTLSet(config.CacheTTL{Short: 5, Medium: 0, Long: 900})
	if set.Short != 5*time.Second {
		t.Fatalf("Short got %s", set.Short)
	}
	if set.Medium != time.Minute {
		t.Fatalf("Medium should fall back to default, got %s", set.Medium)
	}
	if set.Long != 15*time.Minute {
		t.Fatalf("Long got %s", set.Long)
	}
}

func TestTTLSetDuration(t *testing.T) {
	set := TTLSet{Short: time.Second, Medium: time.Minute, Long: time.Hour}
	if set.Duration(TTLShort) != time.Second {
		t.Fatalf("short class mismatch")
	}
	if set.Duration(TTLMedium) != time.Minute {
		t.Fatalf("medium class mismatch")
	}
	if set.Duration(TTLLong) != time.Hour {
		t.Fatalf("long class mismatch")
	}
	if set.Duration(TTLClass("bogus")) != 0 {
		t.Fatalf("unknown class should be zero")
	}
}

func TestKeyFormatting(t *testing.T) {
	if got := WatermarkKey("coinglass_btcusdt_funding_rates_ohlc_1h"); got != "quantslab:watermark:coinglass_btcusdt_funding_rates_ohlc_1h" {
		t.Fatalf("WatermarkKey got %q", got)
	}
	if got := formatKey("a", " ", "b"); got != "quantslab:a:b" {
		t.Fatalf("formatKey should skip blank parts, got %q", got)
	}
}
