package utils

import (
	"testing"
)

func TestSeedUtils(t *testing.T) {
	t.Run("dereferenceSeed: nil の場合は 0 を返すのだ", func(t *testing.T) {
		if got := DereferenceSeed(nil); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("dereferenceSeed: 値がある場合はその値を返すのだ", func(t *testing.T) {
		var val int64 = 999
		if got := DereferenceSeed(&val); got != 999 {
			t.Errorf("expected 999, got %v", got)
		}
	})

	t.Run("seedToPtrInt32: nil の場合は nil を返すのだ", func(t *testing.T) {
		if got := SeedToPtrInt32(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("seedToPtrInt32: 値がある場合は int32 に変換するのだ", func(t *testing.T) {
		var val int64 = 12345
		got := SeedToPtrInt32(&val)
		if got == nil || *got != 12345 {
			t.Errorf("expected 12345, got %v", got)
		}
	})

	t.Run("seedToPtrInt32: int32 範囲外は切り捨てられるのだ", func(t *testing.T) {
		var val int64 = 1<<32 + 7
		got := SeedToPtrInt32(&val)
		if got == nil || *got != 7 {
			t.Errorf("expected 7, got %v", got)
		}
	})
}
