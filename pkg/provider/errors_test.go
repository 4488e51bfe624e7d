package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	base := errors.New("cause")

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"AuthError はリトライ不可", &AuthError{Provider: "p", Err: base}, false},
		{"InvalidRequestError はリトライ不可", &InvalidRequestError{Provider: "p", Err: base}, false},
		{"UnsupportedCapabilityError はリトライ不可", &UnsupportedCapabilityError{Provider: "p", Capability: CapabilityTextToImage}, false},
		{"RateLimitedError はリトライ可", &RateLimitedError{Provider: "p", Err: base}, true},
		{"UnavailableError はリトライ可", &UnavailableError{Provider: "p", Err: base}, true},
		{"ラップされていても分類は保たれる", fmt.Errorf("frame 2: %w", &UnavailableError{Provider: "p", Err: base}), true},
		{"nil はリトライ不可", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestRetryAfterHint(t *testing.T) {
	t.Run("RateLimitedError の待機時間が取り出される", func(t *testing.T) {
		err := &RateLimitedError{Provider: "p", RetryAfter: 3 * time.Second, Err: errors.New("x")}
		assert.Equal(t, 3*time.Second, RetryAfterHint(err))
	})

	t.Run("ヒントのないエラーは 0 を返す", func(t *testing.T) {
		assert.Equal(t, time.Duration(0), RetryAfterHint(&UnavailableError{Provider: "p"}))
		assert.Equal(t, time.Duration(0), RetryAfterHint(nil))
	})
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("root cause")

	wrapped := []error{
		&AuthError{Provider: "p", Err: base},
		&RateLimitedError{Provider: "p", Err: base},
		&InvalidRequestError{Provider: "p", Err: base},
		&UnavailableError{Provider: "p", Err: base},
	}
	for _, err := range wrapped {
		assert.ErrorIs(t, err, base, "%T は原因エラーを保持する", err)
	}
}

func TestRequiredCapability(t *testing.T) {
	t.Run("参照画像ありは reference_guided", func(t *testing.T) {
		req := domain.GenerationRequest{Prompt: "x", ReferenceImages: [][]byte{{1}}}
		assert.Equal(t, CapabilityReferenceGuided, RequiredCapability(req))
	})

	t.Run("参照画像なしは text_to_image", func(t *testing.T) {
		req := domain.GenerationRequest{Prompt: "x"}
		assert.Equal(t, CapabilityTextToImage, RequiredCapability(req))
	})
}
