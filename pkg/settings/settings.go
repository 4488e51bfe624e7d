// Package settings は設定コラボレータから渡される読み取り専用の構成を扱います。
// 本キットは設定を入力として受け取るだけで、変更も保存もしません。
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ProviderKind は選択中の推論プロバイダ種別です。
type ProviderKind string

const (
	ProviderOpenAI  ProviderKind = "OPENAI"
	ProviderGoogle  ProviderKind = "GOOGLEAI"
	ProviderTesting ProviderKind = "TESTING"
)

// Settings はプロバイダ選択・認証情報・既定生成パラメータの構成オブジェクトです。
// JSON キーは既存の設定ファイル形式と互換です。
type Settings struct {
	OpenAIAPIKey string       `json:"OPENAI_API_KEY"`
	GoogleAPIKey string       `json:"GOOGLE_AI_STUDIO_API_KEY"`
	Provider     ProviderKind `json:"Selected Inference Provider"`

	DefaultSize   string `json:"default_size,omitempty"`
	MaxAttempts   int    `json:"max_attempts,omitempty"`
	BaseDelayMS   int    `json:"base_delay_ms,omitempty"`
	CallTimeoutMS int    `json:"call_timeout_ms,omitempty"`
}

// CallTimeout は1回の推論呼び出しに許容する時間を返します。
func (s Settings) CallTimeout() time.Duration {
	return time.Duration(s.CallTimeoutMS) * time.Millisecond
}

// Default は API キーなしで動作する既定構成を返します。
func Default() Settings {
	return Settings{
		Provider:      ProviderTesting,
		DefaultSize:   "1024x1024",
		MaxAttempts:   3,
		BaseDelayMS:   500,
		CallTimeoutMS: 120000,
	}
}

// Load は設定ファイル（JSON）を読み込みます。欠けている項目は既定値で補います。
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("設定ファイルのパースに失敗しました: %w", err)
	}
	if s.Provider == "" {
		s.Provider = ProviderTesting
	}
	if s.DefaultSize == "" {
		s.DefaultSize = "1024x1024"
	}
	if s.MaxAttempts < 1 {
		s.MaxAttempts = 3
	}
	if s.BaseDelayMS < 1 {
		s.BaseDelayMS = 500
	}
	if s.CallTimeoutMS < 1 {
		s.CallTimeoutMS = 120000
	}
	return s, nil
}

// Validate は選択中プロバイダに必要な認証情報が揃っているかを検査します。
func (s Settings) Validate() error {
	switch s.Provider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is not set")
		}
	case ProviderGoogle:
		if s.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_AI_STUDIO_API_KEY is not set")
		}
	case ProviderTesting:
		// 認証不要
	default:
		return fmt.Errorf("unknown provider kind: %q", s.Provider)
	}
	return nil
}
