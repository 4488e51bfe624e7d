package provider

import (
	"context"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
)

// Capability はプロバイダが宣言する生成能力の種別です。
type Capability string

const (
	// CapabilityTextToImage はテキストプロンプトからの画像生成です。
	CapabilityTextToImage Capability = "text_to_image"
	// CapabilityReferenceGuided は参照画像による誘導生成です。
	CapabilityReferenceGuided Capability = "reference_guided"
)

// Gateway は異種プロバイダへの呼び出しを単一の契約へ正規化します。
// 実装は呼び出し間で可変状態を持たず、1リクエストにつきちょうど1回の
// プロバイダ呼び出しを行います。
type Gateway interface {
	// Generate はリクエストを実行し、正規化された結果を返します。
	// 失敗は本パッケージのエラー分類（AuthError 等）で報告されます。
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error)
	// Name はプロバイダ識別名を返します。
	Name() string
	// Supports は指定の能力に対応しているかを返します。
	Supports(c Capability) bool
}

// TextGateway はテキスト生成に対応するプロバイダの契約です。
// 説明文・キーワード・アニメーション名の提案に使用します。
type TextGateway interface {
	// GenerateText はプロンプトからテキストを生成して返します。
	// 失敗は本パッケージのエラー分類で報告されます。
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// RequiredCapability はリクエストが必要とする能力を返します。
func RequiredCapability(req domain.GenerationRequest) Capability {
	if len(req.ReferenceImages) > 0 {
		return CapabilityReferenceGuided
	}
	return CapabilityTextToImage
}
