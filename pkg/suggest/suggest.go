// Package suggest はテキスト生成プロバイダによる提案機能を提供します。
// プロジェクト説明文・キーワード・追加アニメーション名を生成します。
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/prompt"
	"github.com/shouni/godot-sprite-kit/pkg/provider"
)

// Service はプロンプトテンプレートとテキストゲートウェイを束ねた提案サービスです。
type Service struct {
	gateway provider.TextGateway
}

// NewService は依存関係を注入して Service を初期化します。
func NewService(gateway provider.TextGateway) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	return &Service{gateway: gateway}, nil
}

// Description はキーワードからプロジェクト説明文を生成します。
// keywords が空の場合はモデルの自由な発想に委ねます。
func (s *Service) Description(ctx context.Context, keywords string) (string, error) {
	text, err := s.gateway.GenerateText(ctx, prompt.ProjectDescription(keywords))
	if err != nil {
		return "", fmt.Errorf("説明文の生成に失敗しました: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Keywords はプロジェクト説明文からキーワード一覧を抽出します。
func (s *Service) Keywords(ctx context.Context, projectDescription string) (string, error) {
	text, err := s.gateway.GenerateText(ctx, prompt.Keywords(projectDescription))
	if err != nil {
		return "", fmt.Errorf("キーワードの抽出に失敗しました: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// AnimationName は既存アニメーションと重複しない追加アニメーション名を提案します。
// 返り値は空白をアンダースコアに正規化した1語です。
func (s *Service) AnimationName(ctx context.Context, theme domain.ThemeDescriptor, spriteDescription string, current []string) (string, error) {
	text, err := s.gateway.GenerateText(ctx, prompt.AnimationSuggestion(theme, spriteDescription, current))
	if err != nil {
		return "", fmt.Errorf("アニメーション名の提案に失敗しました: %w", err)
	}
	name := strings.ReplaceAll(strings.TrimSpace(text), " ", "_")
	if name == "" {
		return "", fmt.Errorf("プロバイダが空の提案を返しました")
	}
	return name, nil
}
