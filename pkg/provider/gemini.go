package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/utils"
	"google.golang.org/genai"
)

// DefaultGeminiImageModel はモデルヒント未指定時に使用する画像生成モデルです。
const DefaultGeminiImageModel = "gemini-2.0-flash-preview-image-generation"

// DefaultGeminiTextModel はテキスト提案（説明文・キーワード等）に使用するモデルです。
const DefaultGeminiTextModel = "gemini-2.0-flash"

// GeminiProvider は Gemini API へのゲートウェイ実装です。
// テキスト生成・参照誘導生成の両方に対応します。
type GeminiProvider struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiProvider は依存関係を注入して GeminiProvider を初期化します。
func NewGeminiProvider(aiClient gemini.GenerativeModel, model string) (*GeminiProvider, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if model == "" {
		model = DefaultGeminiImageModel
	}
	return &GeminiProvider{aiClient: aiClient, model: model}, nil
}

// Name はプロバイダ識別名を返します。
func (p *GeminiProvider) Name() string { return "gemini" }

// Supports は Gemini が対応する能力を申告します。
func (p *GeminiProvider) Supports(c Capability) bool {
	return c == CapabilityTextToImage || c == CapabilityReferenceGuided
}

// Generate はリクエストを Gemini API の形式へ変換して実行します。
func (p *GeminiProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	for _, img := range req.ReferenceImages {
		if part := inlinePart(img); part != nil {
			parts = append(parts, part)
		}
	}

	model := req.ModelHint
	if model == "" {
		model = p.model
	}

	opts := gemini.GenerateOptions{
		AspectRatio: aspectRatioForSize(req.Size),
		Seed:        req.Seed,
	}

	resp, err := p.aiClient.GenerateWithParts(ctx, model, parts, opts)
	if err != nil {
		return nil, p.classify(err)
	}

	return parseGeminiResponse(resp, model, utils.DereferenceSeed(req.Seed))
}

// GenerateText はプロンプトからテキストを生成します。
func (p *GeminiProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := p.aiClient.GenerateContent(ctx, DefaultGeminiTextModel, prompt)
	if err != nil {
		return "", p.classify(err)
	}
	if resp == nil || resp.RawResponse == nil {
		return "", &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("empty response")}
	}
	text := strings.TrimSpace(resp.RawResponse.Text())
	if text == "" {
		return "", &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("no text in response")}
	}
	return text, nil
}

// classify は Gemini SDK のエラーを本パッケージの分類へ写像します。
func (p *GeminiProvider) classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UnavailableError{Provider: p.Name(), Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Provider: p.Name(), Err: err}
		case http.StatusTooManyRequests:
			return &RateLimitedError{Provider: p.Name(), Err: err}
		case http.StatusBadRequest:
			return &InvalidRequestError{Provider: p.Name(), Err: err}
		}
	}
	return &UnavailableError{Provider: p.Name(), Err: err}
}

// parseGeminiResponse はレスポンス候補から最初の画像パーツを取り出します。
func parseGeminiResponse(resp *gemini.Response, model string, seed int64) (*domain.ImageResult, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, &UnavailableError{Provider: "gemini", Err: fmt.Errorf("empty response")}
	}

	// 現在の仕様では最初の候補（Candidate）のみを利用する。
	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageResult{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
					Model:    model,
					UsedSeed: seed,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, &InvalidRequestError{
			Provider: "gemini",
			Err:      fmt.Errorf("generation stopped (FinishReason: %s)", candidate.FinishReason),
		}
	}

	return nil, &UnavailableError{Provider: "gemini", Err: fmt.Errorf("no image data in response")}
}

// inlinePart はバイト列を genai.Part (InlineData) に変換します。
// MIME タイプが画像でない場合は nil を返します。
func inlinePart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

// aspectRatioForSize は "1024x1024" 形式のサイズ指定を Gemini のアスペクト比
// 記法へ変換します。解釈できない場合は空文字（プロバイダ既定）を返します。
func aspectRatioForSize(size string) string {
	var w, h int
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return ""
	}
	g := gcd(w, h)
	return fmt.Sprintf("%d:%d", w/g, h/g)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
