package provider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/utils"
)

// TestingProvider は API キーなしで動作する決定的なオフラインプロバイダです。
// プロンプトとシードから導いた単色の PNG を返すため、同一リクエストは
// 常に同一のバイト列になります。
type TestingProvider struct{}

// NewTestingProvider は TestingProvider を初期化します。
func NewTestingProvider() *TestingProvider { return &TestingProvider{} }

// Name はプロバイダ識別名を返します。
func (p *TestingProvider) Name() string { return "testing" }

// Supports は全能力に対応と申告します。
func (p *TestingProvider) Supports(c Capability) bool { return true }

// GenerateText はプロンプトから決定的に導出したダミーテキストを返します。
func (p *TestingProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &UnavailableError{Provider: p.Name(), Err: err}
	}
	var sum int64
	for _, r := range prompt {
		sum += int64(r)
	}
	return fmt.Sprintf("testing_text_%x", sum), nil
}

// Generate はリクエスト内容から決定的に導出したダミー画像を返します。
func (p *TestingProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Err: err}
	}

	seed := utils.DereferenceSeed(req.Seed)
	var sum int64 = seed
	for _, r := range req.Prompt {
		sum += int64(r)
	}

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := color.RGBA{R: uint8(sum), G: uint8(sum >> 8), B: uint8(sum >> 16), A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Err: err}
	}

	return &domain.ImageResult{
		Data:     buf.Bytes(),
		MimeType: "image/png",
		Model:    "testing",
		UsedSeed: seed,
	}, nil
}
