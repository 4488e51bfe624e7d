package session

import (
	"context"
	"sync"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/provider"
)

// --- Mocks ---

// mockGateway はスクリプト可能なゲートウェイです。respond が呼び出し回数
// （1始まり）とリクエストを受け取り、結果とエラーを返します。
type mockGateway struct {
	mu      sync.Mutex
	respond func(call int, req domain.GenerationRequest) (*domain.ImageResult, error)
	caps    map[provider.Capability]bool

	calls       int
	inflight    int
	maxInflight int
}

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) Supports(c provider.Capability) bool {
	if m.caps == nil {
		return true
	}
	return m.caps[c]
}

func (m *mockGateway) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	m.inflight++
	if m.inflight > m.maxInflight {
		m.maxInflight = m.inflight
	}
	respond := m.respond
	m.mu.Unlock()

	res, err := respond(call, req)

	m.mu.Lock()
	m.inflight--
	m.mu.Unlock()
	return res, err
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockGateway) peakInflight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInflight
}

// succeedWith はプロンプトをそのまま画像バイト列として返す respond 関数です。
// どのプロンプトからどのフレームが生まれたかを検証で照合できます。
func succeedWith() func(int, domain.GenerationRequest) (*domain.ImageResult, error) {
	return func(call int, req domain.GenerationRequest) (*domain.ImageResult, error) {
		return &domain.ImageResult{
			Data:     []byte(req.Prompt),
			MimeType: "image/png",
			Model:    "mock-model",
		}, nil
	}
}

func newTestAsset(id string) *domain.SpriteAsset {
	return &domain.SpriteAsset{
		ID:     id,
		Name:   "asset-" + id,
		Width:  64,
		Height: 64,
		Params: domain.GenerationParams{Size: "1024x1024"},
	}
}
