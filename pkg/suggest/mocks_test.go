package suggest

import (
	"context"
)

// mockTextGateway は TextGateway のテスト用実装です。
type mockTextGateway struct {
	response   string
	err        error
	lastPrompt string
	callCount  int
}

func (m *mockTextGateway) GenerateText(_ context.Context, prompt string) (string, error) {
	m.callCount++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}
