package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// --- Mocks ---

type mockAIClient struct {
	response      *gemini.Response
	err           error
	lastModel     string
	lastParts     []*genai.Part
	lastOpts      gemini.GenerateOptions
	callCount     int
	textResponse  *gemini.Response
	textErr       error
	lastPrompt    string
	textCallCount int
}

func (m *mockAIClient) GenerateContent(ctx context.Context, model string, prompt string) (*gemini.Response, error) {
	m.textCallCount++
	m.lastModel = model
	m.lastPrompt = prompt
	return m.textResponse, m.textErr
}

func (m *mockAIClient) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	m.callCount++
	m.lastModel = model
	m.lastParts = parts
	m.lastOpts = opts
	return m.response, m.err
}

func (m *mockAIClient) UploadFile(ctx context.Context, data []byte, mimeType, displayName string) (string, string, error) {
	return "", "", nil
}

func (m *mockAIClient) DeleteFile(ctx context.Context, name string) error {
	return nil
}

func (m *mockAIClient) GetFile(ctx context.Context, name string) (*genai.File, error) {
	return nil, nil
}

// imageResponse は InlineData に画像1枚を含む Gemini レスポンスを組み立てます。
func imageResponse(mimeType string, data []byte) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}},
				},
			}},
		},
	}
}

// textResponse はテキストのみを含む Gemini レスポンスを組み立てます。
func textResponse(text string) *gemini.Response {
	return &gemini.Response{
		RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: text}},
				},
			}},
		},
	}
}

type mockHTTPClient struct {
	data      []byte
	err       error
	fetchURLs []string
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetchURLs = append(m.fetchURLs, url)
	return m.data, m.err
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return nil, m.err
}

func (m *mockHTTPClient) DoRequest(req *http.Request) ([]byte, error) {
	return m.data, m.err
}

func (m *mockHTTPClient) FetchAndDecodeJSON(ctx context.Context, url string, v any) error {
	return m.err
}

func (m *mockHTTPClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	return m.data, m.err
}

func (m *mockHTTPClient) PostRawBodyAndFetchBytes(ctx context.Context, url string, body []byte, contentType string) ([]byte, error) {
	return m.data, m.err
}

func (m *mockHTTPClient) IsSafeURL(urlStr string) (bool, error) {
	return true, nil
}

func (m *mockHTTPClient) IsSecureServiceURL(serviceURL string) bool {
	return true
}

type mockReader struct {
	data []byte
	err  error
}

func (m *mockReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

func (m *mockReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return nil
}
