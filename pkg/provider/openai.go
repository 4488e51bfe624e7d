package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/utils"
)

// OpenAIConfig は OpenAI プロバイダの設定です。Model は画像生成、
// TextModel はテキスト提案に使用します。
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	TextModel string
	Timeout   time.Duration
}

// DefaultOpenAIConfig は既定の OpenAI 設定を返します。
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL:   "https://api.openai.com",
		Model:     "gpt-image-1",
		TextModel: "gpt-4o-mini",
		Timeout:   120 * time.Second,
	}
}

// OpenAIProvider は OpenAI Images API へのゲートウェイ実装です。
// 参照画像がある場合は edits、ない場合は generations エンドポイントを使います。
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAIProvider は OpenAIProvider を初期化します。
func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-image-1"
	}
	if cfg.TextModel == "" {
		cfg.TextModel = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &OpenAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name はプロバイダ識別名を返します。
func (p *OpenAIProvider) Name() string { return "openai" }

// Supports は OpenAI が対応する能力を申告します。
func (p *OpenAIProvider) Supports(c Capability) bool {
	return c == CapabilityTextToImage || c == CapabilityReferenceGuided
}

type openaiImageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
}

// Generate はリクエストを Images API の形式へ変換して実行します。
func (p *OpenAIProvider) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	model := req.ModelHint
	if model == "" {
		model = p.cfg.Model
	}
	size := req.Size
	if size == "" {
		size = "1024x1024"
	}

	var httpReq *http.Request
	var err error
	if len(req.ReferenceImages) > 0 {
		httpReq, err = p.newEditRequest(ctx, model, req.Prompt, size, req.ReferenceImages)
	} else {
		httpReq, err = p.newGenerationRequest(ctx, model, req.Prompt, size)
	}
	if err != nil {
		return nil, &InvalidRequestError{Provider: p.Name(), Err: err}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, p.classifyStatus(resp)
	}

	var parsed openaiImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("response decode failed: %w", err)}
	}
	if len(parsed.Data) == 0 || parsed.Data[0].B64JSON == "" {
		return nil, &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("no image data in response")}
	}

	data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("base64 decode failed: %w", err)}
	}

	return &domain.ImageResult{
		Data:     data,
		MimeType: http.DetectContentType(data),
		Model:    model,
		UsedSeed: utils.DereferenceSeed(req.Seed),
	}, nil
}

type openaiChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateText はプロンプトからテキストを生成します。
func (p *OpenAIProvider) GenerateText(ctx context.Context, prompt string) (string, error) {
	body := map[string]any{
		"model":    p.cfg.TextModel,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", &InvalidRequestError{Provider: p.Name(), Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/chat/completions",
		bytes.NewReader(payload))
	if err != nil {
		return "", &InvalidRequestError{Provider: p.Name(), Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &UnavailableError{Provider: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", p.classifyStatus(resp)
	}

	var parsed openaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("response decode failed: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("no choices in response")}
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", &UnavailableError{Provider: p.Name(), Err: fmt.Errorf("no text in response")}
	}
	return text, nil
}

// newGenerationRequest は generations エンドポイント向けの JSON リクエストを組み立てます。
func (p *OpenAIProvider) newGenerationRequest(ctx context.Context, model, prompt, size string) (*http.Request, error) {
	body := map[string]any{
		"model":  model,
		"prompt": prompt,
		"n":      1,
		"size":   size,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/images/generations",
		bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// newEditRequest は edits エンドポイント向けの multipart リクエストを組み立てます。
func (p *OpenAIProvider) newEditRequest(ctx context.Context, model, prompt, size string, refs [][]byte) (*http.Request, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", model); err != nil {
		return nil, err
	}
	if err := mw.WriteField("prompt", prompt); err != nil {
		return nil, err
	}
	if err := mw.WriteField("n", "1"); err != nil {
		return nil, err
	}
	if err := mw.WriteField("size", size); err != nil {
		return nil, err
	}
	for i, ref := range refs {
		fw, err := mw.CreateFormFile("image[]", fmt.Sprintf("reference_%d.png", i))
		if err != nil {
			return nil, err
		}
		if _, err := fw.Write(ref); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/images/edits", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return httpReq, nil
}

// classifyStatus は HTTP ステータスを本パッケージのエラー分類へ写像します。
func (p *OpenAIProvider) classifyStatus(resp *http.Response) error {
	errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	cause := fmt.Errorf("status=%d body=%s", resp.StatusCode, string(errBody))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: p.Name(), Err: cause}
	case http.StatusTooManyRequests:
		return &RateLimitedError{
			Provider:   p.Name(),
			RetryAfter: retryAfter(resp.Header.Get("Retry-After")),
			Err:        cause,
		}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &InvalidRequestError{Provider: p.Name(), Err: cause}
	default:
		return &UnavailableError{Provider: p.Name(), Err: cause}
	}
}

// retryAfter は Retry-After ヘッダ（秒指定）を待機時間へ変換します。
func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
