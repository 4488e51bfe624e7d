package domain

// GenerationRequest は単一の画像生成要求です。発行後は変更しません。
// ReferenceImages は解決済みの画像バイト列で、参照誘導生成に対応した
// プロバイダのみが利用します。
type GenerationRequest struct {
	Prompt          string
	Theme           ThemeDescriptor
	ReferenceImages [][]byte
	Size            string
	Seed            *int64
	Provider        string
	ModelHint       string
}

// ImageResult は生成された画像データとプロバイダ報告のメタデータです。
type ImageResult struct {
	Data     []byte
	MimeType string
	Model    string
	UsedSeed int64
}
