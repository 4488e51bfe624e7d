package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/godot-sprite-kit/pkg/imgutil"
)

const (
	// 参照画像はプロンプト文脈用のため、転送量削減に JPEG 圧縮をかけます。
	useReferenceCompression     = true
	referenceCompressionQuality = 75
)

// RefSource はテーマ記述子の参照画像 URL をバイト列へ解決します。
// http(s) URL と gs:// URI の両方に対応します。
type RefSource struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
}

// NewRefSource は依存関係を注入して RefSource を初期化します。
func NewRefSource(httpClient httpkit.ClientInterface, reader remoteio.InputReader) (*RefSource, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("reader is required")
	}
	return &RefSource{httpClient: httpClient, reader: reader}, nil
}

// Resolve は参照 URL の一覧を画像バイト列へ解決します。
// 個別の取得失敗は警告ログのうえスキップし、取得できたものだけを返します。
func (s *RefSource) Resolve(ctx context.Context, urls []string) [][]byte {
	var resolved [][]byte
	for _, u := range urls {
		if u == "" {
			continue
		}
		data, err := s.fetch(ctx, u)
		if err != nil {
			slog.WarnContext(ctx, "参照画像の取得に失敗しました。スキップして続行します", "url", u, "error", err)
			continue
		}
		resolved = append(resolved, data)
	}
	return resolved
}

func (s *RefSource) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var data []byte
	if strings.HasPrefix(rawURL, "gs://") {
		rc, err := s.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		if err != nil {
			return nil, err
		}
	} else {
		if safe, err := isSafeURL(rawURL); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		var err error
		data, err = s.httpClient.FetchBytes(ctx, rawURL)
		if err != nil {
			return nil, err
		}
	}

	if useReferenceCompression {
		if compressed, err := imgutil.CompressToJPEG(data, referenceCompressionQuality); err == nil {
			data = compressed
		}
	}
	return data, nil
}

// isSafeURL は SSRF (Server-Side Request Forgery) 対策として URL を検証します。
// 許可されたスキーム (http, https) かつ、プライベートIPやループバックアドレスを
// ターゲットにしていないことを確認します。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("ホスト '%s' の名前解決に失敗しました: %w", host, err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}

	return true, nil
}
