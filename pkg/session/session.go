package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shouni/godot-sprite-kit/pkg/domain"
)

// Status は生成セッションの状態です。Complete / PartialFailure / Failed は
// 終端状態であり、以後の遷移はありません。
type Status string

const (
	StatusPending        Status = "pending"
	StatusInProgress     Status = "in_progress"
	StatusComplete       Status = "complete"
	StatusPartialFailure Status = "partial_failure"
	StatusFailed         Status = "failed"
)

// terminal は終端状態かどうかを返します。
func (s Status) terminal() bool {
	return s == StatusComplete || s == StatusPartialFailure || s == StatusFailed
}

// FrameRequest は1フレーム分の生成要求です。Index は生成結果を挿入する
// アセット内の位置を指します。
type FrameRequest struct {
	Index    int
	Prompt   string
	Seed     *int64
	Duration time.Duration
}

// FrameOutcome は1フレーム分の結果記録です。Err が nil なら成功です。
type FrameOutcome struct {
	Index    int
	Attempts int
	Err      error
}

// FrameGenerationError はフレーム単位の恒久的失敗です。
// セッションは残りのフレームの処理を継続します。
type FrameGenerationError struct {
	Index    int
	Attempts int
	Err      error
}

func (e *FrameGenerationError) Error() string {
	return fmt.Sprintf("frame %d generation failed after %d attempt(s): %v", e.Index, e.Attempts, e.Err)
}

func (e *FrameGenerationError) Unwrap() error { return e.Err }

// Session は単一アセットに対する1回の生成実行の状態です。
// フィンガープリントキャッシュはこのセッション内に閉じています。
type Session struct {
	ID      string
	AssetID string

	mu       sync.Mutex
	status   Status
	outcomes []FrameOutcome
	cache    map[string]*domain.ImageResult
	cancel   func()
	done     chan struct{}
}

func newSession(assetID string) *Session {
	return &Session{
		ID:      uuid.NewString(),
		AssetID: assetID,
		status:  StatusPending,
		cache:   make(map[string]*domain.ImageResult),
		done:    make(chan struct{}),
	}
}

// Done はセッション終了時に閉じられるチャネルを返します。
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait はセッションが終端状態に達するまでブロックします。
func (s *Session) Wait() Status {
	<-s.done
	return s.Status()
}

// Status は現在の状態を返します。
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Outcomes はフレームごとの結果記録のコピーを返します。
func (s *Session) Outcomes() []FrameOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FrameOutcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// FailedIndices は恒久的に失敗したフレームの Index 一覧を返します。
// 呼び出し側はこの一覧を使って失敗フレームのみを再要求できます。
func (s *Session) FailedIndices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var failed []int
	for _, o := range s.outcomes {
		if o.Err != nil {
			failed = append(failed, o.Index)
		}
	}
	return failed
}

// setStatus は状態を前進方向にのみ遷移させます。終端状態からは変化しません。
func (s *Session) setStatus(next Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.terminal() {
		return
	}
	s.status = next
}

func (s *Session) record(o FrameOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, o)
}

func (s *Session) cachedResult(fp string) (*domain.ImageResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.cache[fp]
	return res, ok
}

func (s *Session) storeResult(fp string, res *domain.ImageResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[fp] = res
}

// fingerprint は生成要求の決定的な署名を計算します。同一署名の要求は
// セッション内で重複排除され、プロバイダ呼び出しは1回だけ行われます。
func fingerprint(providerName string, req domain.GenerationRequest) string {
	var b strings.Builder
	b.WriteString(providerName)
	b.WriteByte(0)
	b.WriteString(req.Prompt)
	b.WriteByte(0)
	b.WriteString(req.Theme.StylePrompt)
	b.WriteByte(0)
	b.WriteString(req.Theme.Keywords)
	b.WriteByte(0)
	b.WriteString(req.Theme.Camera)
	b.WriteByte(0)
	for _, u := range req.Theme.ReferenceURLs {
		b.WriteString(u)
		b.WriteByte(0)
	}
	if req.Seed != nil {
		b.WriteString(strconv.FormatInt(*req.Seed, 10))
	}
	b.WriteByte(0)
	b.WriteString(req.Size)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
