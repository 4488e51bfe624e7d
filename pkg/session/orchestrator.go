package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/shouni/godot-sprite-kit/pkg/domain"
	"github.com/shouni/godot-sprite-kit/pkg/provider"
)

// DefaultCallTimeout はプロバイダ呼び出し1回あたりの既定タイムアウトです。
const DefaultCallTimeout = 120 * time.Second

// Orchestrator は生成セッションを完了まで駆動します。
// 同一アセットへのセッションはアセット単位のセマフォで直列化され、
// 同時にインフライトとなるプロバイダ呼び出しはアセットあたり最大1件です。
// 異なるアセットのセッションは互いにブロックしません。
type Orchestrator struct {
	gateway     provider.Gateway
	refs        *provider.RefSource
	policy      RetryPolicy
	callTimeout time.Duration

	mu         sync.Mutex
	sessions   map[string]*Session
	assetLocks map[string]*semaphore.Weighted
}

// NewOrchestrator は依存関係を注入して Orchestrator を初期化します。
// refs は nil を許容します（参照画像の解決なし動作）。
func NewOrchestrator(gateway provider.Gateway, refs *provider.RefSource, policy RetryPolicy, callTimeout time.Duration) (*Orchestrator, error) {
	if gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if policy.MaxAttempts < 1 {
		return nil, fmt.Errorf("policy.MaxAttempts must be at least 1")
	}
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Orchestrator{
		gateway:     gateway,
		refs:        refs,
		policy:      policy,
		callTimeout: callTimeout,
		sessions:    make(map[string]*Session),
		assetLocks:  make(map[string]*semaphore.Weighted),
	}, nil
}

// StartSession は asset に対する生成セッションを開始し、進行中の Session を
// 直ちに返します。完了は Session.Wait で待機できます。成功したフレームは
// 要求された Index の位置でアセットに挿入されます。フレーム単体の恒久的
// 失敗はセッションを中断せず、結果記録に残ります。
func (o *Orchestrator) StartSession(ctx context.Context, asset *domain.SpriteAsset, reqs []FrameRequest) (*Session, error) {
	if asset == nil {
		return nil, fmt.Errorf("asset is required")
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("at least one frame request is required")
	}

	sess := newSession(asset.ID)
	sessCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel

	o.register(sess)
	go o.run(sessCtx, cancel, sess, asset, reqs)
	return sess, nil
}

// run はセッション本体です。アセット単位のセマフォで直列化され、
// 他アセットのセッションをブロックしません。
func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, sess *Session, asset *domain.SpriteAsset, reqs []FrameRequest) {
	defer close(sess.done)
	defer o.unregister(sess.ID)
	defer cancel()

	lock := o.assetLock(asset.ID)
	if err := lock.Acquire(ctx, 1); err != nil {
		slog.Warn("セッション開始待機中にキャンセルされました", "session_id", sess.ID, "error", err)
		for _, fr := range reqs {
			sess.record(FrameOutcome{Index: fr.Index, Err: &FrameGenerationError{Index: fr.Index, Err: err}})
		}
		sess.setStatus(StatusFailed)
		return
	}
	defer lock.Release(1)

	sess.setStatus(StatusInProgress)
	slog.InfoContext(ctx, "生成セッションを開始します",
		"session_id", sess.ID, "asset_id", asset.ID, "provider", o.gateway.Name(), "frames", len(reqs))

	// テーマの参照画像はセッションで1回だけ解決する
	var refImages [][]byte
	if o.refs != nil && len(asset.Theme.ReferenceURLs) > 0 {
		refImages = o.refs.Resolve(ctx, asset.Theme.ReferenceURLs)
	}

	// 要求順＝フレーム順を保証するため Index 昇順で処理する
	ordered := make([]FrameRequest, len(reqs))
	copy(ordered, reqs)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	succeeded := 0
	for _, fr := range ordered {
		if err := ctx.Err(); err != nil {
			// キャンセル後は新しい呼び出しを発行しない。完了済みの結果は保持する。
			sess.record(FrameOutcome{Index: fr.Index, Err: &FrameGenerationError{Index: fr.Index, Err: err}})
			continue
		}

		req := domain.GenerationRequest{
			Prompt:          fr.Prompt,
			Theme:           asset.Theme,
			ReferenceImages: refImages,
			Size:            asset.Params.Size,
			Seed:            fr.Seed,
			Provider:        o.gateway.Name(),
			ModelHint:       asset.Params.Model,
		}

		res, attempts, err := o.generateFrame(ctx, sess, req)
		if err != nil {
			slog.WarnContext(ctx, "フレーム生成に失敗しました。残りのフレームを継続します",
				"session_id", sess.ID, "frame_index", fr.Index, "attempts", attempts, "error", err)
			sess.record(FrameOutcome{Index: fr.Index, Attempts: attempts,
				Err: &FrameGenerationError{Index: fr.Index, Attempts: attempts, Err: err}})
			continue
		}

		duration := fr.Duration
		if duration <= 0 {
			duration = domain.DefaultFrameDuration
		}
		asset.AddFrame(domain.Frame{Index: fr.Index, Image: res.Data, Duration: duration})
		sess.record(FrameOutcome{Index: fr.Index, Attempts: attempts})
		succeeded++
	}

	switch {
	case succeeded == len(ordered):
		sess.setStatus(StatusComplete)
	case succeeded > 0:
		sess.setStatus(StatusPartialFailure)
	default:
		sess.setStatus(StatusFailed)
	}

	slog.InfoContext(ctx, "生成セッションが終了しました",
		"session_id", sess.ID, "status", sess.Status(), "succeeded", succeeded, "requested", len(ordered))
}

// MutateAsset はアセットへの構造変更（フレームの追加・削除・並べ替え等）を
// 生成セッションと同じアセット単位の直列化のもとで適用します。進行中の
// セッションの途中に構造変更が割り込むことはありません。
func (o *Orchestrator) MutateAsset(ctx context.Context, asset *domain.SpriteAsset, mutate func(*domain.SpriteAsset) error) error {
	if asset == nil {
		return fmt.Errorf("asset is required")
	}
	if mutate == nil {
		return fmt.Errorf("mutate is required")
	}
	lock := o.assetLock(asset.ID)
	if err := lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("アセットロックの取得に失敗しました: %w", err)
	}
	defer lock.Release(1)
	return mutate(asset)
}

// CancelSession は協調的キャンセルを要求します。対象セッションの以後の
// プロバイダ呼び出しのみが停止され、他のセッションには影響しません。
// 未知の ID や既に終了したセッションに対しては何もしません。
func (o *Orchestrator) CancelSession(sessionID string) {
	o.mu.Lock()
	sess, ok := o.sessions[sessionID]
	o.mu.Unlock()
	if ok && sess.cancel != nil {
		sess.cancel()
	}
}

// generateFrame は重複排除とリトライを含めて1フレーム分の結果を得ます。
func (o *Orchestrator) generateFrame(ctx context.Context, sess *Session, req domain.GenerationRequest) (*domain.ImageResult, int, error) {
	// 能力確認はネットワーク呼び出しの前に行う
	if need := provider.RequiredCapability(req); !o.gateway.Supports(need) {
		return nil, 0, &provider.UnsupportedCapabilityError{Provider: o.gateway.Name(), Capability: need}
	}

	fp := fingerprint(o.gateway.Name(), req)
	if res, ok := sess.cachedResult(fp); ok {
		slog.DebugContext(ctx, "フィンガープリント一致によりキャッシュを再利用します",
			"session_id", sess.ID, "fingerprint", fp[:12])
		return res, 0, nil
	}

	var lastErr error
	for attempt := 1; attempt <= o.policy.MaxAttempts; attempt++ {
		res, err := o.callOnce(ctx, req)
		if err == nil {
			sess.storeResult(fp, res)
			return res, attempt, nil
		}
		lastErr = err

		if !provider.IsRetryable(err) {
			return nil, attempt, err
		}
		if attempt == o.policy.MaxAttempts {
			return nil, attempt, fmt.Errorf("リトライ上限（%d回）に達しました: %w", o.policy.MaxAttempts, err)
		}

		delay := o.policy.Backoff(attempt, provider.RetryAfterHint(err))
		slog.DebugContext(ctx, "リトライ可能エラーのため待機します",
			"session_id", sess.ID, "attempt", attempt, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, attempt, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, o.policy.MaxAttempts, lastErr
}

// callOnce は呼び出し単位のタイムアウトを適用して1回だけ生成を実行します。
// タイムアウト起因の失敗は ProviderUnavailable として扱います。
func (o *Orchestrator) callOnce(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResult, error) {
	cctx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	res, err := o.gateway.Generate(cctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil && !provider.IsRetryable(err) {
			return nil, &provider.UnavailableError{Provider: o.gateway.Name(), Err: err}
		}
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) register(sess *Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sessions[sess.ID] = sess
}

func (o *Orchestrator) unregister(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.sessions, id)
}

// assetLock はアセット単位のセマフォを遅延生成して返します。
func (o *Orchestrator) assetLock(assetID string) *semaphore.Weighted {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.assetLocks[assetID]
	if !ok {
		lock = semaphore.NewWeighted(1)
		o.assetLocks[assetID] = lock
	}
	return lock
}
