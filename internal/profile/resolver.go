// Package profile はログイン中アカウントのプロフィール解決を提供する。
//
// Resolver はIdentityの変化を受けてプロフィールを検索し、解決状態を
// 購読者へ通知する。プロフィール行が存在しないことは正常な状態
// （ロール未割り当て）であり、エラーとは区別して扱う。
package profile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/youssef/agora/internal/model"
	"github.com/youssef/agora/internal/repository"
)

// State はプロフィール解決の状態を表す。
type State int

const (
	// StateUnresolved は初期状態。まだ解決を開始していない。
	StateUnresolved State = iota
	// StateResolving は検索実行中。
	StateResolving
	// StateResolved はプロフィール行が見つかった状態。
	StateResolved
	// StateAbsent はアカウントは有効だがプロフィール行が存在しない状態。
	// ロール未割り当てを意味し、エラーではない。
	StateAbsent
	// StateError は検索が失敗した状態。次の変化かRecheckまで保持される。
	StateError
)

// String はStateの文字列表現を返す。
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolving:
		return "resolving"
	case StateResolved:
		return "resolved"
	case StateAbsent:
		return "absent"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot は解決状態のある時点のコピーを表す。
// ProfileはStateResolvedの場合のみ非nil、ErrはStateErrorの場合のみ非nil。
type Snapshot struct {
	State   State
	Profile *model.Profile
	Err     error
}

// defaultLookupTimeout は1回の検索に許す時間。
const defaultLookupTimeout = 10 * time.Second

// Resolver はプロフィール解決の状態機械。
// 各解決の開始時に世代番号を進め、結果の反映時に世代が一致しない
// 結果を破棄する。これにより遅延した古い検索結果が新しい状態を
// 上書きすることはない（後勝ち）。
type Resolver struct {
	repo          repository.ProfileRepository
	lookupTimeout time.Duration

	mu         sync.Mutex
	generation uint64
	accountID  string
	snap       Snapshot
	nextID     int
	listeners  map[int]func(Snapshot)
	inflight   sync.WaitGroup
}

// NewResolver はResolverを生成する。
func NewResolver(repo repository.ProfileRepository) *Resolver {
	return &Resolver{
		repo:          repo,
		lookupTimeout: defaultLookupTimeout,
		snap:          Snapshot{State: StateUnresolved},
		listeners:     make(map[int]func(Snapshot)),
	}
}

// State は現在のスナップショットを返す。
func (r *Resolver) State() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSnapshot(r.snap)
}

// Subscribe はリスナーを登録し、登録解除用の関数を返す。
// 登録直後に現在のスナップショットで一度呼び出される。
func (r *Resolver) Subscribe(listener func(Snapshot)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = listener
	snap := cloneSnapshot(r.snap)
	r.mu.Unlock()

	listener(snap)

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

// OnIdentityChanged はIdentityの変化を受けて解決を開始する。
// session.StoreのSubscribeに渡して使う。
// identityがnil（ログアウト）の場合は検索せずAbsentへ遷移する。
func (r *Resolver) OnIdentityChanged(identity *model.Identity) {
	r.mu.Lock()
	r.generation++
	gen := r.generation

	if identity == nil {
		r.accountID = ""
		r.applyLocked(Snapshot{State: StateAbsent})
		return
	}

	r.accountID = identity.ID
	r.beginLookupLocked(gen, identity.ID)
}

// Recheck は現在のIdentityでプロフィール解決をやり直す。
// 管理画面の「再確認」操作に対応する。Identityがない場合は何もしない。
func (r *Resolver) Recheck() {
	r.mu.Lock()
	if r.accountID == "" {
		r.mu.Unlock()
		return
	}
	r.generation++
	r.beginLookupLocked(r.generation, r.accountID)
}

// Wait は進行中の検索がすべて完了するまで待つ。終了処理とテストで使う。
func (r *Resolver) Wait() {
	r.inflight.Wait()
}

// beginLookupLocked はResolvingへ遷移し、検索ゴルーチンを起動する。
// 呼び出し側がロックを保持していること。ロックを解放して返る。
func (r *Resolver) beginLookupLocked(gen uint64, accountID string) {
	r.inflight.Add(1)
	r.applyLocked(Snapshot{State: StateResolving})

	go func() {
		defer r.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.lookupTimeout)
		defer cancel()

		p, err := r.repo.FindByID(ctx, accountID)

		r.mu.Lock()
		if gen != r.generation {
			// 古い世代の結果は反映しない
			r.mu.Unlock()
			slog.Debug("stale profile lookup discarded",
				slog.String("account_id", accountID),
				slog.Uint64("generation", gen),
			)
			return
		}

		switch {
		case err != nil:
			slog.Error("profile lookup failed",
				slog.String("account_id", accountID),
				slog.String("error", err.Error()),
			)
			r.applyLocked(Snapshot{State: StateError, Err: err})
		case p == nil:
			r.applyLocked(Snapshot{State: StateAbsent})
		default:
			r.applyLocked(Snapshot{State: StateResolved, Profile: p})
		}
	}()
}

// applyLocked はスナップショットを更新し、購読者へ通知する。
// 呼び出し側がロックを保持していること。ロックを解放して返る。
func (r *Resolver) applyLocked(snap Snapshot) {
	r.snap = snap
	notify := make([]func(Snapshot), 0, len(r.listeners))
	for _, l := range r.listeners {
		notify = append(notify, l)
	}
	r.mu.Unlock()

	for _, l := range notify {
		l(cloneSnapshot(snap))
	}
}

// cloneSnapshot はSnapshotのコピーを返す。Profileも複製する。
func cloneSnapshot(snap Snapshot) Snapshot {
	if snap.Profile != nil {
		p := *snap.Profile
		snap.Profile = &p
	}
	return snap
}
