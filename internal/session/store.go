// Package session はログイン状態のプロセス内ストアを提供する。
//
// Store は現在のIdentityスナップショットを保持し、変化を購読者へ通知する。
// 管理画面のワークスペースとプロフィールリゾルバは、このストアを購読して
// 認証状態の変化（ログイン、ログアウト、セッション失効）に追従する。
package session

import (
	"sync"

	"github.com/youssef/agora/internal/model"
)

// Listener はIdentityの変化を受け取るコールバック。
// ログアウト時はnilが渡される。
type Listener func(identity *model.Identity)

// Store はIdentityスナップショットの保持と変更通知を行う。
// すべてのメソッドは複数ゴルーチンから同時に呼び出せる。
type Store struct {
	mu        sync.Mutex
	current   *model.Identity
	nextID    int
	listeners map[int]Listener
}

// NewStore はログアウト状態のStoreを生成する。
func NewStore() *Store {
	return &Store{
		listeners: make(map[int]Listener),
	}
}

// Current は現在のIdentityのコピーを返す。未ログインの場合はnilを返す。
// 返り値は呼び出し側が自由に変更してよいスナップショットであり、
// ストア内部の状態には影響しない。
func (s *Store) Current() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIdentity(s.current)
}

// Set はIdentityを更新し、全購読者へ新しいスナップショットを通知する。
// nilを渡すとログアウト状態になる。
// 通知はSetの呼び出し元のゴルーチンで同期的に行われる。
func (s *Store) Set(identity *model.Identity) {
	s.mu.Lock()
	s.current = cloneIdentity(identity)
	notify := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		notify = append(notify, l)
	}
	snapshot := cloneIdentity(s.current)
	s.mu.Unlock()

	// ロック外で通知する。リスナー内からCurrentやSubscribeを呼んでも
	// デッドロックしない。
	for _, l := range notify {
		l(cloneIdentity(snapshot))
	}
}

// Subscribe はリスナーを登録し、登録解除用の関数を返す。
// 登録直後に現在のスナップショットで一度呼び出されるため、
// 購読者は初期状態の取得と変更の追跡を同じ経路で扱える。
func (s *Store) Subscribe(listener Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	snapshot := cloneIdentity(s.current)
	s.mu.Unlock()

	listener(snapshot)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// cloneIdentity はIdentityのコピーを返す。nilはnilのまま返す。
func cloneIdentity(identity *model.Identity) *model.Identity {
	if identity == nil {
		return nil
	}
	c := *identity
	return &c
}
