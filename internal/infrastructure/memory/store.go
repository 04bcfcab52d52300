// Package memory はリポジトリ契約を満たすインメモリバックエンドを提供する
// 単一プロセス内での利用を想定し、全操作をミューテックスで直列化する
package memory

import (
	"sync"

	"github.com/google/uuid"
)

// Store は単一エンティティ型のミューテックス保護付きインメモリストア
// clone で格納時・取得時に複製し、呼び出し側の変更がストアへ漏れないようにする
type Store[T any] struct {
	mu    sync.RWMutex
	items map[string]*T
	clone func(*T) *T
}

// NewStore は新しいストアを作成する
func NewStore[T any](clone func(*T) *T) *Store[T] {
	return &Store[T]{
		items: make(map[string]*T),
		clone: clone,
	}
}

// NewID は新しいエンティティIDを生成する
func NewID() string {
	return uuid.New().String()
}

// Put はエンティティを格納する（既存IDは上書き）
func (s *Store[T]) Put(id string, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = s.clone(v)
}

// Get はIDからエンティティを取得する
func (s *Store[T]) Get(id string) (*T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[id]
	if !ok {
		return nil, false
	}
	return s.clone(v), true
}

// Replace は既存エンティティを置き換える。存在しない場合は false を返す
func (s *Store[T]) Replace(id string, v *T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	s.items[id] = s.clone(v)
	return true
}

// Delete はエンティティを削除する。存在しない場合は false を返す
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// List は全エンティティの複製を返す
func (s *Store[T]) List() []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, s.clone(v))
	}
	return out
}

// Mutate は書き込みロック下で格納中のエンティティに fn を適用する
// check-then-act を単一の直列化ポイントにまとめるための条件付き更新
func (s *Store[T]) Mutate(id string, fn func(*T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	if !ok {
		return errNotFound
	}
	return fn(v)
}

// errNotFound は Mutate 内部用の番兵エラー
// 各リポジトリがドメインの NotFound エラーへ変換する
var errNotFound = notFoundError{}

type notFoundError struct{}

func (notFoundError) Error() string { return "entity not found" }
