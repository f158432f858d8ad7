// Package activity は課外活動レジストリのドメインロジックを提供する。
// 一覧取得・参加登録・登録解除の3操作と、その検証ルールを実装する。
package activity

import (
	"sort"
	"sync"

	"github.com/hitoshi/bukatsu/internal/model"
)

// メトリクスのreasonラベル値。
const (
	ReasonActivityNotFound    = "activity_not_found"
	ReasonParticipantNotFound = "participant_not_found"
	ReasonAlreadySignedUp     = "already_signed_up"
)

// Recorder はレジストリ操作のメトリクス記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type Recorder interface {
	RecordSignup(activity string)
	RecordSignupRejected(reason string)
	RecordUnregister(activity string)
	RecordUnregisterRejected(reason string)
	SetParticipants(activity string, count int)
}

// noopRecorder はメトリクスを記録しないRecorder実装。
// レジストリ単体で使用する場合（テスト等）のデフォルト。
type noopRecorder struct{}

func (noopRecorder) RecordSignup(string)             {}
func (noopRecorder) RecordSignupRejected(string)     {}
func (noopRecorder) RecordUnregister(string)         {}
func (noopRecorder) RecordUnregisterRejected(string) {}
func (noopRecorder) SetParticipants(string, int)     {}

// Registry は課外活動のインメモリレジストリ。
// 活動はプロセス起動時に一度だけシードされ、プロセスの生存期間中保持される。
// 参加者リストへの変更はレジストリ全体のRWMutexで直列化する
// （単一プロセス・小規模のため活動ごとのロックは持たない）。
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*model.Activity
	recorder   Recorder
}

// NewRegistry はシードデータからレジストリを生成する。
// シードはコピーして保持するため、呼び出し側のマップへの変更は反映されない。
// recがnilの場合はメトリクスを記録しない。
func NewRegistry(seed map[string]*model.Activity, rec Recorder) *Registry {
	if rec == nil {
		rec = noopRecorder{}
	}

	activities := make(map[string]*model.Activity, len(seed))
	for name, a := range seed {
		clone := a.Clone()
		clone.Name = name
		activities[name] = &clone
		rec.SetParticipants(name, len(clone.Participants))
	}

	return &Registry{
		activities: activities,
		recorder:   rec,
	}
}

// List は全活動のマップを返す。常に成功し、副作用はない。
// 返り値は参加者スライスを含む深いコピーであり、内部状態への参照を漏らさない。
func (r *Registry) List() map[string]model.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]model.Activity, len(r.activities))
	for name, a := range r.activities {
		result[name] = a.Clone()
	}
	return result
}

// Get は指定された活動のコピーを返す。存在しない場合はActivityNotFoundエラー。
func (r *Registry) Get(name string) (model.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.activities[name]
	if !ok {
		return model.Activity{}, model.NewActivityNotFoundError()
	}
	return a.Clone(), nil
}

// Signup はemailを指定活動の参加者リスト末尾に追加する。
// 活動が存在しない場合はActivityNotFound、同じ活動に登録済みの場合は
// AlreadyRegisteredエラーを返す。エラー時にレジストリの状態は変化しない。
// 定員（MaxParticipants）は上限として検査しない。締切判断は利用側に委ねる。
func (r *Registry) Signup(name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		r.recorder.RecordSignupRejected(ReasonActivityNotFound)
		return model.NewActivityNotFoundError()
	}

	if a.HasParticipant(email) {
		r.recorder.RecordSignupRejected(ReasonAlreadySignedUp)
		return model.NewAlreadyRegisteredError(email)
	}

	a.Participants = append(a.Participants, email)
	r.recorder.RecordSignup(name)
	r.recorder.SetParticipants(name, len(a.Participants))
	return nil
}

// Unregister はemailを指定活動の参加者リストから取り除く。
// 活動が存在しない場合はActivityNotFound、参加者リストにemailが
// 存在しない場合はParticipantNotFoundエラーを返す。
// 削除後も残りの参加者の順序は保持される。
func (r *Registry) Unregister(name, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.activities[name]
	if !ok {
		r.recorder.RecordUnregisterRejected(ReasonActivityNotFound)
		return model.NewActivityNotFoundError()
	}

	idx := -1
	for i, p := range a.Participants {
		if p == email {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.recorder.RecordUnregisterRejected(ReasonParticipantNotFound)
		return model.NewParticipantNotFoundError()
	}

	a.Participants = append(a.Participants[:idx], a.Participants[idx+1:]...)
	r.recorder.RecordUnregister(name)
	r.recorder.SetParticipants(name, len(a.Participants))
	return nil
}

// Len は登録されている活動数を返す。
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Names は活動名をソート済みで返す。ログおよびヘルスチェック用。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.activities))
	for name := range r.activities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
