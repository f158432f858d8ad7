// Package model はドメインモデルを定義する。
package model

// Activity は課外活動（部活動）を表す。
// Nameはレジストリのキーであり、JSONレスポンスではキー側に現れるため
// レコード本体にはシリアライズしない。
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// HasParticipant はemailがこの活動の参加者リストに含まれているかを返す。
// 重複チェックは活動ごとに行う（全活動横断ではない）。
func (a *Activity) HasParticipant(email string) bool {
	for _, p := range a.Participants {
		if p == email {
			return true
		}
	}
	return false
}

// Clone は参加者スライスを含む深いコピーを返す。
// レジストリの読み取り操作が内部状態への参照を漏らさないために使用する。
func (a *Activity) Clone() Activity {
	clone := *a
	clone.Participants = make([]string, len(a.Participants))
	copy(clone.Participants, a.Participants)
	return clone
}
