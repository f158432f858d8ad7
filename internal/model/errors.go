// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// MessageはそのままHTTPレスポンスのdetailフィールドとして返される固定文字列。
type APIError struct {
	Code    string // エラーコード
	Message string // クライアントに返すdetailメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード。
// エラー分類はこの3種で閉じている（他の失敗モードは存在しない）。
const (
	ErrCodeActivityNotFound    = "ACTIVITY_NOT_FOUND"
	ErrCodeParticipantNotFound = "PARTICIPANT_NOT_FOUND"
	ErrCodeAlreadyRegistered   = "ALREADY_REGISTERED"
)

// NewActivityNotFoundError は活動未検出エラーを生成する。
func NewActivityNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeActivityNotFound,
		Message: "Activity not found",
	}
}

// NewParticipantNotFoundError は参加者未検出エラーを生成する。
// 指定された活動の参加者リストにemailが存在しない場合に使用する。
func NewParticipantNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeParticipantNotFound,
		Message: "Participant not found in this activity",
	}
}

// NewAlreadyRegisteredError は重複登録エラーを生成する。
// メッセージ文字列はクライアントが解釈するAPI互換性の一部であり変更しない。
func NewAlreadyRegisteredError(email string) *APIError {
	return &APIError{
		Code:    ErrCodeAlreadyRegistered,
		Message: fmt.Sprintf("%s is already signed up for this activity", email),
	}
}
