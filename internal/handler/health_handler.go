package handler

import (
	"encoding/json"
	"net/http"
)

// ActivityCounter はヘルスチェックが必要とするインターフェース。
// activity.Registryを直接参照せず、部分集合として定義する。
type ActivityCounter interface {
	// Len は登録されている活動数を返す。
	Len() int
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
// コンテナのヘルスチェックとデプロイ後の疎通確認で使用する。
type HealthHandler struct {
	counter ActivityCounter
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(counter ActivityCounter) *HealthHandler {
	return &HealthHandler{
		counter: counter,
	}
}

// healthResponse はヘルスチェックのAPIレスポンス。
type healthResponse struct {
	Status     string `json:"status"`
	Activities int    `json:"activities"`
}

// Check はサーバーの稼働状態と登録済み活動数を返す。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:     "ok",
		Activities: h.counter.Len(),
	})
}
