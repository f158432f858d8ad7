package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bukatsu/internal/model"
)

// ActivityRegistryInterface は活動ハンドラーが必要とするレジストリインターフェース。
type ActivityRegistryInterface interface {
	// List は全活動のスナップショットを活動名をキーとするマップで返す。
	List() map[string]model.Activity
	// Signup は活動にemailを登録する。
	Signup(name, email string) error
	// Unregister は活動からemailの登録を解除する。
	Unregister(name, email string) error
}

// ActivityHandler は活動管理のHTTPハンドラー。
type ActivityHandler struct {
	registry ActivityRegistryInterface
}

// NewActivityHandler はActivityHandlerを生成する。
func NewActivityHandler(registry ActivityRegistryInterface) *ActivityHandler {
	return &ActivityHandler{
		registry: registry,
	}
}

// messageResponse は操作成功時のAPIレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// detailResponse はエラー時のAPIレスポンス。
// detailフィールドのみを持つ（他のフィールドは返さない）。
type detailResponse struct {
	Detail string `json:"detail"`
}

// ListActivities は全活動の一覧を返す。
// GET /activities
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	activities := h.registry.List()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(activities)
}

// Signup は活動への参加登録を処理する。
// POST /activities/{name}/signup?email=...
func (h *ActivityHandler) Signup(w http.ResponseWriter, r *http.Request) {
	name := activityNameFromRequest(r)

	email := r.URL.Query().Get("email")
	if email == "" {
		writeDetailResponse(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	if err := h.registry.Signup(name, email); err != nil {
		handleRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{
		Message: fmt.Sprintf("Signed up %s for %s", email, name),
	})
}

// Unregister は活動からの参加登録解除を処理する。
// DELETE /activities/{name}/participants?email=...
func (h *ActivityHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	name := activityNameFromRequest(r)

	email := r.URL.Query().Get("email")
	if email == "" {
		writeDetailResponse(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	if err := h.registry.Unregister(name, email); err != nil {
		handleRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messageResponse{
		Message: fmt.Sprintf("Unregistered %s from %s", email, name),
	})
}

// SetupActivityRoutes は活動管理関連のルーティングを設定したchi.Routerを返す。
// signupMiddleware が nil でない場合、登録系エンドポイントに登録専用レート制限を適用する。
func SetupActivityRoutes(registry ActivityRegistryInterface, signupMiddleware func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	h := NewActivityHandler(registry)

	r.Route("/activities", func(r chi.Router) {
		r.Get("/", h.ListActivities)

		// /activities/{name} 以下のルーティング
		r.Route("/{name}", func(r chi.Router) {
			if signupMiddleware != nil {
				r.With(signupMiddleware).Post("/signup", h.Signup)
				r.With(signupMiddleware).Delete("/participants", h.Unregister)
			} else {
				r.Post("/signup", h.Signup)
				r.Delete("/participants", h.Unregister)
			}
		})
	})

	return r
}

// --- ヘルパー関数 ---

// activityNameFromRequest はURLパスから活動名を取り出す。
// chiはRawPath付きリクエストに対してエンコード済みセグメントを返すため、
// "Chess%20Club" のようなパスはここでデコードして "Chess Club" にする。
func activityNameFromRequest(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// writeDetailResponse はdetailフィールドのみのエラーレスポンスを書き込む。
func writeDetailResponse(w http.ResponseWriter, statusCode int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(detailResponse{Detail: detail})
}

// handleRegistryError はレジストリから返されたエラーを適切なHTTPステータスコードに変換する。
func handleRegistryError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeDetailResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr.Message)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeDetailResponse(w, http.StatusInternalServerError, "Internal Server Error")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeActivityNotFound, model.ErrCodeParticipantNotFound:
		return http.StatusNotFound
	case model.ErrCodeAlreadyRegistered:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
