package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/bukatsu/internal/model"
)

// --- モック定義 ---

// mockActivityRegistry はActivityRegistryInterfaceのモック実装。
type mockActivityRegistry struct {
	listFn       func() map[string]model.Activity
	signupFn     func(name, email string) error
	unregisterFn func(name, email string) error
}

func (m *mockActivityRegistry) List() map[string]model.Activity {
	if m.listFn != nil {
		return m.listFn()
	}
	return map[string]model.Activity{}
}

func (m *mockActivityRegistry) Signup(name, email string) error {
	if m.signupFn != nil {
		return m.signupFn(name, email)
	}
	return nil
}

func (m *mockActivityRegistry) Unregister(name, email string) error {
	if m.unregisterFn != nil {
		return m.unregisterFn(name, email)
	}
	return nil
}

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseResponseFields はレスポンスボディをフィールド名→値のmapとしてパースするヘルパー。
func parseResponseFields(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

// --- GET /activities テスト ---

func TestActivityHandler_ListActivities_Success(t *testing.T) {
	registry := &mockActivityRegistry{
		listFn: func() map[string]model.Activity {
			return map[string]model.Activity{
				"Chess Club": {
					Name:            "Chess Club",
					Description:     "Learn strategies and compete in chess tournaments",
					Schedule:        "Fridays and Saturdays, 3:30 PM - 5:00 PM",
					MaxParticipants: 12,
					Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
				},
				"Art Club": {
					Name:            "Art Club",
					Description:     "Explore various art techniques",
					Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
					MaxParticipants: 15,
					Participants:    []string{},
				},
			}
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()

	h.ListActivities(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Content-Type = %q, want %q", contentType, "application/json")
	}

	var result map[string]map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("activities = %d, want 2", len(result))
	}

	chess, ok := result["Chess Club"]
	if !ok {
		t.Fatal("Chess Club not found in response")
	}
	if chess["description"] != "Learn strategies and compete in chess tournaments" {
		t.Errorf("description = %v", chess["description"])
	}
	if chess["max_participants"] != float64(12) {
		t.Errorf("max_participants = %v, want 12", chess["max_participants"])
	}

	participants, ok := chess["participants"].([]interface{})
	if !ok {
		t.Fatalf("participants is not an array: %v", chess["participants"])
	}
	if len(participants) != 2 || participants[0] != "michael@mergington.edu" {
		t.Errorf("participants = %v", participants)
	}

	// 活動名はキー側にのみ現れ、レコード本体には含まれない
	if _, exists := chess["name"]; exists {
		t.Error("name field should not appear in activity record")
	}
}

func TestActivityHandler_ListActivities_EmptyParticipantsSerializesAsArray(t *testing.T) {
	registry := &mockActivityRegistry{
		listFn: func() map[string]model.Activity {
			return map[string]model.Activity{
				"Art Club": {
					Name:            "Art Club",
					Description:     "Explore various art techniques",
					Schedule:        "Thursdays, 3:30 PM - 5:00 PM",
					MaxParticipants: 15,
					Participants:    []string{},
				},
			}
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()

	h.ListActivities(w, req)

	// 空の参加者リストはnullではなく[]として返す
	body := w.Body.String()
	if !json.Valid([]byte(body)) {
		t.Fatalf("invalid JSON: %s", body)
	}
	var result map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	participants, ok := result["Art Club"]["participants"].([]interface{})
	if !ok {
		t.Fatalf("participants should be an array, got: %v", result["Art Club"]["participants"])
	}
	if len(participants) != 0 {
		t.Errorf("participants = %v, want empty", participants)
	}
}

// --- POST /activities/{name}/signup テスト ---

func TestActivityHandler_Signup_Success(t *testing.T) {
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			if name != "Chess Club" {
				t.Errorf("name = %q, want %q", name, "Chess Club")
			}
			if email != "emma@mergington.edu" {
				t.Errorf("email = %q, want %q", email, "emma@mergington.edu")
			}
			return nil
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=emma@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	result := parseResponseFields(t, w)
	want := "Signed up emma@mergington.edu for Chess Club"
	if result["message"] != want {
		t.Errorf("message = %q, want %q", result["message"], want)
	}
	if len(result) != 1 {
		t.Errorf("response fields = %d, want 1 (message only)", len(result))
	}
}

func TestActivityHandler_Signup_EncodedName_IsDecoded(t *testing.T) {
	var gotName string
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			gotName = name
			return nil
		},
	}

	h := NewActivityHandler(registry)

	// chiはRawPath付きリクエストでエンコード済みのセグメントを返す
	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=emma@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess%20Club")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	if gotName != "Chess Club" {
		t.Errorf("name = %q, want %q", gotName, "Chess Club")
	}

	result := parseResponseFields(t, w)
	want := "Signed up emma@mergington.edu for Chess Club"
	if result["message"] != want {
		t.Errorf("message = %q, want %q", result["message"], want)
	}
}

func TestActivityHandler_Signup_MissingEmail_ReturnsBadRequest(t *testing.T) {
	called := false
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			called = true
			return nil
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
	if called {
		t.Error("registry should not be called when email is missing")
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "email query parameter is required" {
		t.Errorf("detail = %q", result["detail"])
	}
}

func TestActivityHandler_Signup_UnknownActivity_ReturnsNotFound(t *testing.T) {
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			return model.NewActivityNotFoundError()
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodPost, "/activities/Unknown/signup?email=emma@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Unknown")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "Activity not found" {
		t.Errorf("detail = %q, want %q", result["detail"], "Activity not found")
	}
	if len(result) != 1 {
		t.Errorf("response fields = %d, want 1 (detail only)", len(result))
	}
}

func TestActivityHandler_Signup_Duplicate_ReturnsBadRequest(t *testing.T) {
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			return model.NewAlreadyRegisteredError(email)
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=michael@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	result := parseResponseFields(t, w)
	want := "michael@mergington.edu is already signed up for this activity"
	if result["detail"] != want {
		t.Errorf("detail = %q, want %q", result["detail"], want)
	}
}

func TestActivityHandler_Signup_UnexpectedError_ReturnsInternalServerError(t *testing.T) {
	registry := &mockActivityRegistry{
		signupFn: func(name, email string) error {
			return errors.New("unexpected failure")
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=emma@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Signup(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "Internal Server Error" {
		t.Errorf("detail = %q, want %q", result["detail"], "Internal Server Error")
	}
}

// --- DELETE /activities/{name}/participants テスト ---

func TestActivityHandler_Unregister_Success(t *testing.T) {
	registry := &mockActivityRegistry{
		unregisterFn: func(name, email string) error {
			if name != "Chess Club" {
				t.Errorf("name = %q, want %q", name, "Chess Club")
			}
			if email != "michael@mergington.edu" {
				t.Errorf("email = %q, want %q", email, "michael@mergington.edu")
			}
			return nil
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodDelete, "/activities/Chess%20Club/participants?email=michael@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	result := parseResponseFields(t, w)
	want := "Unregistered michael@mergington.edu from Chess Club"
	if result["message"] != want {
		t.Errorf("message = %q, want %q", result["message"], want)
	}
}

func TestActivityHandler_Unregister_MissingEmail_ReturnsBadRequest(t *testing.T) {
	h := NewActivityHandler(&mockActivityRegistry{})

	req := httptest.NewRequest(http.MethodDelete, "/activities/Chess%20Club/participants", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "email query parameter is required" {
		t.Errorf("detail = %q", result["detail"])
	}
}

func TestActivityHandler_Unregister_UnknownActivity_ReturnsNotFound(t *testing.T) {
	registry := &mockActivityRegistry{
		unregisterFn: func(name, email string) error {
			return model.NewActivityNotFoundError()
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodDelete, "/activities/Unknown/participants?email=emma@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Unknown")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "Activity not found" {
		t.Errorf("detail = %q, want %q", result["detail"], "Activity not found")
	}
}

func TestActivityHandler_Unregister_MissingParticipant_ReturnsNotFound(t *testing.T) {
	registry := &mockActivityRegistry{
		unregisterFn: func(name, email string) error {
			return model.NewParticipantNotFoundError()
		},
	}

	h := NewActivityHandler(registry)

	req := httptest.NewRequest(http.MethodDelete, "/activities/Chess%20Club/participants?email=ghost@mergington.edu", nil)
	req = withChiURLParam(req, "name", "Chess Club")
	w := httptest.NewRecorder()

	h.Unregister(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}

	result := parseResponseFields(t, w)
	if result["detail"] != "Participant not found in this activity" {
		t.Errorf("detail = %q, want %q", result["detail"], "Participant not found in this activity")
	}
}

// --- ヘルパー関数テスト ---

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		apiErr *model.APIError
		want   int
	}{
		{
			name:   "活動未検出は404",
			apiErr: model.NewActivityNotFoundError(),
			want:   http.StatusNotFound,
		},
		{
			name:   "参加者未検出は404",
			apiErr: model.NewParticipantNotFoundError(),
			want:   http.StatusNotFound,
		},
		{
			name:   "重複登録は400",
			apiErr: model.NewAlreadyRegisteredError("emma@mergington.edu"),
			want:   http.StatusBadRequest,
		},
		{
			name:   "未知のコードは500",
			apiErr: &model.APIError{Code: "UNKNOWN", Message: "unknown"},
			want:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.apiErr); got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.apiErr.Code, got, tt.want)
			}
		})
	}
}

func TestActivityNameFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		urlParam string
		want     string
	}{
		{
			name:     "エンコードなし",
			urlParam: "Chess Club",
			want:     "Chess Club",
		},
		{
			name:     "スペースのパーセントエンコーディング",
			urlParam: "Chess%20Club",
			want:     "Chess Club",
		},
		{
			name:     "不正なエンコーディングはそのまま返す",
			urlParam: "Chess%ZZClub",
			want:     "Chess%ZZClub",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/activities", nil)
			req = withChiURLParam(req, "name", tt.urlParam)

			if got := activityNameFromRequest(req); got != tt.want {
				t.Errorf("activityNameFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}
