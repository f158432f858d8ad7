// Package web は組み込みのフロントエンド静的アセットを配信する。
package web

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// Handler は/static/以下のフロントエンドアセットを配信するハンドラーを返す。
// アセットはバイナリに埋め込まれるため、実行時のファイル配置に依存しない。
func Handler() http.Handler {
	return http.FileServerFS(staticFS)
}

// RedirectRoot はルートパスへのアクセスをフロントエンドに307でリダイレクトする。
func RedirectRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
}
