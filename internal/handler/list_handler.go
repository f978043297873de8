package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/giftdesk/internal/model"
	"github.com/hitoshi/giftdesk/internal/pager"
)

// ListRegistry は名前からページング一覧を引くインターフェース。
type ListRegistry interface {
	Get(name string) (pager.Controller, bool)
	Names() []string
}

// ListHandler はページング一覧ストアを操作するHTTPハンドラー。
type ListHandler struct {
	lists  ListRegistry
	logger *slog.Logger
}

// NewListHandler はListHandlerを生成する。
func NewListHandler(lists ListRegistry, logger *slog.Logger) *ListHandler {
	return &ListHandler{lists: lists, logger: logger}
}

type listNamesResponse struct {
	Lists []string `json:"lists"`
}

// Names は登録済みの一覧名を返す。
// GET /api/lists
func (h *ListHandler) Names(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listNamesResponse{Lists: h.lists.Names()})
}

// Get は一覧の現在の状態を返す。通信は発生しない。
// GET /api/lists/{name}
func (h *ListHandler) Get(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, list.View())
}

// Fetch は一覧を取得する。refresh=trueでページ0から取り直す。
// POST /api/lists/{name}/fetch?refresh=true
func (h *ListHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lookup(w, r)
	if !ok {
		return
	}
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	refresh := r.URL.Query().Get("refresh") == "true"
	if err := list.Fetch(r.Context(), token, refresh); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list.View())
}

// More は次のページを追記する。読み込み中や末尾到達時は何もせず現在の状態を返す。
// POST /api/lists/{name}/more
func (h *ListHandler) More(w http.ResponseWriter, r *http.Request) {
	list, ok := h.lookup(w, r)
	if !ok {
		return
	}
	token, ok := sessionToken(w, r)
	if !ok {
		return
	}
	if err := list.LoadMore(r.Context(), token); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, list.View())
}

func (h *ListHandler) lookup(w http.ResponseWriter, r *http.Request) (pager.Controller, bool) {
	name := chi.URLParam(r, "name")
	list, ok := h.lists.Get(name)
	if !ok {
		writeError(w, h.logger, model.NewListNotFoundError(name))
		return nil, false
	}
	return list, true
}
