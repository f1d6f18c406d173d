package session

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-notes/web/pkg/utils"
)

// Handler 保存外部认证服务下发的 token
type Handler struct {
	cookieName string
	secure     bool
}

// New 创建会话处理器
func New(cookieName string, secure bool) *Handler {
	if cookieName == "" {
		cookieName = "token"
	}
	return &Handler{cookieName: cookieName, secure: secure}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Post("/session/logout", h.handleLogout)
}

// handleCreate 接收表单或 JSON 中的 token 并写入 cookie
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	isJSON := utils.IsJSONRequest(r)

	var token string
	if isJSON {
		var payload struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		token = payload.Token
	} else {
		if err := r.ParseForm(); err != nil {
			utils.RespondError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		token = r.PostForm.Get("token")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		utils.RespondError(w, http.StatusBadRequest, "token is required")
		return
	}

	http.SetCookie(w, h.cookie(token, 0))

	if isJSON {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout 清除 token cookie
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.cookie("", -1))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Clear 在请求携带 token cookie 时将其过期，用于 API 拒绝该 token 的情况
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(h.cookieName); err != nil {
		return
	}
	http.SetCookie(w, h.cookie("", -1))
}

func (h *Handler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
