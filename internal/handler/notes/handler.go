package notes

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-notes/web/internal/logger"
	"github.com/zhouzirui/z-notes/web/internal/middleware"
	"github.com/zhouzirui/z-notes/web/internal/model/note"
	"github.com/zhouzirui/z-notes/web/internal/service/api"
	"github.com/zhouzirui/z-notes/web/internal/service/page"
	"github.com/zhouzirui/z-notes/web/pkg/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Options 笔记页面处理器的可选配置
type Options struct {
	Location *time.Location
	LoginURL string
	Logger   logrus.FieldLogger
	// OnUnauthorized 在 API 以 401 拒绝 token 时调用，通常用于清除 cookie
	OnUnauthorized func(http.ResponseWriter, *http.Request)
}

// Handler 笔记页面的HTTP处理器
type Handler struct {
	api            page.API
	loc            *time.Location
	loginURL       string
	log            logrus.FieldLogger
	onUnauthorized func(http.ResponseWriter, *http.Request)
}

// New 创建笔记页面处理器
func New(client page.API, opts Options) *Handler {
	h := &Handler{
		api:            client,
		loc:            opts.Location,
		loginURL:       opts.LoginURL,
		log:            opts.Logger,
		onUnauthorized: opts.OnUnauthorized,
	}
	if h.loc == nil {
		h.loc = time.Local
	}
	if h.loginURL == "" {
		h.loginURL = "/login"
	}
	if h.log == nil {
		h.log = logrus.StandardLogger()
	}
	return h
}

// RegisterRoutes 注册笔记页面相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handlePage)
	r.Post("/notes", h.handleCreate)
	r.Get("/page.json", h.handlePageJSON)
}

// handlePage 挂载页面并渲染，note 查询参数打开对应笔记的弹窗
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	p := h.mount(w, r)

	if id := r.URL.Query().Get("note"); id != "" {
		p.Select(note.ID(id))
	}

	h.render(w, r, p.Snapshot())
}

// handleCreate 提交新笔记，成功后重定向回页面，失败时就地渲染错误与草稿
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	p := h.mount(w, r)
	if p.Snapshot().Phase == page.PhaseReady {
		p.SetDraft(note.Draft{
			Title:   r.PostForm.Get("title"),
			Content: r.PostForm.Get("content"),
		})
		err := p.Submit(r.Context())
		if err == nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.entry(r).WithError(err).Info("note creation did not complete")
	}

	h.render(w, r, p.Snapshot())
}

// handlePageJSON 以 JSON 形式返回页面状态
func (h *Handler) handlePageJSON(w http.ResponseWriter, r *http.Request) {
	p := h.mount(w, r)

	if id := r.URL.Query().Get("note"); id != "" {
		p.Select(note.ID(id))
	}

	utils.RespondJSON(w, http.StatusOK, p.Snapshot())
}

// mount 运行会话检查；API 拒绝 token 时交给 onUnauthorized 处理
func (h *Handler) mount(w http.ResponseWriter, r *http.Request) *page.Page {
	ctx := r.Context()
	log := h.entry(r)
	p := page.New(h.api, middleware.TokenFrom(ctx), page.WithLogger(log))
	if err := p.Mount(ctx); err != nil {
		log.WithError(err).Info("page mounted with error")
		if api.IsUnauthorized(err) && h.onUnauthorized != nil {
			h.onUnauthorized(w, r)
		}
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, s page.State) {
	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", buildView(s, h.loc, h.loginURL)); err != nil {
		h.entry(r).WithError(err).Error("render notes page")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) entry(r *http.Request) *logrus.Entry {
	return logger.WithRequestID(r.Context(), h.log)
}
