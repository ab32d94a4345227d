package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"nft_minter/internal/common"
	"nft_minter/internal/config"
	"nft_minter/internal/model"
	"nft_minter/internal/queue"
	sol "nft_minter/internal/solana"
)

// Publisher 上传任意 JSON 文档并返回网关地址
type Publisher interface {
	Publish(ctx context.Context, doc any) (string, error)
}

// MintService 铸造流程
type MintService interface {
	Mint(ctx context.Context, form model.MintForm) (model.MintView, error)
	View() model.MintView
}

// Deps 服务依赖, Minter/Queue/Wallet/RPCHealth 可以为空
type Deps struct {
	Publisher Publisher
	Minter    MintService
	Queue     *queue.MessageQueue
	Wallet    sol.Wallet
	RPCHealth func(context.Context) error
}

type Server struct {
	cfg        *config.Config
	deps       Deps
	metrics    *metricsRegistry
	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg,
		deps:    deps,
		metrics: newMetricsRegistry(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	// 任意方法都进入处理函数, 非 POST 返回 405 JSON.
	// 例外: 带 Access-Control-Request-Method 的浏览器预检由 cors 中间件应答
	r.HandleFunc("/api/upload-metadata", s.handleUploadMetadata)
	r.Post("/api/mint", s.handleMint)
	r.Get("/api/mint", s.handleView)
	r.Get("/api/mint/stream", s.handleStream)
	r.Get("/api/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.handler())
	s.router = r

	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}
	return s
}

// Handler 路由, 便于测试
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	common.Log.Infof("HTTP 服务监听 %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.Log.Warnf("写入响应失败: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
