// Package http 提供HTTP服务器功能
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"medicare/config"
	"medicare/db"
	"medicare/predictor"
)

// ModelService 预测服务接口
type ModelService interface {
	Predict(ctx context.Context, disease string, features []float64) (predictor.Prediction, error)
	ModelName(disease string) string
	Metadata(disease string) (predictor.Metadata, error)
}

// HistoryStore 训练与预测历史
type HistoryStore interface {
	LoadTrainingLog(ctx context.Context, disease string, limit int) ([]db.TrainingLog, error)
	LoadPredictions(ctx context.Context, disease string, limit int) ([]db.PredictionLog, error)
}

// Dependencies 服务器依赖，History 与 Events 可以为空
type Dependencies struct {
	Models       ModelService
	History      HistoryStore
	Events       http.Handler
	NotebooksDir string
	Logger       *zap.Logger
}

// Server HTTP服务器
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer 创建HTTP服务器
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	deps.Logger = logger

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           NewHandler(cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// NewHandler 注册路由并包装中间件链
func NewHandler(cfg config.ServerConfig, deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	h := &handlers{models: deps.Models, history: deps.History, logger: logger}
	h.register(mux)

	if deps.NotebooksDir != "" {
		mux.Handle("GET "+notebooksPrefix, http.StripPrefix(notebooksPrefix, http.FileServer(notebookFS{http.Dir(deps.NotebooksDir)})))
	}
	if deps.Events != nil {
		mux.Handle("GET /ws/events", deps.Events)
	}

	chain := Chain(
		RecoveryMiddleware(logger),         // 1. 最先执行，捕获panic
		LoggerMiddleware(logger),           // 2. 请求ID与访问日志
		SecurityHeadersMiddleware,          // 3. 安全头
		CORSMiddleware(cfg.AllowedOrigins), // 4. CORS
		TimeoutMiddleware(cfg.Timeout),     // 5. 超时
		RequestSizeMiddleware(cfg.MaxBodyBytes),
	)
	return chain(mux)
}

// notebookFS 只提供普通文件：目录和隐藏文件（含发布时的临时文件）一律 404
type notebookFS struct {
	fs http.FileSystem
}

func (n notebookFS) Open(name string) (http.File, error) {
	if strings.HasPrefix(path.Base(name), ".") {
		return nil, os.ErrNotExist
	}
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

// Start 启动服务器，阻塞直到 Stop
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Serve 在已有监听器上提供服务
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Addr 返回服务器地址
func (s *Server) Addr() string {
	return s.server.Addr
}
