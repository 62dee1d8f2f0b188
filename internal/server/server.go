package server

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"economat/internal/config"
	"economat/internal/server/handlers"
	"economat/internal/service/excel"
	"economat/internal/service/library"
	"economat/internal/service/store"
	"economat/internal/util"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router   *gin.Engine
	store    *store.MemoryStore
	handlers *handlers.Handlers
}

// NewServer 创建服务器；dataDir 为空时不启用工作簿库（上传的工作簿只在内存中）
func NewServer(cfg *config.AppConfig, dataDir string) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	columns := cfg.ColumnConfig()
	memStore := store.NewMemoryStore()

	var lib *library.Manager
	exportDir := ""
	if dataDir != "" {
		var err error
		lib, err = library.NewManager(dataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook library: %w", err)
		}
		exportDir = filepath.Join(dataDir, "exports")
	}

	h := handlers.NewHandlers(
		memStore,
		excel.NewLoader(columns),
		excel.NewJournalWriter(columns),
		lib,
		exportDir,
	)
	memStore.SetSaver(h.SaveJournal, time.Duration(cfg.Data.AutoSaveSeconds)*time.Second)

	s := &Server{
		router:   gin.New(),
		store:    memStore,
		handlers: h,
	}
	s.setupRoutes(cfg.Server.DevMode)

	return s, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	s.router.Use(Recovery(), RequestLogger(), CORS())

	api := s.router.Group("/api")
	{
		s.handlers.RegisterRoutes(api)
	}

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	// 生产模式：使用embed的静态资源
	sub, _ := fs.Sub(staticFiles, "dist")
	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)
	s.router.NoRoute(index)
}

// Open 启动时加载工作簿：优先使用指定路径，否则恢复上次使用的工作簿
func (s *Server) Open(path string) error {
	if path != "" {
		_, err := s.handlers.OpenPath(path)
		return err
	}
	restored, err := s.handlers.RestoreActive()
	if err != nil {
		return err
	}
	if restored {
		util.Logger.Info().Str("path", s.store.Path()).Msg("已恢复上次使用的工作簿")
	}
	return nil
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler 返回 http.Handler（用于测试与自定义 http.Server）
func (s *Server) Handler() http.Handler {
	return s.router
}

// SaveNow 退出前写回未保存的销售流水
func (s *Server) SaveNow() error {
	return s.handlers.Flush()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.MemoryStore {
	return s.store
}
