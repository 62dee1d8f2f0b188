package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"economat/internal/config"
	"economat/internal/server"
	"economat/internal/util"
)

var (
	port     = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode  = flag.Bool("dev", false, "开发模式")
	file     = flag.String("file", "", "工作簿路径 (覆盖配置文件)")
	exportTo = flag.String("export", "", "批处理：计算后导出到 .xlsx / .csv 并退出")
	dataDir  = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
	initConf = flag.Bool("init-config", false, "把当前生效的配置写入可执行文件同目录的 config.toml 并退出")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *file != "" {
		cfg.Data.WorkbookPath = *file
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	util.InitLogger(cfg.Log.Level, cfg.Server.DevMode)
	log := util.Logger

	if *initConf {
		if err := config.SaveConfig(cfg); err != nil {
			log.Error().Err(err).Msg("写入配置失败")
			os.Exit(1)
		}
		log.Info().Str("path", info.Path).Msg("配置已写入")
		return
	}

	if *exportTo != "" {
		if err := runExport(cfg, cfg.Data.WorkbookPath, *exportTo); err != nil {
			log.Error().Err(err).Msg("导出失败")
			os.Exit(1)
		}
		log.Info().Str("output", *exportTo).Msg("导出完成")
		return
	}

	fmt.Println("==========================================")
	fmt.Println("  Economat - 餐饮成本与盈利分析")
	fmt.Println("==========================================")

	// 确保数据目录存在
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("创建数据目录失败，工作簿库不可用")
		dir = ""
	} else {
		log.Info().Str("dataDir", dir).Msg("数据目录")
	}

	srv, err := server.NewServer(cfg, dir)
	if err != nil {
		log.Fatal().Err(err).Msg("服务初始化失败")
	}
	if err := srv.Open(cfg.Data.WorkbookPath); err != nil {
		log.Warn().Err(err).Msg("工作簿加载失败，可在页面中重新选择")
	}

	// 未显式配置端口时自动避开被占用的端口
	if !info.PortSpecified && *port == 0 {
		cfg.Server.Port = util.FindAvailablePort(cfg.Server.Port)
	}
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("服务启动中")
		if err := srv.Run(addr); err != nil {
			log.Fatal().Err(err).Msg("服务启动失败")
		}
	}()

	// 打开浏览器
	if !cfg.Server.DevMode {
		fmt.Printf("正在打开浏览器: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("无法自动打开浏览器，请手动访问: %s\n", url)
		}
	} else {
		fmt.Printf("开发模式: 请访问 %s\n", url)
	}

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	if err := srv.SaveNow(); err != nil {
		log.Error().Err(err).Msg("退出前保存失败")
	}
}
