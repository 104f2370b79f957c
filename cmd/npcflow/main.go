// =============================================================================
// npcflow 主入口
// =============================================================================
// 对话内容的命令行宿主：交互式试玩与内容体检
//
// 使用方法:
//
//	npcflow play --content conversations.yaml --id npc_intro   # 交互式试玩
//	npcflow play --config config.yaml --id npc_intro           # 指定配置文件
//	npcflow check --content conversations.yaml                 # 内容体检
//	npcflow version                                            # 显示版本信息
// =============================================================================
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BaSui01/npcflow"
	"github.com/BaSui01/npcflow/augment"
	"github.com/BaSui01/npcflow/config"
	"github.com/BaSui01/npcflow/content"
	"github.com/BaSui01/npcflow/internal/metrics"
	"github.com/BaSui01/npcflow/presenter"
	"github.com/BaSui01/npcflow/types"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "play":
		runPlay(os.Args[2:])
	case "check":
		runCheck(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// =============================================================================
// 🎮 play 命令
// =============================================================================

func runPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	contentPath := fs.String("content", "", "Path to content file (overrides config)")
	conversationID := fs.String("id", "", "Conversation id to start")
	metricsAddr := fs.String("metrics-addr", "", "Expose Prometheus metrics on this address (e.g. :9091)")
	fs.Parse(args)

	loader := config.NewLoader()
	if *configPath != "" {
		loader = loader.WithConfigPath(*configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *contentPath != "" {
		cfg.Content.Path = *contentPath
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting npcflow",
		zap.String("version", Version),
		zap.String("content", cfg.Content.Path))

	db, err := content.Load(cfg.Content.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	collector := metrics.NewCollector("npcflow", nil, logger)
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	rt, err := npcflow.New(cfg, db, logger, augment.WithObserver(collector))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to assemble runtime: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()
	collector.Observe(rt.Service.Events())

	if cfg.Content.Watch {
		watcher := content.NewWatcher(cfg.Content.Path, cfg.Content.PollInterval, func(db *types.Database) {
			if err := rt.Service.Reload(db); err != nil {
				logger.Warn("reload rejected", zap.Error(err))
			}
		}, logger)
		watcher.Start()
		defer watcher.Stop()
	}

	id := *conversationID
	if id == "" {
		if len(db.Conversations) == 0 {
			fmt.Fprintln(os.Stderr, "Content file has no conversations")
			os.Exit(1)
		}
		id = db.Conversations[0].ID
	}

	ok, err := rt.Service.Start(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown conversation id: %q\n", id)
		os.Exit(1)
	}

	playLoop(rt, cfg.Presenter.GenerateTimeout)
}

// playLoop 驱动交互循环：回车推进，数字选择，quit 退出。
func playLoop(rt *npcflow.Runtime, generateTimeout time.Duration) {
	scanner := bufio.NewScanner(os.Stdin)
	render(rt, generateTimeout)

	for rt.Coordinator.Mode() != presenter.ModeHidden {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "quit" || line == "exit":
			rt.Service.End()
		case line == "":
			rt.Coordinator.Advance()
		default:
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 {
				fmt.Println("(enter to continue, a number to choose, quit to leave)")
				continue
			}
			rt.Coordinator.Select(n - 1)
		}
		render(rt, generateTimeout)
	}
	fmt.Println("Conversation over.")
}

// render 等待在途生成结束后打印当前画面。
func render(rt *npcflow.Runtime, generateTimeout time.Duration) {
	waitUntil := time.Now().Add(generateTimeout + time.Second)
	for rt.Coordinator.Generating() && time.Now().Before(waitUntil) {
		time.Sleep(50 * time.Millisecond)
	}

	switch rt.Coordinator.Mode() {
	case presenter.ModeNpcSpeaking:
		node := rt.Coordinator.Node()
		speaker := "???"
		if node != nil {
			speaker = node.Speaker
		}
		fmt.Printf("[%s] %s\n", speaker, rt.Coordinator.DisplayText())
	case presenter.ModePlayerChoosing:
		for _, opt := range rt.Coordinator.Options() {
			fmt.Printf("  %d) %s\n", opt.Index+1, opt.Text)
		}
	}
}

// =============================================================================
// 🔍 check 命令
// =============================================================================

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	contentPath := fs.String("content", "conversations.yaml", "Path to content file")
	fs.Parse(args)

	db, err := content.Load(*contentPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	problems := 0
	seen := make(map[string]bool)
	for _, conv := range db.Conversations {
		if conv.ID == "" {
			fmt.Println("WARN  conversation with empty id will be skipped at load")
			problems++
			continue
		}
		if seen[conv.ID] {
			fmt.Printf("WARN  duplicate conversation id %q (last one wins)\n", conv.ID)
			problems++
		}
		seen[conv.ID] = true

		nodes := make(map[string]bool)
		for _, node := range conv.Nodes {
			if node.ID == "" {
				fmt.Printf("WARN  %s: node with empty id will be skipped at load\n", conv.ID)
				problems++
				continue
			}
			nodes[node.ID] = true
		}

		if !nodes[conv.StartNodeID] {
			fmt.Printf("ERROR %s: start node %q does not resolve\n", conv.ID, conv.StartNodeID)
			problems++
		}
		for _, node := range conv.Nodes {
			for i, choice := range node.Choices {
				if types.IsEndSentinel(choice.NextNodeID) {
					continue
				}
				if !nodes[choice.NextNodeID] {
					fmt.Printf("ERROR %s/%s: choice %d points at missing node %q\n",
						conv.ID, node.ID, i, choice.NextNodeID)
					problems++
				}
			}
		}
	}

	fmt.Printf("%d conversation(s), %d problem(s)\n", len(db.Conversations), problems)
	if problems > 0 {
		os.Exit(1)
	}
}

// =============================================================================
// 🔧 日志初始化
// =============================================================================

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	if cfg.Format == "console" {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         cfg.Format,
		EncoderConfig:    encoderConfig,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// 回退到基本 logger
		logger, _ = zap.NewProduction()
	}

	return logger
}

// =============================================================================
// ℹ️ version / help
// =============================================================================

func printVersion() {
	fmt.Printf("npcflow %s (built %s, commit %s)\n", Version, BuildTime, GitCommit)
}

func printUsage() {
	fmt.Println(`npcflow - branching NPC conversation runtime

Usage:
  npcflow play [--config config.yaml] [--content conversations.yaml] [--id npc_intro] [--metrics-addr :9091]
  npcflow check [--content conversations.yaml]
  npcflow version

Examples:
  npcflow play --content conversations.yaml --id npc_intro
  npcflow check --content conversations.yaml
  npcflow version`)
}
