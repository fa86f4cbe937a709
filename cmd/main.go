package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job-search-go/internal/agent"
	"job-search-go/internal/analysis"
	"job-search-go/internal/api/handler"
	"job-search-go/internal/api/router"
	"job-search-go/internal/company"
	"job-search-go/internal/config"
	"job-search-go/internal/constants"
	"job-search-go/internal/llm"
	appLogger "job-search-go/internal/logger"
	"job-search-go/internal/pipeline"
	"job-search-go/internal/provider"
	"job-search-go/internal/ratelimit"
	"job-search-go/internal/storage"
	"job-search-go/internal/tracing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 链路追踪，endpoint为空时为no-op
	shutdownTracing, err := tracing.InitTracerProvider(ctx, &cfg.Tracing)
	if err != nil {
		glog.Warnf("初始化链路追踪失败，继续以无追踪模式运行: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			glog.Warnf("关闭链路追踪失败: %v", err)
		}
	}()

	// 外部存储按配置尽力初始化，缺失的组件由各业务层降级处理
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Warnf("初始化存储失败，将以纯内存模式运行: %v", err)
		storageManager = &storage.Storage{}
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化完成")

	chatModel, visionModel := initModels(cfg)

	componentLogger := func(prefix string) *log.Logger {
		if cfg.Logger.Level == "debug" {
			return log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)
		}
		return log.New(io.Discard, "", 0)
	}

	// 职位来源按优先级注册，去重时先注册者优先
	registry := provider.NewRegistry()
	if cfg.JSearch.APIKey != "" {
		registry.Register(provider.NewJSearchProvider(&cfg.JSearch, componentLogger("[JSearch] ")))
		glog.Info("JSearch职位来源已启用")
	} else {
		glog.Warn("未配置JSearch API Key，跳过外部职位来源")
	}
	registry.Register(provider.NewLinkedInProvider())
	registry.Register(provider.NewNaukriProvider())
	registry.Register(provider.NewUnstopProvider())
	registry.Register(provider.NewLocalIndexProvider())

	aggregator := pipeline.NewAggregator(
		registry,
		componentLogger("[Aggregator] "),
		pipeline.WithProviderTimeout(config.GetDuration(cfg.Aggregator.ProviderTimeout, constants.DefaultProviderTimeout)),
		pipeline.WithMaxPerProvider(cfg.Aggregator.MaxPerProvider),
	)

	var rankerModel model.ToolCallingChatModel
	if cfg.Ranker.Enabled {
		rankerModel = chatModel
	} else {
		glog.Info("AI排序未启用，搜索结果按聚合顺序返回")
	}
	ranker := pipeline.NewRanker(
		rankerModel,
		componentLogger("[Ranker] "),
		pipeline.WithRankTimeout(config.GetDuration(cfg.Ranker.Timeout, constants.DefaultRankerTimeout)),
	)

	companyService := company.NewService(
		storageManager,
		componentLogger("[Company] "),
		company.WithCacheTTL(constants.CompanyCacheDuration),
	)

	sightingWorker := company.NewSightingWorker(storageManager, &cfg.RabbitMQ, componentLogger("[SightingWorker] "))
	workerStop, err := sightingWorker.Start()
	if err != nil {
		glog.Warnf("启动公司观测消费者失败: %v", err)
	} else if workerStop != nil {
		glog.Info("公司观测消费者已启动")
		defer close(workerStop)
	}

	memory := initChatMemory(cfg, storageManager)
	advisor := agent.NewAdvisor(
		chatModel,
		memory,
		config.GetDuration(cfg.Chat.ReplyTimeout, 30*time.Second),
		cfg.Gemini.Model,
		componentLogger("[Advisor] "),
	)

	var archive analysis.ImageArchive
	if storageManager.MinIO != nil {
		archive = storageManager.MinIO
	}
	analyzer := analysis.NewAnalyzer(
		visionModel,
		archive,
		componentLogger("[ResumeAnalyzer] "),
		analysis.WithAnalysisTimeout(config.GetDuration(cfg.Resume.AnalysisTimeout, constants.DefaultResumeAnalysisTimeout)),
	)

	jobHandler := handler.NewJobHandler(aggregator, ranker, companyService, cfg.Aggregator.DefaultLocation)
	aiHandler := handler.NewAIHandler(advisor, analyzer)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, jobHandler, aiHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog全局logger并桥接到Hertz的hlog
func initLogger(cfg *config.Config) {
	appLogger.Init(appLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzzerolog.From(appLogger.Logger))
	switch cfg.Logger.Level {
	case "debug":
		glog.SetLevel(glog.LevelDebug)
	case "warn":
		glog.SetLevel(glog.LevelWarn)
	case "error":
		glog.SetLevel(glog.LevelError)
	default:
		glog.SetLevel(glog.LevelInfo)
	}
}

// initModels 初始化聊天和视觉模型。
// 未配置API Key时回退到Mock模型，保证服务在无密钥环境下仍可完整运行。
func initModels(cfg *config.Config) (chatModel, visionModel model.ToolCallingChatModel) {
	if cfg.Gemini.APIKey == "" {
		glog.Warn("未配置Gemini API Key，使用Mock模型运行")
		mock := llm.NewMockChatClient("", nil)
		return mock, mock
	}

	base, err := llm.NewGeminiChatModel(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.APIURL)
	if err != nil {
		glog.Warnf("初始化Gemini模型失败，回退到Mock模型: %v", err)
		mock := llm.NewMockChatClient("", nil)
		return mock, mock
	}

	vision, err := llm.NewGeminiChatModel(cfg.Gemini.APIKey, cfg.Gemini.VisionModel, cfg.Gemini.APIURL)
	if err != nil {
		glog.Warnf("初始化Gemini视觉模型失败，复用文本模型: %v", err)
		vision = base
	}

	retryWait := time.Duration(cfg.Gemini.RetryWaitSeconds) * time.Second
	chatModel = ratelimit.NewLLMWithRateLimit(base, cfg.Gemini.QPM, cfg.Gemini.MaxRetries, retryWait)
	visionModel = ratelimit.NewLLMWithRateLimit(vision, cfg.Gemini.QPM, cfg.Gemini.MaxRetries, retryWait)
	glog.Infof("Gemini模型初始化成功: %s (视觉: %s)", cfg.Gemini.Model, cfg.Gemini.VisionModel)
	return chatModel, visionModel
}

// initChatMemory 按配置选择会话存储：Redis可用且启用时持久化，否则内存存储
func initChatMemory(cfg *config.Config, storageManager *storage.Storage) agent.ChatMemory {
	sessionTTL := config.GetDuration(cfg.Chat.SessionTTL, constants.ChatSessionTTL)

	if cfg.Chat.UseRedis && storageManager.Redis != nil {
		memory, err := agent.NewRedisChatMemory(storageManager.Redis.Client, sessionTTL)
		if err == nil {
			glog.Info("使用Redis会话存储")
			return memory
		}
		glog.Warnf("初始化Redis会话存储失败，回退到内存存储: %v", err)
	}

	options := []agent.InMemoryOption{agent.WithSessionTTL(sessionTTL)}
	if cfg.Chat.MaxSessions > 0 {
		options = append(options, agent.WithMaxSessions(cfg.Chat.MaxSessions))
	}
	return agent.NewInMemoryChatMemory(options...)
}
