package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fair_exam_backend/internal/config"
	"fair_exam_backend/internal/controller"
	"fair_exam_backend/internal/service"
	"fair_exam_backend/pkg/logger"
	"fair_exam_backend/pkg/monitoring"
	"fair_exam_backend/pkg/security"
	"fair_exam_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	services        *services
	configCallbacks []func(*config.Config)
}

type services struct {
	ai         *service.AIService
	document   *service.DocumentService
	segment    *service.SegmentService
	classifier *service.ClassifierService
	topic      *service.TopicService
	fairness   *service.FairnessService
	analysis   *service.AnalysisService
}

type controllers struct {
	analysis *controller.AnalysisController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口，由 configwatcher 回调触发
func (a *App) ApplyConfig(cfg *config.Config) {
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initServices(cfg *config.Config) *services {
	s := &services{}

	s.ai = service.NewAIService(cfg.AI)
	s.document = service.NewDocumentService()
	s.segment = service.NewSegmentService()
	s.classifier = service.NewClassifierService(s.ai)
	s.topic = service.NewTopicService(s.ai)
	s.fairness = service.NewFairnessService()
	s.analysis = service.NewAnalysisService(s.document, s.segment, s.classifier, s.topic, s.fairness)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		analysis: controller.NewAnalysisController(s.analysis, s.ai, cfg.Analysis.MaxUploadMB),
		health:   controller.NewHealthController(s.ai),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{
		Config: cfg,
	}

	services := app.initServices(cfg)
	app.services = services
	controllers := app.initControllers(services, cfg)

	// AI 配置热更新：配置文件变更时重建客户端配置
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.ai.SetConfig(newCfg.AI)
		logger.Log.Info("AI config reloaded", zap.Bool("configured", services.ai.Configured()))
	})

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("fair-exam-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
