package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"databridgeapi/bootstrap"
	"databridgeapi/config"
	"databridgeapi/controllers"
	_ "databridgeapi/docs"
	"databridgeapi/pkg/logger"
	"databridgeapi/services/scheduler"
	"databridgeapi/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           databridgeapi
// @version         1.0
// @description     Data Bridge API

// @BasePath  /api

func main() {
	// 1) Load config
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("LoadConfig error: %v", err)
	}

	// 2) Connect DB (GORM)
	if err := config.ConnectDB(); err != nil {
		log.Fatalf("ConnectDB error: %v", err)
	}
	if config.DB == nil {
		log.Fatal("Database is nil after ConnectDB")
	}

	if err := bootstrap.LoadData(); err != nil {
		log.Fatalf("Load data error: %v", err)
	}

	// 3) Init structured logger with config
	logLevel := logger.ParseLogLevel(config.Cfg.LogLevel)
	logger.InitWithConfig(
		config.Cfg.LogFile,
		logLevel,
		config.Cfg.LogMaxSize,
		config.Cfg.LogMaxBackups,
		config.Cfg.LogMaxAge,
		config.Cfg.LogCompress,
	)
	logger.Infof("Starting Data Bridge API with log level: %s", config.Cfg.LogLevel)

	// 4) Install durable schedules into the in-memory scheduler
	if err := scheduler.Get().LoadAllSchedules(); err != nil {
		log.Fatalf("Load schedules error: %v", err)
	}

	// 5) Setup Gin
	router := gin.Default()
	router.Use(utils.LoggerMiddleware())

	v1 := router.Group("/api")
	{
		controllers.RegisterConnectionRoutes(v1)
		controllers.RegisterQueryRoutes(v1)
		controllers.RegisterWarehouseRoutes(v1)
		controllers.RegisterTransferRoutes(v1)
		controllers.RegisterScheduleRoutes(v1)
		controllers.RegisterMappingRoutes(v1)
	}

	// 6) Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 7) Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Infof("Received shutdown signal, stopping scheduler...")

		scheduler.Get().StopAll()

		logger.Infof("Application shutdown complete")
		os.Exit(0)
	}()

	// 8) Run
	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	logger.Infof("Starting server at port %s", port)
	router.Run("0.0.0.0:" + port)
}
