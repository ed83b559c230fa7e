package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/skohli21/utility-bill-analyzer/config"
	"github.com/skohli21/utility-bill-analyzer/handler"
	"github.com/skohli21/utility-bill-analyzer/service"
	"github.com/skohli21/utility-bill-analyzer/utils"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize configuration
	cfg := config.LoadConfig()

	// Bill-format profile and field extractor
	profiles, err := config.LoadProfiles(cfg.ProfilePath)
	if err != nil {
		logger.Fatalf("Failed to load bill profiles: %v", err)
	}
	profile, ok := config.FindProfile(profiles, cfg.ProfileName)
	if !ok {
		logger.Fatalf("Unknown bill profile %q", cfg.ProfileName)
	}
	parser, err := utils.NewBillParser(profile)
	if err != nil {
		logger.Fatalf("Failed to compile bill profile %q: %v", profile.Name, err)
	}

	// Session store with TTL janitor
	sessions := service.NewSessionStore(cfg.SessionTTL, logger)
	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.SweepSchedule, sessions.Sweep); err != nil {
		logger.Fatalf("Invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	janitor.Start()
	defer janitor.Stop()

	// Initialize service layer
	pdfProcessor := service.NewPDFProcessor()
	billService := service.NewBillService(pdfProcessor, parser, sessions, cfg, logger)
	reportService := service.NewReportService(cfg, logger)

	// Initialize handler layer
	billHandler := handler.NewBillHandler(billService, reportService, logger)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "healthy",
			"service":  "Utility Bill Analyzer",
			"profile":  parser.Profile(),
			"sessions": sessions.Count(),
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		bills := api.Group("/bills")
		{
			bills.POST("/analyze", billHandler.AnalyzeDocuments)
			bills.POST("/paste", billHandler.AnalyzePasted)
		}
		sessionRoutes := api.Group("/sessions")
		{
			sessionRoutes.GET("/:id", billHandler.GetCollection)
			sessionRoutes.GET("/:id/export", billHandler.ExportWorkbook)
			sessionRoutes.POST("/:id/email", billHandler.EmailReport)
			sessionRoutes.DELETE("/:id", billHandler.EndSession)
		}
	}

	// Start server
	logger.Infof("Starting Utility Bill Analyzer on port %s (profile %s)", cfg.ServerPort, profile.Name)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
