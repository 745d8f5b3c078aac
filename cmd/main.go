package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/robfig/cron/v3"

	"campaignkit/internal/config"
	"campaignkit/internal/handlers"
	"campaignkit/internal/services"
	"campaignkit/internal/templates"
)

func main() {
	// 1. Load server configuration from the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	defer logger.Init("campaignkit", true, false, os.Stdout).Close()

	// 2. Initialize the template library and the campaign service
	tmpl := templates.NewLoader(cfg.TemplateDir)
	campaignService := services.NewCampaignService(tmpl, nil, cfg.SessionTTL)

	// 3. Initialize the HTTP handler
	httpHandler := handlers.NewHTTPHandler(campaignService)

	// 4. Set up the Gin router
	gin.SetMode(cfg.GinMode)
	r := gin.Default()
	httpHandler.RegisterRoutes(r)

	// 5. Schedule the janitor that drops inactive editing sessions
	janitor := cron.New()
	if _, err := janitor.AddFunc(cfg.JanitorSchedule, func() {
		campaignService.CleanUpInactiveSessions()
		logger.Info("Performed cleanup of inactive sessions.")
	}); err != nil {
		log.Fatalf("Failed to schedule janitor: %v", err)
	}
	janitor.Start()
	defer janitor.Stop()

	// 6. Run the server
	logger.Infof("Server starting on http://localhost%s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
