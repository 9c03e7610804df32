// @title FairExam AI 后端 API
// @version 1.0.0
// @description AI-Powered Exam Paper Fairness & Bias Detection System 的后端服务器。

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8000
// @BasePath /

package main

import (
	"log"

	"fair_exam_backend/internal/app"
	"fair_exam_backend/internal/config"
	"fair_exam_backend/pkg/configwatcher"
	"fair_exam_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	go configwatcher.WatchConfig("configs/config.yaml", application.ApplyConfig)

	application.Run()
}
