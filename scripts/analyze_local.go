// 手动分析本地试卷脚本
//
// 不启动 HTTP 服务，直接对本地的试卷与大纲文件执行完整分析流水线，
// 并将报告以 JSON 输出到标准输出。适合批量核查或调试分类回退路径。
//
// 用法: go run scripts/analyze_local.go <exam.pdf|txt> <syllabus.pdf|txt>

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"fair_exam_backend/internal/config"
	"fair_exam_backend/internal/service"
	"fair_exam_backend/pkg/logger"
	"fair_exam_backend/pkg/monitoring"

	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("用法: go run scripts/analyze_local.go <exam.pdf|txt> <syllabus.pdf|txt>")
	}

	var cfg config.Config
	if data, err := os.ReadFile("configs/config.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("解析配置文件失败: %v", err)
		}
	}

	logger.InitLogger(&cfg)
	monitoring.Init()

	examData, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("无法读取试卷文件: %v", err)
	}
	syllabusData, err := os.ReadFile(os.Args[2])
	if err != nil {
		log.Fatalf("无法读取大纲文件: %v", err)
	}

	aiService := service.NewAIService(cfg.AI)
	documentService := service.NewDocumentService()
	segmentService := service.NewSegmentService()
	classifierService := service.NewClassifierService(aiService)
	topicService := service.NewTopicService(aiService)
	fairnessService := service.NewFairnessService()
	analysisService := service.NewAnalysisService(documentService, segmentService, classifierService, topicService, fairnessService)

	report, err := analysisService.Analyze(context.Background(),
		service.UploadedDocument{Filename: filepath.Base(os.Args[1]), Data: examData},
		service.UploadedDocument{Filename: filepath.Base(os.Args[2]), Data: syllabusData},
	)
	if err != nil {
		log.Fatalf("分析失败: %v", err)
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("序列化报告失败: %v", err)
	}
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}
