package controller

import (
	"fair_exam_backend/internal/service"
	"fair_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	appName        = "FairExam AI"
	appVersion     = "1.0.0"
	appDescription = "AI-Powered Exam Paper Fairness & Bias Detection System"
)

type HealthController struct {
	AIService *service.AIService
}

func NewHealthController(aiService *service.AIService) *HealthController {
	return &HealthController{AIService: aiService}
}

// @Summary 服务信息
// @Description 根路径状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router / [get]
func (c *HealthController) Root(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"status":      "active",
		"app":         appName,
		"version":     appVersion,
		"description": appDescription,
	})
}

// @Summary 健康检查
// @Description 检查服务状态与 AI 配置情况
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	configured := c.AIService.Configured()

	message := "Running with fallback heuristics"
	if configured {
		message = "AI service handles all classification features"
	}

	util.Success(ctx, gin.H{
		"status":        "healthy",
		"ai_configured": configured,
		"message":       message,
	})
}
