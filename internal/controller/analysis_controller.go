package controller

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"fair_exam_backend/internal/service"
	"fair_exam_backend/internal/util"
	"fair_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

// 单次 AI 连通性探测的超时
const probeTimeout = 20 * time.Second

type AnalysisController struct {
	AnalysisService *service.AnalysisService
	AIService       *service.AIService
	MaxUploadBytes  int64
}

func NewAnalysisController(analysisService *service.AnalysisService, aiService *service.AIService, maxUploadMB int) *AnalysisController {
	return &AnalysisController{
		AnalysisService: analysisService,
		AIService:       aiService,
		MaxUploadBytes:  int64(maxUploadMB) << 20,
	}
}

// @Summary 试卷公平性分析
// @Description 上传试卷与教学大纲，返回难度分布、认知层级、大纲覆盖与综合公平性评分
// @Tags 分析
// @Accept multipart/form-data
// @Produce json
// @Param exam_paper formData file true "试卷文件（PDF 或 TXT）"
// @Param syllabus formData file true "大纲文件（PDF 或 TXT）"
// @Success 200 {object} util.Response{data=model.AnalysisReport}
// @Failure 400 {object} util.Response
// @Router /api/analyze [post]
func (c *AnalysisController) Analyze(ctx *gin.Context) {
	examPaper, ok := c.readUpload(ctx, "exam_paper")
	if !ok {
		return
	}
	syllabus, ok := c.readUpload(ctx, "syllabus")
	if !ok {
		return
	}

	report, err := c.AnalysisService.Analyze(ctx.Request.Context(), examPaper, syllabus)
	if err != nil {
		if util.IsInputError(err) {
			monitoring.RecordRejection()
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, report)
}

// readUpload 读取一个必填的文档表单文件，校验大小、扩展名与嗅探到的 MIME 类型。
// 校验失败时已写入 400 响应，调用方直接返回即可。
func (c *AnalysisController) readUpload(ctx *gin.Context, field string) (service.UploadedDocument, bool) {
	var doc service.UploadedDocument

	fileHeader, err := ctx.FormFile(field)
	if err != nil {
		monitoring.RecordRejection()
		util.BadRequest(ctx, field+" file is required")
		return doc, false
	}

	if fileHeader.Size > c.MaxUploadBytes {
		monitoring.RecordRejection()
		util.BadRequest(ctx, fmt.Sprintf("%s exceeds the maximum upload size of %d MB", field, c.MaxUploadBytes>>20))
		return doc, false
	}

	if !util.HasAllowedExtension(fileHeader.Filename, util.AllowedDocumentExtensions) {
		monitoring.RecordRejection()
		util.BadRequest(ctx, util.ErrUnsupportedFileType.Error())
		return doc, false
	}

	data, err := readAll(fileHeader)
	if err != nil {
		util.LogInternalError(ctx, fmt.Errorf("read %s: %w", field, err))
		return doc, false
	}

	if _, err := util.ValidateMimeType(bytes.NewReader(data), util.AllowedDocumentMimeTypes); err != nil {
		monitoring.RecordRejection()
		util.BadRequest(ctx, util.ErrUnsupportedFileType.Error())
		return doc, false
	}

	doc.Filename = fileHeader.Filename
	doc.Data = data
	return doc, true
}

func readAll(fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// @Summary AI 服务连通性
// @Description 报告 AI 服务配置状态；已配置时分别对分类与主题抽取能力做一次真实调用探测
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/services/status [get]
func (c *AnalysisController) ServicesStatus(ctx *gin.Context) {
	configured := c.AIService.Configured()
	status := "not configured"
	if configured {
		status = "ready"
	}

	classification := gin.H{"configured": configured, "status": status}
	topicExtraction := gin.H{"configured": configured, "status": status}

	if configured {
		probeCtx, cancel := context.WithTimeout(ctx.Request.Context(), probeTimeout)
		defer cancel()

		if _, err := c.AIService.Chat(probeCtx,
			"You are an educational assessment expert.",
			"Classify the difficulty of this question as Easy, Medium, or Hard: Define machine learning",
			50); err != nil {
			classification["test_result"] = "error: " + err.Error()
		} else {
			classification["test_result"] = "success"
		}

		if _, err := c.AIService.Chat(probeCtx,
			"You are a curriculum analysis expert.",
			"List the topics in this syllabus excerpt: Unit 1: Introduction to Computer Networks",
			50); err != nil {
			topicExtraction["test_result"] = "error: " + err.Error()
		} else {
			topicExtraction["test_result"] = "success"
		}
	}

	util.Success(ctx, gin.H{
		"classification":   classification,
		"topic_extraction": topicExtraction,
	})
}
