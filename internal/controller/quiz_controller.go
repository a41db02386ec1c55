package controller

import (
	"errors"
	"net/http"
	"strconv"

	"placeprep_backend/internal/service"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// quizError 业务错误映射为 HTTP 状态码
func quizError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrUnknownTopic), errors.Is(err, util.ErrUnknownSubtopic), errors.Is(err, util.ErrAnswerCount):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrQuizNotFound):
		util.Error(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, util.ErrQuizExpired):
		util.Error(ctx, http.StatusGone, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// swagger:model StartQuizRequest
type StartQuizRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Subtopic string `json:"subtopic"`
	Count    int    `json:"count" binding:"omitempty,min=1"`
}

// StartQuiz godoc
// @Summary 开始测验
// @Description 按历史成绩确定难度并出题；已有进行中的测验会被替换。返回的题目不含答案
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body StartQuizRequest true "主题与题量"
// @Success 201 {object} util.Response{data=service.QuizView} "成功"
// @Failure 400 {object} util.Response "主题或子主题不存在"
// @Failure 401 {object} util.Response "未授权"
// @Router /api/quiz/start [post]
func (c *QuizController) StartQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.Start(ctx.Request.Context(), claims.UserID, req.Topic, req.Subtopic, req.Count)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// GetActiveQuiz godoc
// @Summary 获取进行中的测验
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.QuizView} "成功"
// @Failure 404 {object} util.Response "没有进行中的测验"
// @Failure 410 {object} util.Response "测验已过期"
// @Router /api/quiz/active [get]
func (c *QuizController) GetActiveQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quiz, err := c.QuizService.Active(claims.UserID)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// swagger:model AnswersRequest
type AnswersRequest struct {
	Answers []string `json:"answers"`
}

// SaveProgress godoc
// @Summary 保存作答进度
// @Description answers 按题目顺序排列，可以是选项文本或字母 A-D，未作答留空字符串
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "测验ID"
// @Param   body body AnswersRequest true "作答"
// @Success 200 {object} util.Response{data=service.QuizView} "成功"
// @Failure 400 {object} util.Response "作答数量超过题目数量"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id}/progress [put]
func (c *QuizController) SaveProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.SaveProgress(claims.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

// SubmitQuiz godoc
// @Summary 提交测验
// @Description 判分并保存成绩，返回每题的正确答案与解析。不传 answers 时使用已保存的进度
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "测验ID"
// @Param   body body AnswersRequest false "作答"
// @Success 200 {object} util.Response{data=service.QuizResult} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Failure 410 {object} util.Response "测验已过期"
// @Router /api/quiz/{id}/submit [post]
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req AnswersRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	result, err := c.QuizService.Submit(ctx.Request.Context(), claims.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// AbandonQuiz godoc
// @Summary 放弃测验
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "测验ID"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quiz/{id} [delete]
func (c *QuizController) AbandonQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.QuizService.Abandon(claims.UserID, ctx.Param("id")); err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetDifficulty godoc
// @Summary 查询主题难度
// @Description 根据历史平均分返回 beginner / intermediate / advanced
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   topic query string true "主题"
// @Success 200 {object} util.Response{data=service.DifficultyInfo} "成功"
// @Failure 400 {object} util.Response "主题不存在"
// @Router /api/quiz/difficulty [get]
func (c *QuizController) GetDifficulty(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	topic := ctx.Query("topic")
	if topic == "" {
		util.BadRequest(ctx, "topic is required")
		return
	}

	info, err := c.QuizService.Difficulty(claims.UserID, topic)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// ListScores godoc
// @Summary 成绩历史
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/scores [get]
func (c *QuizController) ListScores(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	scores, total, err := c.QuizService.ScoreHistory(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Page(ctx, scores, total, page, limit)
}
