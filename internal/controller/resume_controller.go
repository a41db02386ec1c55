package controller

import (
	"errors"
	"fmt"
	"net/http"

	"placeprep_backend/internal/service"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ResumeController struct {
	ResumeService *service.ResumeService
}

func NewResumeController(resumeService *service.ResumeService) *ResumeController {
	return &ResumeController{ResumeService: resumeService}
}

// @Summary 获取简历
// @Tags 简历
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.Resume}
// @Router /api/resume [get]
func (c *ResumeController) GetResume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	resume, err := c.ResumeService.Get(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resume)
}

// @Summary 保存简历
// @Description 整体覆盖保存
// @Tags 简历
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resume body service.ResumeInput true "简历内容"
// @Success 200 {object} util.Response{data=model.Resume}
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/resume [put]
func (c *ResumeController) SaveResume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ResumeInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resume, err := c.ResumeService.Save(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, resume)
}

// @Summary 下载简历
// @Description 纯文本格式，附带证书与测验成绩最好的主题
// @Tags 简历
// @Produce plain
// @Security BearerAuth
// @Success 200 {file} file "resume.txt"
// @Router /api/resume/download [get]
func (c *ResumeController) DownloadResume(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	body, err := c.ResumeService.Render(user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="resume_%d.txt"`, user.UserID))
	ctx.Data(http.StatusOK, "text/plain; charset=utf-8", body)
}
