package controller

import (
	"errors"
	"net/http"

	"placeprep_backend/internal/service"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// @Summary 上传证书
// @Description 支持 jpg / png / pdf，图片会尽量生成缩略图
// @Tags 证书
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "证书文件"
// @Param title formData string false "证书名称"
// @Success 201 {object} util.Response{data=model.Certificate}
// @Failure 400 {object} util.Response "缺少文件"
// @Failure 413 {object} util.Response "文件过大"
// @Failure 415 {object} util.Response "文件类型不支持"
// @Router /api/certificates [post]
func (c *CertificateController) UploadCertificate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	cert, err := c.CertificateService.Upload(ctx.Request.Context(), user.UserID, service.CertificateUpload{
		Title:    ctx.PostForm("title"),
		Filename: header.Filename,
		Size:     header.Size,
		File:     file,
	})
	if err != nil {
		switch {
		case errors.Is(err, util.ErrFileTooLarge):
			util.PayloadTooLarge(ctx, err.Error())
		case errors.Is(err, util.ErrUnsupportedFile):
			util.UnsupportedMediaType(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, cert)
}

// @Summary 我的证书
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *CertificateController) ListCertificates(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	certs, err := c.CertificateService.List(user.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, certs)
}

// @Summary 删除证书
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Param id path int true "证书ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/certificates/{id} [delete]
func (c *CertificateController) DeleteCertificate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	id, err := util.ParseUint(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid certificate id")
		return
	}

	if err := c.CertificateService.Delete(ctx.Request.Context(), user.UserID, id); err != nil {
		if errors.Is(err, util.ErrCertificateNotFound) {
			util.Error(ctx, http.StatusNotFound, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
