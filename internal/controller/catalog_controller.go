package controller

import (
	"net/http"

	"placeprep_backend/internal/catalog"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	Catalog *catalog.Catalog
}

func NewCatalogController(cat *catalog.Catalog) *CatalogController {
	return &CatalogController{Catalog: cat}
}

// ListBranches godoc
// @Summary 学科方向列表
// @Tags 题目目录
// @Produce json
// @Success 200 {object} util.Response{data=[]string} "成功"
// @Router /api/catalog/branches [get]
func (c *CatalogController) ListBranches(ctx *gin.Context) {
	util.Success(ctx, c.Catalog.Branches())
}

// ListTopics godoc
// @Summary 主题列表
// @Description 指定 branch 时返回该方向的主题加通用能力主题；不指定时返回全部主题
// @Tags 题目目录
// @Produce json
// @Param branch query string false "学科方向，如 CSE"
// @Success 200 {object} util.Response{data=[]catalog.Topic} "成功"
// @Router /api/catalog/topics [get]
func (c *CatalogController) ListTopics(ctx *gin.Context) {
	branch := ctx.Query("branch")
	if branch == "" {
		util.Success(ctx, c.Catalog.All())
		return
	}
	util.Success(ctx, c.Catalog.TopicsFor(branch))
}

// ListSubtopics godoc
// @Summary 子主题列表
// @Tags 题目目录
// @Produce json
// @Param topic path string true "主题名称"
// @Success 200 {object} util.Response{data=[]string} "成功"
// @Failure 404 {object} util.Response "主题不存在"
// @Router /api/catalog/topics/{topic}/subtopics [get]
func (c *CatalogController) ListSubtopics(ctx *gin.Context) {
	topic, ok := c.Catalog.Lookup(ctx.Param("topic"))
	if !ok {
		util.Error(ctx, http.StatusNotFound, util.ErrUnknownTopic.Error())
		return
	}
	util.Success(ctx, topic.Subtopics)
}
