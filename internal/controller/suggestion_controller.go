package controller

import (
	"errors"

	"placeprep_backend/internal/service"
	"placeprep_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SuggestionController struct {
	SuggestionService *service.SuggestionService
}

func NewSuggestionController(suggestionService *service.SuggestionService) *SuggestionController {
	return &SuggestionController{SuggestionService: suggestionService}
}

// @Summary 学习建议
// @Description 按主题分析成绩趋势，给出推荐难度与建议，并列出薄弱、擅长与未练习的主题
// @Tags 学习建议
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.Suggestions}
// @Router /api/suggestions [get]
func (c *SuggestionController) GetSuggestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	suggestions, err := c.SuggestionService.Get(user.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, suggestions)
}
