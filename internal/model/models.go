package model

// All 返回需要迁移的全部模型，迁移与环境自检共用这一份清单
func All() []any {
	return []any{
		&User{},
		&QuizScore{},
		&QuizProgress{},
		&Certificate{},
		&Resume{},
	}
}
