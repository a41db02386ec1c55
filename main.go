// @title PlacePrep 后端 API
// @version 1.0
// @description 校招笔试练习平台的后端服务：自适应难度测验、成绩看板、学习建议、简历与证书。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"fmt"
	"os"

	"placeprep_backend/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
