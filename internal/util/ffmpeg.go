package util

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ThumbnailWidth 证书缩略图宽度（像素），高度按比例缩放
const ThumbnailWidth = 320

// ImageThumbnail 使用 ffmpeg-go 通过管道把图片缩放为 JPEG 缩略图
func ImageThumbnail(src io.Reader, width int) ([]byte, error) {
	if width <= 0 {
		width = ThumbnailWidth
	}

	var out, errOut bytes.Buffer
	err := ffmpeg.Input("pipe:0").
		Output("pipe:1", ffmpeg.KwArgs{
			"vf":      fmt.Sprintf("scale=%d:-1", width),
			"vframes": "1",
			"f":       "image2",
			"c:v":     "mjpeg",
			"q:v":     "4",
		}).
		WithInput(src).
		WithOutput(&out).
		WithErrorOutput(&errOut).
		Run()
	if err != nil {
		return nil, fmt.Errorf("生成缩略图失败: %w: %s", err, lastLine(errOut.String()))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("生成缩略图失败: 输出为空")
	}
	return out.Bytes(), nil
}

// GetFFmpegVersion 获取FFmpeg版本信息，用于检查FFmpeg是否正确安装
func GetFFmpegVersion() (string, error) {
	// ffmpeg-go 没有版本查询接口，直接调用命令
	cmd := exec.Command("ffmpeg", "-version", "-hide_banner")
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("获取FFmpeg版本失败，请确保FFmpeg已正确安装: %v, %s", err, errOut.String())
	}
	return lastLine(strings.SplitN(out.String(), "\n", 2)[0]), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
