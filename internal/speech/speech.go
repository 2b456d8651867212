package speech

import (
	"strings"

	"github.com/fenjian-next/internal/logger"
)

// Speaker 语音播报协作方。
// 播报是即发即忘的副作用，核心状态不依赖播报结果。
type Speaker interface {
	Speak(text string, tone string)
}

// ZoneSpeechText 生成分区的播报读法。
// "10-1" 读作 "10杠1"；只影响播报文本，存储的分区值保持原样。
func ZoneSpeechText(zone, separatorWord string) string {
	if separatorWord == "" {
		separatorWord = "杠"
	}
	return strings.ReplaceAll(zone, "-", separatorWord)
}

// LogSpeaker 把播报请求写入日志的默认实现。
// 真实站点接本机 TTS 播放器时替换该实现即可。
type LogSpeaker struct{}

// NewLogSpeaker 创建日志播报器
func NewLogSpeaker() *LogSpeaker {
	return &LogSpeaker{}
}

// Speak 输出播报请求
func (s *LogSpeaker) Speak(text string, tone string) {
	logger.Infow("speech", "text", text, "tone", tone)
}
