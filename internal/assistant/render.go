package assistant

import (
	"fmt"
	"strings"

	"github.com/run-bigpig/stockai/internal/models"
)

// msgNothingToDisplay 无可渲染内容时的固定文案
const msgNothingToDisplay = "응답을 받았지만 표시할 내용이 없습니다."

// RenderMessage 将结构化响应确定性渲染为可读消息
// 各小节为空时省略标题；原始文本载荷直接输出
func RenderMessage(p *models.ChatPayload) string {
	if p == nil {
		return msgNothingToDisplay
	}
	if p.IsRaw() {
		if strings.TrimSpace(p.Raw) == "" {
			return msgNothingToDisplay
		}
		return p.Raw
	}

	data := p.Response
	var lines []string

	if data.Summary != "" {
		lines = append(lines, data.Summary)
	}
	if len(data.Candidates) > 0 {
		lines = append(lines, "후보 종목:")
		for i, c := range data.Candidates {
			if i >= maxCandidates {
				break
			}
			lines = append(lines, fmt.Sprintf("- %s · %s", c.Symbol, c.Name))
		}
	}
	lines = appendSection(lines, "핵심 포인트:", data.KeyPoints)
	lines = appendSection(lines, "설명:", data.Explanations)
	lines = appendSection(lines, "리스크/주의:", data.RiskNotes)
	if data.Disclaimer != "" {
		lines = append(lines, data.Disclaimer)
	}

	msg := strings.TrimSpace(strings.Join(lines, "\n"))
	if msg == "" {
		return msgNothingToDisplay
	}
	return msg
}

// appendSection 追加一节带标题的条目列表，空列表整节省略
func appendSection(lines []string, header string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, header)
	for _, item := range items {
		lines = append(lines, "- "+item)
	}
	return lines
}
