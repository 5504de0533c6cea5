package assistant

import (
	"slices"
	"testing"

	"github.com/run-bigpig/stockai/internal/models"
)

// TestEnforceGuardrails 禁用词命中后补充警示并覆盖免责声明
func TestEnforceGuardrails(t *testing.T) {
	t.Run("命中韩文禁用词", func(t *testing.T) {
		data := &models.AssistantResponse{
			Summary:    "지금 매수 타이밍입니다.",
			Disclaimer: "원래 문구",
		}
		EnforceGuardrails(data)
		if !slices.Contains(data.RiskNotes, cautionNote) {
			t.Fatal("应追加警示语")
		}
		if data.Disclaimer != standardDisclaimer {
			t.Fatalf("免责声明应被覆盖: %q", data.Disclaimer)
		}
	})

	t.Run("命中英文禁用词忽略大小写", func(t *testing.T) {
		data := &models.AssistantResponse{KeyPoints: []string{"You should BUY now"}}
		EnforceGuardrails(data)
		if !slices.Contains(data.RiskNotes, cautionNote) {
			t.Fatal("大写禁用词也应命中")
		}
	})

	t.Run("next_actions 也在扫描范围", func(t *testing.T) {
		data := &models.AssistantResponse{NextActions: []string{"이 종목을 추천합니다"}}
		EnforceGuardrails(data)
		if !slices.Contains(data.RiskNotes, cautionNote) {
			t.Fatal("next_actions 中的禁用词应命中")
		}
	})

	t.Run("幂等", func(t *testing.T) {
		data := &models.AssistantResponse{Summary: "매도 권고"}
		EnforceGuardrails(data)
		EnforceGuardrails(data)
		count := 0
		for _, note := range data.RiskNotes {
			if note == cautionNote {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("警示语应只追加一次, got %d", count)
		}
	})

	t.Run("干净响应不改动", func(t *testing.T) {
		data := &models.AssistantResponse{
			Summary:    "일봉 기반 요약입니다.",
			RiskNotes:  []string{riskNotePrincipal},
			Disclaimer: "원래 문구",
		}
		EnforceGuardrails(data)
		if len(data.RiskNotes) != 1 {
			t.Fatalf("未命中时不应追加警示: %v", data.RiskNotes)
		}
		if data.Disclaimer != "원래 문구" {
			t.Error("未命中时不应覆盖免责声明")
		}
	})

	t.Run("nil 安全", func(t *testing.T) {
		EnforceGuardrails(nil)
	})

	t.Run("风险字段不触发", func(t *testing.T) {
		// risk_notes 本身允许出现买卖字样（如警示语），不参与扫描
		data := &models.AssistantResponse{RiskNotes: []string{cautionNote}}
		EnforceGuardrails(data)
		if data.Disclaimer == standardDisclaimer {
			t.Error("风险字段中的词不应触发护栏")
		}
	})
}
