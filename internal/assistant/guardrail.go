package assistant

import (
	"slices"
	"strings"

	"github.com/run-bigpig/stockai/internal/models"
)

// 内容护栏：任何来源的响应都不得包含买卖指令类表述
var forbiddenTerms = []string{"매수", "매도", "buy", "sell", "추천"}

const (
	cautionNote        = "개별 매수/매도 지시는 제공하지 않습니다."
	standardDisclaimer = "교육/정보 목적이며 투자 조언이 아닙니다."
)

// EnforceGuardrails 扫描可见文本字段，命中禁用词时补充警示并覆盖免责声明
// 对结构不完整的响应（字段缺失、列表为 nil）按缺省处理，不报错
// 幂等：警示语已存在时不重复追加
func EnforceGuardrails(data *models.AssistantResponse) {
	if data == nil {
		return
	}

	parts := []string{data.Summary}
	parts = append(parts, data.KeyPoints...)
	parts = append(parts, data.Explanations...)
	parts = append(parts, data.NextActions...)
	blob := strings.ToLower(strings.Join(parts, " "))

	for _, term := range forbiddenTerms {
		if strings.Contains(blob, term) {
			if !slices.Contains(data.RiskNotes, cautionNote) {
				data.RiskNotes = append(data.RiskNotes, cautionNote)
			}
			data.Disclaimer = standardDisclaimer
			return
		}
	}
}
