package assistant

import (
	"context"
	"fmt"

	"github.com/run-bigpig/stockai/internal/models"
)

// 规则应答固定文案
const (
	windowRecent30d = "recent 30d"
	windowNA        = "N/A"

	riskNoteDataLag   = "데이터 지연/누락 가능성이 있습니다."
	riskNoteDemoSeed  = "데이터는 데모 시드 기반일 수 있습니다."
	riskNotePrincipal = "투자에는 원금 손실 위험이 있습니다."
)

// ruleBasedResponse 规则应答：本地完成工具查询序列后确定性拼装结构化响应
// 状态机：查询 → 已确定 | 未确定 → 渲染
func (s *Service) ruleBasedResponse(ctx context.Context, msg string) (*models.AssistantResponse, []models.ToolCall, error) {
	lk, err := s.toolLookup(ctx, msg)
	if err != nil {
		return nil, nil, err
	}

	if lk.instrument == nil {
		return unresolvedResponse(msg, lk), lk.trace, nil
	}
	return resolvedResponse(lk), lk.trace, nil
}

// unresolvedResponse 未确定分支：不再追加工具调用，引导用户补充精确代码
func unresolvedResponse(msg string, lk *lookupResult) *models.AssistantResponse {
	candidates := []models.InstrumentRef{}
	if len(lk.trace) > 0 {
		var hits []searchHit
		decodeItems(lk.trace[0].Result, &hits)
		candidates = candidateRefs(hits)
	}

	summary := fmt.Sprintf("'%s'에 해당하는 종목을 찾지 못했습니다.", msg)
	if len(candidates) > 0 {
		summary = "여러 후보가 있습니다. 종목을 선택해 주세요."
	}

	return &models.AssistantResponse{
		ResolvedInstrument: nil,
		Candidates:         candidates,
		PriceSummary:       models.PriceSummary{Window: windowNA},
		Summary:            summary,
		KeyPoints:          []string{"티커/종목코드/이름을 더 정확히 입력해 주세요."},
		Explanations:       []string{},
		DataUsed:           dataUsed(lk.trace),
		RiskNotes:          []string{riskNoteDataLag},
		NextActions:        []string{"정확한 티커 또는 종목코드를 다시 입력"},
		Disclaimer:         standardDisclaimer,
	}
}

// resolvedResponse 已确定分支：价格归约 + 确定性摘要文案
func resolvedResponse(lk *lookupResult) *models.AssistantResponse {
	inst := lk.instrument
	stats := summarizePrices(lk.prices)

	keyPoints := []string{
		fmt.Sprintf("%s · %s (%s, %s)", inst.Symbol, inst.Name, inst.MarketCode, inst.Currency),
		fmt.Sprintf("가격 데이터 포인트: %d개", stats.points),
	}
	if stats.lastClose != nil {
		keyPoints = append(keyPoints, fmt.Sprintf("마지막 종가: %g", *stats.lastClose))
	}
	if stats.change != nil {
		keyPoints = append(keyPoints, fmt.Sprintf("기간 변동: %+g", *stats.change))
	}

	ref := instrumentRef(inst)
	return &models.AssistantResponse{
		ResolvedInstrument: &ref,
		Candidates:         []models.InstrumentRef{},
		PriceSummary: models.PriceSummary{
			LastClose: stats.lastClose,
			Change:    stats.change,
			ChangePct: stats.changePct,
			Window:    windowRecent30d,
		},
		Summary:      fmt.Sprintf("%s %s 데모 조회 결과입니다.", inst.Symbol, inst.Name),
		KeyPoints:    keyPoints,
		Explanations: []string{"현재는 일봉 기반으로 간단 요약만 제공합니다."},
		DataUsed:     dataUsed(lk.trace),
		RiskNotes:    []string{riskNoteDemoSeed, riskNotePrincipal},
		NextActions: []string{
			"더 긴 기간 데이터를 붙이려면 데이터 소스를 연동하세요.",
			"관심 종목으로 등록해 추적해 보세요.",
		},
		Disclaimer: standardDisclaimer,
	}
}
