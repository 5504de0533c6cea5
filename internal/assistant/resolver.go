package assistant

import (
	"strings"

	"github.com/run-bigpig/stockai/internal/models"
)

// maxCandidates 响应中最多保留的候选数
const maxCandidates = 5

// searchHit search_instruments 返回的单条命中
type searchHit struct {
	ID         int64  `json:"id"`
	MarketCode string `json:"market_code"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Currency   string `json:"currency,omitempty"`
}

// pickInstrument 从命中列表中确定唯一证券
// 规则：代码与查询精确匹配（忽略大小写）优先；仅一条命中时直接采用；
// 其余情况视为未确定，避免在多义查询上误判
func pickInstrument(hits []searchHit, q string) *searchHit {
	if len(hits) == 0 {
		return nil
	}
	qNorm := strings.ToLower(strings.TrimSpace(q))
	for i := range hits {
		if strings.ToLower(hits[i].Symbol) == qNorm {
			return &hits[i]
		}
	}
	if len(hits) == 1 {
		return &hits[0]
	}
	return nil
}

// candidateRefs 命中列表映射为候选，保持原序、最多 5 条、不重排
func candidateRefs(hits []searchHit) []models.InstrumentRef {
	refs := make([]models.InstrumentRef, 0, maxCandidates)
	for _, h := range hits {
		if len(refs) >= maxCandidates {
			break
		}
		refs = append(refs, instrumentRef(&h))
	}
	return refs
}

// instrumentRef 单条命中映射为响应引用
func instrumentRef(h *searchHit) models.InstrumentRef {
	return models.InstrumentRef{
		ID:     h.ID,
		Market: h.MarketCode,
		Symbol: h.Symbol,
		Name:   h.Name,
	}
}
