package assistant

// responseSchema AssistantResponse 的封闭 JSON Schema
// strict 模式下由服务端拒绝越界输出，本侧不做二次校验
func responseSchema() map[string]any {
	instrumentProps := map[string]any{
		"id":     map[string]any{"type": "integer"},
		"market": map[string]any{"type": "string"},
		"symbol": map[string]any{"type": "string"},
		"name":   map[string]any{"type": "string"},
	}
	instrumentRequired := []string{"id", "market", "symbol", "name"}

	stringArray := func() map[string]any {
		return map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resolved_instrument": map[string]any{
				"type":                 []string{"object", "null"},
				"properties":           instrumentProps,
				"required":             instrumentRequired,
				"additionalProperties": false,
			},
			"candidates": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"properties":           instrumentProps,
					"required":             instrumentRequired,
					"additionalProperties": false,
				},
			},
			"price_summary": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"last_close": map[string]any{"type": []string{"number", "null"}},
					"change":     map[string]any{"type": []string{"number", "null"}},
					"change_pct": map[string]any{"type": []string{"number", "null"}},
					"window":     map[string]any{"type": "string"},
				},
				"required":             []string{"last_close", "change", "change_pct", "window"},
				"additionalProperties": false,
			},
			"summary":      map[string]any{"type": "string"},
			"key_points":   stringArray(),
			"explanations": stringArray(),
			"data_used":    stringArray(),
			"risk_notes":   stringArray(),
			"next_actions": stringArray(),
			"disclaimer":   map[string]any{"type": "string"},
		},
		"required": []string{
			"resolved_instrument",
			"candidates",
			"price_summary",
			"summary",
			"key_points",
			"explanations",
			"data_used",
			"risk_notes",
			"next_actions",
			"disclaimer",
		},
		"additionalProperties": false,
	}
}
