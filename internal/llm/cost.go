package llm

import "strings"

// price is USD per 1000 tokens.
type price struct{ in, out float64 }

var prices = map[string]price{
	"gpt-4o":        {0.005, 0.015},
	"gpt-4o-mini":   {0.00015, 0.0006},
	"gpt-4-turbo":   {0.01, 0.03},
	"gpt-3.5-turbo": {0.0005, 0.0015},

	"claude-3-haiku-20240307":  {0.00025, 0.00125},
	"claude-sonnet-4-20250514": {0.003, 0.015},
	"claude-opus-4-20250514":   {0.015, 0.075},
}

// priceFor matches model exactly, then by the longest listed prefix, so
// snapshot names such as gpt-4o-mini-2024-07-18 use their family's price.
func priceFor(model string) (price, bool) {
	if p, ok := prices[model]; ok {
		return p, true
	}
	var (
		best  price
		match string
	)
	for name, p := range prices {
		if strings.HasPrefix(model, name+"-") && len(name) > len(match) {
			best, match = p, name
		}
	}
	return best, match != ""
}

// CalculateCost estimates the price of one completion. Unknown models cost 0.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := priceFor(model)
	if !ok {
		return 0
	}
	return (float64(inputTokens)*p.in + float64(outputTokens)*p.out) / 1000
}
