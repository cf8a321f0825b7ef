package cost

// Rates are USD prices per 1000 tokens.
type Rates struct {
	InputPer1K  float64
	OutputPer1K float64
}

// Cost prices one exchange.
func Cost(inputTokens, outputTokens int, rates Rates) float64 {
	return float64(inputTokens)/1000*rates.InputPer1K + float64(outputTokens)/1000*rates.OutputPer1K
}

// Accountant holds the configured rates for chat and embedding calls.
type Accountant struct {
	Chat      Rates
	Embedding Rates
}

func NewAccountant(chat Rates, embeddingPer1K float64) *Accountant {
	return &Accountant{
		Chat:      chat,
		Embedding: Rates{InputPer1K: embeddingPer1K},
	}
}

func (a *Accountant) ChatCost(inputTokens, outputTokens int) float64 {
	return Cost(inputTokens, outputTokens, a.Chat)
}

func (a *Accountant) EmbeddingCost(tokens int) float64 {
	return Cost(tokens, 0, a.Embedding)
}
