package llm

const groqBaseURL = "https://api.groq.com/openai"

// Groq serves open-weight models behind an OpenAI compatible API.
type Groq struct {
	*OpenAICompatible
}

func NewGroq(apiKey, model string) *Groq {
	return newGroqWithBaseURL(groqBaseURL, apiKey, model)
}

func newGroqWithBaseURL(baseURL, apiKey, model string) *Groq {
	return &Groq{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    baseURL,
			APIKey:     apiKey,
			Model:      model,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
