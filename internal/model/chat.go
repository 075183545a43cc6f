package model

// ChatRequest is the body of POST /api/chatbot/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant's reply, or an error message on
// failure (never both).
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// ForecastResponse is the body of POST /api/chatbot/forecast.
type ForecastResponse struct {
	Forecast   float64 `json:"forecast"`
	Method     string  `json:"method"`
	Confidence string  `json:"confidence"`
}
