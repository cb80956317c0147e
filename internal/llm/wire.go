package llm

import "time"

// Chat-completions wire shapes. The exported ChatRequest/ChatResponse are
// what callers see; these mirror the backend JSON exactly.

type wireRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    *float32        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type wireChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

type wireResponse struct {
	ID      string       `json:"id"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []wireChoice `json:"choices"`
	Usage   *Usage       `json:"usage,omitempty"`
}

// wireError is the backend's error envelope. Code is a string or a number
// depending on the vendor, so it is left undecoded.
type wireError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (w wireResponse) chatResponse() *ChatResponse {
	out := &ChatResponse{
		ID:      w.ID,
		Created: time.Unix(w.Created, 0),
		Model:   w.Model,
		Choices: make([]ChatChoice, 0, len(w.Choices)),
		Usage:   &Usage{},
	}
	for _, ch := range w.Choices {
		out.Choices = append(out.Choices, ChatChoice{
			Index:        ch.Index,
			Message:      ch.Message,
			FinishReason: ch.FinishReason,
		})
	}
	if w.Usage != nil {
		*out.Usage = *w.Usage
	}
	return out
}
