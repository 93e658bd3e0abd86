package llm

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// responsesRequest is the body of POST /v1/responses.
type responsesRequest struct {
	Model string    `json:"model"`
	Input []message `json:"input"`
	Text  *struct {
		Format map[string]any `json:"format"`
	} `json:"text,omitempty"`
}

// responsesResponse is the subset of the Responses API reply we read.
type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}

// apiError is the error envelope returned with non-2xx statuses.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
