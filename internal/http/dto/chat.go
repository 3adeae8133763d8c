package dto

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type SendMessageResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type TurnResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TranscriptResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []TurnResponse `json:"turns"`
}

type ClearTranscriptResponse struct {
	Message string `json:"message"`
}
