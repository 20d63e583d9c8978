package api

import (
	"encoding/json"
	"net/http"
)

// Webhook event envelope, matching the chat platform's shape for text
// messages. Signature verification and non-message event types are handled
// upstream; replies are returned in the response body for the gateway to
// deliver.
type webhookRequest struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type       string `json:"type"`
	ReplyToken string `json:"replyToken"`
	Source     struct {
		UserID string `json:"userId"`
	} `json:"source"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
}

type webhookReply struct {
	ReplyToken string `json:"replyToken"`
	Text       string `json:"text"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	replies := make([]webhookReply, 0, len(req.Events))
	for _, event := range req.Events {
		if event.Type != "message" || event.Message.Type != "text" || event.Source.UserID == "" {
			continue
		}

		text, err := s.bot.HandleText(r.Context(), event.Source.UserID, event.Message.Text)
		if err != nil {
			s.logger.Error().Err(err).
				Str("user_id", event.Source.UserID).
				Msg("handle webhook message")
			text = "Sorry, something went wrong. Please try again."
		}

		replies = append(replies, webhookReply{
			ReplyToken: event.ReplyToken,
			Text:       text,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"replies": replies,
	})
}
