package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"dompet/internal/log"
)

// telegramUpdate is the subset of a Bot API update the bot reads.
type telegramUpdate struct {
	Message *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

// handleTelegram answers every update with 200 so Telegram does not retry;
// delivery failures are only logged.
func (s *Server) handleTelegram(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if s.opts.TelegramResponder == nil || s.opts.Telegram == nil {
		ErrorResponse(http.StatusNotFound, "telegram is not configured").Write(w)
		return
	}
	if s.opts.TelegramSecret != "" && !secureEqual(r.Header.Get("X-Telegram-Bot-Api-Secret-Token"), s.opts.TelegramSecret) {
		UnauthorizedError().Write(w)
		return
	}

	var upd telegramUpdate
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&upd); err != nil {
		BadRequestError("invalid update").Write(w)
		return
	}
	ok := NewResponse().JSON(map[string]bool{"ok": true})
	if upd.Message == nil || strings.TrimSpace(upd.Message.Text) == "" {
		ok.Write(w)
		return
	}

	ctx := r.Context()
	chatID := strconv.FormatInt(upd.Message.Chat.ID, 10)
	logger := log.FromContext(ctx).WithFields(log.NewFields().WithMessage("telegram", chatID).WithOperation(log.OpReply))

	reply := s.opts.TelegramResponder.Respond(ctx, upd.Message.Text)
	if err := s.opts.Telegram.SendMessage(ctx, chatID, reply); err != nil {
		logger.ErrorContext(ctx, "Failed to send Telegram reply", log.FieldError, err)
	} else {
		logger.InfoContext(ctx, "Telegram message answered")
	}
	ok.Write(w)
}

// handleWhatsApp serves the Fonnte webhook, which posts sender and message.
func (s *Server) handleWhatsApp(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodPost); resp != nil {
		resp.Write(w)
		return
	}
	if s.opts.WhatsAppResponder == nil || s.opts.WhatsApp == nil {
		ErrorResponse(http.StatusNotFound, "whatsapp is not configured").Write(w)
		return
	}

	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid payload").Write(w)
		return
	}
	sender, message := p.Get("sender"), p.Get("message")
	if sender == "" || message == "" {
		NewResponse().JSON(statusPayload("ignored")).Write(w)
		return
	}

	ctx := r.Context()
	logger := log.FromContext(ctx).WithFields(log.NewFields().WithMessage("whatsapp", sender).WithOperation(log.OpReply))

	reply := s.opts.WhatsAppResponder.Respond(ctx, message)
	if err := s.opts.WhatsApp.Send(ctx, sender, reply); err != nil {
		logger.ErrorContext(ctx, "Failed to send WhatsApp reply", log.FieldError, err)
		InternalServerError("reply failed").Write(w)
		return
	}
	logger.InfoContext(ctx, "WhatsApp message answered")
	NewResponse().JSON(statusPayload("success")).Write(w)
}

func secureEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
