package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/ad/autoreply-bot/internal/domain"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// errUnsupportedContent is returned for stored content types the platform
// adapter cannot send
var errUnsupportedContent = errors.New("unsupported content type")

// sendReply delivers a resolved reply. Media are sent by file_id with the
// reply caption.
func sendReply(ctx context.Context, m Messenger, chatID int64, reply *domain.Reply) error {
	var err error

	switch reply.ContentType {
	case domain.ContentTypeText:
		_, err = m.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   reply.Ref,
		})
	case domain.ContentTypePhoto:
		_, err = m.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:  chatID,
			Photo:   &models.InputFileString{Data: reply.Ref},
			Caption: reply.Caption,
		})
	case domain.ContentTypeVideo:
		_, err = m.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:  chatID,
			Video:   &models.InputFileString{Data: reply.Ref},
			Caption: reply.Caption,
		})
	case domain.ContentTypeAudio:
		_, err = m.SendAudio(ctx, &bot.SendAudioParams{
			ChatID:  chatID,
			Audio:   &models.InputFileString{Data: reply.Ref},
			Caption: reply.Caption,
		})
	case domain.ContentTypeVoice:
		_, err = m.SendVoice(ctx, &bot.SendVoiceParams{
			ChatID:  chatID,
			Voice:   &models.InputFileString{Data: reply.Ref},
			Caption: reply.Caption,
		})
	case domain.ContentTypeDocument:
		_, err = m.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID:   chatID,
			Document: &models.InputFileString{Data: reply.Ref},
			Caption:  reply.Caption,
		})
	case domain.ContentTypeSticker:
		_, err = m.SendSticker(ctx, &bot.SendStickerParams{
			ChatID:  chatID,
			Sticker: &models.InputFileString{Data: reply.Ref},
		})
	default:
		return fmt.Errorf("%w: %q", errUnsupportedContent, reply.ContentType)
	}

	if err != nil {
		return fmt.Errorf("failed to send %s reply: %w", reply.ContentType, err)
	}
	return nil
}

// extractContent reads the reference for the expected content type from a
// message. ok is false when the message carries something else.
func extractContent(ct domain.ContentType, msg *models.Message) (ref string, ok bool) {
	switch ct {
	case domain.ContentTypeText:
		if domain.NormalizeKey(msg.Text) == "" {
			return "", false
		}
		return msg.Text, true
	case domain.ContentTypePhoto:
		if len(msg.Photo) == 0 {
			return "", false
		}
		// Sizes are ordered ascending; keep the largest
		return msg.Photo[len(msg.Photo)-1].FileID, true
	case domain.ContentTypeVideo:
		if msg.Video == nil {
			return "", false
		}
		return msg.Video.FileID, true
	case domain.ContentTypeAudio:
		if msg.Audio == nil {
			return "", false
		}
		return msg.Audio.FileID, true
	case domain.ContentTypeVoice:
		if msg.Voice == nil {
			return "", false
		}
		return msg.Voice.FileID, true
	case domain.ContentTypeDocument:
		if msg.Document == nil {
			return "", false
		}
		return msg.Document.FileID, true
	case domain.ContentTypeSticker:
		if msg.Sticker == nil {
			return "", false
		}
		return msg.Sticker.FileID, true
	}
	return "", false
}
