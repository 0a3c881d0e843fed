package bot

import (
	"context"
	"strings"
	"time"

	"github.com/ad/autoreply-bot/internal/domain"

	"github.com/go-telegram/bot"
)

// MessageDeleter is an interface for deleting messages (for testing)
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// deleteRetryDelay is how long to wait before retrying a rate-limited deletion
var deleteRetryDelay = time.Second

// deleteMessages removes wizard prompts that are no longer current. Failures
// are logged and never interrupt the conversation. Zero IDs are skipped.
func deleteMessages(ctx context.Context, b MessageDeleter, logger domain.Logger, chatID int64, messageIDs ...int) {
	for _, messageID := range messageIDs {
		if messageID == 0 {
			continue
		}
		if err := deleteMessageWithRetry(ctx, b, logger, chatID, messageID); err != nil {
			logger.Warn("message deletion failed",
				"chat_id", chatID,
				"message_id", messageID,
				"error", err.Error())
			continue
		}
		logger.Debug("message deleted", "chat_id", chatID, "message_id", messageID)
	}
}

// deleteMessageWithRetry deletes one message, retrying once after a rate limit
func deleteMessageWithRetry(ctx context.Context, b MessageDeleter, logger domain.Logger, chatID int64, messageID int) error {
	params := &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	}

	_, err := b.DeleteMessage(ctx, params)
	if err == nil {
		return nil
	}

	switch {
	case isRateLimitError(err):
		logger.Info("rate limit hit, retrying deletion", "chat_id", chatID, "message_id", messageID)
		select {
		case <-time.After(deleteRetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		_, err = b.DeleteMessage(ctx, params)
		return err
	case isMessageNotFoundError(err):
		logger.Debug("message already gone", "chat_id", chatID, "message_id", messageID)
		return nil
	case isMessageTooOldError(err):
		logger.Info("message too old to delete", "chat_id", chatID, "message_id", messageID)
		return nil
	}
	return err
}

// isRateLimitError checks if the error is a Telegram rate limit error
func isRateLimitError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "retry after")
}

// isMessageNotFoundError checks if the error is a "message not found" error
func isMessageNotFoundError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "message to delete not found") ||
		strings.Contains(errStr, "message not found") ||
		strings.Contains(errStr, "MESSAGE_ID_INVALID")
}

// isMessageTooOldError checks if the error is a "message too old" error
func isMessageTooOldError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "message can't be deleted") ||
		strings.Contains(errStr, "message is too old") ||
		strings.Contains(errStr, "MESSAGE_DELETE_FORBIDDEN")
}

// isNotModifiedError reports an edit that would leave the message unchanged
func isNotModifiedError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}
