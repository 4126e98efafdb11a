package dto

import (
	"time"

	"github.com/yukikurage/warbler/internal/models"
)

// MessageDTO represents a message in API responses
type MessageDTO struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    uint64    `json:"user_id"`
	User      *UserDTO  `json:"user,omitempty"`
	Liked     bool      `json:"liked"`
}

// LikeResponse is the reply to a like toggle
type LikeResponse struct {
	MessageID uint64 `json:"message_id"`
	Liked     bool   `json:"liked"`
	Likes     int    `json:"likes"`
}

// ToMessageDTO converts a Message model to MessageDTO
func ToMessageDTO(msg models.Message, liked bool) MessageDTO {
	dto := MessageDTO{
		ID:        msg.ID,
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
		UserID:    msg.UserID,
		Liked:     liked,
	}

	// Include author if preloaded
	if msg.User.ID != 0 {
		user := ToUserDTO(msg.User)
		dto.User = &user
	}

	return dto
}

// ToMessageDTOs converts messages, marking the ones in liked
func ToMessageDTOs(messages []models.Message, liked map[uint64]bool) []MessageDTO {
	out := make([]MessageDTO, len(messages))
	for i, m := range messages {
		out[i] = ToMessageDTO(m, liked[m.ID])
	}
	return out
}
