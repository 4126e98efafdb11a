package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
)

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

var flashCategories = []string{
	constants.FlashDanger,
	constants.FlashSuccess,
}

func flashKey(category string) string {
	return "_flash_" + category
}

// AddFlash queues message under category and saves the session.
func AddFlash(c *gin.Context, category, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, flashKey(category))
	_ = session.Save()
}

// PopFlashes returns and clears every queued flash.
func PopFlashes(c *gin.Context) []Flash {
	session := sessions.Default(c)

	var flashes []Flash
	for _, category := range flashCategories {
		for _, v := range session.Flashes(flashKey(category)) {
			if msg, ok := v.(string); ok {
				flashes = append(flashes, Flash{Category: category, Message: msg})
			}
		}
	}

	if len(flashes) > 0 {
		_ = session.Save()
	}
	return flashes
}
