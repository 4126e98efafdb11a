package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/dto"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/services"
)

// MessageHandler serves posting, viewing, deleting and liking messages.
type MessageHandler struct {
	messageService *services.MessageService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

type messageForm struct {
	Text string `form:"text" json:"text"`
}

// New renders the message form.
func (h *MessageHandler) New(c *gin.Context) {
	c.HTML(http.StatusOK, "messages-new.html", page(c, "New message", gin.H{"Form": messageForm{}}))
}

// Create posts a message for the current user.
func (h *MessageHandler) Create(c *gin.Context) {
	var form messageForm
	if err := c.ShouldBind(&form); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	me := currentUserID(c)
	msg, err := h.messageService.Create(c.Request.Context(), me, form.Text)
	if err != nil {
		verr, invalid := apperrors.AsValidation(err)
		if !invalid {
			handleError(c, err)
			return
		}
		if middleware.WantsJSON(c) {
			apperrors.BadRequest(c, verr.Error())
			return
		}
		c.HTML(http.StatusOK, "messages-new.html", page(c, "New message", gin.H{
			"Form":   form,
			"Errors": []string{verr.Error()},
		}))
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToMessageDTO(*msg, false))
		return
	}
	c.Redirect(http.StatusFound, userPath(me))
}

// Show renders one message with its like count.
func (h *MessageHandler) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	msg, err := h.messageService.Get(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	likedBy, err := h.messageService.LikedBy(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	liked := false
	if me, ok := middleware.GetUserID(c); ok {
		for _, u := range likedBy {
			if u.ID == me {
				liked = true
				break
			}
		}
	}

	respond(c, http.StatusOK, "messages-show.html", "Message", gin.H{
		"Message": msg,
		"Liked":   liked,
		"LikedBy": likedBy,
	}, dto.ToMessageDTO(*msg, liked))
}

// Delete removes the message loaded by RequireMessageOwner.
func (h *MessageHandler) Delete(c *gin.Context) {
	msg := middleware.CurrentMessage(c)
	me := currentUserID(c)

	if err := h.messageService.Delete(c.Request.Context(), msg.ID, me); err != nil {
		if errors.Is(err, services.ErrNotMessageOwner) {
			middleware.Deny(c)
			return
		}
		handleError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusFound, userPath(me))
}

// ToggleLike likes or unlikes :id for the current user. Browsers are sent
// back to the page they came from on this site, JSON clients get the new
// state.
func (h *MessageHandler) ToggleLike(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	liked, err := h.messageService.ToggleLike(ctx, currentUserID(c), id)
	if err != nil {
		handleError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		likedBy, err := h.messageService.LikedBy(ctx, id)
		if err != nil {
			handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.LikeResponse{
			MessageID: id,
			Liked:     liked,
			Likes:     len(likedBy),
		})
		return
	}

	c.Redirect(http.StatusFound, backPath(c))
}
