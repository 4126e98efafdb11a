package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/dto"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/services"
	"github.com/yukikurage/warbler/internal/utils"
)

// UserHandler serves user pages, follows and profile editing.
type UserHandler struct {
	userService    *services.UserService
	messageService *services.MessageService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, messageService *services.MessageService) *UserHandler {
	return &UserHandler{
		userService:    userService,
		messageService: messageService,
	}
}

// List shows users, filtered by the q query parameter.
func (h *UserHandler) List(c *gin.Context) {
	query := c.Query("q")
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.Search(c.Request.Context(), query, params)
	if err != nil {
		renderInternalError(c, err)
		return
	}

	totalPages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		totalPages++
	}

	respond(c, http.StatusOK, "users-index.html", "Users", gin.H{
		"Users":      users,
		"Query":      query,
		"Page":       params.Page,
		"TotalPages": totalPages,
	}, dto.ToUserListResponse(users, params, total))
}

// profile gathers what every user page shows above its content.
func (h *UserHandler) profile(c *gin.Context, id uint64) (gin.H, *dto.ProfileDTO, bool) {
	ctx := c.Request.Context()

	user, err := h.userService.Get(ctx, id)
	if err != nil {
		handleError(c, err)
		return nil, nil, false
	}

	stats, err := h.userService.Stats(ctx, id)
	if err != nil {
		handleError(c, err)
		return nil, nil, false
	}

	isFollowing := false
	if me, ok := middleware.GetUserID(c); ok && me != id {
		isFollowing, err = h.userService.IsFollowing(ctx, me, id)
		if err != nil {
			handleError(c, err)
			return nil, nil, false
		}
	}

	data := gin.H{
		"User":        user,
		"Stats":       stats,
		"IsFollowing": isFollowing,
	}
	payload := &dto.ProfileDTO{
		User:        dto.ToUserDTO(*user),
		Stats:       stats,
		IsFollowing: isFollowing,
	}
	return data, payload, true
}

// likedBy reports which of messages the current user likes.
func (h *UserHandler) likedBy(c *gin.Context, messages []models.Message) (map[uint64]bool, error) {
	me, ok := middleware.GetUserID(c)
	if !ok {
		return map[uint64]bool{}, nil
	}
	return h.messageService.LikedIDs(c.Request.Context(), me, messages)
}

// Show renders a user's profile and messages.
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	data, payload, ok := h.profile(c, id)
	if !ok {
		return
	}

	messages, err := h.userService.Messages(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	liked, err := h.likedBy(c, messages)
	if err != nil {
		handleError(c, err)
		return
	}

	data["Messages"] = messages
	data["Liked"] = liked
	payload.Messages = dto.ToMessageDTOs(messages, liked)

	respond(c, http.StatusOK, "users-show.html", "@"+payload.User.Username, data, payload)
}

// Following lists the users a user follows.
func (h *UserHandler) Following(c *gin.Context) {
	h.showUsers(c, "users-following.html", h.userService.Following)
}

// Followers lists a user's followers.
func (h *UserHandler) Followers(c *gin.Context) {
	h.showUsers(c, "users-followers.html", h.userService.Followers)
}

func (h *UserHandler) showUsers(c *gin.Context, name string, list func(context.Context, uint64) ([]models.User, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	data, payload, ok := h.profile(c, id)
	if !ok {
		return
	}

	users, err := list(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	data["Users"] = users

	respond(c, http.StatusOK, name, "@"+payload.User.Username, data, dto.ToUserDTOs(users))
}

// Likes lists the messages a user likes.
func (h *UserHandler) Likes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	data, payload, ok := h.profile(c, id)
	if !ok {
		return
	}

	messages, err := h.userService.LikedMessages(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	liked, err := h.likedBy(c, messages)
	if err != nil {
		handleError(c, err)
		return
	}

	data["Messages"] = messages
	data["Liked"] = liked

	respond(c, http.StatusOK, "users-likes.html", "@"+payload.User.Username, data, dto.ToMessageDTOs(messages, liked))
}

// Follow adds a follows edge from the current user to :id.
func (h *UserHandler) Follow(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	me := currentUserID(c)
	if err := h.userService.Follow(c.Request.Context(), me, id); err != nil {
		if !errors.Is(err, services.ErrCannotFollowSelf) {
			handleError(c, err)
			return
		}
		middleware.AddFlash(c, constants.FlashDanger, "You cannot follow yourself.")
	}

	c.Redirect(http.StatusFound, userPath(me)+"/following")
}

// StopFollowing removes the follows edge from the current user to :id.
func (h *UserHandler) StopFollowing(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	me := currentUserID(c)
	if err := h.userService.Unfollow(c.Request.Context(), me, id); err != nil {
		handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, userPath(me)+"/following")
}

type profileForm struct {
	Username       string `form:"username"`
	Email          string `form:"email"`
	ImageURL       string `form:"image_url"`
	HeaderImageURL string `form:"header_image_url"`
	Bio            string `form:"bio"`
	Location       string `form:"location"`
	Password       string `form:"password"`
	NewPassword    string `form:"new_password"`
}

func profileFormFor(user *models.User) profileForm {
	return profileForm{
		Username:       user.Username,
		Email:          user.Email,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
	}
}

// EditProfile renders the profile form for the current user.
func (h *UserHandler) EditProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.HTML(http.StatusOK, "users-edit.html", page(c, "Edit profile", gin.H{"Form": profileFormFor(user)}))
}

// UpdateProfile re-checks the password and saves the profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	me := currentUserID(c)
	_, err := h.userService.UpdateProfile(c.Request.Context(), me, services.UpdateProfileInput{
		Username:       form.Username,
		Email:          form.Email,
		ImageURL:       form.ImageURL,
		HeaderImageURL: form.HeaderImageURL,
		Bio:            form.Bio,
		Location:       form.Location,
		Password:       form.Password,
		NewPassword:    form.NewPassword,
	})
	if err == nil {
		c.Redirect(http.StatusFound, userPath(me))
		return
	}

	form.Password = ""
	form.NewPassword = ""
	data := gin.H{"Form": form}

	verr, invalid := apperrors.AsValidation(err)
	switch {
	case errors.Is(err, services.ErrWrongPassword):
		middleware.AddFlash(c, constants.FlashDanger, constants.MsgWrongPassword)
	case errors.Is(err, apperrors.ErrConstraintViolation):
		middleware.AddFlash(c, constants.FlashDanger, constants.MsgUsernameTaken)
	case invalid:
		data["Errors"] = []string{verr.Error()}
	default:
		handleError(c, err)
		return
	}

	c.HTML(http.StatusOK, "users-edit.html", page(c, "Edit profile", data))
}

// Delete removes the current user and logs them out.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.DeleteAccount(c.Request.Context(), currentUserID(c)); err != nil {
		handleError(c, err)
		return
	}

	if err := middleware.Logout(c); err != nil {
		renderInternalError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/signup")
}
