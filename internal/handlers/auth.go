package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/warbler/internal/constants"
	"github.com/yukikurage/warbler/internal/dto"
	apperrors "github.com/yukikurage/warbler/internal/errors"
	"github.com/yukikurage/warbler/internal/middleware"
	"github.com/yukikurage/warbler/internal/services"
)

// AuthHandler coordinates signup, login and logout.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type signupForm struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	ImageURL string `form:"image_url" json:"image_url"`
}

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// ShowSignup renders the signup form.
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", page(c, "Sign up", gin.H{"Form": signupForm{}}))
}

// Signup registers a new user and logs them in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		ImageURL: form.ImageURL,
	})
	if err != nil {
		h.rerenderSignup(c, form, err)
		return
	}

	if err := middleware.Login(c, user.ID); err != nil {
		renderInternalError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) rerenderSignup(c *gin.Context, form signupForm, err error) {
	form.Password = ""
	data := gin.H{"Form": form}

	verr, invalid := apperrors.AsValidation(err)
	switch {
	case invalid:
		if middleware.WantsJSON(c) {
			apperrors.BadRequest(c, verr.Error())
			return
		}
		data["Errors"] = []string{verr.Error()}
	case errors.Is(err, apperrors.ErrConstraintViolation):
		if middleware.WantsJSON(c) {
			apperrors.Conflict(c, constants.MsgUsernameTaken)
			return
		}
		middleware.AddFlash(c, constants.FlashDanger, constants.MsgUsernameTaken)
	default:
		renderInternalError(c, err)
		return
	}

	c.HTML(http.StatusOK, "signup.html", page(c, "Sign up", data))
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", page(c, "Log in", gin.H{"Form": loginForm{}}))
}

// Login authenticates a user and initializes the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		apperrors.BadRequest(c, "Invalid request body")
		return
	}

	user, ok, err := h.authService.Authenticate(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		renderInternalError(c, err)
		return
	}
	if !ok {
		if middleware.WantsJSON(c) {
			apperrors.Unauthorized(c, constants.MsgInvalidCredentials)
			return
		}
		middleware.AddFlash(c, constants.FlashDanger, constants.MsgInvalidCredentials)
		c.HTML(http.StatusOK, "login.html", page(c, "Log in", gin.H{"Form": loginForm{Username: form.Username}}))
		return
	}

	if err := middleware.Login(c, user.ID); err != nil {
		renderInternalError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, dto.ToUserDTO(*user))
		return
	}
	middleware.AddFlash(c, constants.FlashSuccess, "Hello, "+user.Username+"!")
	c.Redirect(http.StatusFound, "/")
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		renderInternalError(c, err)
		return
	}

	if middleware.WantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"message": constants.MsgLoggedOut})
		return
	}
	middleware.AddFlash(c, constants.FlashSuccess, constants.MsgLoggedOut)
	c.Redirect(http.StatusFound, "/login")
}
