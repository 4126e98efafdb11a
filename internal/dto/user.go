package dto

import (
	"time"

	"github.com/yukikurage/warbler/internal/models"
	"github.com/yukikurage/warbler/internal/repository"
	"github.com/yukikurage/warbler/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID             uint64    `json:"id"`
	Username       string    `json:"username"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileDTO is a user page: the user, their counters and recent messages
type ProfileDTO struct {
	User        UserDTO              `json:"user"`
	Stats       repository.UserStats `json:"stats"`
	IsFollowing bool                 `json:"is_following"`
	Messages    []MessageDTO         `json:"messages,omitempty"`
}

// UserListResponse represents a page of users
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:             user.ID,
		Username:       user.Username,
		ImageURL:       user.ImageURL,
		HeaderImageURL: user.HeaderImageURL,
		Bio:            user.Bio,
		Location:       user.Location,
		CreatedAt:      user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToUserListResponse converts a page of users to UserListResponse
func ToUserListResponse(users []models.User, params utils.PaginationParams, total int64) UserListResponse {
	return UserListResponse{
		Users: ToUserDTOs(users),
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}
