package handler

import (
	"time"

	"github.com/msomdec/contacts-api/internal/domain"
)

// UserDTO is the public JSON representation of a user.
type UserDTO struct {
	Email        string `json:"email"`
	Subscription string `json:"subscription"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		Email:        u.Email,
		Subscription: string(u.Subscription),
	}
}

// ContactDTO is the JSON representation of a contact.
type ContactDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Favorite  bool   `json:"favorite"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toContactDTO(c *domain.Contact) ContactDTO {
	return ContactDTO{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Favorite:  c.Favorite,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func toContactDTOs(contacts []domain.Contact) []ContactDTO {
	dtos := make([]ContactDTO, len(contacts))
	for i := range contacts {
		dtos[i] = toContactDTO(&contacts[i])
	}
	return dtos
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type contactRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Favorite *bool  `json:"favorite"`
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}
