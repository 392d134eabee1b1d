package dto

import (
	"time"

	"dqdash/internal/entity/common"
)

// UserOut is the user representation returned to clients.
type UserOut struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   *string   `json:"full_name"`
	IsActive   bool      `json:"is_active"`
	IsAdmin    bool      `json:"is_admin"`
	DatasetIDs []uint    `json:"dataset_ids"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserCreateRequest is the payload for creating a user.
type UserCreateRequest struct {
	Email      string  `json:"email" binding:"required,email"`
	FullName   *string `json:"full_name"`
	Password   string  `json:"password" binding:"required,min=8"`
	IsActive   *bool   `json:"is_active"`
	IsAdmin    bool    `json:"is_admin"`
	DatasetIDs []uint  `json:"dataset_ids"`
}

// UserUpdateRequest is the payload for PATCH /users/:id. Keys left out of
// the JSON body stay unchanged.
type UserUpdateRequest struct {
	FullName   common.Optional[string] `json:"full_name"`
	IsActive   common.Optional[bool]   `json:"is_active"`
	IsAdmin    common.Optional[bool]   `json:"is_admin"`
	DatasetIDs common.Optional[[]uint] `json:"dataset_ids"`
}
