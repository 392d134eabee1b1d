package converter

import (
	"dqdash/internal/entity/db"
	"dqdash/internal/entity/dto"
)

// UserToOut converts a db.User to dto.UserOut with the granted dataset ids.
func UserToOut(u *db.User, datasetIDs []uint) dto.UserOut {
	if u == nil {
		return dto.UserOut{}
	}
	if datasetIDs == nil {
		datasetIDs = []uint{}
	}
	return dto.UserOut{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		IsActive:   u.IsActive,
		IsAdmin:    u.IsAdmin,
		DatasetIDs: datasetIDs,
		CreatedAt:  u.CreatedAt.UTC(),
	}
}

// UsersToOut converts a slice of db.User; grants is keyed by user id.
func UsersToOut(users []db.User, grants map[uint][]uint) []dto.UserOut {
	out := make([]dto.UserOut, len(users))
	for i := range users {
		out[i] = UserToOut(&users[i], grants[users[i].ID])
	}
	return out
}
