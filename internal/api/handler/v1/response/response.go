package response

import "github.com/ingetuto/ingetuto-api/internal/domain"

type TokenResponse struct {
	Token string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MeResponse struct {
	domain.User
	ActiveRole string `json:"rolActivo"`
}

type RemoveSubjectResponse struct {
	Message      string `json:"message"`
	TutorRevoked bool   `json:"rolRevocado"`
}
