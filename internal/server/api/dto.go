package api

import (
	"time"

	"github.com/socialride/identity/internal/server/models"
)

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type socialRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Prefix    string `json:"prefix"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
}

type registerRequest struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Prefix    string    `json:"prefix"`
	Phone     string    `json:"phone"`
	Gender    string    `json:"gender"`
	BirthDate time.Time `json:"birthDate"`
}

type userDTO struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	Prefix        string    `json:"prefix"`
	Phone         string    `json:"phone"`
	Avatar        string    `json:"avatar"`
	Gender        string    `json:"gender"`
	BirthDate     time.Time `json:"birthDate"`
	PassengerRate float64   `json:"passengerRate"`
	DriverRate    float64   `json:"driverRate"`
	IsDriver      bool      `json:"isDriver"`
	Vehicles      []string  `json:"vehicles"`
}

type sessionResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

type avatarUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

type avatarDownloadResponse struct {
	URL string `json:"url"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		Prefix:        u.Prefix,
		Phone:         u.Phone,
		Avatar:        u.Avatar,
		Gender:        u.Gender,
		BirthDate:     u.BirthDate,
		PassengerRate: u.PassengerRate,
		DriverRate:    u.DriverRate,
		IsDriver:      u.IsDriver,
		Vehicles:      u.Vehicles,
	}
}

func toUserDTOs(users []*models.User) []userDTO {
	result := make([]userDTO, 0, len(users))
	for _, u := range users {
		result = append(result, toUserDTO(u))
	}
	return result
}

func (r *userDTO) toModel(id string) *models.User {
	return &models.User{
		ID:            id,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Prefix:        r.Prefix,
		Phone:         r.Phone,
		Avatar:        r.Avatar,
		Gender:        r.Gender,
		BirthDate:     r.BirthDate,
		PassengerRate: r.PassengerRate,
		DriverRate:    r.DriverRate,
		IsDriver:      r.IsDriver,
		Vehicles:      r.Vehicles,
	}
}

func toSessionResponse(user *models.User, access, refresh string) sessionResponse {
	return sessionResponse{
		ID:           user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Token:        access,
		RefreshToken: refresh,
	}
}
