package api

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the response envelope. Values are part of the wire
// contract with existing mobile clients and must not be renumbered.
const (
	codeNoError               = 0
	codeUsernameAvailability  = 10
	codeInvalidAuthentication = 11
	codeAuthenticationGeneric = 12
	codeRegistrationGeneric   = 13
	codeUserGetAll            = 14
	codeUserGet               = 15
	codeUserUpdate            = 16
	codeUserDelete            = 17
	codeRegistrationBypass    = 19
)

type resultError struct {
	ErrorCode int    `json:"errorCode"`
	Message   string `json:"message"`
}

// resultData is the uniform response envelope. Every endpoint returns it,
// success or failure.
type resultData struct {
	Data  any         `json:"data"`
	Error resultError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body resultData) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, http.StatusOK, resultData{Data: data, Error: resultError{ErrorCode: codeNoError}})
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, resultData{
		Data:  struct{}{},
		Error: resultError{ErrorCode: code, Message: message},
	})
}
