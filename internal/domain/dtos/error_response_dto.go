package dtos

type ErrorResponse struct {
	Error string `json:"error"`
}
