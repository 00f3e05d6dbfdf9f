package dto

import "github.com/gofiber/fiber/v2"

// Envelope wraps every successful response.
type Envelope struct {
	StatusCode int         `json:"status_code"`
	Errors     fiber.Map   `json:"errors"`
	Data       interface{} `json:"data"`
}

// ErrorEnvelope wraps every failed response. Errors holds either strings or
// {field: message} objects for validation failures.
type ErrorEnvelope struct {
	StatusCode int           `json:"status_code"`
	Errors     []interface{} `json:"errors"`
}

func Success(data interface{}) Envelope {
	return Envelope{StatusCode: fiber.StatusOK, Errors: fiber.Map{}, Data: data}
}

func Failure(status int, messages ...interface{}) ErrorEnvelope {
	return ErrorEnvelope{StatusCode: status, Errors: messages}
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
