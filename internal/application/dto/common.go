package dto

// ErrorResponse cuerpo de error HTTP. Detail es el mensaje que el cliente muestra tal cual.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationErrorItem elemento de un error 422 (detail es una lista).
type ValidationErrorItem struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationErrorResponse cuerpo 422 con la lista de campos inválidos.
type ValidationErrorResponse struct {
	Detail []ValidationErrorItem `json:"detail"`
}

// MessageResponse respuesta con solo un mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}
