// Package auth contiene DTOs para registro, login, sesión y verificación de email.
package auth

// RegisterRequest es el body de POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterResponse es la respuesta exitosa del registro.
type RegisterResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// RegisterResult es el resultado interno del RegisterService.
type RegisterResult struct {
	UserID     string
	Email      string
	IsVerified bool
	// VerifyLink sólo se completa cuando el link no salió por SMTP y el echo de debug está activo.
	VerifyLink string
}

// LoginRequest es el body de POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult trae el JWT de sesión para la cookie.
type LoginResult struct {
	UserID     string
	Email      string
	IsVerified bool
	Token      string
	ExpiresIn  int64 // segundos
}

// UserResponse describe al usuario de la sesión.
type UserResponse struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	IsVerified bool   `json:"is_verified"`
}

// ResendRequest es el body de POST /verify/email/resend.
type ResendRequest struct {
	Email string `json:"email"`
}

// VerifyResult indica si esta llamada verificó la cuenta o ya estaba verificada.
type VerifyResult struct {
	AlreadyVerified bool
}

// MessageResponse es el `{message}` que esperan los clientes.
type MessageResponse struct {
	Message string `json:"message"`
}
