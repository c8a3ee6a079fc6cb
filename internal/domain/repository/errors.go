package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe (o no pertenece al scope).
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un conflicto (duplicado, estado inválido para la operación).
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos no cumplen un constraint de la base.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
