package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument возвращается при некорректных входных данных.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidState возвращается, если запрошенный переход недопустим из текущего состояния записи.
	ErrInvalidState = errors.New("invalid state")
	// ErrConflict возвращается, если запись изменили параллельно и она ушла в другое состояние.
	ErrConflict = fmt.Errorf("conflict: %w", ErrInvalidState)
	// ErrUnauthorized возвращается, если роль пользователя не позволяет выполнить действие.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrDependencyFailure возвращается при недоступности хранилища или провайдера идентификации.
	ErrDependencyFailure = errors.New("dependency failure")
)
