// Package apperr regroupe les catégories d'erreurs métier et leur traduction HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation   = errors.New("données invalides")
	ErrNotFound     = errors.New("ressource introuvable")
	ErrConflict     = errors.New("conflit")
	ErrUpstream     = errors.New("service externe indisponible")
	ErrUnauthorized = errors.New("non authentifié")
)

// kindError associe un message lisible à une catégorie d'erreur.
type kindError struct {
	kind error
	msg  string
	err  error
}

func (e *kindError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *kindError) Unwrap() []error {
	if e.err != nil {
		return []error{e.kind, e.err}
	}
	return []error{e.kind}
}

func Validation(msg string) error   { return &kindError{kind: ErrValidation, msg: msg} }
func NotFound(msg string) error     { return &kindError{kind: ErrNotFound, msg: msg} }
func Conflict(msg string) error     { return &kindError{kind: ErrConflict, msg: msg} }
func Unauthorized(msg string) error { return &kindError{kind: ErrUnauthorized, msg: msg} }

// Upstream enveloppe l'erreur d'un prestataire (passerelle de paiement, SMTP...).
func Upstream(msg string, err error) error {
	return &kindError{kind: ErrUpstream, msg: msg, err: err}
}

// Message retourne le texte à exposer au client.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	return err.Error()
}

// Status traduit une erreur en code HTTP.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
