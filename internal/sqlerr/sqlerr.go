// Package sqlerr handles persistence errors.
//
// It parses error codes from the Postgres driver into store errors the
// repositories understand, and converts any persistence failure into the
// HTTPError the client receives (e.g. a unique violation into a
// "Bad Request", a missing document into a "Not Found").
package sqlerr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/deppfellow/portfolio-api/internal/store"
)

// Code is a driver-neutral classification of a SQLSTATE.
type Code string

const (
	Other               Code = "other"
	UniqueViolation     Code = "unique_violation"
	NotNullViolation    Code = "not_null_violation"
	CheckViolation      Code = "check_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	InvalidText         Code = "invalid_text_representation"
	ConnectionFailure   Code = "connection_failure"
)

// MapCode classifies a SQLSTATE.
func MapCode(sqlState string) Code {
	switch sqlState {
	case "23505":
		return UniqueViolation
	case "23502":
		return NotNullViolation
	case "23514":
		return CheckViolation
	case "23503":
		return ForeignKeyViolation
	case "22P02":
		return InvalidText
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// Error is a parsed Postgres error.
type Error struct {
	Code           Code
	DatabaseCode   string
	Message        string
	TableName      string
	ColumnName     string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Code, e.Message, e.DatabaseCode)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// ConvertPgError parses a driver error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// ErrCode returns the classification of err, or Other.
func ErrCode(err error) Code {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// Translate maps driver errors onto store errors. Anything it does not
// recognise is returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		if sqlErr.Code == UniqueViolation {
			return fmt.Errorf("%w: %s", store.ErrDuplicate, sqlErr.ConstraintName)
		}
		return sqlErr
	}

	return err
}
