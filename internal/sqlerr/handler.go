package sqlerr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/deppfellow/portfolio-api/internal/errs"
	"github.com/deppfellow/portfolio-api/internal/store"
)

// HandleError converts a persistence error into an HTTPError.
//
//   - *errs.HTTPError passes through.
//   - store.NotFoundError becomes 404 "<Entity> not found".
//   - store.ErrDuplicate becomes 400.
//   - parsed Postgres errors become 400 with a readable message.
//   - everything else is a 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var notFound *store.NotFoundError
	if errors.As(err, &notFound) {
		return errs.NewNotFoundError(notFound.Error(), true, nil)
	}
	if errors.Is(err, store.ErrNotFound) {
		return errs.NewNotFoundError("Resource not found", true, nil)
	}

	if errors.Is(err, store.ErrDuplicate) {
		code := "DUPLICATE"
		return errs.NewBadRequestError("A record with this identifier already exists", true, &code, nil)
	}

	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		code := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		switch sqlErr.Code {
		case NotNullViolation:
			field := strings.ToLower(sqlErr.ColumnName)
			return errs.NewBadRequestError(formatUserFriendlyMessage(sqlErr), true, &code,
				[]errs.FieldError{{Field: field, Error: "is required"}})
		case CheckViolation, ForeignKeyViolation, InvalidText:
			return errs.NewBadRequestError(formatUserFriendlyMessage(sqlErr), true, &code, nil)
		}
	}

	return errs.NewInternalServerError().WithDetail(fmt.Sprintf("%T", err), err.Error())
}

func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidText:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	switch sqlErr.Code {
	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation, InvalidText:
		if fieldName := humanizeText(sqlErr.ColumnName); fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case ForeignKeyViolation:
		return "The referenced record does not exist"

	default:
		return "An error occurred while processing your request"
	}
}

// humanizeText turns "column_name" into "Column Name".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
