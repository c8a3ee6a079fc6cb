// Package contacts contiene los controllers de contactos, importación CSV y unsubscribe.
package contacts

import (
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/contacts"
	"github.com/dropDatabas3/hellomail/internal/importer"
)

type Controllers struct {
	Contacts    *ContactsController
	Import      *ImportController
	Unsubscribe *UnsubscribeController
}

// NewControllers: maxCSVBytes es uploads.max_csv_bytes.
func NewControllers(s svc.Services, maxCSVBytes int64) *Controllers {
	return &Controllers{
		Contacts:    NewContactsController(s.Contacts),
		Import:      NewImportController(s.Import, maxCSVBytes),
		Unsubscribe: NewUnsubscribeController(s.Unsubscribe),
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ie *svc.InputError
	var me *importer.MappingError
	switch {
	case errors.As(err, &ie):
		if ie.Reason == "required" {
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(ie.Error()))
			return
		}
		httperrors.WriteError(w, httperrors.ErrInvalidFormat.WithDetail(ie.Error()))
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrAlreadyExists.WithDetail("a contact with this email already exists"))
	case errors.Is(err, svc.ErrNotFound):
		httperrors.WriteError(w, httperrors.ErrContactNotFound)
	case errors.Is(err, svc.ErrLabelNotFound):
		httperrors.WriteError(w, httperrors.ErrLabelNotFound)
	case errors.As(err, &me):
		httperrors.WriteError(w, httperrors.ErrInvalidMapping.WithDetail(me.Error()))
	case errors.Is(err, importer.ErrInvalidMapping):
		httperrors.WriteError(w, httperrors.ErrInvalidMapping)
	case errors.Is(err, importer.ErrInvalidCSV):
		httperrors.WriteError(w, httperrors.ErrInvalidCSV.WithDetail(err.Error()))
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithCause(err))
	}
}
