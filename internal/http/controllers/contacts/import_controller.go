package contacts

import (
	"bytes"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/hellomail/internal/http/errors"
	"github.com/dropDatabas3/hellomail/internal/http/helpers"
	mw "github.com/dropDatabas3/hellomail/internal/http/middlewares"
	svc "github.com/dropDatabas3/hellomail/internal/http/services/contacts"
	"github.com/dropDatabas3/hellomail/internal/importer"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// ImportController maneja el formulario de mapeo y la subida del CSV.
type ImportController struct {
	service  svc.ImportService
	maxBytes int64
}

func NewImportController(service svc.ImportService, maxBytes int64) *ImportController {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ImportController{service: service, maxBytes: maxBytes}
}

// Fields maneja GET /contacts/{websiteID}/import/fields.
func (c *ImportController) Fields(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.service.Fields())
}

// Import maneja POST /contacts/{websiteID}/import (multipart: file, mapping, has_header, label_id).
// El mapeo se valida antes de leer el archivo.
func (c *ImportController) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImportController.Import"))

	if !helpers.ParseMultipart(w, r, c.maxBytes) {
		return
	}

	var mapping importer.Mapping
	if err := helpers.FormJSON(r, "mapping", &mapping); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidMapping.WithDetail(err.Error()))
		return
	}
	if len(mapping) == 0 {
		httperrors.WriteError(w, httperrors.ErrInvalidMapping.WithDetail("mapping is required"))
		return
	}
	if err := mapping.Validate(); err != nil {
		writeError(w, err)
		return
	}

	files, err := helpers.ReadFiles(r, "file")
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidCSV.WithCause(err))
		return
	}
	if len(files) == 0 {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("file is required"))
		return
	}
	if int64(len(files[0].Data)) > c.maxBytes {
		httperrors.WriteError(w, httperrors.ErrBodyTooLarge)
		return
	}

	req := svc.ImportRequest{
		File:      bytes.NewReader(files[0].Data),
		Mapping:   mapping,
		HasHeader: helpers.FormBool(r, "has_header", true),
	}
	if id := strings.TrimSpace(r.FormValue("label_id")); id != "" {
		req.LabelID = &id
	}

	out, err := c.service.Import(ctx, mw.GetWebsiteID(ctx), req)
	if err != nil {
		log.Debug("import rejected", logger.Err(err))
		writeError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
