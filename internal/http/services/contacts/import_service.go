package contacts

import (
	"context"
	"io"

	"github.com/dropDatabas3/hellomail/internal/domain/repository"
	dto "github.com/dropDatabas3/hellomail/internal/http/dto/contact"
	"github.com/dropDatabas3/hellomail/internal/importer"
	"github.com/dropDatabas3/hellomail/internal/metrics"
	"github.com/dropDatabas3/hellomail/internal/observability/logger"
)

// ImportRequest es el form de importación ya decodificado.
type ImportRequest struct {
	File      io.Reader
	Mapping   importer.Mapping
	HasHeader bool
	LabelID   *string
}

// ImportService: campos mapeables e importación CSV.
type ImportService interface {
	Fields() dto.ImportFieldsResponse
	Import(ctx context.Context, websiteID string, in ImportRequest) (*dto.ImportResponse, error)
}

type importService struct {
	deps    Deps
	filters *filterCache
}

func NewImportService(deps Deps) ImportService {
	return &importService{deps: deps, filters: &filterCache{deps: deps}}
}

func (s *importService) Fields() dto.ImportFieldsResponse {
	out := dto.ImportFieldsResponse{Fields: make([]dto.ImportField, 0, len(importer.Fields))}
	for _, f := range importer.Fields {
		out.Fields = append(out.Fields, dto.ImportField{Name: f.Name, Label: f.Label, Required: f.Required})
	}
	return out
}

// Import parsea, descarta emails ya existentes en el website e inserta el resto en bloque.
// Errores de mapeo o de archivo retornan importer.ErrInvalidMapping / importer.ErrInvalidCSV.
func (s *importService) Import(ctx context.Context, websiteID string, in ImportRequest) (*dto.ImportResponse, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("contacts"), logger.Op("Import"), logger.WebsiteID(websiteID))

	if err := checkLabel(ctx, s.deps.Labels, websiteID, in.LabelID); err != nil {
		return nil, err
	}

	parsed, err := importer.Parse(in.File, in.Mapping, importer.Options{HasHeader: in.HasHeader, LabelID: in.LabelID})
	if err != nil {
		return nil, err
	}
	res := parsed.Result

	emails := make([]string, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		emails = append(emails, row.Input.Email)
	}
	existing := map[string]bool{}
	if len(emails) > 0 {
		existing, err = s.deps.Contacts.ExistingEmails(ctx, websiteID, emails)
		if err != nil {
			log.Error("existing emails lookup failed", logger.Err(err))
			return nil, err
		}
	}

	batch := make([]repository.ContactInput, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		if existing[row.Input.Email] {
			res.AddError(row.Line, "email already exists")
			continue
		}
		batch = append(batch, row.Input)
	}

	if len(batch) > 0 {
		n, err := s.deps.Contacts.BulkInsert(ctx, websiteID, batch)
		// invalidar también con error: el store puede haber escrito parte
		s.filters.Invalidate(ctx, websiteID)
		if err != nil {
			log.Error("bulk insert failed", logger.Err(err), logger.Count(n))
			return nil, err
		}
		res.Imported = n
		// filas que entraron en carrera con otra escritura
		res.Skipped += len(batch) - n
		metrics.ContactsImported.Add(float64(n))
	}

	log.Info("contacts imported",
		logger.Int("total", res.Total), logger.Int("imported", res.Imported), logger.Int("skipped", res.Skipped))

	errs := res.Errors
	if errs == nil {
		errs = []string{}
	}
	return &dto.ImportResponse{Total: res.Total, Imported: res.Imported, Skipped: res.Skipped, Errors: errs}, nil
}
