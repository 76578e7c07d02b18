package billing

import (
	"context"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/dto"
	"github.com/tu-usuario/facturacion-pro/internal/domain"
	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
)

// DocumentQueryUseCase lecturas de documentos. El estado que devuelve es el
// efectivo: la clasificación de vencimiento se deriva al leer, sin esperar al
// job de materialización.
type DocumentQueryUseCase struct {
	docRepo repository.DocumentRepository
}

// NewDocumentQueryUseCase construye el caso de uso.
func NewDocumentQueryUseCase(docRepo repository.DocumentRepository) *DocumentQueryUseCase {
	return &DocumentQueryUseCase{docRepo: docRepo}
}

// GetDocument devuelve el documento con sus líneas.
func (uc *DocumentQueryUseCase) GetDocument(ctx context.Context, companyID, documentID string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.docRepo.GetLinesByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	return documentToResponse(doc, lines, time.Now()), nil
}

// ListDocuments lista documentos de la empresa, sin detalle de líneas.
func (uc *DocumentQueryUseCase) ListDocuments(ctx context.Context, companyID string, f repository.DocumentFilter) ([]*dto.DocumentResponse, error) {
	docs, err := uc.docRepo.ListByCompany(companyID, f)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentToResponse(doc, nil, now))
	}
	return out, nil
}

// GetSubmissionStatus respuesta ligera para el polling del estado fiscal.
func (uc *DocumentQueryUseCase) GetSubmissionStatus(ctx context.Context, companyID, documentID string) (*dto.SubmissionStatusResponse, error) {
	doc, err := uc.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return submissionStatusResponse(doc), nil
}
