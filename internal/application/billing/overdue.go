package billing

import (
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/domain/repository"
	"github.com/tu-usuario/facturacion-pro/pkg/logger"
)

// OverdueReclassifierUseCase materializa la clasificación de vencimiento en la
// columna de estado, para que los filtros por estado en DB coincidan con lo que
// reportan las lecturas. Lo dispara el scheduler una vez al día.
type OverdueReclassifierUseCase struct {
	docRepo repository.DocumentRepository
	log     *logger.Logger
}

// NewOverdueReclassifierUseCase construye el caso de uso.
func NewOverdueReclassifierUseCase(docRepo repository.DocumentRepository, log *logger.Logger) *OverdueReclassifierUseCase {
	return &OverdueReclassifierUseCase{docRepo: docRepo, log: log}
}

// Run marca VENCIDA los documentos con saldo y fecha vencida, y regresa a su
// estado por saldo los que dejaron de estarlo (ej: se corrió el due date).
// Idempotente: correrlo dos veces seguidas no cambia nada la segunda vez.
func (uc *OverdueReclassifierUseCase) Run() {
	today := time.Now()

	marked, err := uc.docRepo.MarkOverdue(today)
	if err != nil {
		uc.log.Error().Err(err).Msg("reclasificación de vencidas falló al marcar")
		return
	}
	unmarked, err := uc.docRepo.UnmarkOverdue(today)
	if err != nil {
		uc.log.Error().Err(err).Msg("reclasificación de vencidas falló al desmarcar")
		return
	}
	if marked > 0 || unmarked > 0 {
		uc.log.Info().
			Int64("marcadas", marked).
			Int64("desmarcadas", unmarked).
			Msg("reclasificación de vencidas completada")
	}
}
