package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
)

// ExportMeta datos de cabecera del documento exportado.
type ExportMeta struct {
	Username    string
	GeneratedAt time.Time
}

// Exporter genera la representación imprimible de una vista.
type Exporter interface {
	Export(ctx context.Context, view View, meta ExportMeta) ([]byte, error)
}

// UseCase lee el historial adecuado al rol y lo exporta.
type UseCase struct {
	repo     repository.PurchaseHistoryRepository
	exporter Exporter
	now      func() time.Time
}

// NewUseCase construye el caso de uso. exporter puede ser nil si no se exporta.
func NewUseCase(repo repository.PurchaseHistoryRepository, exporter Exporter) *UseCase {
	return &UseCase{repo: repo, exporter: exporter, now: time.Now}
}

// Load lee el libro personal o el del admin según la identidad.
func (uc *UseCase) Load(ctx context.Context, creds entity.Credentials, identity entity.Identity) (View, error) {
	if identity.IsAdmin() {
		purchases, err := uc.repo.ListForAdmin(ctx, creds)
		if err != nil {
			return View{Admin: true}, fmt.Errorf("historial admin: %w", err)
		}
		return FromAdminPurchases(purchases), nil
	}
	purchases, err := uc.repo.ListMine(ctx, creds)
	if err != nil {
		return View{}, fmt.Errorf("historial: %w", err)
	}
	return FromPurchases(purchases), nil
}

// Export lee el historial y lo exporta.
//
// Retorna:
//   - (bytes, filename, nil) si todo sale bien.
//   - domain.ErrInvalidInput si no hay exportador configurado.
//   - el error del servidor si la lectura falla.
func (uc *UseCase) Export(ctx context.Context, creds entity.Credentials, identity entity.Identity) ([]byte, string, error) {
	if uc.exporter == nil {
		return nil, "", fmt.Errorf("exportar historial: %w", domain.ErrInvalidInput)
	}
	view, err := uc.Load(ctx, creds, identity)
	if err != nil {
		return nil, "", err
	}
	meta := ExportMeta{Username: identity.Username, GeneratedAt: uc.now()}
	doc, err := uc.exporter.Export(ctx, view, meta)
	if err != nil {
		return nil, "", fmt.Errorf("exportar historial: %w", err)
	}
	return doc, Filename(identity.Username, meta.GeneratedAt), nil
}

// Filename nombre sugerido: purchase-history-<usuario>-<AAAAMMDD>.pdf
func Filename(username string, at time.Time) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, username)
	return fmt.Sprintf("purchase-history-%s-%s.pdf", name, at.Format("20060102"))
}
