package dialog

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/pkg/money"
	"github.com/jhoicas/sweetshop/pkg/validate"
)

// Saver crea o actualiza un dulce con la credencial ya resuelta por quien lo implementa.
type Saver interface {
	Create(ctx context.Context, in repository.SweetInput) (*entity.Sweet, error)
	Update(ctx context.Context, id int64, in repository.SweetInput) (*entity.Sweet, error)
}

// ItemEditor formulario de alta o edición. Los campos guardan el texto tal cual se escribe.
type ItemEditor struct {
	submitGuard

	Name     string
	Category string
	Price    string
	Quantity string

	original *entity.Sweet
	v        *validate.Validator
}

// NewItemEditor abre el formulario: vacío si existing es nil, precargado si no.
func NewItemEditor(existing *entity.Sweet) *ItemEditor {
	e := &ItemEditor{v: validate.Get()}
	if existing != nil {
		cp := *existing
		e.original = &cp
		e.Name = cp.Name
		e.Category = cp.Category
		e.Price = money.Plain(cp.Price)
		e.Quantity = strconv.Itoa(cp.Quantity)
	}
	return e
}

// Editing indica si el formulario edita un dulce existente.
func (e *ItemEditor) Editing() bool { return e.original != nil }

// Title título del modal.
func (e *ItemEditor) Title() string {
	if e.Editing() {
		return "Edit Sweet"
	}
	return "Add New Sweet"
}

// Input valida los campos y devuelve la entrada lista para enviar.
func (e *ItemEditor) Input() (repository.SweetInput, error) {
	req := dto.SweetRequest{
		Name:     strings.TrimSpace(e.Name),
		Category: strings.TrimSpace(e.Category),
	}

	price := strings.TrimSpace(e.Price)
	if price == "" {
		return repository.SweetInput{}, domain.NewValidationError("price", "Price is required")
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return repository.SweetInput{}, domain.NewValidationError("price", "Price must be a number")
	}
	req.Price = d

	qty := strings.TrimSpace(e.Quantity)
	if qty == "" {
		return repository.SweetInput{}, domain.NewValidationError("quantity", "Quantity is required")
	}
	n, err := strconv.Atoi(qty)
	if err != nil {
		return repository.SweetInput{}, domain.NewValidationError("quantity", "Quantity must be a whole number")
	}
	req.Quantity = n

	if fe := e.v.First(req); fe != nil {
		return repository.SweetInput{}, domain.NewValidationError(fe.Field, fe.Message)
	}
	return req.ToInput(), nil
}

// Submit valida y delega en Create o Update según el modo del formulario.
func (e *ItemEditor) Submit(ctx context.Context, saver Saver) (*entity.Sweet, error) {
	in, err := e.Input()
	if err != nil {
		return nil, err
	}
	if err := e.begin(); err != nil {
		return nil, err
	}
	defer e.end()

	if e.Editing() {
		return saver.Update(ctx, e.original.ID, in)
	}
	return saver.Create(ctx, in)
}
