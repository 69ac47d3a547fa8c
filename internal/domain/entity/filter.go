package entity

import "strings"

// FilterCriteria criterios del catálogo tal como los escribe el usuario.
// Solo vive en el estado de la UI; nunca se persiste.
type FilterCriteria struct {
	Name     string // subcadena del nombre
	Category string // igualdad de categoría
	MinPrice string
	MaxPrice string
}

// Normalized devuelve los criterios sin espacios sobrantes.
func (f FilterCriteria) Normalized() FilterCriteria {
	return FilterCriteria{
		Name:     strings.TrimSpace(f.Name),
		Category: strings.TrimSpace(f.Category),
		MinPrice: strings.TrimSpace(f.MinPrice),
		MaxPrice: strings.TrimSpace(f.MaxPrice),
	}
}

// IsEmpty indica si ningún criterio está informado.
func (f FilterCriteria) IsEmpty() bool {
	n := f.Normalized()
	return n.Name == "" && n.Category == "" && n.MinPrice == "" && n.MaxPrice == ""
}
