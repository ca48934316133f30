package entity

import "time"

// Product representa un producto farmacéutico del catálogo.
// El stock vive en sus lotes (Batch); el producto nunca se elimina, solo se desactiva.
type Product struct {
	ID               string
	GenericName      string // nombre genérico (principio activo)
	BrandName        string // nombre comercial
	Category         string
	ReorderThreshold int64 // punto de reorden en unidades
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
