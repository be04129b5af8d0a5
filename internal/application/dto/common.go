package dto

// DefaultPageLimit tamaño de página del catálogo y del historial de guías.
const DefaultPageLimit = 20

// PageRequest paginación por desplazamiento.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage completa Limit y Offset ausentes. Un Limit mayor al máximo se deja para que la validación lo rechace.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página. HasMore es true cuando la página vino llena.
type PageResponse struct {
	Limit    int  `json:"limit"`
	Offset   int  `json:"offset"`
	Returned int  `json:"returned"`
	HasMore  bool `json:"has_more"`
}

// NewPageResponse arma los metadatos a partir de la página pedida y de cuántos elementos se devolvieron.
func NewPageResponse(p PageRequest, returned int) PageResponse {
	return PageResponse{
		Limit:    p.Limit,
		Offset:   p.Offset,
		Returned: returned,
		HasMore:  p.Limit > 0 && returned >= p.Limit,
	}
}

// ErrorResponse cuerpo de error HTTP. Field indica el campo rechazado en errores de validación.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
