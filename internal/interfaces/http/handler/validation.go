package handler

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/erp/docflow/internal/domain/document"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("documentkind", validateDocumentKind)
	}
}

// validateDocumentKind accepts any configured document kind, case
// insensitively
func validateDocumentKind(fl validator.FieldLevel) bool {
	kind := document.DocumentKind(strings.ToUpper(fl.Field().String()))
	return kind.IsValid()
}
