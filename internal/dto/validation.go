package dto

import (
	"github.com/filerunner/backend/internal/policy"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags on gin's
// validator engine. Must run once before the router serves requests.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("folderpath", func(fl validator.FieldLevel) bool {
		return policy.ValidateFolderPath(fl.Field().String())
	})
}
