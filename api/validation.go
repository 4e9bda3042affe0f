package api

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Card expiry travels as MM-YY.
var expiryPattern = regexp.MustCompile(`^(\d{2})-(\d{2})$`)

// RegisterValidations installs custom rules on gin's binding engine. Call
// once at startup before any handler binds a request.
func RegisterValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("cardexpiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
}
