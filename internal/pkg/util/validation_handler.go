package util

import (
	"Beacon/internal/api/dto"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func ValidateDTO(dto any) error {
	if err := validate.Struct(dto); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			firstError := vErrs[0]
			msg := fmt.Sprintf("字段 [%s] 校验失败，规则 [%s]",
				firstError.Field(),
				firstError.Tag())
			return errors.New(msg)
		}
	}
	return nil
}

func ValidateLoginDTO(dto *dto.CredentialDTO) bool {
	if dto.Password == nil {
		return false
	}
	if dto.Username != nil && *dto.Username != "" {
		return true
	}
	if dto.Email != nil && *dto.Email != "" {
		return true
	}
	return false
}
