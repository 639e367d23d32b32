package validation

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateRequired valida que un campo no esté vacío
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(fieldName + " is required")
	}
	return nil
}

// ValidateMinLength valida la longitud mínima de un string
func ValidateMinLength(value string, minLength int, fieldName string) error {
	if utf8.RuneCountInString(value) < minLength {
		return errors.New(fieldName + " must be at least " + strconv.Itoa(minLength) + " characters long")
	}
	return nil
}

// ValidateMaxLength valida la longitud máxima de un string
func ValidateMaxLength(value string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(value) > maxLength {
		return errors.New(fieldName + " must be at most " + strconv.Itoa(maxLength) + " characters long")
	}
	return nil
}

// ValidateUUID valida que un string sea un UUID válido
func ValidateUUID(value, fieldName string) error {
	if _, err := uuid.Parse(value); err != nil {
		return errors.New(fieldName + " must be a valid UUID")
	}
	return nil
}

// ParticipantValidation contiene validaciones específicas para participantes
type ParticipantValidation struct{}

// ValidateName valida el nombre de un participante
func (v ParticipantValidation) ValidateName(name string) error {
	if err := ValidateRequired(name, "name"); err != nil {
		return err
	}
	if err := ValidateMinLength(name, 2, "name"); err != nil {
		return err
	}
	if err := ValidateMaxLength(name, 100, "name"); err != nil {
		return err
	}
	return nil
}

// ValidateBadge valida el número de credencial de un participante
func (v ParticipantValidation) ValidateBadge(badge string) error {
	if err := ValidateRequired(badge, "badge"); err != nil {
		return err
	}
	if err := ValidateMaxLength(badge, 64, "badge"); err != nil {
		return err
	}
	return nil
}

// ValidateTheme valida el tema del disfraz de un participante
func (v ParticipantValidation) ValidateTheme(theme string) error {
	if err := ValidateRequired(theme, "theme"); err != nil {
		return err
	}
	if err := ValidateMaxLength(theme, 255, "theme"); err != nil {
		return err
	}
	return nil
}

// ValidatePhoto valida que la foto venga como data URL o URL pública
func (v ParticipantValidation) ValidatePhoto(photo string) error {
	if err := ValidateRequired(photo, "photo"); err != nil {
		return err
	}
	if !strings.HasPrefix(photo, "data:") && !strings.HasPrefix(photo, "http://") && !strings.HasPrefix(photo, "https://") {
		return errors.New("photo must be a data URL or a public URL")
	}
	return nil
}
