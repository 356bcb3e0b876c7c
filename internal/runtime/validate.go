package runtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ccvida/reportes/internal/models"
	"github.com/ccvida/reportes/internal/schema"
)

var ErrInvalidFriendList = errors.New("invalid friend list payload")

// ValidationError points at the offending field so the client can put
// the message next to the right control.
type ValidationError struct {
	FieldKey string
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("campo %q: %s", e.FieldKey, e.Message)
}

// FriendInput is one row of a FRIEND_REGISTRATION value, stored as a
// JSON list in the entry value.
type FriendInput struct {
	Name           string `json:"name"`
	Phone          string `json:"phone,omitempty"`
	RegisteredByID *uint  `json:"registeredById,omitempty"`
}

// ParseFriendList decodes a FRIEND_REGISTRATION payload. An empty
// payload is an empty list.
func ParseFriendList(raw string) ([]FriendInput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var list []FriendInput
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, ErrInvalidFriendList
	}
	return list, nil
}

// ValidateSubmission checks every visible field of a final submission.
// Hidden fields are skipped entirely; drafts are never validated.
func ValidateSubmission(fields []models.ReportField, values map[string]string) error {
	for _, f := range fields {
		if !Visible(f, values) {
			continue
		}
		if err := validateField(f, values[f.Key]); err != nil {
			return err
		}
	}
	return nil
}

func validateField(f models.ReportField, raw string) error {
	raw = strings.TrimSpace(raw)

	switch f.Type {
	case schema.TypeSection, schema.TypeCycleWeekIndicator:
		// Never user-validated.
		return nil

	case schema.TypeNumber, schema.TypeCurrency:
		if raw == "" {
			break
		}
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return &ValidationError{FieldKey: f.Key, Message: "debe ser un número"}
		}

	case schema.TypeBoolean:
		if raw != "" && raw != "true" && raw != "false" {
			return &ValidationError{FieldKey: f.Key, Message: "respuesta inválida"}
		}

	case schema.TypeSelect:
		if raw == "" {
			break
		}
		ok := false
		for _, opt := range f.Options {
			if opt.Value == raw {
				ok = true
				break
			}
		}
		if !ok {
			return &ValidationError{FieldKey: f.Key, Message: "opción inválida"}
		}

	case schema.TypeFriendRegistration:
		list, err := ParseFriendList(raw)
		if err != nil {
			return &ValidationError{FieldKey: f.Key, Message: "lista de amigos inválida"}
		}
		for _, fr := range list {
			if strings.TrimSpace(fr.Name) == "" {
				return &ValidationError{FieldKey: f.Key, Message: "cada amigo necesita un nombre"}
			}
		}
		if f.Required && len(list) == 0 {
			return &ValidationError{FieldKey: f.Key, Message: "registre al menos un amigo"}
		}
		return nil
	}

	if f.Required && raw == "" {
		return &ValidationError{FieldKey: f.Key, Message: "este campo es requerido"}
	}
	return nil
}
