package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"corporate-gifting/internal/domain"
	"corporate-gifting/internal/domain/model"
)

// ParseRecipientsCSV reads an uploaded recipient list. The header row is required;
// recognised columns are name, email, designation, department and phone, in any order.
func ParseRecipientsCSV(r io.Reader) ([]model.RecipientInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty recipient file", domain.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: missing name column", domain.ErrValidation)
	}
	if _, ok := cols["email"]; !ok {
		return nil, fmt.Errorf("%w: missing email column", domain.ErrValidation)
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []model.RecipientInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", domain.ErrValidation, line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		out = append(out, model.RecipientInput{
			Name:        field(rec, "name"),
			Email:       field(rec, "email"),
			Designation: field(rec, "designation"),
			Department:  field(rec, "department"),
			Phone:       field(rec, "phone"),
		})
	}
	return out, nil
}
