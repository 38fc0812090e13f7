package repositories

import (
	"encoding/json"

	"github.com/icar-directory/backend/internal/models"
)

// StakeholderFromFields maps a record snapshot onto the typed read model.
func StakeholderFromFields(id string, f models.Fields) (*models.Stakeholder, error) {
	var s models.Stakeholder
	if err := fieldsInto(f, &s); err != nil {
		return nil, err
	}
	s.ID = id
	if s.ContactSetting == "" {
		s.ContactSetting = models.ContactOpen
	}
	if s.Focus == nil {
		s.Focus = []string{}
	}
	if s.NationalImperatives == nil {
		s.NationalImperatives = []string{}
	}
	return &s, nil
}

func ProjectFromFields(id string, f models.Fields) (*models.Project, error) {
	var p models.Project
	if err := fieldsInto(f, &p); err != nil {
		return nil, err
	}
	p.ID = id
	if p.FocusAreas == nil {
		p.FocusAreas = []string{}
	}
	return &p, nil
}

func fieldsInto(f models.Fields, dst any) error {
	raw, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
