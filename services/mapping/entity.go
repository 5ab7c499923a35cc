package mapping

import (
	"fmt"
	"strings"

	"databridgeapi/models"
	"databridgeapi/repository"
)

// entityHandler upserts EAV master-data records. Records are unique by code
// within the target entity; fields prefixed attr: become attribute values.
type entityHandler struct {
	repo     repository.MasterDataRepository
	entityID uint
	hasName  bool
	codes    map[string]uint // record code -> id, primed once per run
}

func newEntityHandler(repo repository.MasterDataRepository, entityID uint, fields []models.FieldMapping) *entityHandler {
	h := &entityHandler{repo: repo, entityID: entityID}
	for _, f := range fields {
		if f.TargetField == models.FieldName {
			h.hasName = true
		}
	}
	return h
}

func (h *entityHandler) load() error {
	if _, err := h.repo.GetEntityByID(nil, h.entityID); err != nil {
		return fmt.Errorf("entity %d not found", h.entityID)
	}
	codes, err := h.repo.RecordCodeMap(nil, h.entityID)
	if err != nil {
		return err
	}
	h.codes = codes
	return nil
}

func (h *entityHandler) apply(fields map[string]string) (rowOutcome, error) {
	code := fields[models.FieldCode]
	if code == "" {
		return rowOutcome{}, fmt.Errorf("empty record code")
	}

	var outcome rowOutcome
	recordID, exists := h.codes[code]
	if !exists {
		rec := &models.EntityRecord{EntityID: h.entityID, Code: code, Name: fields[models.FieldName]}
		if err := h.repo.CreateRecord(nil, rec); err != nil {
			return outcome, err
		}
		h.codes[code] = rec.ID
		recordID = rec.ID
		outcome.inserted = 1
	} else if h.hasName {
		rec, err := h.repo.FindRecord(nil, h.entityID, code)
		if err != nil {
			return outcome, err
		}
		if rec.Name != fields[models.FieldName] {
			rec.Name = fields[models.FieldName]
			if err := h.repo.UpdateRecord(nil, rec); err != nil {
				return outcome, err
			}
			outcome.updated = 1
		}
	}

	for target, value := range fields {
		if !strings.HasPrefix(target, models.PrefixAttribute) {
			continue
		}
		attrCode := strings.TrimPrefix(target, models.PrefixAttribute)
		if attrCode == "" {
			return outcome, fmt.Errorf("attribute target with empty code")
		}
		if err := h.repo.UpsertAttributeValue(nil, recordID, attrCode, value); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}
