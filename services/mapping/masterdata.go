package mapping

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"databridgeapi/models"
	"databridgeapi/repository"
)

// versionHandler upserts planning versions by code.
type versionHandler struct {
	repo  repository.MasterDataRepository
	codes map[string]uint
}

func newVersionHandler(repo repository.MasterDataRepository) *versionHandler {
	return &versionHandler{repo: repo}
}

func (h *versionHandler) load() error {
	codes, err := h.repo.VersionCodeMap(nil)
	if err != nil {
		return err
	}
	h.codes = codes
	return nil
}

func (h *versionHandler) apply(fields map[string]string) (rowOutcome, error) {
	code := fields[models.FieldCode]
	if code == "" {
		return rowOutcome{}, fmt.Errorf("empty version code")
	}
	if _, exists := h.codes[code]; !exists {
		v := &models.Version{Code: code, Name: fields[models.FieldName]}
		if err := h.repo.CreateVersion(nil, v); err != nil {
			return rowOutcome{}, err
		}
		h.codes[code] = v.ID
		return rowOutcome{inserted: 1}, nil
	}
	v, err := h.repo.FindVersionByCode(nil, code)
	if err != nil {
		return rowOutcome{}, err
	}
	if name := fields[models.FieldName]; name != "" && name != v.Name {
		v.Name = name
		if err := h.repo.UpdateVersion(nil, v); err != nil {
			return rowOutcome{}, err
		}
		return rowOutcome{updated: 1}, nil
	}
	return rowOutcome{}, nil
}

// periodHandler upserts planning periods; year, month and quarter derive from
// the YYYY-MM code.
type periodHandler struct {
	repo  repository.MasterDataRepository
	codes map[string]uint
}

func newPeriodHandler(repo repository.MasterDataRepository) *periodHandler {
	return &periodHandler{repo: repo}
}

func (h *periodHandler) load() error {
	codes, err := h.repo.PeriodCodeMap(nil)
	if err != nil {
		return err
	}
	h.codes = codes
	return nil
}

func (h *periodHandler) apply(fields map[string]string) (rowOutcome, error) {
	code := fields[models.FieldCode]
	year, month, quarter, err := DerivePeriod(code)
	if err != nil {
		return rowOutcome{}, err
	}
	code = fmt.Sprintf("%04d-%02d", year, month)

	if _, exists := h.codes[code]; !exists {
		p := &models.Period{Code: code, Name: fields[models.FieldName], Year: year, Month: month, Quarter: quarter}
		if p.Name == "" {
			p.Name = code
		}
		if err := h.repo.CreatePeriod(nil, p); err != nil {
			return rowOutcome{}, err
		}
		h.codes[code] = p.ID
		return rowOutcome{inserted: 1}, nil
	}
	p, err := h.repo.FindPeriodByCode(nil, code)
	if err != nil {
		return rowOutcome{}, err
	}
	if name := fields[models.FieldName]; name != "" && name != p.Name {
		p.Name = name
		if err := h.repo.UpdatePeriod(nil, p); err != nil {
			return rowOutcome{}, err
		}
		return rowOutcome{updated: 1}, nil
	}
	return rowOutcome{}, nil
}

// DerivePeriod parses a period code in YYYY-MM or YYYYMM form and derives the
// calendar quarter.
func DerivePeriod(code string) (year, month, quarter int, err error) {
	s := strings.TrimSpace(code)
	normalized := strings.ReplaceAll(s, "-", "")
	if len(normalized) != 6 {
		return 0, 0, 0, fmt.Errorf("period code %q is not YYYY-MM", code)
	}
	year, err = strconv.Atoi(normalized[:4])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("period code %q is not YYYY-MM", code)
	}
	month, err = strconv.Atoi(normalized[4:])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("period code %q has an invalid month", code)
	}
	return year, month, (month-1)/3 + 1, nil
}

// parameterHandler upserts parameters and their per-version values.
type parameterHandler struct {
	repo     repository.MasterDataRepository
	versions map[string]uint
}

func newParameterHandler(repo repository.MasterDataRepository) *parameterHandler {
	return &parameterHandler{repo: repo}
}

func (h *parameterHandler) load() error {
	versions, err := h.repo.VersionCodeMap(nil)
	if err != nil {
		return err
	}
	h.versions = versions
	return nil
}

func (h *parameterHandler) apply(fields map[string]string) (rowOutcome, error) {
	code := fields[models.FieldCode]
	if code == "" {
		return rowOutcome{}, fmt.Errorf("empty parameter code")
	}

	var outcome rowOutcome
	param, err := h.repo.FindParameterByCode(nil, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return outcome, err
	}
	if err != nil {
		param = &models.Parameter{Code: code, Name: fields[models.FieldName]}
		if err := h.repo.CreateParameter(nil, param); err != nil {
			return outcome, err
		}
		outcome.inserted = 1
	} else if name := fields[models.FieldName]; name != "" && name != param.Name {
		param.Name = name
		if err := h.repo.UpdateParameter(nil, param); err != nil {
			return outcome, err
		}
		outcome.updated = 1
	}

	versionCode := fields[models.FieldVersionCode]
	if versionCode == "" {
		return outcome, nil
	}
	versionID, ok := h.versions[versionCode]
	if !ok {
		return outcome, fmt.Errorf("unknown version code %q", versionCode)
	}
	if err := h.repo.UpsertParameterValue(nil, param.ID, versionID, fields[models.FieldValue]); err != nil {
		return outcome, err
	}
	return outcome, nil
}
