package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"databridgeapi/models"
	"databridgeapi/repository"
)

// budgetHandler upserts budget entry rows and cells. Dimension fields
// (dim:<entityID>) carry master-data record codes that resolve to record ids;
// the resolved set identifies the entry row via its canonical dimension key.
// Measure fields (measure:<code>) become cells keyed by row, period and
// measure code.
type budgetHandler struct {
	mdRepo     repository.MasterDataRepository
	budgetRepo repository.BudgetRepository
	budgetID   uint

	dimEntities []uint                   // entity ids parsed from dim: targets
	records     map[uint]map[string]uint // entityID -> record code -> record id
	periods     map[string]uint
	rows        map[string]uint // dimension key -> entry row id
}

func newBudgetHandler(mdRepo repository.MasterDataRepository, budgetRepo repository.BudgetRepository, budgetID uint, fields []models.FieldMapping) *budgetHandler {
	h := &budgetHandler{
		mdRepo:     mdRepo,
		budgetRepo: budgetRepo,
		budgetID:   budgetID,
		records:    map[uint]map[string]uint{},
		rows:       map[string]uint{},
	}
	for _, f := range fields {
		if entityID, ok := parseDimensionTarget(f.TargetField); ok {
			h.dimEntities = append(h.dimEntities, entityID)
		}
	}
	return h
}

func (h *budgetHandler) load() error {
	if len(h.dimEntities) == 0 {
		return fmt.Errorf("budget mapping has no dimension fields")
	}
	for _, entityID := range h.dimEntities {
		codes, err := h.mdRepo.RecordCodeMap(nil, entityID)
		if err != nil {
			return err
		}
		h.records[entityID] = codes
	}
	periods, err := h.mdRepo.PeriodCodeMap(nil)
	if err != nil {
		return err
	}
	h.periods = periods
	return nil
}

func (h *budgetHandler) apply(fields map[string]string) (rowOutcome, error) {
	dims := map[uint]uint{}
	for target, value := range fields {
		entityID, ok := parseDimensionTarget(target)
		if !ok {
			continue
		}
		if value == "" {
			return rowOutcome{}, fmt.Errorf("empty dimension code for entity %d", entityID)
		}
		recordID, found := h.records[entityID][value]
		if !found {
			return rowOutcome{}, fmt.Errorf("unresolved dimension code %q for entity %d", value, entityID)
		}
		dims[entityID] = recordID
	}

	periodCode := fields[models.FieldPeriod]
	if periodCode == "" {
		return rowOutcome{}, fmt.Errorf("empty period")
	}
	if year, month, _, err := DerivePeriod(periodCode); err == nil {
		periodCode = fmt.Sprintf("%04d-%02d", year, month)
	}
	periodID, ok := h.periods[periodCode]
	if !ok {
		return rowOutcome{}, fmt.Errorf("unknown period %q", periodCode)
	}

	rowID, created, err := h.ensureRow(dims)
	if err != nil {
		return rowOutcome{}, err
	}
	outcome := rowOutcome{}
	if created {
		outcome.inserted = 1
	}

	currency := fields[models.FieldCurrency]
	for target, value := range fields {
		measureCode, isMeasure := parseMeasureTarget(target)
		if !isMeasure || value == "" {
			continue
		}
		amount, err := parseAmount(value)
		if err != nil {
			return outcome, fmt.Errorf("measure %s: %w", measureCode, err)
		}
		inserted, err := h.budgetRepo.UpsertCell(nil, &models.BudgetEntryCell{
			RowID:       rowID,
			PeriodID:    periodID,
			MeasureCode: measureCode,
			Currency:    currency,
			Value:       amount,
		})
		if err != nil {
			return outcome, err
		}
		if inserted {
			outcome.inserted++
		} else {
			outcome.updated++
		}
	}
	return outcome, nil
}

// ensureRow finds or creates the entry row for a resolved dimension set.
func (h *budgetHandler) ensureRow(dims map[uint]uint) (uint, bool, error) {
	key := BuildDimensionKey(dims)
	if rowID, ok := h.rows[key]; ok {
		return rowID, false, nil
	}
	row, err := h.budgetRepo.FindRowByKey(nil, h.budgetID, key)
	if err == nil {
		h.rows[key] = row.ID
		return row.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	encoded, err := json.Marshal(dims)
	if err != nil {
		return 0, false, err
	}
	row = &models.BudgetEntryRow{BudgetID: h.budgetID, DimensionKey: key, Dimensions: string(encoded)}
	if err := h.budgetRepo.CreateRow(nil, row); err != nil {
		return 0, false, err
	}
	h.rows[key] = row.ID
	return row.ID, true, nil
}

// BuildDimensionKey serializes a resolved dimension set order-independently:
// sorted entityID=recordID pairs joined with "|".
func BuildDimensionKey(dims map[uint]uint) string {
	entityIDs := make([]uint, 0, len(dims))
	for id := range dims {
		entityIDs = append(entityIDs, id)
	}
	sort.Slice(entityIDs, func(i, j int) bool { return entityIDs[i] < entityIDs[j] })

	pairs := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		pairs = append(pairs, fmt.Sprintf("%d=%d", id, dims[id]))
	}
	return strings.Join(pairs, "|")
}

func parseDimensionTarget(target string) (uint, bool) {
	if !strings.HasPrefix(target, models.PrefixDimension) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(target, models.PrefixDimension), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func parseMeasureTarget(target string) (string, bool) {
	if !strings.HasPrefix(target, models.PrefixMeasure) {
		return "", false
	}
	code := strings.TrimPrefix(target, models.PrefixMeasure)
	return code, code != ""
}

// parseAmount accepts dot or comma decimal separators.
func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}
