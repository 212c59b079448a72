package filter

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poshuk/captives-gateway/internal/models"
)

func date(y, m, d int) *models.Date {
	return &models.Date{Time: time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)}
}

func timePtr(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleRecords() []models.Captive {
	return []models.Captive{
		{
			ID:          1,
			Name:        "Петро Шевченко",
			PersonType:  models.PersonTypeMilitary,
			Brigade:     "93 ОМБр",
			Region:      "Харківська",
			Appearance:  "високий, темне волосся",
			DateOfBirth: date(1990, 4, 12),
			Status:      models.StatusSearching,
		},
		{
			ID:            2,
			Name:          "Оксана Ковальчук",
			PersonType:    models.PersonTypeCivilian,
			Region:        "Київська",
			Circumstances: "зникла під час евакуації",
			DateOfBirth:   date(1975, 11, 2),
			Status:        models.StatusInformed,
		},
		{
			ID:         3,
			PersonType: models.PersonTypeCivilian,
			Region:     "Херсонська",
			Status:     models.StatusInformed,
		},
	}
}

func TestApplyNoCriteriaReturnsAll(t *testing.T) {
	records := sampleRecords()
	out := Apply(records, models.FilterCriteria{}, "")
	assert.Equal(t, records, out)
}

func TestApplyNameQueryCaseInsensitive(t *testing.T) {
	out := Apply(sampleRecords(), models.FilterCriteria{}, "пЕтРо")
	require.Len(t, out, 1)
	assert.EqualValues(t, 1, out[0].ID)
}

func TestApplyNameQueryExcludesMissingName(t *testing.T) {
	out := Apply(sampleRecords(), models.FilterCriteria{}, "оксана")
	require.Len(t, out, 1)
	assert.EqualValues(t, 2, out[0].ID)

	// Record 3 has no name at all; any non-empty query must exclude it.
	for _, c := range Apply(sampleRecords(), models.FilterCriteria{}, "а") {
		assert.NotEqualValues(t, 3, c.ID)
	}
}

func TestApplyPersonTypeExactMatch(t *testing.T) {
	out := Apply(sampleRecords(), models.FilterCriteria{PersonType: models.PersonTypeMilitary}, "")
	require.Len(t, out, 1)
	assert.EqualValues(t, 1, out[0].ID)
}

func TestApplySubstringCriteria(t *testing.T) {
	out := Apply(sampleRecords(), models.FilterCriteria{Region: "київ"}, "")
	require.Len(t, out, 1)
	assert.EqualValues(t, 2, out[0].ID)

	out = Apply(sampleRecords(), models.FilterCriteria{Brigade: "93"}, "")
	require.Len(t, out, 1)
	assert.EqualValues(t, 1, out[0].ID)

	// Absent field fails a non-empty criterion.
	out = Apply(sampleRecords(), models.FilterCriteria{Circumstances: "евакуац"}, "")
	require.Len(t, out, 1)
	assert.EqualValues(t, 2, out[0].ID)
}

func TestApplyDateRangeInclusive(t *testing.T) {
	criteria := models.FilterCriteria{
		StartDate: timePtr(1990, 4, 12),
		EndDate:   timePtr(1990, 4, 12),
	}
	out := Apply(sampleRecords(), criteria, "")
	require.Len(t, out, 1)
	assert.EqualValues(t, 1, out[0].ID)
}

func TestApplyDateRangeExcludesMissingBirthDate(t *testing.T) {
	criteria := models.FilterCriteria{StartDate: timePtr(1900, 1, 1)}
	for _, c := range Apply(sampleRecords(), criteria, "") {
		assert.NotEqualValues(t, 3, c.ID)
	}
}

func TestApplyAllCriteriaAreANDed(t *testing.T) {
	criteria := models.FilterCriteria{
		PersonType: models.PersonTypeCivilian,
		Region:     "київ",
	}
	out := Apply(sampleRecords(), criteria, "оксана")
	require.Len(t, out, 1)

	criteria.Region = "харків"
	out = Apply(sampleRecords(), criteria, "оксана")
	assert.Empty(t, out)
}

func TestApplyPreservesOrderAndIsIdempotent(t *testing.T) {
	records := sampleRecords()
	criteria := models.FilterCriteria{PersonType: models.PersonTypeCivilian}

	once := Apply(records, criteria, "")
	twice := Apply(once, criteria, "")
	assert.Equal(t, once, twice)

	var lastID int64
	for _, c := range once {
		assert.Greater(t, c.ID, lastID)
		lastID = c.ID
	}
}

func TestApplySingleRecordMatchesIffAllPredicatesHold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	regions := []string{"", "Київська", "Харківська", "Львівська"}
	types := []models.PersonType{models.PersonTypeMilitary, models.PersonTypeCivilian}

	for i := 0; i < 200; i++ {
		record := models.Captive{
			ID:         int64(i),
			Name:       regions[rng.Intn(len(regions))],
			PersonType: types[rng.Intn(len(types))],
			Region:     regions[rng.Intn(len(regions))],
			Status:     models.StatusSearching,
		}
		if rng.Intn(2) == 0 {
			record.DateOfBirth = date(1950+rng.Intn(60), 1+rng.Intn(12), 1+rng.Intn(28))
		}

		criteria := models.FilterCriteria{}
		if rng.Intn(2) == 0 {
			criteria.PersonType = types[rng.Intn(len(types))]
		}
		if rng.Intn(2) == 0 {
			criteria.Region = regions[1+rng.Intn(len(regions)-1)]
		}
		if rng.Intn(3) == 0 {
			criteria.StartDate = timePtr(1960, 1, 1)
		}

		expected := true
		if criteria.PersonType != "" && record.PersonType != criteria.PersonType {
			expected = false
		}
		if criteria.Region != "" && !strings.Contains(strings.ToLower(record.Region), strings.ToLower(criteria.Region)) {
			expected = false
		}
		if criteria.StartDate != nil {
			born, ok := record.BirthDate()
			if !ok || born.Before(*criteria.StartDate) {
				expected = false
			}
		}

		out := Apply([]models.Captive{record}, criteria, "")
		if expected {
			assert.Len(t, out, 1, "record %d should survive criteria %+v", i, criteria)
		} else {
			assert.Empty(t, out, "record %d should be filtered by criteria %+v", i, criteria)
		}
	}
}
