package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeadOn = "Head-on"

func sampleDataset() Dataset {
	return Dataset{
		{Latitude: -26.50, Longitude: 153.10, Fatalities: 2, Nature: testHeadOn, Type: "Multi-Vehicle", Severity: SeverityFatal, PostCode: "4558"},
		{Latitude: -27.47, Longitude: 153.02, Fatalities: 0, Nature: "Rear-end", Type: "Multi-Vehicle", Severity: "Hospitalisation", PostCode: "4000"},
		{Latitude: -19.26, Longitude: 146.81, Fatalities: 1, Nature: "Hit pedestrian", Type: "Hit pedestrian", Severity: SeverityFatal, PostCode: "4810"},
		{Latitude: -16.92, Longitude: 145.77, Fatalities: 0, Nature: "Angle", Type: "Multi-Vehicle", Severity: "Minor injury", PostCode: "4870"},
		{Latitude: -12.46, Longitude: 130.84, Fatalities: 3, Nature: "Overturned", Type: "Single Vehicle", Severity: SeverityFatal, PostCode: "0800"},
	}
}

func TestFilterFatal_KeepsFatalRecordsInOrder(t *testing.T) {
	d := sampleDataset()

	got := FilterFatal(d)

	want := Dataset{d[0], d[2], d[4]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterFatal mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterFatal_OnlyFatalAndNeverLarger(t *testing.T) {
	d := sampleDataset()

	got := FilterFatal(d)

	assert.LessOrEqual(t, len(got), len(d))
	for _, r := range got {
		assert.Equal(t, SeverityFatal, r.Severity)
	}
}

func TestFilterFatal_Idempotent(t *testing.T) {
	once := FilterFatal(sampleDataset())
	twice := FilterFatal(once)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("FilterFatal not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFilterFatal_ExactMatchOnly(t *testing.T) {
	d := Dataset{
		{Severity: "fatal"},
		{Severity: "FATAL"},
		{Severity: " Fatal"},
		{Severity: "Fatal "},
		{Severity: "Fatality"},
	}

	got := FilterFatal(d)

	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterFatal_EmptyInput(t *testing.T) {
	got := FilterFatal(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterFatal_DoesNotMutateInput(t *testing.T) {
	d := sampleDataset()
	before := sampleDataset()

	got := FilterFatal(d)
	got[0].Nature = "changed"

	if diff := cmp.Diff(before, d); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestFilterFatal_PreservesPostCodeText(t *testing.T) {
	got := FilterFatal(sampleDataset())
	require.Len(t, got, 3)
	assert.Equal(t, "0800", got[2].PostCode)
}

func TestCountBySeverity(t *testing.T) {
	counts := CountBySeverity(sampleDataset())

	assert.Equal(t, 3, counts[SeverityFatal])
	assert.Equal(t, 1, counts["Hospitalisation"])
	assert.Equal(t, 1, counts["Minor injury"])
}

func TestDataset_Coordinates(t *testing.T) {
	coords := FilterFatal(sampleDataset()).Coordinates()

	assert.Equal(t, [][2]float64{{-26.50, 153.10}, {-19.26, 146.81}, {-12.46, 130.84}}, coords)
}

func TestRecordID(t *testing.T) {
	d := sampleDataset()

	id := RecordID(d[0])

	assert.True(t, strings.HasPrefix(id, "crash-"))
	assert.Equal(t, id, RecordID(d[0]), "ID must be deterministic")
	assert.NotEqual(t, id, RecordID(d[2]))
}

func TestFilterFatal_ExtraNotShared(t *testing.T) {
	d := Dataset{{Severity: SeverityFatal, Extra: map[string]string{"Loc_Suburb": "Buderim"}}}

	got := FilterFatal(d)
	got[0].Extra["Loc_Suburb"] = "changed"

	assert.Equal(t, "Buderim", d[0].Extra["Loc_Suburb"])
}
