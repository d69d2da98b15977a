package adherence

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/medlog/internal/constants"
	"github.com/julianstephens/medlog/internal/models"
)

var doseSeq int

func dose(date string, status constants.DoseStatus) models.Dose {
	doseSeq++
	return models.Dose{
		ID:             fmt.Sprintf("dose-%d", doseSeq),
		PatientID:      "patient-1",
		MedicationName: "Lisinopril",
		ScheduledDate:  date,
		Status:         status,
		CreatedAt:      time.Date(2024, 1, 1, 0, 0, doseSeq, 0, time.UTC),
	}
}

func taken(date string) models.Dose   { return dose(date, constants.DoseStatusTaken) }
func missed(date string) models.Dose  { return dose(date, constants.DoseStatusMissed) }
func pending(date string) models.Dose { return dose(date, constants.DoseStatusPending) }

func mustIndex(t *testing.T, doses ...models.Dose) *Index {
	t.Helper()
	idx, err := NewIndex(doses)
	if err != nil {
		t.Fatalf("NewIndex() unexpected error: %v", err)
	}
	return idx
}

var d = MustParseDate

var dateComparer = cmp.Comparer(func(a, b Date) bool { return a.SameDay(b) })
