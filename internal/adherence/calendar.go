package adherence

// Marker is the display annotation for one calendar cell.
type Marker string

const (
	MarkerNone         Marker = "none"
	MarkerTaken        Marker = "taken"
	MarkerPartial      Marker = "partial"
	MarkerMissed       Marker = "missed"
	MarkerPendingToday Marker = "pendingToday"
)

// DayMarker pairs a date with its marker and the status it was derived from.
type DayMarker struct {
	Date   Date      `json:"date" yaml:"date"`
	Status DayStatus `json:"status" yaml:"status"`
	Marker Marker    `json:"marker" yaml:"marker"`
}

// MarkerFor maps a day status to its calendar marker.
func MarkerFor(s DayStatus) Marker {
	switch s {
	case FullyTaken:
		return MarkerTaken
	case PartiallyTaken:
		return MarkerPartial
	case Missed:
		return MarkerMissed
	case PendingToday:
		return MarkerPendingToday
	default:
		return MarkerNone
	}
}

// Annotate returns one marker per day of w, in ascending date order. Each day
// is classified independently, so annotating a sub-window yields the same
// markers as the matching slice of a larger window.
func Annotate(idx *Index, w Window, today Date) []DayMarker {
	days := w.Days()
	out := make([]DayMarker, 0, len(days))
	for _, day := range days {
		status := idx.Classify(day, today)
		out = append(out, DayMarker{Date: day, Status: status, Marker: MarkerFor(status)})
	}
	return out
}
