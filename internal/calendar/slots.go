package calendar

import "fmt"

// Time-log slots are 30 minutes wide, from 05:00 through 22:00.
const (
	firstSlotMinute = 5 * 60
	lastSlotMinute  = 22 * 60
	slotWidth       = 30
)

var slotLabels = buildSlots()

func buildSlots() []string {
	var labels []string
	for m := firstSlotMinute; m <= lastSlotMinute; m += slotWidth {
		labels = append(labels, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return labels
}

// TimeSlots returns the ordered slot labels.
func TimeSlots() []string {
	out := make([]string, len(slotLabels))
	copy(out, slotLabels)
	return out
}

// SlotIndex returns the position of label in the slot list, or -1.
func SlotIndex(label string) int {
	for i, s := range slotLabels {
		if s == label {
			return i
		}
	}
	return -1
}

// ValidSlot reports whether label is one of the fixed slot labels.
func ValidSlot(label string) bool {
	return SlotIndex(label) >= 0
}
