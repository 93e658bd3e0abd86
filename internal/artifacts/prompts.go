package artifacts

import (
	"strings"
	"text/template"
	"time"

	"github.com/justestif/go-wellness-journal/internal/aggregate"
)

const (
	notesSystem = "You summarize a person's daily journal notes. Reply with a concise summary of two to four sentences in the second person. Do not invent details."

	moodSystem = "You are a supportive wellness coach. Given a person's mood check-ins for one day, describe how their mood evolved, name any patterns, and offer one gentle suggestion. Keep it under 150 words."

	timeLogSystem = "You review how a person spent their day in 30-minute blocks. Summarize where the time went, note focus and balance, and suggest one improvement for tomorrow. Keep it under 150 words."

	dailySystem = "You write an end-of-day summary from everything a person recorded today. Fill every field of the schema. productivityScore is an integer from 1 to 10. highlights holds up to five short phrases."

	motivationSystem = "You write a short, warm motivational message (two or three sentences) grounded in what the person did today. If nothing was recorded, encourage them to start small."
)

var promptFuncs = template.FuncMap{
	"clock": func(t time.Time, loc *time.Location) string { return t.In(loc).Format("3:04 PM") },
	"check": func(done bool) string {
		if done {
			return "x"
		}
		return " "
	},
}

var moodTemplate = template.Must(template.New("moods").Funcs(promptFuncs).Parse(
	`Mood check-ins for {{.Date}}:
{{range .Moods}}- {{clock .Timestamp $.Loc}} {{.Emoji}} {{.Mood}}{{if .Note}} ({{.Note}}){{end}}
{{end}}`))

var timeLogTemplate = template.Must(template.New("timelog").Funcs(promptFuncs).Parse(
	`Time log for {{.Date}}:
{{range .TimeLog}}- {{.TimeSlot}} {{.Activity}}
{{end}}`))

var snapshotTemplate = template.Must(template.New("snapshot").Funcs(promptFuncs).Parse(
	`Date: {{.Date}}
{{with .BrainDump}}
Brain dump:
{{.}}
{{end}}{{with .Notes}}
Notes:
{{.}}
{{end}}{{with .Gratitude}}
Gratitude:
{{.}}
{{end}}{{if .Moods}}
Moods:
{{range .Moods}}- {{clock .Timestamp $.Loc}} {{.Emoji}} {{.Mood}}{{if .Note}} ({{.Note}}){{end}}
{{end}}{{end}}{{if .Tasks}}
Tasks:
{{range .Tasks}}- [{{check .Completed}}] {{.Text}}
{{end}}{{end}}{{if .TimeLog}}
Time log:
{{range .TimeLog}}- {{.TimeSlot}} {{.Activity}}
{{end}}{{end}}{{with .Reflection}}
Reflection:
{{.}}
{{end}}`))

type promptData struct {
	*aggregate.Snapshot
	Loc *time.Location
}

func render(tmpl *template.Template, snap *aggregate.Snapshot, loc *time.Location) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, promptData{Snapshot: snap, Loc: loc}); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

// dailySummarySchema is the structured reply shape for the daily summary.
var dailySummarySchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":           map[string]any{"type": "string"},
		"highlights":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"moodTheme":         map[string]any{"type": "string"},
		"productivityScore": map[string]any{"type": "integer"},
	},
	"required":             []string{"summary", "highlights", "moodTheme", "productivityScore"},
	"additionalProperties": false,
}
