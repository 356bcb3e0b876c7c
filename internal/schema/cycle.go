package schema

import "time"

// CycleVerbs is the fixed 16-entry list behind CYCLE_WEEK_INDICATOR:
// one verb per week of the consolidation cycle. Values are the week
// numbers as stored in entry values.
var CycleVerbs = []Option{
	{Value: "1", Description: "Ganar"},
	{Value: "2", Description: "Contactar"},
	{Value: "3", Description: "Visitar"},
	{Value: "4", Description: "Consolidar"},
	{Value: "5", Description: "Afirmar"},
	{Value: "6", Description: "Orar"},
	{Value: "7", Description: "Ayunar"},
	{Value: "8", Description: "Discipular"},
	{Value: "9", Description: "Enseñar"},
	{Value: "10", Description: "Formar"},
	{Value: "11", Description: "Capacitar"},
	{Value: "12", Description: "Pastorear"},
	{Value: "13", Description: "Comisionar"},
	{Value: "14", Description: "Enviar"},
	{Value: "15", Description: "Multiplicar"},
	{Value: "16", Description: "Celebrar"},
}

// CycleWeek returns the zero-based week index of now within the
// 16-week cycle anchored at start, along with that week's verb.
// ok is false before the cycle starts or after it completes.
func CycleWeek(start, now time.Time, verbs []Option) (int, Option, bool) {
	if len(verbs) == 0 {
		verbs = CycleVerbs
	}
	// Week arithmetic runs on calendar dates in the cycle's own zone,
	// so time of day and timezone never shift a boundary.
	y, m, d := start.Date()
	s := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = now.In(start.Location()).Date()
	n := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	days := int(n.Sub(s).Hours()) / 24
	if days < 0 {
		return 0, Option{}, false
	}
	week := days / 7
	if week >= len(verbs) {
		return 0, Option{}, false
	}
	return week, verbs[week], true
}
