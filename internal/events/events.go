package events

import "github.com/ccvida/reportes/internal/models"

// OnEntrySubmitted is called after an entry transitions to its final
// submitted state. services will call this if it's set.
var OnEntrySubmitted func(entry models.ReportEntry)
