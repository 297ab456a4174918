package http

import (
	"strings"
	"time"

	"go.einride.tech/aip/resourcename"
)

const dateLayout = "2006-01-02"

func templateName(id string) string {
	return resourcename.Sprint("templates/{template}", id)
}

func clientName(id string) string {
	return resourcename.Sprint("clients/{client}", id)
}

func transactionName(id string) string {
	return resourcename.Sprint("transactions/{transaction}", id)
}

func taskName(transactionID, id string) string {
	return resourcename.Sprint("transactions/{transaction}/tasks/{task}", transactionID, id)
}

func applicationRecordName(transactionID, id string) string {
	return resourcename.Sprint("transactions/{transaction}/applicationRecords/{record}", transactionID, id)
}

func communicationName(transactionID, id string) string {
	return resourcename.Sprint("transactions/{transaction}/communications/{communication}", transactionID, id)
}

// templateIDFromName accepts either a full "templates/{template}" resource
// name or a bare template id.
func templateIDFromName(name string) string {
	name = strings.TrimSpace(name)
	var id string
	if err := resourcename.Sscan(name, "templates/{template}", &id); err == nil {
		return id
	}
	return name
}

func formatDate(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.UTC().Format(dateLayout)
	return &formatted
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(*value), time.UTC)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
