// Package output serializes read results to JSON.
package output

import (
	"encoding/json"

	"github.com/ukaji3/xlread-go/pkg/xlread/models"
)

// ToJSON serializes a result.
func ToJSON(result *models.Result, pretty bool) ([]byte, error) {
	return marshal(result, pretty)
}

// SheetToJSON serializes one sheet's table. A nil table is written as [].
func SheetToJSON(table models.SheetTable, pretty bool) ([]byte, error) {
	if table == nil {
		table = models.SheetTable{}
	}
	return marshal(table, pretty)
}

// FailureToJSON serializes a failure message as {"message": "..."}.
func FailureToJSON(err error, pretty bool) ([]byte, error) {
	return marshal(struct {
		Message string `json:"message"`
	}{Message: err.Error()}, pretty)
}

func marshal(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// BatchEntry is one input's outcome in a batch: a result, or the failure
// written as {"message": "..."}.
type BatchEntry struct {
	Result *models.Result
	Err    error
}

// MarshalJSON implements json.Marshaler.
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return FailureToJSON(e.Err, false)
	}
	return json.Marshal(e.Result)
}

// BatchToJSON serializes batch outcomes keyed by input name.
func BatchToJSON(entries map[string]BatchEntry, pretty bool) ([]byte, error) {
	if entries == nil {
		entries = map[string]BatchEntry{}
	}
	return marshal(entries, pretty)
}
