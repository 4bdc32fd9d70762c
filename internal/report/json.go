package report

import (
	"encoding/json"

	"github.com/mbarreiroaraujo-cloud/anchor-shield-v2/internal/model"
)

// ToJSON serializes a full scan report with indentation.
func ToJSON(r *model.ScanReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
