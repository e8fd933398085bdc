package mappers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"medical-consent-service/internal/domain/entities"

	"github.com/samber/lo"
)

// ErrUnsupportedFHIRVersion is returned for versions other than DSTU2 and STU3.
var ErrUnsupportedFHIRVersion = errors.New("fhirVersion must be STU3 or DSTU2")

const (
	FHIRVersionSTU3  = "STU3"
	FHIRVersionDSTU2 = "DSTU2"
)

// FHIRReference points at another resource, e.g. "Patient/1".
type FHIRReference struct {
	Reference string `json:"reference"`
}

type FHIRAttachment struct {
	ContentType string `json:"contentType"`
	Data        string `json:"data"` // base64
	Creation    string `json:"creation,omitempty"`
}

type FHIRDocumentContent struct {
	Attachment FHIRAttachment `json:"attachment"`
}

// FHIRDocumentReferenceResource is a simplified DocumentReference carrying one
// medical record. Fields are the subset shared by DSTU2 and STU3.
type FHIRDocumentReferenceResource struct {
	ResourceType string                `json:"resourceType"` // "DocumentReference"
	ID           string                `json:"id,omitempty"`
	Status       string                `json:"status"` // current | superseded | entered-in-error
	Subject      FHIRReference         `json:"subject"`
	Author       []FHIRReference       `json:"author,omitempty"`
	Created      string                `json:"created,omitempty"`
	Indexed      string                `json:"indexed"`
	Description  string                `json:"description,omitempty"`
	Content      []FHIRDocumentContent `json:"content"`
}

type FHIRBundleEntry struct {
	FullURL  string                        `json:"fullUrl"`
	Resource FHIRDocumentReferenceResource `json:"resource"`
}

// FHIRBundle is a "collection" Bundle of DocumentReference entries.
type FHIRBundle struct {
	ResourceType string            `json:"resourceType"` // "Bundle"
	Type         string            `json:"type"`
	Total        int               `json:"total"`
	Entry        []FHIRBundleEntry `json:"entry"`
}

// MapRecordToFHIR converts one record into a DocumentReference.
func MapRecordToFHIR(record entities.MedicalRecord) FHIRDocumentReferenceResource {
	return FHIRDocumentReferenceResource{
		ResourceType: "DocumentReference",
		ID:           record.ID.String(),
		Status:       "current",
		Subject:      FHIRReference{Reference: "Patient/" + strconv.FormatInt(record.PatientID, 10)},
		Author:       []FHIRReference{{Reference: "Practitioner/" + strconv.FormatInt(record.AddedBy, 10)}},
		Created:      record.CreatedAt.UTC().Format(time.RFC3339),
		Indexed:      record.UpdatedAt.UTC().Format(time.RFC3339),
		Description:  fmt.Sprintf("record %d", record.Index),
		Content: []FHIRDocumentContent{{
			Attachment: FHIRAttachment{
				ContentType: "text/plain",
				Data:        base64.StdEncoding.EncodeToString([]byte(record.Data)),
				Creation:    record.CreatedAt.UTC().Format(time.RFC3339),
			},
		}},
	}
}

// MapRecordsToFHIRBundle wraps records in a collection Bundle. The records are
// expected to be already filtered to what the caller may read.
func MapRecordsToFHIRBundle(records []entities.MedicalRecord, fhirVersion string) (json.RawMessage, error) {
	if fhirVersion != FHIRVersionSTU3 && fhirVersion != FHIRVersionDSTU2 {
		return nil, fmt.Errorf("%q: %w", fhirVersion, ErrUnsupportedFHIRVersion)
	}

	bundle := FHIRBundle{
		ResourceType: "Bundle",
		Type:         "collection",
		Total:        len(records),
		Entry: lo.Map(records, func(r entities.MedicalRecord, _ int) FHIRBundleEntry {
			return FHIRBundleEntry{FullURL: "urn:uuid:" + r.ID.String(), Resource: MapRecordToFHIR(r)}
		}),
	}

	rawJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR bundle to JSON: %w", err)
	}
	return rawJSON, nil
}
