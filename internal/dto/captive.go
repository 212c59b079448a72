package dto

import (
	"io"

	"github.com/poshuk/captives-gateway/internal/models"
)

// FileUpload carries an uploaded file part through to the upstream.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CaptiveForm is the multipart payload for creating or updating a record.
// Appearance is required on create only; the service enforces that before
// any network call.
type CaptiveForm struct {
	Name          string `form:"name"`
	PersonType    string `form:"person_type" validate:"omitempty,oneof=military civilian"`
	Brigade       string `form:"brigade"`
	Status        string `form:"status" validate:"omitempty,oneof=searching informed deceased reunited"`
	Region        string `form:"region"`
	Settlement    string `form:"settlement"`
	Circumstances string `form:"circumstances"`
	Appearance    string `form:"appearance"`
	DateOfBirth   string `form:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`

	Picture *FileUpload `form:"-"`
}

// ListQuery collects the list endpoint's query parameters: the section
// scope (one status or the archive alias), an optional owner filter, the
// name query and the local filter criteria.
type ListQuery struct {
	Status   string
	OwnerID  int64
	Query    string
	Criteria models.FilterCriteria
}

// MutationResponse returns the mutated record together with the section
// path the client should navigate to.
type MutationResponse struct {
	Captive  *models.Captive `json:"captive,omitempty"`
	Redirect string          `json:"redirect"`
}

// ListResponse wraps a record list with the remote-search state so clients
// know whether local filtering was suppressed.
type ListResponse struct {
	Captives     []models.Captive `json:"captives"`
	RemoteActive bool             `json:"remote_active"`
}
