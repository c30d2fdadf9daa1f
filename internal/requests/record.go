package requests

// UploadRecordRequest represents the form fields accompanying a record
// upload. PatientID stays a string here; multipart form values arrive as
// text and the handler parses it.
type UploadRecordRequest struct {
	PatientID   string `json:"patientId" form:"patientId" validate:"required"`
	RecordType  string `json:"recordType" form:"recordType" validate:"required"`
	Description string `json:"description" form:"description"`
	Metadata    string `json:"metadata" form:"metadata"`
}

// VerifyRecordRequest represents an integrity verification request. The
// candidate hash is the caller's own hash of the file they claim to hold.
type VerifyRecordRequest struct {
	CandidateHash string `json:"candidateHash" validate:"required"`
}

// SetRecordActiveRequest toggles the soft-delete flag on a record
type SetRecordActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
