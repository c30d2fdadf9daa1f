package handlers

import (
	"encoding/json"
	"strings"

	"github.com/shubham4653/aurahealth101-sub000/internal/middleware"
	"github.com/shubham4653/aurahealth101-sub000/internal/requests"
	"github.com/shubham4653/aurahealth101-sub000/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-utils/httpx"
	"github.com/kerimovok/go-pkg-utils/validator"
	"gorm.io/datatypes"
)

// RecordHandler handles medical record HTTP requests
type RecordHandler struct {
	recordService *services.RecordService
	storeService  *services.StoreService
	accessService *services.AccessService
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(recordService *services.RecordService, storeService *services.StoreService, accessService *services.AccessService) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		storeService:  storeService,
		accessService: accessService,
	}
}

// UploadRecord handles a provider uploading a medical record file. The blob
// is stored and hashed first; registration then binds it on the ledger before
// the row is confirmed bound.
func (h *RecordHandler) UploadRecord(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		response := httpx.BadRequest("No file provided", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.UploadRecordRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	patientID, err := uuid.Parse(input.PatientID)
	if err != nil {
		response := httpx.BadRequest("Invalid patient ID", err)
		return httpx.SendResponse(c, response)
	}

	var metadata datatypes.JSON
	if input.Metadata != "" {
		if !json.Valid([]byte(input.Metadata)) {
			response := httpx.BadRequest("Metadata must be valid JSON", nil)
			return httpx.SendResponse(c, response)
		}
		metadata = datatypes.JSON(input.Metadata)
	}

	if err := h.storeService.ValidateUpload(file, input.RecordType); err != nil {
		response := httpx.BadRequest("File validation failed", err)
		return httpx.SendResponse(c, response)
	}

	storagePointer, contentHash, err := h.storeService.SaveUpload(file)
	if err != nil {
		response := httpx.InternalServerError("Failed to store file", err)
		return httpx.SendResponse(c, response)
	}

	record, err := h.recordService.RegisterUpload(c.Context(), services.UploadInput{
		PatientID:      patientID,
		ProviderID:     middleware.AccountID(c),
		RecordType:     input.RecordType,
		Description:    input.Description,
		FileName:       file.Filename,
		MimeType:       file.Header.Get("Content-Type"),
		FileSizeBytes:  file.Size,
		StoragePointer: storagePointer,
		ContentHash:    contentHash,
		Metadata:       metadata,
	})
	if err != nil {
		// The blob landed on disk but the record never registered; drop it
		// so failed uploads do not accumulate unreferenced files.
		h.storeService.Remove(storagePointer)
		return sendServiceError(c, err, "register upload")
	}

	response := httpx.Created("Record uploaded successfully", fiber.Map{
		"record":          record,
		"contractAddress": record.LedgerContractAddress,
		"recordIdHash":    record.LedgerRecordID,
		"fileContentHash": record.ContentHash,
		"storageUrl":      record.StoragePointer,
	})
	return httpx.SendResponse(c, response)
}

// ListPatientRecords returns the authenticated patient's own records
func (h *RecordHandler) ListPatientRecords(c *fiber.Ctx) error {
	records, err := h.recordService.ListForPatient(c.Context(), middleware.AccountID(c))
	if err != nil {
		return sendServiceError(c, err, "list records")
	}

	response := httpx.OK("Records retrieved successfully", records)
	return httpx.SendResponse(c, response)
}

// ListAccessibleRecords returns records the authenticated provider may see:
// own uploads plus actively granted records
func (h *RecordHandler) ListAccessibleRecords(c *fiber.Ctx) error {
	records, err := h.recordService.ListAccessibleToProvider(c.Context(), middleware.AccountID(c))
	if err != nil {
		return sendServiceError(c, err, "list accessible records")
	}

	response := httpx.OK("Records retrieved successfully", records)
	return httpx.SendResponse(c, response)
}

// VerifyRecord checks a caller-supplied content hash against the stored one.
// Never mutates state.
func (h *RecordHandler) VerifyRecord(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid record ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.VerifyRecordRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	isValid, record, err := h.recordService.VerifyIntegrity(c.Context(), recordID, input.CandidateHash)
	if err != nil {
		return sendServiceError(c, err, "verify record")
	}

	response := httpx.OK("Integrity verification completed", fiber.Map{
		"isValid":      isValid,
		"storedHash":   record.ContentHash,
		"providedHash": input.CandidateHash,
	})
	return httpx.SendResponse(c, response)
}

// DownloadRecord serves the stored blob after authorization. Providers other
// than the uploader need both an active grant and a live ledger permission;
// the blob is re-hashed before serving so storage-side tampering is caught.
func (h *RecordHandler) DownloadRecord(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid record ID", err)
		return httpx.SendResponse(c, response)
	}

	record, err := h.recordService.GetRecord(c.Context(), recordID)
	if err != nil {
		return sendServiceError(c, err, "fetch record")
	}

	switch c.Locals(middleware.LocalRole) {
	case middleware.RolePatient:
		if record.PatientID != middleware.AccountID(c) {
			response := httpx.NotFound("Record not found")
			return httpx.SendResponse(c, response)
		}
	case middleware.RoleProvider:
		allowed, err := h.accessService.CanProviderRead(c.Context(), record, middleware.AccountID(c), middleware.Address(c))
		if err != nil {
			return sendServiceError(c, err, "check access")
		}
		if !allowed {
			response := httpx.Forbidden("Provider is not authorized for this record")
			return httpx.SendResponse(c, response)
		}
	default:
		response := httpx.Forbidden("Session role not permitted for this operation")
		return httpx.SendResponse(c, response)
	}

	if !h.storeService.Exists(record.StoragePointer) {
		response := httpx.NotFound("File not found on disk")
		return httpx.SendResponse(c, response)
	}

	storedHash, err := h.storeService.HashStored(record.StoragePointer)
	if err != nil {
		response := httpx.InternalServerError("Failed to verify stored file", err)
		return httpx.SendResponse(c, response)
	}
	if !strings.EqualFold(storedHash, record.ContentHash) {
		response := httpx.InternalServerError("Stored file does not match its recorded content hash", nil)
		return httpx.SendResponse(c, response)
	}

	return c.Download(record.StoragePointer, record.FileName)
}

// SetRecordActive toggles the soft-delete flag on a patient-owned record
func (h *RecordHandler) SetRecordActive(c *fiber.Ctx) error {
	recordID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		response := httpx.BadRequest("Invalid record ID", err)
		return httpx.SendResponse(c, response)
	}

	var input requests.SetRecordActiveRequest
	if err := c.BodyParser(&input); err != nil {
		response := httpx.BadRequest("Invalid request body", err)
		return httpx.SendResponse(c, response)
	}

	if err := validator.ValidateStruct(&input); err != nil {
		response := httpx.BadRequest("Validation failed", err)
		return httpx.SendResponse(c, response)
	}

	record, err := h.recordService.SetActive(c.Context(), recordID, middleware.AccountID(c), *input.IsActive)
	if err != nil {
		return sendServiceError(c, err, "update record")
	}

	response := httpx.OK("Record updated successfully", record)
	return httpx.SendResponse(c, response)
}
