// server/internal/service/establishment_service.go
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"fsic-records-api-server/internal/compliance"
	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/repository"
)

// Dashboard events pushed to connected clients.
const (
	EventEstablishmentUpdated = "establishment_updated"
	EventInspectionsToday     = "inspections_today"
)

// CertificateRenderer turns an issued establishment into a printable PDF.
type CertificateRenderer interface {
	Render(e models.Establishment, issuedAt time.Time) ([]byte, error)
}

// CertificateStore keeps a copy of generated certificates and returns their URL.
type CertificateStore interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

// Notifier broadcasts dashboard events.
type Notifier interface {
	Broadcast(event string, payload interface{})
}

// EstablishmentInput is the editable part of an establishment.
type EstablishmentInput struct {
	FSICNumber              string          `json:"fsicNumber"`
	EstablishmentName       string          `json:"establishmentName"`
	OwnerName               string          `json:"ownerName"`
	Representative          string          `json:"representative"`
	TradeName               string          `json:"tradeName"`
	Address                 string          `json:"address"`
	Barangay                string          `json:"barangay"`
	ContactNumber           string          `json:"contactNumber"`
	Email                   string          `json:"email"`
	BusinessType            string          `json:"businessType"`
	OccupancyClassification string          `json:"occupancyClassification"`
	BuildingType            string          `json:"buildingType"`
	NumberOfStoreys         int             `json:"numberOfStoreys"`
	FloorArea               float64         `json:"floorArea"`
	Compliance              string          `json:"compliance"`
	LastIssuanceDate        *time.Time      `json:"lastIssuanceDate"`
	DueDate                 *models.DueDate `json:"dueDate"`
	InspectionDate          *time.Time      `json:"inspectionDate"`
}

type EstablishmentService struct {
	repo     repository.EstablishmentRepository
	clock    Clock
	log      zerolog.Logger
	renderer CertificateRenderer
	store    CertificateStore
	notifier Notifier
}

func NewEstablishmentService(repo repository.EstablishmentRepository, clock Clock, log zerolog.Logger) *EstablishmentService {
	return &EstablishmentService{
		repo:  repo,
		clock: clock,
		log:   log.With().Str("component", "establishments").Logger(),
	}
}

// WithCertificates enables certificate rendering; store may be nil.
func (s *EstablishmentService) WithCertificates(r CertificateRenderer, store CertificateStore) *EstablishmentService {
	s.renderer = r
	s.store = store
	return s
}

func (s *EstablishmentService) WithNotifier(n Notifier) *EstablishmentService {
	s.notifier = n
	return s
}

func (s *EstablishmentService) notify(event string, payload interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(event, payload)
	}
}

// --- reads ---

func (s *EstablishmentService) Get(ctx context.Context, id string) (*models.Establishment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, "get establishment", oid)
}

func (s *EstablishmentService) List(ctx context.Context, f models.EstablishmentFilter) ([]models.Establishment, error) {
	f.Search = strings.TrimSpace(f.Search)
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, internal(s.log, "list establishments", err)
	}
	return list, nil
}

// DueList reports active establishments due this month and not yet issued this year.
func (s *EstablishmentService) DueList(ctx context.Context) ([]models.DueEstablishment, error) {
	list, err := s.repo.FindDue(ctx, s.clock())
	if err != nil {
		return nil, internal(s.log, "due list", err)
	}
	out := make([]models.DueEstablishment, 0, len(list))
	for _, e := range list {
		out = append(out, compliance.Flatten(e))
	}
	return out, nil
}

// InspectionsToday lists active establishments scheduled for inspection today.
func (s *EstablishmentService) InspectionsToday(ctx context.Context) ([]models.Establishment, error) {
	list, err := s.repo.FindInspectionsToday(ctx, s.clock())
	if err != nil {
		return nil, internal(s.log, "inspections today", err)
	}
	return list, nil
}

func (s *EstablishmentService) Analytics(ctx context.Context) (models.Analytics, error) {
	a, err := s.repo.Stats(ctx, s.clock())
	if err != nil {
		return models.Analytics{}, internal(s.log, "analytics", err)
	}
	return a, nil
}

// --- mutations ---

func (s *EstablishmentService) Create(ctx context.Context, in EstablishmentInput) (*models.Establishment, error) {
	in, due, err := validateEstablishment(in)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueFSIC(ctx, in.FSICNumber, primitive.NilObjectID); err != nil {
		return nil, err
	}

	now := s.clock()
	e := &models.Establishment{IsActive: true, Compliance: models.NonCompliant, Remarks: []models.Remark{}, CreatedAt: now}
	applyInput(e, in, due)
	e.UpdatedAt = now

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, duplicateFSIC(in.FSICNumber)
		}
		return nil, internal(s.log, "create establishment", err)
	}
	s.log.Info().Str("fsicNumber", e.FSICNumber).Msg("establishment created")
	return e, nil
}

func (s *EstablishmentService) Update(ctx context.Context, id string, in EstablishmentInput) (*models.Establishment, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	in, due, err := validateEstablishment(in)
	if err != nil {
		return nil, err
	}
	e, err := s.load(ctx, "update establishment", oid)
	if err != nil {
		return nil, err
	}
	if in.FSICNumber != e.FSICNumber {
		if err := s.ensureUniqueFSIC(ctx, in.FSICNumber, oid); err != nil {
			return nil, err
		}
	}

	applyInput(e, in, due)
	e.UpdatedAt = s.clock()
	if err := s.repo.Update(ctx, e); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, duplicateFSIC(in.FSICNumber)
		case errors.Is(err, repository.ErrNotFound):
			return nil, fail(ErrNotFound, "Establishment not found")
		}
		return nil, internal(s.log, "update establishment", err)
	}
	s.notify(EventEstablishmentUpdated, e)
	return e, nil
}

// Delete removes the record for good. Archive is the normal path.
func (s *EstablishmentService) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, oid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(ErrNotFound, "Establishment not found")
		}
		return internal(s.log, "delete establishment", err)
	}
	return nil
}

// Archive soft-deletes an active record.
func (s *EstablishmentService) Archive(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

// Restore reactivates an archived record. Due date and compliance are kept as they were.
func (s *EstablishmentService) Restore(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *EstablishmentService) setActive(ctx context.Context, id string, active bool) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	e, err := s.load(ctx, "set active", oid)
	if err != nil {
		return err
	}
	if e.IsActive == active {
		if active {
			return fail(ErrConflict, "Establishment %s is not archived", e.FSICNumber)
		}
		return fail(ErrConflict, "Establishment %s is already archived", e.FSICNumber)
	}
	if err := s.repo.SetActive(ctx, oid, active, s.clock()); err != nil {
		return s.mutationError("set active", err)
	}
	s.notify(EventEstablishmentUpdated, map[string]interface{}{"id": id, "isActive": active})
	return nil
}

// ToggleCompliance flips the compliance flag and returns the new value.
func (s *EstablishmentService) ToggleCompliance(ctx context.Context, id string) (string, error) {
	oid, err := parseID(id)
	if err != nil {
		return "", err
	}
	e, err := s.load(ctx, "toggle compliance", oid)
	if err != nil {
		return "", err
	}
	return s.writeCompliance(ctx, oid, compliance.ToggleCompliance(e.Compliance))
}

// SetCompliance marks the establishment explicitly; repeating it changes nothing.
func (s *EstablishmentService) SetCompliance(ctx context.Context, id, value string) (string, error) {
	oid, err := parseID(id)
	if err != nil {
		return "", err
	}
	if value != models.Compliant && value != models.NonCompliant {
		return "", fail(ErrInvalidInput, "Compliance must be %q or %q", models.Compliant, models.NonCompliant)
	}
	if _, err := s.load(ctx, "set compliance", oid); err != nil {
		return "", err
	}
	return s.writeCompliance(ctx, oid, value)
}

func (s *EstablishmentService) writeCompliance(ctx context.Context, oid primitive.ObjectID, value string) (string, error) {
	if err := s.repo.SetCompliance(ctx, oid, value, s.clock()); err != nil {
		return "", s.mutationError("set compliance", err)
	}
	s.notify(EventEstablishmentUpdated, map[string]interface{}{"id": oid.Hex(), "compliance": value})
	return value, nil
}

// AddRemark appends to the remarks log. Existing remarks are never touched.
func (s *EstablishmentService) AddRemark(ctx context.Context, id, message string) (models.Remark, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Remark{}, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Remark{}, fail(ErrInvalidInput, "Remark message is required")
	}
	if _, err := s.load(ctx, "add remark", oid); err != nil {
		return models.Remark{}, err
	}
	remark := models.Remark{Date: s.clock(), Message: message}
	if err := s.repo.PushRemark(ctx, oid, remark); err != nil {
		return models.Remark{}, s.mutationError("add remark", err)
	}
	s.notify(EventEstablishmentUpdated, map[string]interface{}{"id": id, "remark": remark})
	return remark, nil
}

// RecordIssuance stamps today as the last issuance of an active establishment,
// which takes it off this year's due list.
func (s *EstablishmentService) RecordIssuance(ctx context.Context, id string) (time.Time, error) {
	oid, err := parseID(id)
	if err != nil {
		return time.Time{}, err
	}
	e, err := s.load(ctx, "record issuance", oid)
	if err != nil {
		return time.Time{}, err
	}
	if !e.IsActive {
		return time.Time{}, fail(ErrConflict, "Establishment %s is archived", e.FSICNumber)
	}
	now := s.clock()
	if err := s.repo.SetIssuance(ctx, oid, now); err != nil {
		return time.Time{}, s.mutationError("record issuance", err)
	}
	return now, nil
}

// Certificate renders the FSIC of an issued establishment. When a store is
// configured a copy is uploaded and its URL recorded; upload problems are
// logged and do not block the download.
func (s *EstablishmentService) Certificate(ctx context.Context, id string) ([]byte, string, error) {
	if s.renderer == nil {
		return nil, "", fail(ErrConflict, "Certificate generation is not enabled")
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, "", err
	}
	e, err := s.load(ctx, "certificate", oid)
	if err != nil {
		return nil, "", err
	}
	if !e.IsActive {
		return nil, "", fail(ErrConflict, "Establishment %s is archived", e.FSICNumber)
	}
	if e.LastIssuanceDate == nil {
		return nil, "", fail(ErrConflict, "No issuance has been recorded for %s", e.FSICNumber)
	}

	pdf, err := s.renderer.Render(*e, *e.LastIssuanceDate)
	if err != nil {
		return nil, "", internal(s.log, "render certificate", err)
	}
	filename := fmt.Sprintf("FSIC-%s.pdf", sanitizeKey(e.FSICNumber))

	if s.store != nil {
		key := fmt.Sprintf("certificates/%s/%s.pdf", sanitizeKey(e.FSICNumber), uuid.New().String())
		url, err := s.store.UploadFile(ctx, bytes.NewReader(pdf), key, "application/pdf")
		if err != nil {
			s.log.Warn().Err(err).Str("fsicNumber", e.FSICNumber).Msg("certificate upload failed")
		} else if err := s.repo.SetCertificateURL(ctx, oid, url, s.clock()); err != nil {
			s.log.Warn().Err(err).Str("fsicNumber", e.FSICNumber).Msg("could not record certificate url")
		}
	}
	return pdf, filename, nil
}

// --- helpers ---

func (s *EstablishmentService) load(ctx context.Context, op string, oid primitive.ObjectID) (*models.Establishment, error) {
	e, err := s.repo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fail(ErrNotFound, "Establishment not found")
		}
		return nil, internal(s.log, op, err)
	}
	return e, nil
}

func (s *EstablishmentService) mutationError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fail(ErrNotFound, "Establishment not found")
	}
	return internal(s.log, op, err)
}

// ensureUniqueFSIC checks archived records too.
func (s *EstablishmentService) ensureUniqueFSIC(ctx context.Context, fsic string, self primitive.ObjectID) error {
	existing, err := s.repo.FindByFSIC(ctx, fsic)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return internal(s.log, "check fsic number", err)
	case existing.ID == self:
		return nil
	case !existing.IsActive:
		return fail(ErrDuplicate, "FSIC number %s already belongs to an archived establishment", fsic)
	}
	return duplicateFSIC(fsic)
}

func duplicateFSIC(fsic string) error {
	return fail(ErrDuplicate, "FSIC number %s already exists", fsic)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fail(ErrInvalidInput, "Invalid id %q", id)
	}
	return oid, nil
}

func validateEstablishment(in EstablishmentInput) (EstablishmentInput, *models.DueDate, error) {
	in.FSICNumber = strings.TrimSpace(in.FSICNumber)
	in.EstablishmentName = strings.TrimSpace(in.EstablishmentName)
	in.OwnerName = strings.TrimSpace(in.OwnerName)
	in.Email = strings.TrimSpace(in.Email)
	in.Compliance = strings.TrimSpace(in.Compliance)

	switch {
	case in.FSICNumber == "":
		return in, nil, fail(ErrInvalidInput, "FSIC number is required")
	case in.EstablishmentName == "":
		return in, nil, fail(ErrInvalidInput, "Establishment name is required")
	case in.OwnerName == "":
		return in, nil, fail(ErrInvalidInput, "Owner name is required")
	case in.NumberOfStoreys < 0:
		return in, nil, fail(ErrInvalidInput, "Number of storeys cannot be negative")
	case in.FloorArea < 0:
		return in, nil, fail(ErrInvalidInput, "Floor area cannot be negative")
	case in.Compliance != "" && in.Compliance != models.Compliant && in.Compliance != models.NonCompliant:
		return in, nil, fail(ErrInvalidInput, "Compliance must be %q or %q", models.Compliant, models.NonCompliant)
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return in, nil, fail(ErrInvalidInput, "Email %q is not valid", in.Email)
		}
	}
	due, err := compliance.NormalizeDueDate(in.DueDate)
	if err != nil {
		return in, nil, fail(ErrInvalidInput, "Due date: %v", err)
	}
	return in, due, nil
}

// applyInput copies editable fields. Status flags, remarks and timestamps stay.
// The schedule fields are only written when present in the input, so an edit
// that omits them keeps the record on its due and inspection schedule. An
// explicit empty dueDate ({"month":""}) clears the due slot.
func applyInput(e *models.Establishment, in EstablishmentInput, due *models.DueDate) {
	e.FSICNumber = in.FSICNumber
	e.EstablishmentName = in.EstablishmentName
	e.OwnerName = in.OwnerName
	e.Representative = strings.TrimSpace(in.Representative)
	e.TradeName = strings.TrimSpace(in.TradeName)
	e.Address = strings.TrimSpace(in.Address)
	e.Barangay = strings.TrimSpace(in.Barangay)
	e.ContactNumber = strings.TrimSpace(in.ContactNumber)
	e.Email = in.Email
	e.BusinessType = strings.TrimSpace(in.BusinessType)
	e.OccupancyClassification = strings.TrimSpace(in.OccupancyClassification)
	e.BuildingType = strings.TrimSpace(in.BuildingType)
	e.NumberOfStoreys = in.NumberOfStoreys
	e.FloorArea = in.FloorArea
	if in.Compliance != "" {
		e.Compliance = in.Compliance
	}
	if in.LastIssuanceDate != nil {
		e.LastIssuanceDate = in.LastIssuanceDate
	}
	if in.DueDate != nil {
		e.DueDate = due
	}
	if in.InspectionDate != nil {
		e.InspectionDate = in.InspectionDate
	}
}

func sanitizeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, s)
}
