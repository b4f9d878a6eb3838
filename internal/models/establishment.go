// server/internal/models/establishment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Compliance values. Staff toggle between the two by hand.
const (
	Compliant    = "Compliant"
	NonCompliant = "Non-Compliant"
)

// DueDate is the yearly renewal slot, independent of the year.
type DueDate struct {
	Month string `bson:"month" json:"month"` // canonical month name, e.g. "June"; legacy rows may hold "6"
	Day   string `bson:"day" json:"day"`
}

// Remark is one entry of the append-only remarks log.
type Remark struct {
	Date    time.Time `bson:"date" json:"date"`
	Message string    `bson:"message" json:"message"`
}

type Establishment struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FSICNumber              string             `bson:"fsicNumber" json:"fsicNumber"` // unique across active and archived
	EstablishmentName       string             `bson:"establishmentName" json:"establishmentName"`
	OwnerName               string             `bson:"ownerName" json:"ownerName"`
	Representative          string             `bson:"representative,omitempty" json:"representative,omitempty"`
	TradeName               string             `bson:"tradeName,omitempty" json:"tradeName,omitempty"`
	Address                 string             `bson:"address" json:"address"`
	Barangay                string             `bson:"barangay,omitempty" json:"barangay,omitempty"`
	ContactNumber           string             `bson:"contactNumber,omitempty" json:"contactNumber,omitempty"`
	Email                   string             `bson:"email,omitempty" json:"email,omitempty"`
	BusinessType            string             `bson:"businessType,omitempty" json:"businessType,omitempty"`
	OccupancyClassification string             `bson:"occupancyClassification,omitempty" json:"occupancyClassification,omitempty"`
	BuildingType            string             `bson:"buildingType,omitempty" json:"buildingType,omitempty"`
	NumberOfStoreys         int                `bson:"numberOfStoreys,omitempty" json:"numberOfStoreys,omitempty"`
	FloorArea               float64            `bson:"floorArea,omitempty" json:"floorArea,omitempty"` // square meters

	IsActive         bool       `bson:"isActive" json:"isActive"` // false = archived
	Compliance       string     `bson:"compliance" json:"compliance"`
	LastIssuanceDate *time.Time `bson:"lastIssuanceDate,omitempty" json:"lastIssuanceDate,omitempty"`
	DueDate          *DueDate   `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	InspectionDate   *time.Time `bson:"inspectionDate,omitempty" json:"inspectionDate,omitempty"`
	Remarks          []Remark   `bson:"remarks" json:"remarks"`
	CertificateURL   string     `bson:"certificateURL,omitempty" json:"certificateURL,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DueEstablishment is the flattened row of the due/overdue report.
type DueEstablishment struct {
	ID                      string     `json:"id"`
	FSICNumber              string     `json:"fsicNumber"`
	DueMonth                string     `json:"dueMonth"`
	DueDay                  string     `json:"dueDay"`
	DueDateLabel            string     `json:"dueDateLabel"`
	LastIssuanceDate        *time.Time `json:"lastIssuanceDate,omitempty"`
	Compliance              string     `json:"compliance"`
	EstablishmentName       string     `json:"establishmentName"`
	OwnerName               string     `json:"ownerName"`
	Representative          string     `json:"representative,omitempty"`
	TradeName               string     `json:"tradeName,omitempty"`
	Address                 string     `json:"address"`
	Barangay                string     `json:"barangay,omitempty"`
	ContactNumber           string     `json:"contactNumber,omitempty"`
	Email                   string     `json:"email,omitempty"`
	BusinessType            string     `json:"businessType,omitempty"`
	OccupancyClassification string     `json:"occupancyClassification,omitempty"`
	BuildingType            string     `json:"buildingType,omitempty"`
}

// EstablishmentFilter narrows listing queries.
type EstablishmentFilter struct {
	Active *bool
	Search string // matched against fsicNumber, establishmentName and ownerName
}
