// Package certificate renders the printable Fire Safety Inspection Certificate.
//
// A4 portrait layout:
//
//	┌──────────────────────────────────────────────┐
//	│  Office header                               │
//	│  FIRE SAFETY INSPECTION CERTIFICATE          │
//	│  FSIC No. / Date issued                      │
//	│  Establishment, owner, address, occupancy    │
//	│  Validity statement                          │
//	│  QR (FSIC number)   │  Signature block       │
//	└──────────────────────────────────────────────┘
package certificate

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"fsic-records-api-server/internal/models"
)

var (
	colorPrimary = &props.Color{Red: 153, Green: 27, Blue: 27}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// Generator renders certificates with Maroto.
type Generator struct {
	Office string
}

func NewGenerator(office string) *Generator {
	if office == "" {
		office = "Fire Safety Inspection Office"
	}
	return &Generator{Office: office}
}

// Render returns the PDF bytes of e's certificate issued at issuedAt.
func (g *Generator) Render(e models.Establishment, issuedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 10}).
		WithTitle("Fire Safety Inspection Certificate "+e.FSICNumber, true).
		WithAuthor(g.Office, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRows(e, issuedAt)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.6}))
	m.AddRows(detailRows(e)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(validityRow(issuedAt))
	m.AddRows(row.New(10))
	m.AddRows(footerRow(e))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("certificate: generate document: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *Generator) headerRows(e models.Establishment, issuedAt time.Time) []core.Row {
	return []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New(g.Office, props.Text{Size: 10, Align: align.Center, Color: colorGray}),
		)),
		row.New(14).Add(col.New(12).Add(
			text.New("FIRE SAFETY INSPECTION CERTIFICATE", props.Text{
				Style: fontstyle.Bold, Size: 16, Align: align.Center, Color: colorPrimary, Top: 3,
			}),
		)),
		row.New(10).Add(
			col.New(6).Add(text.New("FSIC No. "+e.FSICNumber, props.Text{Style: fontstyle.Bold, Size: 11, Top: 2})),
			col.New(6).Add(text.New("Date issued: "+issuedAt.Format("January 2, 2006"), props.Text{
				Size: 10, Align: align.Right, Top: 2,
			})),
		),
	}
}

func detailRows(e models.Establishment) []core.Row {
	field := func(label, value string) core.Row {
		return row.New(8).Add(
			col.New(4).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1, Color: colorGray})),
			col.New(8).Add(text.New(nonEmpty(value, "-"), props.Text{Size: 10, Top: 1})),
		)
	}
	storeys := ""
	if e.NumberOfStoreys > 0 {
		storeys = strconv.Itoa(e.NumberOfStoreys)
	}
	floorArea := ""
	if e.FloorArea > 0 {
		floorArea = strconv.FormatFloat(e.FloorArea, 'f', 2, 64) + " sq. m."
	}
	return []core.Row{
		field("Name of establishment", e.EstablishmentName),
		field("Trade name", e.TradeName),
		field("Owner", e.OwnerName),
		field("Representative", e.Representative),
		field("Address", joinAddress(e.Address, e.Barangay)),
		field("Business type", e.BusinessType),
		field("Occupancy classification", e.OccupancyClassification),
		field("Building type", e.BuildingType),
		field("Number of storeys", storeys),
		field("Floor area", floorArea),
	}
}

func validityRow(issuedAt time.Time) core.Row {
	until := issuedAt.AddDate(1, 0, 0)
	msg := fmt.Sprintf(
		"This certifies that the above establishment has been inspected and found to be "+
			"in compliance with the Fire Code. This certificate is valid until %s.",
		until.Format("January 2, 2006"),
	)
	return row.New(18).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 10, Top: 3}),
	))
}

func footerRow(e models.Establishment) core.Row {
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(e.FSICNumber, props.Rect{Percent: 90, Center: true})),
		col.New(2),
		col.New(6).Add(
			text.New("______________________________", props.Text{Align: align.Center, Top: 20}),
			text.New("Fire Marshal", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Center, Top: 26}),
		),
	)
}

func joinAddress(address, barangay string) string {
	switch {
	case barangay == "":
		return address
	case address == "":
		return "Brgy. " + barangay
	}
	return address + ", Brgy. " + barangay
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
