package export

import (
	"fmt"
	"strconv"

	"populartimes-crawler/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	// DefaultPath is where the CLI writes the workbook unless told otherwise
	DefaultPath = "googlePlaces.xlsx"

	PlacesSheet  = "places"
	DetailsSheet = "details"

	// typesColumn is the zero-based column the first type tag goes into
	typesColumn = 7
)

var placesHeader = []any{"name", "address", "placeID", "rating", "reviews", "lat", "long", "types"}

func detailsHeader() []any {
	header := []any{"name", "address"}
	for _, day := range models.WeekdayNames {
		header = append(header, day)
	}
	return header
}

// Workbook builds a workbook with one row per place in the places sheet and
// one row per place and hour of day in the details sheet. Places without
// popular times get zero rows in the details sheet.
func Workbook(places []models.Place) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), PlacesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: failed to create sheet %s: %w", PlacesSheet, err)
	}
	if _, err := f.NewSheet(DetailsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: failed to create sheet %s: %w", DetailsSheet, err)
	}

	if err := writePlaces(f, places); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDetails(f, places); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// Save writes the workbook for places to path
func Save(path string, places []models.Place) error {
	f, err := Workbook(places)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: failed to save workbook to %s: %w", path, err)
	}
	return nil
}

func writePlaces(f *excelize.File, places []models.Place) error {
	if err := setRow(f, PlacesSheet, 0, placesHeader); err != nil {
		return err
	}

	for k, p := range places {
		row := make([]any, 0, typesColumn+len(p.Types))
		row = append(row,
			p.Name,
			p.Address,
			string(p.ID),
			p.Rating,
			p.Reviews,
			p.Location.Lat,
			p.Location.Lon,
		)
		for _, t := range p.Types {
			row = append(row, t)
		}

		if err := setRow(f, PlacesSheet, k+1, row); err != nil {
			return err
		}
	}

	return nil
}

func writeDetails(f *excelize.File, places []models.Place) error {
	if err := setRow(f, DetailsSheet, 0, detailsHeader()); err != nil {
		return err
	}

	for j, p := range places {
		var week models.WeekHistogram
		if p.HasPopularTimes() {
			week = *p.PopularTimes
		}

		for hour := 0; hour < models.HoursPerDay; hour++ {
			row := make([]any, 0, 2+models.DaysPerWeek)
			row = append(row, p.Name, p.Address)
			for day := 0; day < models.DaysPerWeek; day++ {
				row = append(row, week[day][hour])
			}

			if err := setRow(f, DetailsSheet, 1+hour+j*models.HoursPerDay, row); err != nil {
				return err
			}
		}
	}

	return nil
}

// setRow writes values starting in column A of the zero-based row
func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell := "A" + strconv.Itoa(row+1)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("export: failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}
