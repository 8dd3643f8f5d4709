package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// lineBreaks strips the newlines the page embeds in region names.
var lineBreaks = strings.NewReplacer("\r\n", "", "\n", "")

// LocateForecastTable returns the body of the forecast table within a page.
func LocateForecastTable(ctx context.Context, page Node) (Node, error) {
	list, err := page.Find(ctx, SelectorForecastList)
	if err != nil {
		return nil, fmt.Errorf("find forecast list: %w", err)
	}
	if list == nil {
		return nil, ErrTableNotFound
	}

	body, err := list.Find(ctx, SelectorTableBody)
	if err != nil {
		return nil, fmt.Errorf("find forecast table body: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("%w: no %s in %s", ErrTableNotFound, SelectorTableBody, SelectorForecastList)
	}
	return body, nil
}

// ParseRegionRow parses one table row into a Region.
//
// ok is false when the row has no region name; such rows are skipped without
// error. A non-nil error is always a *RegionError. Cells are parsed
// independently, so the returned region keeps every record that parsed even
// when err reports failed cells.
func ParseRegionRow(ctx context.Context, row Node, fetched LocalDate) (region Region, ok bool, err error) {
	if row == nil {
		return Region{}, true, &RegionError{Err: ErrRowMissing}
	}

	nameNode, err := row.Find(ctx, SelectorRegionName)
	if err != nil {
		return Region{}, true, &RegionError{Err: fmt.Errorf("find region name: %w", err)}
	}
	if nameNode == nil {
		return Region{}, false, nil
	}

	text, err := nameNode.Text(ctx)
	if err != nil {
		return Region{}, true, &RegionError{Err: fmt.Errorf("read region name: %w", err)}
	}
	region.Name = lineBreaks.Replace(text)
	if strings.TrimSpace(region.Name) == "" {
		return Region{}, true, &RegionError{Err: ErrEmptyRegionName}
	}

	cells, err := row.FindAll(ctx, SelectorForecastCell)
	if err != nil {
		return region, true, &RegionError{Region: region.Name, Err: fmt.Errorf("enumerate forecast cells: %w", err)}
	}

	region.Weather = make([]Weather, 0, len(cells))
	var cellErrs []error
	for offset, cell := range cells {
		w, err := ParseForecastCell(ctx, cell, offset, fetched)
		if err != nil {
			cellErrs = append(cellErrs, err)
			continue
		}
		region.Weather = append(region.Weather, w)
	}

	if len(cellErrs) > 0 {
		return region, true, &RegionError{Region: region.Name, Err: errors.Join(cellErrs...)}
	}
	return region, true, nil
}

// ParseForecastCell parses one day's forecast cell. offset is the cell's
// zero-based position in its row and fetched is the date of offset 0.
//
// Every sub-field is optional: a missing or unreadable element is treated as
// empty text. Only a nil cell is an error.
func ParseForecastCell(ctx context.Context, cell Node, offset int, fetched LocalDate) (Weather, error) {
	if cell == nil {
		return Weather{}, &CellError{Offset: offset, Err: ErrCellMissing}
	}

	minTemp := childText(ctx, cell, SelectorMinTemp)
	maxTemp := childText(ctx, cell, SelectorMaxTemp)
	label := childAttr(ctx, cell, SelectorWeatherIcon, AttrWeatherLabel)
	rainy := childText(ctx, cell, SelectorRainyPercent)

	return Weather{
		Date:         fetched.AddDays(offset),
		Type:         label,
		HighestTemp:  ParseNumber(maxTemp),
		LowestTemp:   ParseNumber(minTemp),
		RainyPercent: ParseRainyPercent(rainy),
	}, nil
}

func childText(ctx context.Context, n Node, selector string) string {
	child, err := n.Find(ctx, selector)
	if err != nil || child == nil {
		return ""
	}
	text, err := child.Text(ctx)
	if err != nil {
		return ""
	}
	return text
}

func childAttr(ctx context.Context, n Node, selector, attr string) string {
	child, err := n.Find(ctx, selector)
	if err != nil || child == nil {
		return ""
	}
	v, err := child.Attr(ctx, attr)
	if err != nil {
		return ""
	}
	return v
}
