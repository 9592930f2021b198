package pricing

import "math"

// Sheet layout geometry. An item footprint is packed onto the usable
// area of a sheet (full sheet minus a margin on every edge), items
// separated by a fixed gap. Two orientations are tried: as-is and
// rotated 90 degrees. The better of the two wins.

// Dimensions is a width/height pair in millimetres.
type Dimensions struct {
	Width  float64 `json:"width_mm"`
	Height float64 `json:"height_mm"`
}

// ItemsPerSheet returns how many copies of item fit on sheet with the
// given margin and gap. The result is never below 1: a footprint larger
// than the sheet still prices as one item per sheet, and the derivation
// layer attaches an advisory note for that case (see Fits).
func ItemsPerSheet(item, sheet Dimensions, margin, gap float64) (int, error) {
	if item.Width <= 0 || item.Height <= 0 {
		return 0, InvalidArgument("item", "item dimensions must be positive, got %gx%g", item.Width, item.Height)
	}
	if sheet.Width <= 0 || sheet.Height <= 0 {
		return 0, InvalidArgument("sheet", "sheet dimensions must be positive, got %gx%g", sheet.Width, sheet.Height)
	}
	if margin < 0 || gap < 0 {
		return 0, InvalidArgument("layout", "margin and gap must not be negative")
	}

	usableW := sheet.Width - 2*margin
	usableH := sheet.Height - 2*margin

	portrait := countGrid(usableW, usableH, item.Width, item.Height, gap)
	landscape := countGrid(usableW, usableH, item.Height, item.Width, gap)

	best := portrait
	if landscape > best {
		best = landscape
	}
	if best < 1 {
		best = 1
	}
	return best, nil
}

// countGrid counts a regular grid of w-by-h cells (each padded by gap)
// inside the usable area.
func countGrid(usableW, usableH, w, h, gap float64) int {
	if usableW <= 0 || usableH <= 0 {
		return 0
	}
	cols := int(math.Floor(usableW / (w + gap)))
	rows := int(math.Floor(usableH / (h + gap)))
	if cols < 1 || rows < 1 {
		return 0
	}
	return cols * rows
}

// Fits reports whether the item footprint physically fits on the sheet's
// usable area in at least one orientation.
func Fits(item, sheet Dimensions, margin, gap float64) bool {
	usableW := sheet.Width - 2*margin
	usableH := sheet.Height - 2*margin
	return countGrid(usableW, usableH, item.Width, item.Height, gap) >= 1 ||
		countGrid(usableW, usableH, item.Height, item.Width, gap) >= 1
}
