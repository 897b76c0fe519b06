package psurgen

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/openpv/psur-generator/psurgen/entities"
)

// Column names of the sales table as they appear in the source documents.
const (
	colCountry   = "Country"
	colMolecule  = "Molecule"
	colProduct   = "Product"
	colDosage    = "Dosage Form (Units)"
	colStrength  = "Strength in mg"
	colPackSize  = "Pack size"
	colUnits     = "Number of tablets / Capsules/Injections"
	colDelivered = "Delivered quantity (mg)"
	colDDD       = "DDD*"
	colSales     = "Sales Figure (mg) or period/Volume of sales (in mg)"
	colExposure  = "Patients Exposure (PTY) for period"
)

// packColumnNames are the column spellings a pack-count column may use.
var packColumnNames = []string{"Pack", "Packs"}

// displayColumnOrder is the canonical column order of the rendered tables;
// columns outside the list keep their relative order after these.
var displayColumnOrder = []string{
	colCountry, colMolecule, colDosage, colPackSize, colDDD, colSales, colExposure,
}

var packSizePattern = regexp.MustCompile(`(\d+)\s*[xX]\s*(\d+)`)

// ExposureConfig carries the caller-supplied lookup tables of the exposure
// pipeline: the reporting region, its aliases, the reference-state codes of
// the "eu&uk" scope, and the product-to-dosage-form map.
type ExposureConfig struct {
	Country     string
	Aliases     []string
	EUUKCodes   []string
	DosageForms []entities.DosageMapping
}

// ExposureConfig derives the pipeline configuration from the profile.
func (p *Profile) ExposureConfig() ExposureConfig {
	return ExposureConfig{
		Country:     p.Country,
		Aliases:     p.CountryAliases,
		EUUKCodes:   p.EUUKCodes,
		DosageForms: p.DosageForms,
	}
}

// ComputeExposure converts a raw sales table into patient-exposure figures
// partitioned by reporting region. The transform is a fixed sequence of
// steps, each total over the columns it touches; absent columns are skipped,
// never an error. The caller must have resolved a DDD value first: without
// one the section falls back to narrative and this function is not called
// with meaningful inputs.
func ComputeExposure(raw entities.RawTable, ddd entities.DDDValue, cfg ExposureConfig) entities.ExposureResult {
	if raw.IsEmpty() {
		return entities.ExposureResult{
			Outcome: entities.Empty("sales table has no rows"),
			DDD:     ddd,
		}
	}

	f := entities.NewFrame(raw.Header(), raw.DataRows())
	f = addDosageForm(f, cfg.DosageForms)
	f = dropDuplicateRows(f)
	f = parseStrength(f)
	f = consumePackColumn(f)
	f = parsePackSize(f)
	f = parseUnitCount(f)
	f = f.DropColumn(colDelivered)
	f = renameProductColumn(f)
	f = applyDDDColumn(f, ddd)
	f = computeSales(f)
	f = computeExposureColumn(f, ddd)
	f = ensureCountryColumn(f)
	f = fillMissing(f)

	country, world := partitionByCountry(f, cfg)
	country, countryTotal := appendTotalRow(country)
	world, worldTotal := appendTotalRow(world)
	country = country.Reorder(displayColumnOrder)
	world = world.Reorder(displayColumnOrder)

	combined := countryTotal + worldTotal
	outcome := entities.Full()
	if combined == 0 {
		outcome = entities.Partial("computed exposure total is zero")
	}

	return entities.ExposureResult{
		Outcome:         outcome,
		CountryTable:    country,
		NonCountryTable: world,
		CountryTotal:    countryTotal,
		NonCountryTotal: worldTotal,
		CombinedTotal:   combined,
		DDD:             ddd,
	}
}

// addDosageForm derives the dosage-form column from the product or molecule
// name. The first mapping whose match string occurs in the lowercased name
// wins; no match leaves the form empty. Without a product or molecule
// column the frame passes through untouched.
func addDosageForm(f entities.Frame, mappings []entities.DosageMapping) entities.Frame {
	src := -1
	for _, name := range []string{colProduct, colMolecule} {
		if idx := f.ColumnIndex(name); idx >= 0 {
			src = idx
			break
		}
	}
	if src < 0 {
		return f
	}

	cells := make([]entities.Cell, len(f.Rows))
	for i, row := range f.Rows {
		name := strings.ToLower(row[src].Display())
		form := ""
		for _, m := range mappings {
			if strings.Contains(name, strings.ToLower(m.Match)) {
				form = m.Form
				break
			}
		}
		cells[i] = entities.TextCell(form)
	}
	return f.AppendColumn(colDosage, cells)
}

// dropDuplicateRows removes later rows identical to an earlier one.
func dropDuplicateRows(f entities.Frame) entities.Frame {
	seen := make(map[string]bool, len(f.Rows))
	out := entities.Frame{Columns: append([]string(nil), f.Columns...)}
	for _, row := range f.Rows {
		key := rowKey(row)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Rows = append(out.Rows, row)
	}
	return out
}

func rowKey(row []entities.Cell) string {
	var b strings.Builder
	for _, c := range row {
		if c.IsMissing() {
			b.WriteString("m\x1f")
			continue
		}
		if n, ok := c.Number(); ok {
			b.WriteString("n" + strconv.FormatFloat(n, 'g', -1, 64) + "\x1f")
			continue
		}
		b.WriteString("t" + c.Display() + "\x1f")
	}
	return b.String()
}

// parseStrength coerces the strength column to numbers, dropping any "mg"
// unit markers first. Unparseable values become missing, not zero.
func parseStrength(f entities.Frame) entities.Frame {
	idx := f.ColumnIndex(colStrength)
	if idx < 0 {
		return f
	}
	out := f.Clone()
	for _, row := range out.Rows {
		s := strings.TrimSpace(strings.ReplaceAll(row[idx].Display(), "mg", ""))
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			row[idx] = entities.NumberCell(v)
		} else {
			row[idx] = entities.MissingCell()
		}
	}
	return out
}

// consumePackColumn drops the pack-count column under either of its known
// names. The count does not participate in the exposure arithmetic.
func consumePackColumn(f entities.Frame) entities.Frame {
	for _, name := range packColumnNames {
		if f.HasColumn(name) {
			return f.DropColumn(name)
		}
	}
	return f
}

// parsePackSize turns "label: AxB" pack descriptions into the product A*B.
// Only the text after the last colon is considered; a missing integer on
// either side defaults to 1.
func parsePackSize(f entities.Frame) entities.Frame {
	idx := f.ColumnIndex(colPackSize)
	if idx < 0 {
		return f
	}
	out := f.Clone()
	for _, row := range out.Rows {
		s := row[idx].Display()
		if colon := strings.LastIndex(s, ":"); colon >= 0 {
			s = s[colon+1:]
		}
		a, b := 1, 1
		if m := packSizePattern.FindStringSubmatch(strings.TrimSpace(s)); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				a = v
			}
			if v, err := strconv.Atoi(m[2]); err == nil {
				b = v
			}
		}
		row[idx] = entities.NumberCell(float64(a * b))
	}
	return out
}

// parseUnitCount coerces the unit-count column to numbers: thousands
// separators stripped, only the text after the last colon kept.
func parseUnitCount(f entities.Frame) entities.Frame {
	idx := f.ColumnIndex(colUnits)
	if idx < 0 {
		return f
	}
	out := f.Clone()
	for _, row := range out.Rows {
		s := strings.ReplaceAll(row[idx].Display(), ",", "")
		if colon := strings.LastIndex(s, ":"); colon >= 0 {
			s = s[colon+1:]
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			row[idx] = entities.NumberCell(v)
		} else {
			row[idx] = entities.MissingCell()
		}
	}
	return out
}

// renameProductColumn renames Product to Molecule unless a Molecule column
// already exists.
func renameProductColumn(f entities.Frame) entities.Frame {
	if f.HasColumn(colProduct) && !f.HasColumn(colMolecule) {
		return f.RenameColumn(colProduct, colMolecule)
	}
	return f
}

// applyDDDColumn sets the display form of the resolved DDD on every row:
// "<integer> mg" when resolved, empty otherwise. The numeric value itself
// stays out of the frame; the exposure division uses it directly.
func applyDDDColumn(f entities.Frame, ddd entities.DDDValue) entities.Frame {
	display := ""
	if ddd.Found && ddd.Value != 0 {
		display = strconv.Itoa(int(ddd.Value)) + " mg"
	}
	cells := make([]entities.Cell, len(f.Rows))
	for i := range cells {
		cells[i] = entities.TextCell(display)
	}
	return setColumn(f, colDDD, cells)
}

// computeSales derives the sales figure as units times strength. Either
// operand missing, or either column absent, yields a missing figure.
func computeSales(f entities.Frame) entities.Frame {
	unitsIdx := f.ColumnIndex(colUnits)
	strengthIdx := f.ColumnIndex(colStrength)

	cells := make([]entities.Cell, len(f.Rows))
	for i, row := range f.Rows {
		cells[i] = entities.MissingCell()
		if unitsIdx < 0 || strengthIdx < 0 {
			continue
		}
		units, uok := row[unitsIdx].Number()
		strength, sok := row[strengthIdx].Number()
		if uok && sok {
			cells[i] = entities.NumberCell(units * strength)
		}
	}
	return setColumn(f, colSales, cells)
}

// computeExposureColumn derives patient treatment years from the sales
// figure: sales / (DDD * 365), rounded to the nearest integer. Without a
// nonzero DDD every row is missing; the division never runs against a
// missing or zero dose.
func computeExposureColumn(f entities.Frame, ddd entities.DDDValue) entities.Frame {
	salesIdx := f.ColumnIndex(colSales)

	cells := make([]entities.Cell, len(f.Rows))
	for i, row := range f.Rows {
		cells[i] = entities.MissingCell()
		if !ddd.Found || ddd.Value == 0 || salesIdx < 0 {
			continue
		}
		if sales, ok := row[salesIdx].Number(); ok {
			cells[i] = entities.NumberCell(math.Round(sales / (ddd.Value * 365)))
		}
	}
	return setColumn(f, colExposure, cells)
}

// ensureCountryColumn adds a Country column of "Unknown" when the source
// table carries none.
func ensureCountryColumn(f entities.Frame) entities.Frame {
	if f.HasColumn(colCountry) {
		return f
	}
	cells := make([]entities.Cell, len(f.Rows))
	for i := range cells {
		cells[i] = entities.TextCell("Unknown")
	}
	return f.AppendColumn(colCountry, cells)
}

// fillMissing replaces every missing cell with empty text. After this step
// there is no distinction between missing and blank.
func fillMissing(f entities.Frame) entities.Frame {
	out := f.Clone()
	for _, row := range out.Rows {
		for j, cell := range row {
			if cell.IsMissing() {
				row[j] = entities.TextCell("")
			}
		}
	}
	return out
}

// partitionByCountry splits rows into the reporting region and the rest of
// the world by case-insensitive match of the Country cell. A region name
// normalizing to "eu&uk" matches the configured reference-state codes
// instead of its own name.
func partitionByCountry(f entities.Frame, cfg ExposureConfig) (country, world entities.Frame) {
	targets := make(map[string]bool)
	if normalizeCountry(cfg.Country) == "eu&uk" {
		for _, code := range cfg.EUUKCodes {
			targets[normalizeCountry(code)] = true
		}
	} else {
		for _, alias := range cfg.Aliases {
			if alias != "" {
				targets[normalizeCountry(alias)] = true
			}
		}
		if cfg.Country != "" {
			targets[normalizeCountry(cfg.Country)] = true
		}
	}

	countryIdx := f.ColumnIndex(colCountry)
	country = entities.Frame{Columns: append([]string(nil), f.Columns...)}
	world = entities.Frame{Columns: append([]string(nil), f.Columns...)}
	for _, row := range f.Rows {
		match := countryIdx >= 0 && targets[normalizeCountry(row[countryIdx].Display())]
		if match {
			country.Rows = append(country.Rows, row)
		} else {
			world.Rows = append(world.Rows, row)
		}
	}
	return country, world
}

func normalizeCountry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// appendTotalRow adds the synthetic Total row: all cells blank except
// Country and the exposure sum, truncated to an integer.
func appendTotalRow(f entities.Frame) (entities.Frame, int) {
	expIdx := f.ColumnIndex(colExposure)
	countryIdx := f.ColumnIndex(colCountry)

	sum := 0.0
	if expIdx >= 0 {
		for _, row := range f.Rows {
			if n, ok := row[expIdx].Number(); ok {
				sum += n
			}
		}
	}
	total := int(sum)

	row := make([]entities.Cell, len(f.Columns))
	for i := range row {
		row[i] = entities.TextCell("")
	}
	if countryIdx >= 0 {
		row[countryIdx] = entities.TextCell("Total")
	}
	if expIdx >= 0 {
		row[expIdx] = entities.NumberCell(float64(total))
	}

	out := f.Clone()
	out.Rows = append(out.Rows, row)
	return out, total
}

// setColumn overwrites the named column's cells, appending the column when
// absent. Shorter cell slices pad with missing values.
func setColumn(f entities.Frame, name string, cells []entities.Cell) entities.Frame {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return f.AppendColumn(name, cells)
	}
	out := f.Clone()
	for i, row := range out.Rows {
		if i < len(cells) {
			row[idx] = cells[i]
		} else {
			row[idx] = entities.MissingCell()
		}
	}
	return out
}
