package importer

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"smallbiz-crm/internal/fieldmap"
)

// ErrEmptyHeader rejects a file whose first row has no column names.
var ErrEmptyHeader = errors.New("header row has no column names")

// Record is a normalized import row keyed by canonical field name. Columns the
// field mapper does not recognize keep their original header as key.
type Record map[string]string

// Result holds the records accepted by the normalizer plus one message per
// rejected row. Blank rows appear in neither.
type Result struct {
	ValidRecords []Record `json:"validRecords"`
	RowErrors    []string `json:"rowErrors"`
}

// Normalizer turns raw spreadsheet rows into candidate records.
type Normalizer struct {
	// PhonePrefix replaces the trunk 0 of local phone numbers, e.g. "+598".
	PhonePrefix string
}

// Normalize reads rows[0] as headers and every following row as data.
func (n Normalizer) Normalize(rows [][]string) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrEmptyHeader
	}
	headers := make([]string, len(rows[0]))
	named := 0
	for i, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		headers[i] = fieldmap.Canonical(h)
		named++
	}
	if named == 0 {
		return Result{}, ErrEmptyHeader
	}

	res := Result{ValidRecords: []Record{}, RowErrors: []string{}}
	for idx, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rec := Record{}
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			set(rec, headers[i], cell)
		}
		// idx 0 is the second spreadsheet row
		n.accept(&res, rec, idx+2)
	}
	return res, nil
}

// NormalizeObjects handles records the client already parsed into objects
// keyed by their original headers.
func (n Normalizer) NormalizeObjects(objs []map[string]any) Result {
	res := Result{ValidRecords: []Record{}, RowErrors: []string{}}
	for idx, obj := range objs {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		rec := Record{}
		blank := true
		for _, k := range keys {
			header := strings.TrimSpace(k)
			if header == "" {
				continue
			}
			v := stringify(obj[k])
			if strings.TrimSpace(v) != "" {
				blank = false
			}
			set(rec, fieldmap.Canonical(header), v)
		}
		if blank {
			continue
		}
		n.accept(&res, rec, idx+1)
	}
	return res
}

func (n Normalizer) accept(res *Result, rec Record, rowNumber int) {
	deriveName(rec)
	deriveAddress(rec)
	if p := rec[fieldmap.Phone]; p != "" {
		rec[fieldmap.Phone] = NormalizePhone(p, n.PhonePrefix)
	}
	if rec[fieldmap.FirstName] == "" && rec[fieldmap.LastName] == "" {
		res.RowErrors = append(res.RowErrors, fmt.Sprintf("row %d: missing first or last name", rowNumber))
		return
	}
	res.ValidRecords = append(res.ValidRecords, rec)
}

// set keeps the first non-empty value when two columns map to the same field.
func set(rec Record, field, raw string) {
	v := strings.TrimSpace(raw)
	if existing, ok := rec[field]; ok && existing != "" {
		return
	}
	rec[field] = v
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func deriveName(rec Record) {
	full := strings.TrimSpace(rec[fieldmap.Name])
	if full == "" || rec[fieldmap.FirstName] != "" || rec[fieldmap.LastName] != "" {
		return
	}
	first, last := SplitName(full)
	rec[fieldmap.FirstName] = first
	rec[fieldmap.LastName] = last
}

func deriveAddress(rec Record) {
	addr := strings.TrimSpace(rec[fieldmap.Address])
	if addr == "" || rec[fieldmap.Street] != "" || rec[fieldmap.City] != "" || rec[fieldmap.Province] != "" {
		return
	}
	street, city, province := SplitAddress(addr)
	rec[fieldmap.Street] = street
	rec[fieldmap.City] = city
	rec[fieldmap.Province] = province
}

// SplitName takes the first word as first name and the rest as last name.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// SplitAddress splits "street, city, province" free text. With more than
// three parts the leading ones stay in street; with fewer, city and province
// stay empty from the right.
func SplitAddress(addr string) (street, city, province string) {
	var parts []string
	for _, p := range strings.Split(addr, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], parts[1], ""
	default:
		n := len(parts)
		return strings.Join(parts[:n-2], ", "), parts[n-2], parts[n-1]
	}
}

// NormalizePhone strips punctuation and puts numbers in international form:
// "00" becomes "+" and a leading trunk 0 is replaced by prefix when set.
func NormalizePhone(raw, prefix string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	plus := strings.HasPrefix(raw, "+")
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case digits == "":
		return raw
	case plus:
		return "+" + digits
	case strings.HasPrefix(digits, "00"):
		return "+" + digits[2:]
	case prefix != "" && strings.HasPrefix(digits, "0"):
		return prefix + digits[1:]
	default:
		return digits
	}
}
