package repositories

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/icar-directory/backend/internal/models"
)

type colKind int

const (
	colText colKind = iota
	colReal
	colBool
	colJSON
)

type column struct {
	name string
	kind colKind
}

type entityTable struct {
	name    string
	columns []column
}

var stakeholderTable = entityTable{
	name: "stakeholders",
	columns: []column{
		{"name", colText},
		{"type", colText},
		{"focus", colJSON},
		{"location", colText},
		{"lat", colReal},
		{"lng", colReal},
		{"status", colText},
		{"description", colText},
		{"contact", colText},
		{"email", colText},
		{"budget", colReal},
		{"collaboration_needs", colText},
		{"national_imperatives", colJSON},
		{"contact_setting", colText},
	},
}

var projectTable = entityTable{
	name: "projects",
	columns: []column{
		{"title", colText},
		{"organization_id", colText},
		{"organization_name", colText},
		{"description", colText},
		{"status", colText},
		{"focus_areas", colJSON},
		{"location", colText},
		{"lat", colReal},
		{"lng", colReal},
		{"start_date", colText},
		{"end_date", colText},
		{"collaboration_needs", colText},
		{"budget", colReal},
		{"kpis", colJSON},
		{"featured", colBool},
		{"expiry_date", colText},
	},
}

func tableFor(entityType models.EntityType) (entityTable, error) {
	switch entityType {
	case models.EntityStakeholder:
		return stakeholderTable, nil
	case models.EntityProject:
		return projectTable, nil
	}
	return entityTable{}, fmt.Errorf("unknown entity type %q", entityType)
}

func (t entityTable) column(name string) (column, bool) {
	for _, c := range t.columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

// dialect hides the placeholder and JSON-column differences between drivers.
type dialect struct {
	placeholder func(n int) string
	jsonSelect  func(col string) string
	jsonArg     func(raw []byte) any
}

var postgresDialect = dialect{
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	jsonSelect:  func(col string) string { return col + "::text" },
	jsonArg:     func(raw []byte) any { return raw },
}

var sqliteDialect = dialect{
	placeholder: func(int) string { return "?" },
	jsonSelect:  func(col string) string { return col },
	jsonArg:     func(raw []byte) any { return string(raw) },
}

func (t entityTable) selectSQL(d dialect, where string) string {
	cols := make([]string, 0, len(t.columns)+1)
	cols = append(cols, "id")
	for _, c := range t.columns {
		if c.kind == colJSON {
			cols = append(cols, d.jsonSelect(c.name))
			continue
		}
		cols = append(cols, c.name)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), t.name)
	if where != "" {
		q += " WHERE " + where
	}
	return q + " ORDER BY id"
}

// scanTargets returns fresh holders for one row: id first, then every column.
func (t entityTable) scanTargets() []any {
	targets := make([]any, 0, len(t.columns)+1)
	targets = append(targets, new(string))
	for _, c := range t.columns {
		switch c.kind {
		case colReal:
			targets = append(targets, new(*float64))
		case colBool:
			targets = append(targets, new(*bool))
		default:
			targets = append(targets, new(*string))
		}
	}
	return targets
}

// decode turns scanned holders into the record's id and field snapshot. NULL
// columns are present with a nil value.
func (t entityTable) decode(targets []any) (string, models.Fields, error) {
	id := *targets[0].(*string)
	fields := make(models.Fields, len(t.columns))
	for i, c := range t.columns {
		holder := targets[i+1]
		switch c.kind {
		case colReal:
			if v := *holder.(**float64); v != nil {
				fields[c.name] = *v
			} else {
				fields[c.name] = nil
			}
		case colBool:
			if v := *holder.(**bool); v != nil {
				fields[c.name] = *v
			} else {
				fields[c.name] = nil
			}
		case colJSON:
			v := *holder.(**string)
			if v == nil || *v == "" {
				fields[c.name] = nil
				continue
			}
			var decoded any
			if err := json.Unmarshal([]byte(*v), &decoded); err != nil {
				return "", nil, fmt.Errorf("decode %s.%s: %w", t.name, c.name, err)
			}
			fields[c.name] = decoded
		default:
			if v := *holder.(**string); v != nil {
				fields[c.name] = *v
			} else {
				fields[c.name] = nil
			}
		}
	}
	return id, fields, nil
}

// updateSQL builds a partial UPDATE touching only the supplied fields, the way
// the directory's COALESCE updates leave untouched columns as they are.
func (t entityTable) updateSQL(d dialect, id string, fields models.Fields) (string, []any, error) {
	names := fields.Keys()
	sort.Strings(names)

	sets := make([]string, 0, len(names))
	args := make([]any, 0, len(names)+1)
	for _, name := range names {
		c, ok := t.column(name)
		if !ok {
			return "", nil, fmt.Errorf("unknown %s column %q", t.name, name)
		}
		arg, err := encodeArg(d, c, fields[name])
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = %s", c.name, d.placeholder(len(args))))
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", t.name, strings.Join(sets, ", "), d.placeholder(len(args)))
	return q, args, nil
}

func (t entityTable) insertSQL(d dialect, id string, fields models.Fields) (string, []any, error) {
	names := fields.Keys()
	sort.Strings(names)

	cols := []string{"id"}
	marks := []string{d.placeholder(1)}
	args := []any{id}
	for _, name := range names {
		c, ok := t.column(name)
		if !ok {
			return "", nil, fmt.Errorf("unknown %s column %q", t.name, name)
		}
		arg, err := encodeArg(d, c, fields[name])
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		cols = append(cols, c.name)
		marks = append(marks, d.placeholder(len(args)))
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return q, args, nil
}

func encodeArg(d dialect, c column, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if c.kind != colJSON {
		return v, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return d.jsonArg(raw), nil
}
