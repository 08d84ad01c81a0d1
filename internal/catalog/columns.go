// Package catalog implements the tabular normalization and hierarchy
// enrichment pipeline for automotive parts catalogs.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/Veraticus/autoparts-catalog/internal/common"
	"github.com/Veraticus/autoparts-catalog/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical field names.
const (
	FieldBrand       = "marca"
	FieldModel       = "modelo"
	FieldPart        = "pieza"
	FieldPrice       = "precio"
	FieldCode        = "codigo"
	FieldDescription = "descripcion"
	FieldDetail      = "detalle"
	FieldGlass       = "cristal"
	FieldPosition    = "posicion"
	FieldSide        = "lado"
)

// AliasMap maps a normalized raw header (trimmed, uppercased) to a
// canonical field name (trimmed, lowercased).
type AliasMap map[string]string

// DefaultAliases returns a fresh copy of the built-in alias table.
func DefaultAliases() AliasMap {
	return AliasMap{
		"MARCA":       FieldBrand,
		"MODELO":      FieldModel,
		"MODELO/ANIO": FieldModel,
		"MODELO/AÑO":  FieldModel,
		"PIEZA":       FieldPart,
		"DESCRIPCION": FieldPart,
		"DESCRIPCIÓN": FieldPart,
		"COD":         FieldCode,
		"CODIGO":      FieldCode,
		"CÓDIGO":      FieldCode,
		"PRECIO":      FieldPrice,
		"PVP":         FieldPrice,
		"DIMENSION":   "dimensiones",
		"DIMENSIONES": "dimensiones",
		"COLOR":       "color",
		"DEGRADE":     "degrade",
		"DEGRADÉ":     "degrade",
	}
}

// LoadAliases decodes a user alias map. Two shapes are accepted: a flat
// object of raw header to canonical name, or a grouped object of
// canonical name to a list of raw header variants.
func LoadAliases(r io.Reader) (AliasMap, error) {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMappingMalformed, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", common.ErrMappingMalformed)
	}

	out := make(AliasMap, len(raw))
	for key, msg := range raw {
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			if err := out.add(key, single); err != nil {
				return nil, err
			}
			continue
		}

		var variants []string
		if err := json.Unmarshal(msg, &variants); err != nil {
			return nil, fmt.Errorf("%w: value for %q must be a string or a list of strings", common.ErrMappingMalformed, key)
		}
		for _, variant := range variants {
			if err := out.add(variant, key); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (m AliasMap) add(header, canonical string) error {
	k := headerKey(header)
	v := strings.ToLower(strings.TrimSpace(canonical))
	if k == "" || v == "" {
		return fmt.Errorf("%w: empty alias entry %q -> %q", common.ErrMappingMalformed, header, canonical)
	}
	m[k] = v
	return nil
}

// LoadAliasFile reads a user alias map from disk.
func LoadAliasFile(path string) (AliasMap, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied mapping path
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrMappingMalformed, err)
	}
	defer func() { _ = f.Close() }()

	aliases, err := LoadAliases(f)
	if err != nil {
		return nil, fmt.Errorf("mapping %s: %w", path, err)
	}
	return aliases, nil
}

// MergeAliases overlays user on defaults. User entries win.
func MergeAliases(defaults, user AliasMap) AliasMap {
	out := make(AliasMap, len(defaults)+len(user))
	for k, v := range defaults {
		out[headerKey(k)] = v
	}
	for k, v := range user {
		out[headerKey(k)] = v
	}
	return out
}

// Canonical resolves a raw header. Unknown headers pass through lowercased.
func (m AliasMap) Canonical(raw string) string {
	key := headerKey(raw)
	if c, ok := m[key]; ok {
		return c
	}

	folded := foldAccents(key)
	// Sorted so that two keys folding alike resolve deterministically.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if foldAccents(k) == folded {
			return m[k]
		}
	}

	return strings.ToLower(strings.TrimSpace(raw))
}

// Entries returns the map sorted by raw header.
func (m AliasMap) Entries() [][2]string {
	out := make([][2]string, 0, len(m))
	for k, v := range m {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func headerKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CollisionPolicy decides what happens when two raw headers of one table
// resolve to the same canonical name.
type CollisionPolicy string

// Collision policies.
const (
	CollisionOverwrite CollisionPolicy = "overwrite"
	CollisionWarn      CollisionPolicy = "warn"
	CollisionError     CollisionPolicy = "error"
)

// ParseCollisionPolicy validates a policy name. Empty means overwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CollisionOverwrite, nil
	case CollisionOverwrite, CollisionWarn, CollisionError:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown collision policy %q", common.ErrInvalidConfig, s)
	}
}

// ColumnNormalizer renames raw headers to canonical field names.
type ColumnNormalizer struct {
	Logger  *slog.Logger
	Aliases AliasMap
	Policy  CollisionPolicy
}

// Normalize returns a copy of t with canonical columns. When two raw
// headers collide, the canonical column keeps the position of its first
// occurrence and the later column's cells win.
func (n ColumnNormalizer) Normalize(t model.Table) (model.Table, error) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	canon := make([]string, len(t.Columns))
	seen := make(map[string]string, len(t.Columns))
	out := model.Table{Columns: make([]string, 0, len(t.Columns))}

	for i, raw := range t.Columns {
		c := n.Aliases.Canonical(raw)
		canon[i] = c

		if first, dup := seen[c]; dup {
			switch n.Policy {
			case CollisionError:
				return model.Table{}, fmt.Errorf("%w: %q and %q both map to %q", common.ErrHeaderCollision, first, raw, c)
			case CollisionWarn:
				logger.Warn("Header collision, later column wins",
					"canonical", c, "first", first, "later", raw)
			default:
				logger.Debug("Header collision", "canonical", c, "first", first, "later", raw)
			}
			continue
		}
		seen[c] = raw
		out.Columns = append(out.Columns, c)
	}

	out.Rows = make([]model.Row, len(t.Rows))
	for r, row := range t.Rows {
		nr := make(model.Row, len(out.Columns))
		for i, raw := range t.Columns {
			nr[canon[i]] = row.Get(raw)
		}
		out.Rows[r] = nr
	}
	return out, nil
}
