package vault

import (
	"fmt"
	"slices"
	"strings"

	"github.com/hengadev/errsx"
)

// Vault is an ordered list of account records. It is never modified in
// place: every mutation returns a new Vault, so a caller can hold on to the
// previous one until the new state has been persisted.
type Vault struct {
	records []Record
}

// New returns a vault holding a copy of records.
func New(records ...Record) *Vault {
	return &Vault{records: slices.Clone(records)}
}

// Load parses the persisted line format. Lines without a comma are skipped.
// Files written before names had to be unique may repeat a name; every
// repeat after the first is renamed "name (2)", "name (3)" and so on so
// that each record stays addressable.
func Load(text string) *Vault {
	v, _ := load(text)
	return v
}

// load is Load that also reports the names it had to change.
func load(text string) (*Vault, []string) {
	v := &Vault{}
	seen := make(map[string]bool)
	var renamed []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		name, secret, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if seen[name] {
			renamed = append(renamed, name)
			name = uniqueName(name, seen)
		}
		seen[name] = true
		v.records = append(v.records, Record{
			Name:   name,
			Secret: strings.TrimSpace(secret),
		})
	}
	return v, renamed
}

func uniqueName(name string, taken map[string]bool) string {
	for n := 2; ; n++ {
		candidate := strings.TrimSpace(fmt.Sprintf("%s (%d)", name, n))
		if !taken[candidate] {
			return candidate
		}
	}
}

// Serialize renders one "name,secret" line per record, in order.
func (v *Vault) Serialize() string {
	lines := make([]string, len(v.records))
	for i, r := range v.records {
		lines[i] = r.Name + "," + r.Secret
	}
	return strings.Join(lines, "\n")
}

func (v *Vault) Len() int { return len(v.records) }

// Records returns a copy of the records in order.
func (v *Vault) Records() []Record { return slices.Clone(v.records) }

func (v *Vault) Names() []string {
	names := make([]string, len(v.records))
	for i, r := range v.records {
		names[i] = r.Name
	}
	return names
}

// Index returns the position of name, or -1.
func (v *Vault) Index(name string) int {
	return slices.IndexFunc(v.records, func(r Record) bool { return r.Name == name })
}

func (v *Vault) Has(name string) bool { return v.Index(name) >= 0 }

func (v *Vault) Get(name string) (Record, bool) {
	i := v.Index(name)
	if i < 0 {
		return Record{}, false
	}
	return v.records[i], true
}

// Create appends a new record. A non-empty plaintext is encrypted under
// password; an empty plaintext creates a record with no secret.
func (v *Vault) Create(name, plaintext, password string) (*Vault, error) {
	var errs errsx.Map
	if err := v.checkName(name, -1); err != nil {
		errs.Set("name", err)
	}
	if plaintext != "" && password == "" {
		errs.Set("password", ErrPasswordRequired)
	}
	if err := validationError(errs); err != nil {
		return nil, err
	}

	rec := Record{Name: name}
	if plaintext != "" {
		enc, err := Encode(plaintext, password)
		if err != nil {
			return nil, err
		}
		rec.Secret = enc
	}

	next := v.clone()
	next.records = append(next.records, rec)
	return next, nil
}

// Update renames oldName to newName and, when plaintext is non-empty,
// replaces its secret. An empty plaintext keeps the stored secret.
func (v *Vault) Update(oldName, newName, plaintext, password string) (*Vault, error) {
	i := v.Index(oldName)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, oldName)
	}

	var errs errsx.Map
	if err := v.checkName(newName, i); err != nil {
		errs.Set("name", err)
	}
	if plaintext != "" && password == "" {
		errs.Set("password", ErrPasswordRequired)
	}
	if err := validationError(errs); err != nil {
		return nil, err
	}

	rec := Record{Name: newName, Secret: v.records[i].Secret}
	if plaintext != "" {
		enc, err := Encode(plaintext, password)
		if err != nil {
			return nil, err
		}
		rec.Secret = enc
	}

	next := v.clone()
	next.records[i] = rec
	return next, nil
}

// Remove drops the record called name. Absent names are ignored.
func (v *Vault) Remove(name string) *Vault {
	next := v.clone()
	if i := v.Index(name); i >= 0 {
		next.records = slices.Delete(next.records, i, i+1)
	}
	return next
}

// Reorder moves the record at from to position to, shifting the records in
// between.
func (v *Vault) Reorder(from, to int) (*Vault, error) {
	n := len(v.records)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d to %d with %d records", ErrOutOfRange, from, to, n)
	}
	next := v.clone()
	if from == to {
		return next, nil
	}
	rec := next.records[from]
	next.records = slices.Delete(next.records, from, from+1)
	next.records = slices.Insert(next.records, to, rec)
	return next, nil
}

// Reveal decrypts the secret stored for name.
func (v *Vault) Reveal(name, password string) (string, error) {
	rec, ok := v.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if !rec.HasSecret() {
		return "", fmt.Errorf("%w: %q", ErrNoSecret, name)
	}
	return Decode(rec.Secret, password)
}

// checkName validates name for the record at position self (-1 for a new
// record).
func (v *Vault) checkName(name string, self int) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, ",\r\n") || name != strings.TrimSpace(name) {
		return ErrInvalidName
	}
	if i := v.Index(name); i >= 0 && i != self {
		return ErrDuplicateName
	}
	return nil
}

func (v *Vault) clone() *Vault {
	return &Vault{records: slices.Clone(v.records)}
}
