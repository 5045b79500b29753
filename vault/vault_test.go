package vault

import (
	"errors"
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleVault() *Vault {
	return New(
		Record{Name: "github", Secret: "aa:bb:cc"},
		Record{Name: "mail"},
		Record{Name: "bank", Secret: "dd:ee:ff"},
	)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Record
	}{
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "blank lines only",
			text: "\n\n  \n",
			want: nil,
		},
		{
			name: "records in order",
			text: "github,aa:bb:cc\nmail,\nbank,dd:ee:ff\n",
			want: []Record{
				{Name: "github", Secret: "aa:bb:cc"},
				{Name: "mail"},
				{Name: "bank", Secret: "dd:ee:ff"},
			},
		},
		{
			name: "malformed lines skipped",
			text: "no comma here\ngithub,aa:bb:cc\njunk",
			want: []Record{{Name: "github", Secret: "aa:bb:cc"}},
		},
		{
			name: "split on first comma only",
			text: "site,with,commas",
			want: []Record{{Name: "site", Secret: "with,commas"}},
		},
		{
			name: "whitespace and CRLF trimmed",
			text: "  github , aa:bb:cc \r\nmail,\r\n",
			want: []Record{
				{Name: "github", Secret: "aa:bb:cc"},
				{Name: "mail"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Load(tt.text).Records())
		})
	}
}

func TestLoad_DuplicateNamesRenamed(t *testing.T) {
	v, renamed := load("github,aa:bb:cc\nmail,\ngithub,dd:ee:ff\ngithub (2),\ngithub,")

	assert.Equal(t, []string{"github", "mail", "github (2)", "github (2) (2)", "github (3)"}, v.Names())
	assert.Equal(t, []string{"github", "github (2)", "github"}, renamed)

	rec, ok := v.Get("github (2)")
	require.True(t, ok)
	assert.Equal(t, "dd:ee:ff", rec.Secret, "the renamed record keeps its own secret")

	next := v.Remove("github (2)")
	assert.Equal(t, []string{"github", "mail", "github (2) (2)", "github (3)"}, next.Names())

	assert.Equal(t, v.Records(), Load(v.Serialize()).Records())
}

func TestSerialize(t *testing.T) {
	assert.Equal(t, "github,aa:bb:cc\nmail,\nbank,dd:ee:ff", sampleVault().Serialize())
	assert.Equal(t, "", New().Serialize())
}

func TestSerialize_RoundTrip(t *testing.T) {
	texts := []string{
		"",
		"github,aa:bb:cc\nmail,\nbank,dd:ee:ff",
		"garbage\n a , b \n\nc,d,e\r\n",
	}
	for _, text := range texts {
		once := Load(text)
		twice := Load(once.Serialize())
		assert.Equal(t, once.Records(), twice.Records(), "text %q", text)
	}
}

func TestCreate(t *testing.T) {
	v := New()

	v1, err := v.Create("github", "hunter2", "pw")
	require.NoError(t, err)
	require.Equal(t, 1, v1.Len())
	assert.Zero(t, v.Len(), "receiver must not change")

	v2, err := v1.Create("mail", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"github", "mail"}, v2.Names())

	rec, ok := v2.Get("mail")
	require.True(t, ok)
	assert.False(t, rec.HasSecret())

	got, err := v2.Reveal("github", "pw")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestCreate_Validation(t *testing.T) {
	v := sampleVault()

	tests := []struct {
		name      string
		recName   string
		plaintext string
		password  string
		wantKeys  map[string]error
	}{
		{
			name:     "empty name",
			recName:  "",
			wantKeys: map[string]error{"name": ErrEmptyName},
		},
		{
			name:     "duplicate",
			recName:  "github",
			wantKeys: map[string]error{"name": ErrDuplicateName},
		},
		{
			name:     "comma in name",
			recName:  "a,b",
			wantKeys: map[string]error{"name": ErrInvalidName},
		},
		{
			name:     "surrounding spaces",
			recName:  " padded ",
			wantKeys: map[string]error{"name": ErrInvalidName},
		},
		{
			name:      "secret without password",
			recName:   "new",
			plaintext: "secret",
			wantKeys:  map[string]error{"password": ErrPasswordRequired},
		},
		{
			name:      "everything wrong",
			recName:   "github",
			plaintext: "secret",
			wantKeys: map[string]error{
				"name":     ErrDuplicateName,
				"password": ErrPasswordRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := v.Create(tt.recName, tt.plaintext, tt.password)
			require.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, next)

			var fields errsx.Map
			require.True(t, errors.As(err, &fields))
			assert.Len(t, fields, len(tt.wantKeys))
			for key, want := range tt.wantKeys {
				assert.ErrorIs(t, fields[key], want, "field %s", key)
			}
		})
	}

	assert.Equal(t, sampleVault().Records(), v.Records(), "vault changed after rejected create")
}

func TestCreate_DuplicateTwice(t *testing.T) {
	v, err := New().Create("A", "", "")
	require.NoError(t, err)

	_, err = v.Create("A", "", "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, []string{"A"}, v.Names())
}

func TestCreate_CaseSensitive(t *testing.T) {
	v, err := New().Create("A", "", "")
	require.NoError(t, err)

	v, err = v.Create("a", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "a"}, v.Names())
}

func TestUpdate(t *testing.T) {
	v := sampleVault()

	t.Run("rename keeps secret and position", func(t *testing.T) {
		next, err := v.Update("mail", "email", "", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"github", "email", "bank"}, next.Names())

		rec, _ := next.Get("email")
		assert.False(t, rec.HasSecret())

		rec, _ = next.Get("github")
		assert.Equal(t, "aa:bb:cc", rec.Secret)
	})

	t.Run("same name is allowed", func(t *testing.T) {
		next, err := v.Update("github", "github", "", "")
		require.NoError(t, err)
		assert.Equal(t, v.Records(), next.Records())
	})

	t.Run("new secret is re-encoded", func(t *testing.T) {
		next, err := v.Update("bank", "bank", "s3cret", "pw2")
		require.NoError(t, err)

		rec, _ := next.Get("bank")
		assert.NotEqual(t, "dd:ee:ff", rec.Secret)

		got, err := next.Reveal("bank", "pw2")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", got)
		assert.Equal(t, 2, next.Index("bank"))
	})

	t.Run("collision", func(t *testing.T) {
		_, err := v.Update("mail", "github", "", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("secret without password", func(t *testing.T) {
		_, err := v.Update("mail", "mail", "secret", "")
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := v.Update("nope", "nope", "", "")
		require.ErrorIs(t, err, ErrNotFound)
	})

	assert.Equal(t, sampleVault().Records(), v.Records())
}

func TestRemove(t *testing.T) {
	v := sampleVault()

	next := v.Remove("mail")
	assert.Equal(t, []string{"github", "bank"}, next.Names())
	assert.False(t, next.Has("mail"))
	assert.Equal(t, 3, v.Len())

	same := v.Remove("absent")
	assert.Equal(t, v.Records(), same.Records())
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"first to last", 0, 2, []string{"mail", "bank", "github"}},
		{"last to first", 2, 0, []string{"bank", "github", "mail"}},
		{"adjacent down", 0, 1, []string{"mail", "github", "bank"}},
		{"no-op", 1, 1, []string{"github", "mail", "bank"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := sampleVault()
			next, err := v.Reorder(tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Names())
			assert.ElementsMatch(t, v.Records(), next.Records())
		})
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	v := sampleVault()
	for _, idx := range [][2]int{{-1, 0}, {0, 3}, {3, 0}, {0, -1}} {
		_, err := v.Reorder(idx[0], idx[1])
		require.ErrorIs(t, err, ErrOutOfRange, "from %d to %d", idx[0], idx[1])
	}

	_, err := New().Reorder(0, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestReveal(t *testing.T) {
	v, err := New().Create("github", "hunter2", "pw")
	require.NoError(t, err)
	v, err = v.Create("mail", "", "")
	require.NoError(t, err)

	_, err = v.Reveal("nope", "pw")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = v.Reveal("mail", "pw")
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = v.Reveal("github", "wrong")
	require.ErrorIs(t, err, ErrAuthFailed)

	got, err := v.Reveal("github", "pw")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestReveal_FormatErrorSurfaced(t *testing.T) {
	v := New(Record{Name: "legacy", Secret: "aa_bb_cc"})

	_, err := v.Reveal("legacy", "pw")
	require.ErrorIs(t, err, ErrFormat)
}

func TestRecordsIsACopy(t *testing.T) {
	v := sampleVault()
	recs := v.Records()
	recs[0].Name = "changed"
	assert.Equal(t, "github", v.Names()[0])
}
