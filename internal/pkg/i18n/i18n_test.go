package i18n

import (
	"encoding/json"
	"sort"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslator_T(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		lang   string
		id     string
		data   map[string]any
		expect string
	}{
		{
			name:   "english sms text",
			lang:   "en",
			id:     "sms_auth_text",
			data:   map[string]any{"Code": "004217", "Minutes": 5},
			expect: "Your SMS code is 004217 and is valid for 5 minutes.",
		},
		{
			name:   "german from accept-language list",
			lang:   "de-DE,de;q=0.9,en;q=0.8",
			id:     "otp_expired",
			expect: "Der Code ist abgelaufen",
		},
		{
			name:   "indonesian",
			lang:   "id",
			id:     "otp_invalid",
			expect: "Kode OTP tidak valid",
		},
		{
			name:   "unsupported language falls back to english",
			lang:   "ja",
			id:     "otp_no_session",
			expect: "No OTP session found",
		},
		{
			name:   "empty header",
			lang:   "",
			id:     "sign_in",
			expect: "Sign in",
		},
		{
			name:   "unknown id",
			lang:   "en",
			id:     "does_not_exist",
			expect: "does_not_exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got := tr.T(tt.lang, tt.id, tt.data)

			// Assert
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestLocalizer(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	l := tr.Localizer("id")

	assert.Equal(t, "Masuk", l.T("sign_in"))
	assert.Equal(t, "Anda masuk sebagai budi.", l.TData("signed_in", map[string]any{"Username": "budi"}))
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	keysOf := func(name string) []string {
		raw, err := localeFS.ReadFile("locales/" + name)
		require.NoError(t, err)

		var m map[string]string
		require.NoError(t, json.Unmarshal(raw, &m))

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return keys
	}

	en := keysOf("en.json")
	for _, name := range []string{"de.json", "id.json"} {
		assert.Equal(t, en, keysOf(name), name)
	}
}

func TestNewFromFS(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		fsys := fstest.MapFS{"locales/README.md": {Data: []byte("x")}}

		_, err := NewFromFS(fsys, "locales")

		assert.ErrorIs(t, err, ErrNoCatalog)
	})

	t.Run("broken file", func(t *testing.T) {
		fsys := fstest.MapFS{"locales/en.json": {Data: []byte("{")}}

		_, err := NewFromFS(fsys, "locales")

		assert.Error(t, err)
	})

	t.Run("missing dir", func(t *testing.T) {
		_, err := NewFromFS(fstest.MapFS{}, "locales")

		assert.Error(t, err)
	})

	t.Run("languages", func(t *testing.T) {
		tr, err := New()
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"en", "de", "id"}, tr.Languages())
	})
}
