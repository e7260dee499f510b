package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatchkit/pkg/ledger"
	"github.com/dmitrymomot/dispatchkit/pkg/stats"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c, err := stats.DefaultCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ru"}, c.Languages())

	assert.Equal(t, "Delivered", c.Label("en", ledger.StatusSent))
	assert.Equal(t, "Прочитано", c.Label("ru", ledger.StatusRead))
	assert.Equal(t, "Not delivered", c.Label("de", ledger.StatusNotSent), "unknown language falls back")
	assert.Equal(t, "archived", c.Label("en", ledger.Status("archived")))
}

func TestCatalog_Match(t *testing.T) {
	t.Parallel()

	c, err := stats.DefaultCatalog()
	require.NoError(t, err)

	tests := []struct {
		name  string
		prefs []string
		want  string
	}{
		{"no preference", nil, "en"},
		{"plain tag", []string{"ru"}, "ru"},
		{"regional tag", []string{"ru-RU"}, "ru"},
		{"accept-language", []string{"de-DE,ru;q=0.8,en;q=0.5"}, "ru"},
		{"unsupported", []string{"ja"}, "en"},
		{"first preference wins", []string{"en", "ru"}, "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Match(tt.prefs...))
		})
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		yaml     string
		fallback string
	}{
		{"not yaml", "en: [unclosed", "en"},
		{"missing fallback", "ru:\n  not_sent: a\n  sent: b\n  read: c\n", "en"},
		{"missing status", "en:\n  not_sent: a\n  sent: b\n", "en"},
		{"bad tag", "en:\n  not_sent: a\n  sent: b\n  read: c\n'!!':\n  not_sent: a\n  sent: b\n  read: c\n", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := stats.ParseCatalog([]byte(tt.yaml), tt.fallback)
			assert.ErrorIs(t, err, stats.ErrInvalidCatalog)
		})
	}
}
