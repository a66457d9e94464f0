package timezone_test

import (
	"errors"
	"testing"

	"schedly/src-server/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		fellBack bool
	}{
		{"", "UTC", false},
		{"America/Los_Angeles", "America/Los_Angeles", false},
		{"pst", "America/Los_Angeles", false},
		{"EDT", "America/New_York", false},
		{"Mars/Olympus_Mons", "UTC", true},
		{"Local", "UTC", true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			loc, fellBack, err := timezone.Resolve(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, loc.String())
			assert.Equal(t, c.fellBack, fellBack)
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	for _, in := range []string{"../etc/passwd", "America//New_York", "12:00"} {
		_, _, err := timezone.Resolve(in)
		assert.True(t, errors.Is(err, timezone.ErrMalformed), in)
	}
}

func TestAbbreviationsLongestFirst(t *testing.T) {
	abbrs := timezone.Abbreviations()
	require.NotEmpty(t, abbrs)
	for i := 1; i < len(abbrs); i++ {
		assert.GreaterOrEqual(t, len(abbrs[i-1]), len(abbrs[i]))
	}
	name, ok := timezone.Lookup("aest")
	assert.True(t, ok)
	assert.Equal(t, "Australia/Sydney", name)
}
