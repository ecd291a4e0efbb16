package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestCountriesSafety_Advisory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "Atlantis") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{
			"name":{"common":"France"},
			"region":"Europe",
			"capital":["Paris"],
			"currencies":{"EUR":{"name":"Euro"}},
			"languages":{"fra":"French"}
		}]`))
	}))
	defer server.Close()

	provider := NewRestCountriesSafety(WithSafetyBaseURL(server.URL))
	ctx := context.Background()

	t.Run("known country", func(t *testing.T) {
		info, err := provider.Advisory(ctx, "France")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "France", info.Country)
		assert.Equal(t, "Europe", info.Region)
		assert.Equal(t, "Paris", info.Capital)
		assert.Equal(t, "EUR", info.Currency)
		assert.ElementsMatch(t, []string{"French"}, info.Languages)
		assert.NotEmpty(t, info.Tips)
	})

	t.Run("unknown destination is absent, not an error", func(t *testing.T) {
		info, err := provider.Advisory(ctx, "Atlantis")
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("empty destination is absent", func(t *testing.T) {
		info, err := provider.Advisory(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, info)
	})
}

func TestRestCountriesSafety_UpstreamFailure(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	provider := NewRestCountriesSafety(WithSafetyBaseURL(broken.URL))
	_, err := provider.Advisory(context.Background(), "France")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}
