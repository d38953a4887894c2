package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/mvalderrama/tillpoint/pkg/errors"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
}

func decodeRequest(t *testing.T, body string) error {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest samplePayload
	return DecodeJSONBody(req, &dest)
}

func TestDecodeJSONBody(t *testing.T) {
	require.NoError(t, decodeRequest(t, `{"name":"Ear Buds","quantity":2}`))
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	err := decodeRequest(t, `{"name":"Ear Buds","quantity":2,"extra":true}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecodeJSONBodyRejectsMalformedJSON(t *testing.T) {
	err := decodeRequest(t, `{"name":`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecodeJSONBodyReportsFieldsByJSONTag(t *testing.T) {
	err := decodeRequest(t, `{"quantity":0}`)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "expected field details, got %T", typed.Details())
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "quantity")
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	value, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, value)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	value, err = ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, value)

	req = httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	_, err = ParseQueryInt(req, "limit", 25, 1, 100)
	require.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err = ParseQueryInt(req, "limit", 25, 1, 100)
	require.Error(t, err)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Ear Buds", SanitizeString("  Ear Buds  ", 0))
	assert.Equal(t, "Ear", SanitizeString("Ear Buds", 3))
	assert.Equal(t, "", SanitizeString("   ", 10))
}
