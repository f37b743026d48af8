package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlibelula/movie-api/internal/apperr"
)

type sampleInput struct {
	Title       string  `json:"title" binding:"required,max=10"`
	ReleaseDate string  `json:"release_date" binding:"required,datetime=2006-01-02"`
	GenreID     uint    `json:"genre_id" binding:"required"`
	Note        *string `json:"note" binding:"omitnil,min=1"`
}

func bind(t *testing.T, body string) (sampleInput, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var in sampleInput
	err := BindJSON(c, &in)
	return in, err
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	require.Error(t, err)
	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, apperr.KindValidation, e.Kind)
	return e.Fields
}

func TestBindJSONValid(t *testing.T) {
	in, err := bind(t, `{"title":"Heat","release_date":"1995-12-15","genre_id":2}`)

	require.NoError(t, err)
	assert.Equal(t, "Heat", in.Title)
	assert.Equal(t, uint(2), in.GenreID)
	assert.Nil(t, in.Note)
}

func TestBindJSONMissingFields(t *testing.T) {
	_, err := bind(t, `{}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The title field is required."}, fields["title"])
	assert.Equal(t, []string{"The release date field is required."}, fields["release_date"])
	assert.Equal(t, []string{"The genre id field is required."}, fields["genre_id"])
}

func TestBindJSONEmptyBodyReportsEachField(t *testing.T) {
	_, err := bind(t, ``)

	fields := fieldsOf(t, err)
	assert.Len(t, fields, 3)
}

func TestBindJSONRules(t *testing.T) {
	_, err := bind(t, `{"title":"A very long title","release_date":"2023-02-30","genre_id":1,"note":""}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The title field must not be greater than 10 characters."}, fields["title"])
	assert.Equal(t, []string{"The release date field must be a valid date."}, fields["release_date"])
	assert.Equal(t, []string{"The note field must not be empty."}, fields["note"])
}

func TestBindJSONWrongType(t *testing.T) {
	_, err := bind(t, `{"title":123,"release_date":"2023-01-01","genre_id":1}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The title field must be a string."}, fields["title"])
}

func TestBindJSONUnknownField(t *testing.T) {
	_, err := bind(t, `{"title":"Heat","release_date":"1995-12-15","genre_id":1,"id":99}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The id field is not allowed."}, fields["id"])
}

func TestBindJSONMalformed(t *testing.T) {
	_, err := bind(t, `{"title":`)

	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "body")
}

func TestBindJSONWrongTypeReportsEveryField(t *testing.T) {
	_, err := bind(t, `{"title":"","release_date":"not-a-date","genre_id":"not-a-number"}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The title field is required."}, fields["title"])
	assert.Equal(t, []string{"The release date field must be a valid date."}, fields["release_date"])
	assert.Equal(t, []string{"The genre id field must be an integer."}, fields["genre_id"])
	assert.Len(t, fields, 3)
}

func TestBindJSONUnknownFieldReportsEveryField(t *testing.T) {
	in, err := bind(t, `{"id":99,"title":"Heat","note":5}`)

	fields := fieldsOf(t, err)
	assert.Equal(t, []string{"The id field is not allowed."}, fields["id"])
	assert.Equal(t, []string{"The note field must be a string."}, fields["note"])
	assert.Equal(t, []string{"The release date field is required."}, fields["release_date"])
	assert.Equal(t, []string{"The genre id field is required."}, fields["genre_id"])
	assert.NotContains(t, fields, "title")
	assert.Equal(t, "Heat", in.Title)
}
