package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reflaxess123/obedi/pkg/apperror"
	"github.com/reflaxess123/obedi/pkg/logger"
	"github.com/reflaxess123/obedi/pkg/orm"
	"github.com/reflaxess123/obedi/pkg/storage"
)

func TestMain(m *testing.M) {
	logger.Discard()
	m.Run()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFromErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperror.NotFound("Lunch not found"), http.StatusNotFound, "Lunch not found"},
		{apperror.Forbidden("Access denied"), http.StatusForbidden, "Access denied"},
		{apperror.BadRequest("Cannot order from yourself"), http.StatusBadRequest, "Cannot order from yourself"},
		{apperror.Conflict("Email already registered"), http.StatusConflict, "Email already registered"},
		{apperror.Unauthorized("Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{&storage.UploadError{Key: "k", Err: errors.New("s3 down")}, http.StatusInternalServerError, "Upload failed"},
		{errors.New("db exploded"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FromError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err)

		assert.Equal(t, tc.status, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, tc.msg, body["message"])
		assert.EqualValues(t, tc.status, body["status"])
	}
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []int{1, 2}, orm.NewMeta(orm.NewPage(1, 2), 3))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[1,2],"meta":{"currentPage":1,"totalPages":2,"totalCount":3,"perPage":2}}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"email": "The email field is required."})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":400,"message":"Validation failed","errors":{"email":"The email field is required."}}`, rec.Body.String())
}
