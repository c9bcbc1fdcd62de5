package shared

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name"  validate:"required"`
	Count int    `json:"count" validate:"gte=0"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"valid", `{"name":"a","count":1}`, nil},
		{"empty", ``, ErrEmptyBody},
		{"malformed", `{"name":`, ErrInvalidBody},
		{"unknown field", `{"name":"a","extra":true}`, ErrInvalidBody},
		{"wrong type", `{"name":1}`, ErrInvalidBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sampleRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &v)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "a", v.Name)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&sampleRequest{Name: "a"}))
	assert.Error(t, ValidateRequest(&sampleRequest{}))
	assert.Error(t, ValidateRequest(&sampleRequest{Name: "a", Count: -1}))
}

func TestUserIDContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)

	id := uuid.New()
	got, ok := UserIDFromContext(WithUserID(req.Context(), id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = UserIDFromContext(WithUserID(req.Context(), uuid.Nil))
	assert.False(t, ok)
}

func TestTraceIDs(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetTraceID(req.Context()))

	a := GetTraceID(SetTraceID(req.Context()))
	b := GetTraceID(SetTraceID(req.Context()))
	assert.Len(t, a, 2*TraceIDLength)
	assert.NotEqual(t, a, b)
}
