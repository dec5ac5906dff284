package confirm

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	confirmed, cancelled int
}

func (o *outcome) yes() { o.confirmed++ }
func (o *outcome) no()  { o.cancelled++ }

func TestAcceptDecline(t *testing.T) {
	t.Parallel()

	var o outcome
	Accept.Confirm(Prompt{}, o.yes, o.no)
	Decline.Confirm(Prompt{}, o.yes, o.no)
	assert.Equal(t, outcome{confirmed: 1, cancelled: 1}, o)

	// nil continuations are tolerated
	Accept.Confirm(Prompt{}, nil, nil)
	Decline.Confirm(Prompt{}, nil, nil)
}

func TestTerminal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  outcome
	}{
		{input: "y\n", want: outcome{confirmed: 1}},
		{input: " YES \n", want: outcome{confirmed: 1}},
		{input: "n\n", want: outcome{cancelled: 1}},
		{input: "\n", want: outcome{cancelled: 1}},
		{input: "", want: outcome{cancelled: 1}},
		{input: "sure\n", want: outcome{cancelled: 1}},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		var o outcome
		Terminal{In: strings.NewReader(tt.input), Out: &out}.Confirm(
			Prompt{Title: "Delete Listing", Message: "Are you sure?"}, o.yes, o.no)

		assert.Equal(t, tt.want, o, "input %q", tt.input)
		assert.Contains(t, out.String(), "Delete Listing")
		assert.Contains(t, out.String(), "[y/N]")
	}
}

func TestRegistry_ResolveRunsOneContinuationOnce(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Minute)
	var o outcome
	req := r.Open(Prompt{Title: "Delete Listing", Message: "sure?"}, o.yes, o.no)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, "Delete Listing", req.Title)
	assert.Len(t, r.Pending(), 1)

	require.NoError(t, r.Resolve(req.ID, true))
	assert.ErrorIs(t, r.Resolve(req.ID, false), ErrUnknownRequest)
	assert.Equal(t, outcome{confirmed: 1}, o)
	assert.Empty(t, r.Pending())
}

func TestRegistry_Sweep(t *testing.T) {
	t.Parallel()

	r := NewRegistry(time.Minute)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return base }

	var old, fresh outcome
	r.Open(Prompt{}, old.yes, old.no)
	r.now = func() time.Time { return base.Add(50 * time.Second) }
	freshReq := r.Open(Prompt{}, fresh.yes, fresh.no)

	n := r.Sweep(base.Add(61 * time.Second))
	assert.Equal(t, 1, n)
	assert.Equal(t, outcome{cancelled: 1}, old)
	assert.Equal(t, outcome{}, fresh)

	pending := r.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, freshReq.ID, pending[0].ID)
}

func TestRegistry_SweepDisabled(t *testing.T) {
	t.Parallel()

	r := NewRegistry(0)
	r.Open(Prompt{}, nil, nil)
	assert.Equal(t, 0, r.Sweep(time.Now().Add(24*time.Hour)))
	assert.Len(t, r.Pending(), 1)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reg := NewRegistry(time.Minute)
	var o outcome
	req := reg.Open(Prompt{Title: "Delete Listing"}, o.yes, o.no)

	router := gin.New()
	NewHandler(reg).RegisterRoutes(router.Group(""))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/confirmations", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), req.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/confirmations/"+req.ID+"/cancel", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cancelled")
	assert.Equal(t, outcome{cancelled: 1}, o)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/confirmations/"+req.ID+"/confirm", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, outcome{cancelled: 1}, o)
}
