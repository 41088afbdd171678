package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reiman-Gardens/flutr/internal/model"
)

// A superuser session carries no institution claim; the update must
// target the institution named in the path.
func TestUpdateInstitutionUsesPathID(t *testing.T) {
	h, st, _ := setupHandler(t)
	ctx := context.Background()

	inst := model.Institution{
		Slug: "gardens", Name: "Butterfly House",
		StreetAddress: "1 Garden Way", City: "Ames", StateProvince: "IA",
		PostalCode: "50011", Country: "USA",
	}
	require.NoError(t, st.CreateInstitution(ctx, &inst))
	created := inst.CreatedAt

	e := echo.New()
	body := `{"slug":"gardens","name":"Butterfly House Renamed",` +
		`"street_address":"1 Garden Way","city":"Ames","state_province":"IA",` +
		`"postal_code":"50011","country":"USA","stats_active":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/institutions/"+strconv.Itoa(int(inst.ID)), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(strconv.Itoa(int(inst.ID)))
	c.Set("role", model.RoleSuperuser)

	require.NoError(t, h.UpdateInstitution(c))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := st.GetInstitution(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, "Butterfly House Renamed", got.Name)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestUpdateInstitutionRejectsBadID(t *testing.T) {
	h, _, _ := setupHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/institutions/abc", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.UpdateInstitution(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
