package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func paramsFor(rawQuery string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestPageParams(t *testing.T) {
	cases := map[string]struct {
		query string
		page  int
		limit int
	}{
		"defaults":     {"", 1, 10},
		"explicit":     {"page=3&limit=25", 3, 25},
		"zero page":    {"page=0", 1, 10},
		"negative":     {"page=-2&limit=-5", 1, 10},
		"not a number": {"page=abc&limit=xyz", 1, 10},
		"limit capped": {"limit=5000", 1, 100},
	}
	for name, tc := range cases {
		page, limit := pageParams(paramsFor(tc.query))
		assert.Equal(t, tc.page, page, name)
		assert.Equal(t, tc.limit, limit, name)
	}
}

func TestNewPageMeta(t *testing.T) {
	m := newPageMeta(21, 2, 10)
	assert.Equal(t, 21, m.Total)
	assert.Equal(t, 3, m.TotalPages)

	m = newPageMeta(20, 1, 10)
	assert.Equal(t, 2, m.TotalPages)

	m = newPageMeta(0, 1, 10)
	assert.Equal(t, 0, m.TotalPages)
}

func TestBoolParam(t *testing.T) {
	assert.Nil(t, boolParam(paramsFor(""), "isActive"))
	assert.Nil(t, boolParam(paramsFor("isActive=maybe"), "isActive"))

	v := boolParam(paramsFor("isActive=true"), "isActive")
	if assert.NotNil(t, v) {
		assert.True(t, *v)
	}
	v = boolParam(paramsFor("isActive=false"), "isActive")
	if assert.NotNil(t, v) {
		assert.False(t, *v)
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Home Appliances":     "home-appliances",
		"  Gaming  Laptops  ": "gaming-laptops",
		"USB-C Cables!":       "usb-c-cables",
		"Déjà Vu":             "d-j-vu",
		"---":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, slugify(in), in)
	}
}

func TestValidPassword(t *testing.T) {
	valid := []string{"Passw0rd!", "Abcdef1#", "xY9$long-enough"}
	for _, pw := range valid {
		assert.True(t, validPassword(pw), pw)
	}
	invalid := []string{"", "Shrt1A!", "alllower1!", "ALLUPPER1!", "NoDigits!", "NoSpecial1"}
	for _, pw := range invalid {
		assert.False(t, validPassword(pw), pw)
	}
}
