package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is implemented by the lookup service.
type ServerInterface interface {
	// (GET /health)
	Health(w http.ResponseWriter, r *http.Request)
	// (GET /zipcodes)
	ListZipcodes(w http.ResponseWriter, r *http.Request, params ListZipcodesParams)
	// (POST /zipcodes/validate)
	ValidateZipcodes(w http.ResponseWriter, r *http.Request)
	// (GET /zipcodes/{code})
	GetZipcode(w http.ResponseWriter, r *http.Request, code string)
	// (GET /zipcodes/{code}/real)
	IsRealZipcode(w http.ResponseWriter, r *http.Request, code string)
}

// ListZipcodesParams are the optional filters of GET /zipcodes. Every
// filter that is set must match.
type ListZipcodesParams struct {
	Prefix   *string `form:"prefix,omitempty" json:"prefix,omitempty"`
	City     *string `form:"city,omitempty" json:"city,omitempty"`
	State    *string `form:"state,omitempty" json:"state,omitempty"`
	County   *string `form:"county,omitempty" json:"county,omitempty"`
	Type     *string `form:"type,omitempty" json:"type,omitempty"`
	Timezone *string `form:"timezone,omitempty" json:"timezone,omitempty"`
	AreaCode *string `form:"area_code,omitempty" json:"area_code,omitempty"`
	Active   *bool   `form:"active,omitempty" json:"active,omitempty"`
	Limit    *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// wrapper binds path and query parameters before calling the handler.
type wrapper struct {
	handler ServerInterface
}

func (siw *wrapper) Health(w http.ResponseWriter, r *http.Request) {
	siw.handler.Health(w, r)
}

func (siw *wrapper) ListZipcodes(w http.ResponseWriter, r *http.Request) {
	var params ListZipcodesParams
	query := r.URL.Query()

	stringParams := []struct {
		name string
		dest **string
	}{
		{"prefix", &params.Prefix},
		{"city", &params.City},
		{"state", &params.State},
		{"county", &params.County},
		{"type", &params.Type},
		{"timezone", &params.Timezone},
		{"area_code", &params.AreaCode},
	}
	for _, p := range stringParams {
		if err := runtime.BindQueryParameter("form", true, false, p.name, query, p.dest); err != nil {
			writeBindError(w, r, p.name, err)
			return
		}
	}

	if err := runtime.BindQueryParameter("form", true, false, "active", query, &params.Active); err != nil {
		writeBindError(w, r, "active", err)
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &params.Limit); err != nil {
		writeBindError(w, r, "limit", err)
		return
	}

	siw.handler.ListZipcodes(w, r, params)
}

func (siw *wrapper) ValidateZipcodes(w http.ResponseWriter, r *http.Request) {
	siw.handler.ValidateZipcodes(w, r)
}

func (siw *wrapper) GetZipcode(w http.ResponseWriter, r *http.Request) {
	code, ok := bindCode(w, r)
	if !ok {
		return
	}
	siw.handler.GetZipcode(w, r, code)
}

func (siw *wrapper) IsRealZipcode(w http.ResponseWriter, r *http.Request) {
	code, ok := bindCode(w, r)
	if !ok {
		return
	}
	siw.handler.IsRealZipcode(w, r, code)
}

func bindCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	var code string
	err := runtime.BindStyledParameterWithOptions("simple", "code", chi.URLParam(r, "code"), &code,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeBindError(w, r, "code", err)
		return "", false
	}
	return code, true
}

func writeBindError(w http.ResponseWriter, r *http.Request, param string, err error) {
	writeError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %v", param, err))
}

// HandlerFromMux registers si's routes on m and returns m wrapped in the
// request ID and access log middleware.
func HandlerFromMux(si ServerInterface, m chi.Router) http.Handler {
	siw := &wrapper{handler: si}

	m.Get("/health", siw.Health)
	m.Get("/zipcodes", siw.ListZipcodes)
	m.Post("/zipcodes/validate", siw.ValidateZipcodes)
	m.Get("/zipcodes/{code}", siw.GetZipcode)
	m.Get("/zipcodes/{code}/real", siw.IsRealZipcode)

	m.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})
	m.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return withRequestID(accessLog(m))
}
