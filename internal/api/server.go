package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"zipcodes/internal/obs"
	"zipcodes/internal/zipcode"
)

const maxValidateCodes = 1000

// Server answers ZIP code queries over a fixed set of records.
type Server struct {
	records zipcode.Records
}

// NewServer returns a ServerInterface backed by records, usually
// zipcode.ListAll().
func NewServer(records zipcode.Records) ServerInterface {
	return &Server{records: records}
}

type healthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
}

type realResponse struct {
	Code string `json:"code"`
	Real bool   `json:"real"`
}

// ValidateReq is the body of POST /zipcodes/validate. Codes are decoded
// loosely so that non-string entries can be reported individually.
type ValidateReq struct {
	Codes []any `json:"codes"`
}

// ValidateResult reports on one entry of a ValidateReq.
type ValidateResult struct {
	Input any    `json:"input"`
	Code  string `json:"code,omitempty"`
	Real  bool   `json:"real"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Records: len(s.records)})
}

func (s *Server) GetZipcode(w http.ResponseWriter, r *http.Request, code string) {
	_, recs, err := s.matching(r.Context(), code)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	if len(recs) == 0 {
		writeError(w, r, http.StatusNotFound, "Zipcode not found")
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

func (s *Server) IsRealZipcode(w http.ResponseWriter, r *http.Request, code string) {
	zip, recs, err := s.matching(r.Context(), code)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, realResponse{Code: zip, Real: len(recs) > 0})
}

func (s *Server) ListZipcodes(w http.ResponseWriter, r *http.Request, params ListZipcodesParams) {
	if params.Limit != nil && *params.Limit < 1 {
		writeError(w, r, http.StatusBadRequest, "limit must be greater than 0")
		return
	}

	preds, err := predicatesFor(params)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := s.search(r.Context(), params.Prefix, preds)
	if err != nil {
		writeValidationError(w, r, err)
		return
	}

	if params.Limit != nil && len(recs) > *params.Limit {
		recs = recs[:*params.Limit]
	}
	writeJSON(w, r, http.StatusOK, recs)
}

func (s *Server) ValidateZipcodes(w http.ResponseWriter, r *http.Request) {
	var req ValidateReq

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "Body must contain only one JSON object")
		return
	}
	if len(req.Codes) == 0 {
		writeError(w, r, http.StatusBadRequest, "codes must contain at least one entry")
		return
	}
	if len(req.Codes) > maxValidateCodes {
		writeError(w, r, http.StatusBadRequest, "codes must contain at most 1000 entries")
		return
	}

	results := make([]ValidateResult, len(req.Codes))
	for i, v := range req.Codes {
		results[i] = s.validate(r.Context(), v)
	}
	writeJSON(w, r, http.StatusOK, results)
}

func (s *Server) validate(ctx context.Context, v any) ValidateResult {
	res := ValidateResult{Input: v}

	code, err := zipcode.CodeFromValue(v)
	if err == nil {
		var recs zipcode.Records
		res.Code, recs, err = s.matching(ctx, code)
		res.Real = len(recs) > 0
	}
	if err != nil {
		res.Error = err.Error()
		res.Kind = zipcode.Kind(err)
	}
	return res
}

// matching validates code once and returns its five digit form with the
// records that carry it.
func (s *Server) matching(ctx context.Context, code string) (zip string, recs zipcode.Records, err error) {
	defer obs.Time(ctx, "zipcode.Matching")(&err)

	if zip, err = zipcode.Normalize(code); err != nil {
		return "", nil, err
	}
	recs = s.records.FilterBy(zipcode.PredicateFunc(func(r zipcode.Record) bool {
		return r.Code == zip
	}))
	return zip, recs, nil
}

func (s *Server) search(ctx context.Context, prefix *string, preds []zipcode.Predicate) (recs zipcode.Records, err error) {
	defer obs.Time(ctx, "zipcode.Search")(&err)

	scope := s.records
	if prefix != nil {
		scope, err = scope.SimilarTo(*prefix)
		if err != nil {
			return nil, err
		}
	}
	return scope.FilterBy(preds...), nil
}

// predicatesFor turns the set query parameters into equality predicates.
func predicatesFor(params ListZipcodesParams) ([]zipcode.Predicate, error) {
	attrs := []struct {
		name  string
		value *string
	}{
		{"city", params.City},
		{"state", params.State},
		{"county", params.County},
		{"type", params.Type},
		{"timezone", params.Timezone},
		{"area_code", params.AreaCode},
	}

	var preds []zipcode.Predicate
	for _, a := range attrs {
		if a.value == nil {
			continue
		}
		p, err := zipcode.AttributeEquals(a.name, *a.value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if params.Active != nil {
		preds = append(preds, zipcode.ActiveEquals(*params.Active))
	}
	return preds, nil
}

func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	kind := zipcode.Kind(err)
	if kind == "" {
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	var verr *zipcode.ValidationError
	msg := err.Error()
	if errors.As(err, &verr) {
		msg = verr.Err.Error()
	}
	writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": msg, "kind": kind})
}
