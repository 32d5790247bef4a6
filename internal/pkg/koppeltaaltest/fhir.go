package koppeltaaltest

import (
	"koppeltaal-service/internal/app/models"
	"koppeltaal-service/internal/pkg/constvars"
	"koppeltaal-service/internal/pkg/extensions"
	"koppeltaal-service/internal/pkg/fhir_dto"
	"koppeltaal-service/internal/pkg/resourceurl"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

func (s *Server) metadata(w http.ResponseWriter, r *http.Request) {
	oauthBase := s.URL
	writeJSON(w, constvars.StatusOK, map[string]interface{}{
		"resourceType": "Conformance",
		"fhirVersion":  "0.0.82",
		"software":     map[string]string{"name": "koppeltaaltest", "version": "1"},
		"rest": []map[string]interface{}{{
			"mode": "server",
			"security": map[string]interface{}{
				"extension": []map[string]string{
					{"url": constvars.SystemSMARTOAuthURIs + "#register", "valueUri": oauthBase + "/OAuth2/Koppeltaal/Register"},
					{"url": constvars.SystemSMARTOAuthURIs + "#authorize", "valueUri": oauthBase + constvars.KoppeltaalAuthorizePath},
					{"url": constvars.SystemSMARTOAuthURIs + "#token", "valueUri": oauthBase + constvars.KoppeltaalTokenPath},
				},
			},
		}},
	})
}

func (s *Server) mailbox(w http.ResponseWriter, r *http.Request) {
	var bundle fhir_dto.Bundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeOutcome(w, constvars.StatusBadRequest, "structure", err.Error())
		return
	}
	if bundle.Type != constvars.BundleTypeMessage || len(bundle.Entry) == 0 || bundle.Entry[0].Resource == nil ||
		bundle.Entry[0].Resource.ResourceType != constvars.ResourceMessageHeader {
		writeOutcome(w, constvars.StatusBadRequest, "structure", "first entry must be a MessageHeader")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	resources := make([]*fhir_dto.Resource, 0, len(bundle.Entry)-1)
	for _, e := range bundle.Entry[1:] {
		res := e.Resource
		if res == nil {
			writeOutcome(w, constvars.StatusBadRequest, "structure", "entry without resource")
			return
		}
		if res.ID == "" {
			if u, err := resourceurl.Parse(e.FullURL); err == nil {
				res.ID = u.ID
			}
		}
		if res.ID == "" {
			writeOutcome(w, constvars.StatusBadRequest, "structure", "entry without id")
			return
		}

		k := key(res.ResourceType, res.ID)
		version := models.EntryVersion(e)
		cur, exists := s.current(k)
		if (exists && version != cur.VersionID()) || (!exists && version != "") {
			writeOutcome(w, constvars.StatusConflict, "conflict", "version conflict on "+k)
			return
		}
		resources = append(resources, res)
	}

	header := clone(bundle.Entry[0].Resource)
	if header.ID == "" {
		header.ID = "header-" + s.nextSerial()
	}
	if _, exists := s.current(key(constvars.ResourceMessageHeader, header.ID)); exists {
		writeOutcome(w, constvars.StatusConflict, "duplicate", "message header "+header.ID+" already exists")
		return
	}

	response := fhir_dto.Bundle{ResourceType: constvars.ResourceBundle, Type: constvars.BundleTypeMessage}
	focus := -1
	if len(header.Data) > 0 {
		focus = focusIndex(header.Data[0].Reference, bundle.Entry[1:])
	}
	header.Data = nil
	var stored []*fhir_dto.Resource
	for i, res := range resources {
		saved := s.store(key(res.ResourceType, res.ID), res)
		stored = append(stored, saved)
		ref := fhir_dto.Reference{Reference: s.selfURL(saved)}
		if i == focus {
			header.Data = append([]fhir_dto.Reference{ref}, header.Data...)
			continue
		}
		header.Data = append(header.Data, ref)
	}
	s.setStatus(header, models.ProcessingStatusNew, "")
	savedHeader := s.store(key(constvars.ResourceMessageHeader, header.ID), header)
	s.headers = append(s.headers, header.ID)

	response.Entry = append(response.Entry, s.entryOf(savedHeader))
	for _, res := range stored {
		response.Entry = append(response.Entry, s.entryOf(res))
	}
	writeJSON(w, constvars.StatusOK, response)
}

// focusIndex finds the entry the submitted header focuses on, by full url or
// by type and id. The accepted header lists it first.
func focusIndex(focus string, entries []fhir_dto.BundleEntry) int {
	target, parseErr := resourceurl.Parse(focus)
	for i, e := range entries {
		if e.FullURL == focus {
			return i
		}
		if parseErr == nil && e.Resource != nil &&
			e.Resource.ResourceType == target.ResourceType && e.Resource.ID == target.ID {
			return i
		}
	}
	return -1
}

func (s *Server) searchHeaders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result := fhir_dto.Bundle{ResourceType: constvars.ResourceBundle, Type: constvars.BundleTypeSearchset}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id := q.Get(constvars.QueryParamID); id != "" {
		header, ok := s.current(key(constvars.ResourceMessageHeader, id))
		if ok {
			result.Entry = append(result.Entry, s.entryOf(header))
			if q.Get(constvars.QueryParamInclude) == constvars.IncludeMessageHeaderData {
				for _, ref := range header.Data {
					if res, ok := s.lookup(ref.Reference); ok {
						result.Entry = append(result.Entry, s.entryOf(res))
					}
				}
			}
		}
		result.Total = len(result.Entry)
		writeJSON(w, constvars.StatusOK, result)
		return
	}

	count := 0
	if raw := q.Get(constvars.QueryParamCount); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeOutcome(w, constvars.StatusBadRequest, "value", "invalid _count "+raw)
			return
		}
		count = n
	}
	patient := q.Get(constvars.QueryParamPatient)
	event := q.Get(constvars.QueryParamEvent)
	status := q.Get(constvars.QueryParamProcessingStatus)

	for _, id := range s.headers {
		res, _ := s.current(key(constvars.ResourceMessageHeader, id))
		header, err := models.ParseMessageHeader(s.namespace, s.entryOf(res))
		if err != nil {
			continue
		}
		if event != "" && string(header.Event) != event {
			continue
		}
		if status != "" && string(header.ProcessingStatus) != status {
			continue
		}
		if patient != "" && !sameResource(patient, header.PatientReference) {
			continue
		}
		result.Entry = append(result.Entry, s.entryOf(res))
		if count > 0 && len(result.Entry) == count {
			break
		}
	}
	result.Total = len(result.Entry)
	writeJSON(w, constvars.StatusOK, result)
}

func (s *Server) updateHeader(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	version := chi.URLParam(r, "version")

	var res fhir_dto.Resource
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeOutcome(w, constvars.StatusBadRequest, "structure", err.Error())
		return
	}
	res.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(constvars.ResourceMessageHeader, id)
	cur, ok := s.current(k)
	if !ok {
		writeOutcome(w, constvars.StatusNotFound, "not-found", "unknown message header "+id)
		return
	}
	if cur.VersionID() != version {
		writeOutcome(w, constvars.StatusConflict, "conflict", "message header "+id+" is at version "+cur.VersionID())
		return
	}
	from, to := s.statusOf(cur), s.statusOf(&res)
	if !from.CanTransitionTo(to) {
		writeOutcome(w, constvars.StatusUnprocessableEntity, "business-rule", "illegal transition "+string(from)+" -> "+string(to))
		return
	}

	stored := s.store(k, &res)
	w.Header().Set(constvars.HeaderLocation, s.selfURL(stored))
	writeJSON(w, constvars.StatusOK, stored)
}

func (s *Server) searchOther(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get(constvars.QueryParamCode)
	id := r.URL.Query().Get(constvars.QueryParamID)
	result := fhir_dto.Bundle{ResourceType: constvars.ResourceBundle, Type: constvars.BundleTypeSearchset}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, versions := range s.history {
		res := versions[len(versions)-1]
		if res.ResourceType != constvars.ResourceOther {
			continue
		}
		if code != "" && res.OtherKind() != code {
			continue
		}
		if id != "" && res.ID != id {
			continue
		}
		result.Entry = append(result.Entry, s.entryOf(res))
	}
	result.Total = len(result.Entry)
	writeJSON(w, constvars.StatusOK, result)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	resourceType := resourceTypeParam(r)
	var res fhir_dto.Resource
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeOutcome(w, constvars.StatusBadRequest, "structure", err.Error())
		return
	}
	if res.ResourceType != resourceType {
		writeOutcome(w, constvars.StatusBadRequest, "structure", "resourceType does not match the url")
		return
	}
	if code := r.URL.Query().Get(constvars.QueryParamCode); resourceType == constvars.ResourceOther && code != res.OtherKind() {
		writeOutcome(w, constvars.StatusBadRequest, "structure", "Other code does not match the url")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.ID == "" {
		res.ID = "res-" + s.nextSerial()
	}
	k := key(resourceType, res.ID)
	if _, exists := s.current(k); exists {
		writeOutcome(w, constvars.StatusConflict, "conflict", k+" already exists, update it by version")
		return
	}
	stored := s.store(k, &res)
	w.Header().Set(constvars.HeaderLocation, s.selfURL(stored))
	writeJSON(w, constvars.StatusCreated, stored)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	resourceType := resourceTypeParam(r)
	id := chi.URLParam(r, "id")
	version := chi.URLParam(r, "version")

	var res fhir_dto.Resource
	if err := json.NewDecoder(r.Body).Decode(&res); err != nil {
		writeOutcome(w, constvars.StatusBadRequest, "structure", err.Error())
		return
	}
	res.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(resourceType, id)
	cur, ok := s.current(k)
	if !ok {
		writeOutcome(w, constvars.StatusNotFound, "not-found", "unknown resource "+k)
		return
	}
	if cur.VersionID() != version {
		writeOutcome(w, constvars.StatusConflict, "conflict", k+" is at version "+cur.VersionID())
		return
	}
	stored := s.store(k, &res)
	w.Header().Set(constvars.HeaderLocation, s.selfURL(stored))
	writeJSON(w, constvars.StatusOK, stored)
}

func (s *Server) read(w http.ResponseWriter, r *http.Request) {
	k := key(resourceTypeParam(r), chi.URLParam(r, "id"))
	version := chi.URLParam(r, "version")

	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		res *fhir_dto.Resource
		ok  bool
	)
	if version == "" {
		res, ok = s.current(k)
	} else {
		res, ok = s.at(k, version)
	}
	if !ok {
		writeOutcome(w, constvars.StatusNotFound, "not-found", "unknown resource "+k)
		return
	}
	writeJSON(w, constvars.StatusOK, res)
}

// lookup resolves a versioned or unversioned reference. The caller holds mu.
func (s *Server) lookup(ref string) (*fhir_dto.Resource, bool) {
	u, err := resourceurl.Parse(ref)
	if err != nil {
		return nil, false
	}
	if u.Version == "" {
		return s.current(key(u.ResourceType, u.ID))
	}
	return s.at(key(u.ResourceType, u.ID), u.Version)
}

func (s *Server) statusOf(res *fhir_dto.Resource) models.ProcessingStatus {
	group, ok := extensions.MessageHeaderProcessingStatus.Get(s.namespace, res)
	if !ok {
		return ""
	}
	status, _ := extensions.ProcessingStatusStatus.Get(s.namespace, group)
	return models.ProcessingStatus(status)
}

func (s *Server) setStatus(res *fhir_dto.Resource, status models.ProcessingStatus, exception string) {
	group := fhir_dto.Extension{}
	extensions.ProcessingStatusStatus.Set(s.namespace, &group, string(status))
	extensions.ProcessingStatusStatusLastChanged.Set(s.namespace, &group, time.Now().UTC().Format(time.RFC3339))
	if exception != "" {
		extensions.ProcessingStatusException.Set(s.namespace, &group, exception)
	}
	extensions.MessageHeaderProcessingStatus.Set(s.namespace, res, group)
}

func sameResource(a, b string) bool {
	ua, errA := resourceurl.Parse(a)
	ub, errB := resourceurl.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ua.SameResource(ub)
}

// resourceTypeParam is the {type} url segment. Routes registered for Other
// explicitly have no such segment.
func resourceTypeParam(r *http.Request) string {
	if t := chi.URLParam(r, "type"); t != "" {
		return t
	}
	return constvars.ResourceOther
}
