package project

import (
	"encoding/json"
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrUnrecognizedImport means no import strategy matched the payload.
var ErrUnrecognizedImport = errors.New("project: unrecognized import payload")

// ExtractProjects accepts the payload shapes that have existed across
// versions of the tool and returns normalized projects:
//
//	[{...project}, ...]                a plain project array
//	[{"ts": ..., "projects": [...]}]   a snapshot list (newest wins)
//	{"projects": [...]}                the store envelope
//	{"data": {"projects": [...]}}      an exported backup envelope
//	{"<id>": {...project}, ...}        an id-keyed map
//	{...project}                       a single project
//
// Entries that do not look like projects are skipped rather than failing the
// whole import.
func ExtractProjects(raw []byte) ([]Project, error) {
	raws, err := extractRaw(raw)
	if err != nil {
		return nil, err
	}
	out := make([]Project, 0, len(raws))
	for _, r := range raws {
		p, ok := decodeProject(r)
		if !ok {
			continue
		}
		Normalize(&p)
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, ErrUnrecognizedImport
	}
	return out, nil
}

func extractRaw(raw []byte) ([]json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if ps, ok := newestSnapshot(arr); ok {
			return ps, nil
		}
		return arr, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, ErrUnrecognizedImport
	}

	if inner, ok := obj["data"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(inner, &nested) == nil {
			if ps, ok := projectsField(nested); ok {
				return ps, nil
			}
		}
	}
	if ps, ok := projectsField(obj); ok {
		return ps, nil
	}
	if looksLikeProject(obj) {
		return []json.RawMessage{raw}, nil
	}

	// Id-keyed map: values must look like projects, keys give a stable order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var vals []json.RawMessage
	for _, k := range keys {
		var m map[string]json.RawMessage
		if json.Unmarshal(obj[k], &m) == nil && looksLikeProject(m) {
			vals = append(vals, obj[k])
		}
	}
	if len(vals) > 0 {
		return vals, nil
	}
	return nil, ErrUnrecognizedImport
}

func projectsField(obj map[string]json.RawMessage) ([]json.RawMessage, bool) {
	raw, ok := obj["projects"]
	if !ok {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// newestSnapshot detects a snapshot-ring export ([{ts, projects}]) and
// returns the projects of the newest entry.
func newestSnapshot(arr []json.RawMessage) ([]json.RawMessage, bool) {
	type snap struct {
		TS       int64             `json:"ts"`
		Projects []json.RawMessage `json:"projects"`
	}
	var best *snap
	for _, r := range arr {
		var s snap
		if json.Unmarshal(r, &s) != nil || s.Projects == nil {
			return nil, false
		}
		if best == nil || s.TS > best.TS {
			c := s
			best = &c
		}
	}
	if best == nil {
		return nil, false
	}
	return best.Projects, true
}

func looksLikeProject(obj map[string]json.RawMessage) bool {
	if _, ok := obj["meta"]; ok {
		return true
	}
	if _, ok := obj["state"]; ok {
		return true
	}
	_, hasID := obj["id"]
	_, hasLines := obj["lines"]
	return hasID && hasLines
}

// decodeProject unmarshals one project on top of the defaults so that absent
// fields keep their default values. Flat legacy payloads (lines at the top
// level, name outside meta) are lifted into the current shape.
func decodeProject(raw json.RawMessage) (Project, bool) {
	p := Project{State: DefaultState()}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Project{}, false
	}

	var flat struct {
		Name  string      `json:"name"`
		Lines []OrderLine `json:"lines"`
	}
	_ = json.Unmarshal(raw, &flat)
	if p.Meta.Name == "" && flat.Name != "" {
		p.Meta.Name = flat.Name
	}
	if len(p.State.Lines) == 0 && len(flat.Lines) > 0 {
		p.State.Lines = flat.Lines
	}
	return p, true
}

// Normalize repairs a project in place: fills missing ids and defaults and
// applies the data migrations accumulated over the tool's life.
func Normalize(p *Project) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Meta.Name == "" {
		p.Meta.Name = "Proyecto sin nombre"
	}
	if p.Meta.CreatedAt == "" {
		p.Meta.CreatedAt = Now().Format("2006-01-02")
	}
	normalizeState(&p.State)
}

func normalizeState(s *State) {
	// Old books carried 0.45; the rate has been 0.5 for a while. Other
	// explicit values, including zero, are the user's and stay untouched
	// (missing fields already picked up defaults during decoding).
	if s.InsurancePct == 0.45 {
		s.InsurancePct = DefaultInsurancePct
	}
	if s.ModulesPerContainer <= 0 {
		s.ModulesPerContainer = DefaultModulesPerContainer
	}

	if s.PriceOverrides == nil {
		s.PriceOverrides = map[string]float64{}
	}
	if s.CostOverrides == nil {
		s.CostOverrides = map[string]float64{}
	}
	if s.Lines == nil {
		s.Lines = []OrderLine{}
	}
	for i := range s.Lines {
		if s.Lines[i].ID == "" {
			s.Lines[i].ID = uuid.NewString()
		}
		if s.Lines[i].Quantity < 0 {
			s.Lines[i].Quantity = 0
		}
	}
	if s.Movements == nil {
		s.Movements = []Movement{}
	}
	for i := range s.Movements {
		if s.Movements[i].ID == "" {
			s.Movements[i].ID = uuid.NewString()
		}
		if s.Movements[i].Kind == "" {
			s.Movements[i].Kind = MovementCharge
		}
		if s.Movements[i].Status == "" {
			s.Movements[i].Status = MovementPending
		}
		if s.Movements[i].Currency == "" {
			s.Movements[i].Currency = CurrencyUSD
		}
		if s.Movements[i].Category == "" {
			s.Movements[i].Category = CategoryOther
		}
	}

	if s.InstallmentCount <= 0 {
		s.InstallmentCount = DefaultInstallmentCount
	}
	if len(s.Installments) == 0 {
		s.Installments = BuildInstallments(s.InstallmentCount)
	} else {
		s.InstallmentCount = len(s.Installments)
	}

	if s.QuoteTerms == "" {
		s.QuoteTerms = DefaultQuoteTerms
	}
	if s.TechnicalSpec == "" {
		s.TechnicalSpec = DefaultTechnicalSpec
	}
	if s.FeaturesStandard == "" {
		s.FeaturesStandard = DefaultFeaturesStandard
	}
	if s.FeaturesOffice == "" {
		s.FeaturesOffice = DefaultFeaturesOffice
	}
	if s.Status == "" {
		s.Status = StatusSupplierAdvance
	}
}
