// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package savedfilter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/auditorium/internal/models"
)

func TestRegistrySaveAndList(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	first, err := r.Save("High risk", models.FilterCriteria{RiskLevels: []models.RiskLevel{models.RiskHigh}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := r.Save("Failures", models.FilterCriteria{Outcomes: []models.Outcome{models.OutcomeFailed}})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	list := r.List()
	if len(list) != 2 {
		t.Fatalf("List length = %d, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("List must preserve creation order, got %v then %v", list[0].Name, list[1].Name)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Errorf("ids must be unique and non-empty: %q, %q", first.ID, second.ID)
	}
}

func TestRegistrySaveRejectsBlankName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := r.Save(name, models.FilterCriteria{})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Save(%q) error = %v, want *models.ValidationError", name, err)
			continue
		}
		if verr.Field != "name" {
			t.Errorf("Save(%q) error field = %q, want name", name, verr.Field)
		}
	}
	if len(r.List()) != 0 {
		t.Error("rejected saves must not modify the registry")
	}
}

func TestRegistrySaveRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, err := r.Save("Weekly review", models.FilterCriteria{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err := r.Save("Weekly review", models.FilterCriteria{SearchText: "login"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("duplicate Save error = %v, want *models.ValidationError", err)
	}
	if len(r.List()) != 1 {
		t.Errorf("duplicate save must not add a preset, registry has %d", len(r.List()))
	}
}

func TestRegistryRemoveFreesName(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	sf, err := r.Save("Temp", models.FilterCriteria{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !r.Remove(sf.ID) {
		t.Fatal("Remove of existing id returned false")
	}
	if r.Remove(sf.ID) {
		t.Error("Remove of unknown id returned true")
	}
	if _, err := r.Save("Temp", models.FilterCriteria{}); err != nil {
		t.Errorf("name should be reusable after removal: %v", err)
	}
}

func TestRegistryApplyOverlaysFacets(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	sf, err := r.Save("Auth failures", models.FilterCriteria{
		Outcomes: []models.Outcome{models.OutcomeFailed},
		Actions:  []string{"LOGIN_FAILED"},
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	current := models.FilterCriteria{
		SearchText: "smith",
		Outcomes:   []models.Outcome{models.OutcomeSuccess},
	}
	merged, ok := r.Apply(sf.ID, current)
	if !ok {
		t.Fatal("Apply returned not found for a live preset")
	}

	if merged.SearchText != "smith" {
		t.Errorf("facets the preset left empty must survive, SearchText = %q", merged.SearchText)
	}
	if !reflect.DeepEqual(merged.Outcomes, []models.Outcome{models.OutcomeFailed}) {
		t.Errorf("populated facets must replace, Outcomes = %v", merged.Outcomes)
	}
	if !reflect.DeepEqual(merged.Actions, []string{"LOGIN_FAILED"}) {
		t.Errorf("Actions = %v", merged.Actions)
	}
}

func TestRegistryApplyUnknownID(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	if _, ok := r.Apply("missing", models.FilterCriteria{}); ok {
		t.Error("Apply of unknown id must report not found")
	}
}

func TestRegistrySaveSnapshotsCriteria(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	criteria := models.FilterCriteria{Actions: []string{"DATA_EXPORT"}}
	sf, err := r.Save("Exports", criteria)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's slice after saving must not leak into the
	// stored preset.
	criteria.Actions[0] = "TAMPERED"

	stored, ok := r.Get(sf.ID)
	if !ok {
		t.Fatal("Get returned not found")
	}
	if stored.Criteria.Actions[0] != "DATA_EXPORT" {
		t.Errorf("preset must snapshot criteria at save time, got %v", stored.Criteria.Actions)
	}
}
