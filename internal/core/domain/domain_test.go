package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTimestamp_Layouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-03-05T14:07:00Z"`:        time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
		`"2024-03-05T14:07:00"`:         time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
		`"2024-03-05 14:07:00"`:         time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
		`"2024-03-05"`:                  time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		`null`:                          {},
		`""`:                            {},
		`"2024-03-05T14:07:00.123456Z"`: time.Date(2024, 3, 5, 14, 7, 0, 123456000, time.UTC),
	}
	for in, want := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if !ts.Equal(want) {
			t.Fatalf("%s: want %v, got %v", in, want, ts.Time)
		}
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestRefID(t *testing.T) {
	var d Department
	if err := json.Unmarshal([]byte(`{"id":1,"company_id":"42"}`), &d); err != nil || d.CompanyID != 42 {
		t.Fatalf("quoted id: %v %v", d.CompanyID, err)
	}
	if err := json.Unmarshal([]byte(`{"id":1,"company_id":7}`), &d); err != nil || d.CompanyID != 7 {
		t.Fatalf("numeric id: %v %v", d.CompanyID, err)
	}
	if err := json.Unmarshal([]byte(`{"company_id":"abc"}`), &d); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestDepartment_ParentIDForms(t *testing.T) {
	one := int64(1)
	cases := map[string]*int64{
		`{"id":2,"parent_id":1}`:    &one,
		`{"id":2,"parent_id":"1"}`:  &one,
		`{"id":2,"parent_id":null}`: nil,
		`{"id":2,"parent_id":""}`:   nil,
		`{"id":2}`:                  nil,
	}
	for in, want := range cases {
		var d Department
		if err := json.Unmarshal([]byte(in), &d); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if d.ID != 2 || (want == nil) != (d.ParentID == nil) || (want != nil && *d.ParentID != *want) {
			t.Fatalf("%s: unexpected department %+v", in, d)
		}
	}

	var d Department
	if err := json.Unmarshal([]byte(`{"parent_id":"root"}`), &d); err == nil {
		t.Fatalf("expected error for non-numeric parent id")
	}
}

func TestUser_ReferenceForms(t *testing.T) {
	var u User
	in := `{"id":5,"name":"Asha","company_id":"7","department_id":"4","role_id":9,"is_active":true}`
	if err := json.Unmarshal([]byte(in), &u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Name != "Asha" || u.CompanyID != 7 || !u.IsActive ||
		u.DepartmentID == nil || *u.DepartmentID != 4 || u.RoleID == nil || *u.RoleID != 9 {
		t.Fatalf("unexpected user %+v", u)
	}

	u = User{}
	if err := json.Unmarshal([]byte(`{"id":6,"department_id":null}`), &u); err != nil || u.DepartmentID != nil || u.RoleID != nil {
		t.Fatalf("unexpected user %+v %v", u, err)
	}
}

func TestReviewAction_Transition(t *testing.T) {
	to, complete, err := ActionApprove.Transition(TabApproval)
	if err != nil || to != TabFinal || !complete {
		t.Fatalf("approve: %v %v %v", to, complete, err)
	}
	to, complete, err = ActionHold.Transition(TabBank)
	if err != nil || to != TabDocuments || complete {
		t.Fatalf("hold: %v %v %v", to, complete, err)
	}
	if _, _, err := ActionReject.Transition(TabFinal); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("decision on final tab should fail, got %v", err)
	}
	if _, _, err := ReviewAction("escalate").Transition(TabLogin); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("unknown action should fail, got %v", err)
	}
}

func TestErrors_Messages(t *testing.T) {
	op := &OperationError{Action: "add department", Err: &RequestError{Status: 500}}
	if op.Error() != "add department: HTTP error! status: 500" {
		t.Fatalf("unexpected message %q", op.Error())
	}
	ve := &ValidationError{Fields: map[string]string{"b": "B bad", "a": "A bad"}}
	if ve.Error() != "validation failed: a: A bad; b: B bad" {
		t.Fatalf("unexpected message %q", ve.Error())
	}
}
