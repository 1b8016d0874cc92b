package domain

import (
	"encoding/json"
	"fmt"
)

// ReviewTab is the tab a loan review is currently showing.
type ReviewTab string

const (
	TabLogin     ReviewTab = "login"
	TabBureau    ReviewTab = "bureau"
	TabBank      ReviewTab = "bank"
	TabFI        ReviewTab = "fi"
	TabPDI       ReviewTab = "pdi"
	TabDocuments ReviewTab = "documents"
	TabAnalysis  ReviewTab = "analysis"
	TabApproval  ReviewTab = "approval"
	TabFinal     ReviewTab = "final"
)

// AllReviewTabs is the full tab strip in display order.
var AllReviewTabs = []ReviewTab{
	TabLogin, TabBureau, TabBank, TabFI, TabPDI, TabDocuments, TabAnalysis, TabApproval, TabFinal,
}

// ParseReviewTab validates a tab name coming from a request.
func ParseReviewTab(s string) (ReviewTab, error) {
	for _, t := range AllReviewTabs {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
}

// ReviewAction is a decision taken from the approval controls.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
	ActionHold    ReviewAction = "hold"
)

type reviewTransition struct {
	to       ReviewTab
	complete bool
}

// reviewTransitions is the decision table of the review workflow.
var reviewTransitions = map[ReviewAction]reviewTransition{
	ActionApprove: {to: TabFinal, complete: true},
	ActionReject:  {to: TabFinal},
	ActionHold:    {to: TabDocuments},
}

// Transition resolves the tab a decision leads to from the current tab and
// whether it completes the workflow. Once a review sits on the final tab no
// further decision is accepted.
func (a ReviewAction) Transition(from ReviewTab) (ReviewTab, bool, error) {
	t, ok := reviewTransitions[a]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, a)
	}
	if from == TabFinal {
		return "", false, fmt.Errorf("%w: %s after the review was decided", ErrInvalidTransition, a)
	}
	return t.to, t.complete, nil
}

// DocumentStatus tracks a checklist entry.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
)

// ChecklistDocument is a document the reviewer added to the checklist by hand.
type ChecklistDocument struct {
	Name   string         `json:"name"`
	Status DocumentStatus `json:"status"`
}

// EMIRecord is one monthly repayment of a bureau trade line. Month is "YYYY-MM".
type EMIRecord struct {
	Month      string `json:"month"`
	PaidOnTime bool   `json:"paidOnTime"`
	DelayDays  int    `json:"delayDays"`
}

// ApplicantPacket is the already-resolved applicant data rendered by the
// review tabs. Sections are passed through untouched.
type ApplicantPacket struct {
	ApplicationID       string          `json:"applicationId"`
	Applicant           json.RawMessage `json:"applicant,omitempty"`
	Bureau              json.RawMessage `json:"bureau,omitempty"`
	Bank                json.RawMessage `json:"bank,omitempty"`
	FI                  json.RawMessage `json:"fi,omitempty"`
	PDI                 json.RawMessage `json:"pdi,omitempty"`
	Documents           json.RawMessage `json:"documents,omitempty"`
	Analysis            json.RawMessage `json:"analysis,omitempty"`
	Completion          float64         `json:"completion"`
	ApprovalProbability float64         `json:"approvalProbability"`
	DTI                 float64         `json:"dti"`
}
