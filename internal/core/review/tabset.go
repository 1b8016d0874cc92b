// Package review holds the state of a loan application review: which tab is
// showing, the decision taken and the reviewer's document checklist.
package review

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/ports"
	"github.com/fintree/backoffice/internal/core/session"
)

// State is the rendered state of a review.
type State struct {
	ApplicationID string                     `json:"applicationId"`
	Tabs          []domain.ReviewTab         `json:"tabs"`
	ActiveTab     domain.ReviewTab           `json:"activeTab"`
	Complete      bool                       `json:"workflowComplete"`
	Decision      domain.ReviewAction        `json:"decision,omitempty"`
	Packet        *domain.ApplicantPacket    `json:"packet,omitempty"`
	Documents     []domain.ChecklistDocument `json:"extraDocuments"`
}

// TabSet is the review of one application. Approve and reject are final;
// hold sends the reviewer back to the documents tab.
type TabSet struct {
	audit ports.AuditRepository
	log   zerolog.Logger

	mu            sync.Mutex
	applicationID string
	tabs          []domain.ReviewTab
	active        domain.ReviewTab
	complete      bool
	decision      domain.ReviewAction
	packet        *domain.ApplicantPacket
	documents     []domain.ChecklistDocument
}

// NewTabSet starts a review on the first configured tab. An empty tab list
// configures every tab.
func NewTabSet(applicationID string, tabs []domain.ReviewTab, audit ports.AuditRepository, log zerolog.Logger) (*TabSet, error) {
	if len(tabs) == 0 {
		tabs = domain.AllReviewTabs
	}
	for _, t := range tabs {
		if _, err := domain.ParseReviewTab(string(t)); err != nil {
			return nil, err
		}
	}

	return &TabSet{
		audit:         audit,
		log:           log.With().Str("application_id", applicationID).Logger(),
		applicationID: applicationID,
		tabs:          slices.Clone(tabs),
		active:        tabs[0],
	}, nil
}

func (t *TabSet) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Select shows tab. The final tab is only reachable through a decision.
func (t *TabSet) Select(tab domain.ReviewTab) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !slices.Contains(t.tabs, tab) {
		return State{}, fmt.Errorf("%w: %q is not configured", domain.ErrUnknownTab, tab)
	}
	if tab == domain.TabFinal && !t.decided() {
		return State{}, fmt.Errorf("%w: final tab before a decision", domain.ErrInvalidTransition)
	}
	t.active = tab
	return t.stateLocked(), nil
}

// Decide applies an approve, reject or hold decision.
func (t *TabSet) Decide(ctx context.Context, action domain.ReviewAction) (State, error) {
	t.mu.Lock()

	from := t.active
	if t.decided() {
		from = domain.TabFinal
	}
	to, complete, err := action.Transition(from)
	if err == nil && !slices.Contains(t.tabs, to) {
		err = fmt.Errorf("%w: %q is not configured", domain.ErrInvalidTransition, to)
	}
	if err != nil {
		t.mu.Unlock()
		return State{}, err
	}

	t.active = to
	t.decision = action
	if complete {
		t.complete = true
	}
	st := t.stateLocked()
	t.mu.Unlock()

	t.log.Info().Str("action", string(action)).Str("tab", string(to)).Msg("review decision")
	t.record(ctx, action)
	return st, nil
}

// SetPacket replaces the applicant data the tabs render.
func (t *TabSet) SetPacket(p domain.ApplicantPacket) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	p.ApplicationID = t.applicationID
	t.packet = &p
	return t.stateLocked()
}

// AddDocument appends a pending document to the checklist. A blank name
// leaves the checklist as it is.
func (t *TabSet) AddDocument(name string) State {
	name = strings.TrimSpace(name)

	t.mu.Lock()
	defer t.mu.Unlock()
	if name != "" {
		t.documents = append(t.documents, domain.ChecklistDocument{Name: name, Status: domain.DocumentPending})
	}
	return t.stateLocked()
}

// ToggleDocument flips an added document between pending and verified.
func (t *TabSet) ToggleDocument(index int) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index < 0 || index >= len(t.documents) {
		return State{}, fmt.Errorf("document %d: %w", index, domain.ErrNotFound)
	}
	doc := &t.documents[index]
	if doc.Status == domain.DocumentVerified {
		doc.Status = domain.DocumentPending
	} else {
		doc.Status = domain.DocumentVerified
	}
	return t.stateLocked(), nil
}

// decided reports whether a final decision (approve or reject) was taken.
func (t *TabSet) decided() bool {
	return t.decision == domain.ActionApprove || t.decision == domain.ActionReject
}

func (t *TabSet) stateLocked() State {
	return State{
		ApplicationID: t.applicationID,
		Tabs:          slices.Clone(t.tabs),
		ActiveTab:     t.active,
		Complete:      t.complete,
		Decision:      t.decision,
		Packet:        t.packet,
		Documents:     slices.Clone(t.documents),
	}
}

func (t *TabSet) record(ctx context.Context, action domain.ReviewAction) {
	if t.audit == nil {
		return
	}
	sess, _ := session.FromContext(ctx)
	entry := &domain.AuditEntry{
		SessionID: sess.ID,
		CompanyID: sess.CompanyID,
		Entity:    "loan_review",
		Action:    string(action),
		RecordID:  t.applicationID,
		Outcome:   domain.AuditSucceeded,
		At:        time.Now().UTC(),
	}
	if err := t.audit.InsertEntry(context.WithoutCancel(ctx), entry); err != nil {
		t.log.Warn().Err(err).Msg("audit write failed")
	}
}
