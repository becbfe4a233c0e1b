// Package claim runs the claim dialog: select a donation, submit the
// receiver's details, and drop the donation from the session once accepted.
package claim

import (
	"context"
	"errors"
	"sync"

	"github.com/woozymasta/sharebite/internal/api"
	"github.com/woozymasta/sharebite/internal/donation"
	"github.com/woozymasta/sharebite/internal/view"

	"github.com/rs/zerolog/log"
)

// State of the claim dialog.
type State int

// Workflow states.
const (
	Idle State = iota
	Open
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Open:
		return "open"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Messages shown to the user.
const (
	MsgClaimed       = "Donation claimed successfully! You will receive an email with further instructions."
	MsgClaimFallback = "Failed to claim donation."
)

var (
	// ErrInFlight is returned while a claim request is outstanding.
	ErrInFlight = errors.New("a claim is already being submitted")
	// ErrNotOpen is returned when submitting without a selected donation.
	ErrNotOpen = errors.New("no donation selected")
	// ErrConflict is returned when the dialog is already open for another donation.
	ErrConflict = errors.New("the claim dialog is open for another donation")
)

// Claimer submits claims to the marketplace.
type Claimer interface {
	ClaimDonation(ctx context.Context, req donation.ClaimRequest) error
}

// Remover drops a claimed donation from the session and its views.
type Remover interface {
	Remove(id string) bool
}

// Form holds the receiver fields of the dialog.
type Form struct {
	Name  string `json:"receiver_name"`
	Email string `json:"receiver_email"`
	Phone string `json:"receiver_phone"`
}

// Workflow is one claim dialog instance. At most one request is in flight at a time.
type Workflow struct {
	claimer  Claimer
	remover  Remover
	modal    view.ModalView
	notifier view.Notifier

	donationID string
	form       Form
	state      State

	mu sync.Mutex
}

// New creates an idle workflow.
func New(claimer Claimer, remover Remover, modal view.ModalView, notifier view.Notifier) *Workflow {
	return &Workflow{
		claimer:  claimer,
		remover:  remover,
		modal:    modal,
		notifier: notifier,
	}
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Selected returns the donation the dialog is open for, if any.
func (w *Workflow) Selected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.donationID
}

// Form returns the retained form fields.
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Select opens the dialog for a donation. Selecting while open switches the
// donation; selecting while a request is in flight is refused.
func (w *Workflow) Select(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Submitting {
		return ErrInFlight
	}

	w.donationID = id
	w.transition(Open)
	w.modal.Show(id)

	return nil
}

// Submit sends the claim for the selected donation. Fields are validated
// before any request is made. On acceptance the donation is removed and the
// dialog closes; on rejection the dialog stays open with the form retained.
func (w *Workflow) Submit(ctx context.Context, form Form) error {
	w.mu.Lock()
	switch w.state {
	case Submitting:
		w.mu.Unlock()
		return ErrInFlight
	case Open:
	default:
		w.mu.Unlock()
		return ErrNotOpen
	}

	return w.submit(ctx, form, false)
}

// Claim selects id and submits form in one step, so the request is always
// sent for id. It is refused while a request is in flight or while the
// dialog is open for another donation. A dialog opened by Claim is closed
// again when the claim fails.
func (w *Workflow) Claim(ctx context.Context, id string, form Form) error {
	w.mu.Lock()
	opened := false
	switch w.state {
	case Submitting:
		w.mu.Unlock()
		return ErrInFlight
	case Open:
		if w.donationID != id {
			w.mu.Unlock()
			return ErrConflict
		}
	default:
		w.donationID = id
		w.transition(Open)
		w.modal.Show(id)
		opened = true
	}

	return w.submit(ctx, form, opened)
}

// submit runs the request for the selected donation. Callers hold mu in the
// Open state; it is released here.
func (w *Workflow) submit(ctx context.Context, form Form, closeOnFailure bool) error {
	w.form = form
	req := donation.ClaimRequest{
		DonationID:    w.donationID,
		ReceiverName:  form.Name,
		ReceiverEmail: form.Email,
		ReceiverPhone: form.Phone,
	}
	if err := req.Validate(); err != nil {
		if closeOnFailure {
			w.reset()
		}
		w.mu.Unlock()
		w.notifier.Notify("Error: " + err.Error())
		return err
	}

	w.transition(Submitting)
	w.mu.Unlock()

	err := w.claimer.ClaimDonation(ctx, req)

	w.mu.Lock()
	if err != nil {
		w.transition(Failed)
		w.transition(Open)
		if closeOnFailure {
			w.reset()
		}
		w.mu.Unlock()

		log.Warn().Err(err).Str("donation", req.DonationID).Msg("Claim failed")
		w.notifier.Notify("Error: " + api.Detail(err, MsgClaimFallback))
		return err
	}

	w.transition(Succeeded)
	w.reset()
	w.mu.Unlock()

	w.remover.Remove(req.DonationID)
	log.Info().Str("donation", req.DonationID).Msg("Donation claimed")
	w.notifier.Notify(MsgClaimed)

	return nil
}

// Close dismisses the dialog and clears the form. It is refused while a request is in flight.
func (w *Workflow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == Submitting {
		return ErrInFlight
	}
	if w.state != Idle {
		w.reset()
	}

	return nil
}

// reset returns to Idle. Callers hold mu.
func (w *Workflow) reset() {
	w.donationID = ""
	w.form = Form{}
	w.transition(Idle)
	w.modal.Hide()
}

func (w *Workflow) transition(next State) {
	log.Trace().
		Stringer("from", w.state).
		Stringer("to", next).
		Str("donation", w.donationID).
		Msg("Claim state changed")
	w.state = next
}
