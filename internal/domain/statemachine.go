package domain

// legalSources lists the states a transition may fire from. The table mirrors
// the hosting order system's payment workflow; this package only answers
// "is transition X legal right now" and "apply X".
var legalSources = map[Transition][]PaymentState{
	TransitionProcess:   {StateNew},
	TransitionAuthorize: {StateNew, StateProcessing},
	TransitionComplete:  {StateNew, StateProcessing, StateAuthorized},
	TransitionFail:      {StateNew, StateProcessing, StateAuthorized},
	TransitionCancel:    {StateNew, StateProcessing, StateAuthorized},
}

// targetStates maps each transition to the state it lands in.
var targetStates = map[Transition]PaymentState{
	TransitionProcess:   StateProcessing,
	TransitionAuthorize: StateAuthorized,
	TransitionComplete:  StateCompleted,
	TransitionFail:      StateFailed,
	TransitionCancel:    StateCancelled,
}

// StateMachine drives a single payment through the transition table. It holds
// no state of its own beyond the payment it wraps; callers persist the payment
// after a successful Apply.
type StateMachine struct {
	payment *Payment
}

// NewStateMachine wraps a payment for transition checks and application.
func NewStateMachine(payment *Payment) *StateMachine {
	return &StateMachine{payment: payment}
}

// State returns the payment's current state.
func (m *StateMachine) State() PaymentState {
	return m.payment.State
}

// Can reports whether the given transition is legal from the current state.
func (m *StateMachine) Can(transition Transition) bool {
	sources, ok := legalSources[transition]
	if !ok {
		return false
	}
	for _, s := range sources {
		if s == m.payment.State {
			return true
		}
	}
	return false
}

// Apply fires the transition, mutating the payment state. Illegal transitions
// return an ILLEGAL_TRANSITION domain error and leave the payment untouched.
func (m *StateMachine) Apply(transition Transition) error {
	if !m.Can(transition) {
		return NewDomainError(ErrorCodeIllegalTransition,
			"cannot apply transition "+string(transition)+" from state "+string(m.payment.State))
	}
	m.payment.State = targetStates[transition]
	return nil
}
