package replay

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
)

// A Dialer opens a fresh Transport to the target for one replay; Sweep
// calls it once per descriptor plus once per re-baseline attempt.
type Dialer func() (Transport, error)

// A SweepResult reports the outcome of replaying one mutation
// descriptor: Err is nil on a clean run, a *ScenarioError when the
// scenario itself rejected the exchange, or a plain error on a
// transport failure.
type SweepResult struct {
	Descriptor *mutator.Descriptor
	Err        error
}

// Sweep replays scenario once per descriptor, each over a fresh
// connection from dial, binding the descriptor's mutation to its
// anchored outgoing message. Every descriptor's description and
// outcome is logged. A transport failure (anything other than a
// ScenarioError) triggers an unmutated re-baseline run to confirm the
// target is still reachable before continuing; two re-baseline
// failures in a row abort the sweep with a diagnostic error.
func Sweep(dial Dialer, self *diameter.DiameterEntity, scenario Scenario, descriptors []*mutator.Descriptor, log *zap.SugaredLogger) ([]SweepResult, error) {
	ids := diameter.NewSequenceGeneratorSet()

	var results []SweepResult
	consecutiveBaselineFailures := 0

	for _, d := range descriptors {
		runErr := replayOne(dial, self, scenario, anchoredMutateFunc(d, ids))
		results = append(results, SweepResult{Descriptor: d, Err: runErr})

		if runErr == nil {
			log.Infow(d.Description, "result", "ok")
			consecutiveBaselineFailures = 0
			continue
		}

		if isTransportFailure(runErr) {
			log.Errorw(d.Description, "result", "connection broken", "error", runErr)

			if baselineErr := runBaselineCheck(dial, self, scenario); baselineErr == nil {
				consecutiveBaselineFailures = 0
				continue
			}

			consecutiveBaselineFailures++
			log.Errorw("re-baseline failed", "consecutive_failures", consecutiveBaselineFailures)
			if consecutiveBaselineFailures >= 2 {
				return results, fmt.Errorf("two consecutive baseline failures after %q, target unreachable", d.Description)
			}
			continue
		}

		log.Warnw(d.Description, "result", "error", "error", runErr)
		consecutiveBaselineFailures = 0
	}

	return results, nil
}

// SweepStream is Sweep's streaming counterpart: rather than a
// pre-built []*mutator.Descriptor, it drives descriptors one at a
// time from produce, which must call its own yield callback once per
// descriptor and stop once that callback returns false. This is the
// shape mutator.ProprietarySweep already produces, so a proprietary-AVP
// sweep over a wide code range never has to materialize a descriptor
// per candidate code up front.
func SweepStream(dial Dialer, self *diameter.DiameterEntity, scenario Scenario, produce func(yield func(*mutator.Descriptor) bool), log *zap.SugaredLogger) error {
	ids := diameter.NewSequenceGeneratorSet()
	consecutiveBaselineFailures := 0
	var abortErr error

	produce(func(d *mutator.Descriptor) bool {
		runErr := replayOne(dial, self, scenario, anchoredMutateFunc(d, ids))

		if runErr == nil {
			log.Infow(d.Description, "result", "ok")
			consecutiveBaselineFailures = 0
			return true
		}

		if isTransportFailure(runErr) {
			log.Errorw(d.Description, "result", "connection broken", "error", runErr)

			if baselineErr := runBaselineCheck(dial, self, scenario); baselineErr == nil {
				consecutiveBaselineFailures = 0
				return true
			}

			consecutiveBaselineFailures++
			if consecutiveBaselineFailures >= 2 {
				abortErr = fmt.Errorf("two consecutive baseline failures after %q, target unreachable", d.Description)
				return false
			}
			return true
		}

		log.Warnw(d.Description, "result", "error", "error", runErr)
		consecutiveBaselineFailures = 0
		return true
	})

	return abortErr
}

func replayOne(dial Dialer, self *diameter.DiameterEntity, scenario Scenario, mutate MutateFunc) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = Run(conn, self, scenario, mutate)
	return err
}

func runBaselineCheck(dial Dialer, self *diameter.DiameterEntity, scenario Scenario) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = RunBaseline(conn, self, scenario)
	return err
}

// isTransportFailure reports whether err represents a broken
// connection rather than the scenario itself rejecting the exchange.
func isTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	var scenarioErr *ScenarioError
	return !errors.As(err, &scenarioErr)
}

// anchoredMutateFunc binds descriptor d to the outgoing message that
// matches its Anchor: every other outgoing message passes through
// unchanged. ids supplies fresh hop-by-hop/end-to-end identifiers for
// descriptors (Stutter) whose second transmission needs its own.
func anchoredMutateFunc(d *mutator.Descriptor, ids *diameter.SequenceGenerator) MutateFunc {
	return func(outgoingIndex int, msg *diameter.Message) ([]*diameter.Message, error) {
		if outgoingIndex != d.Anchor.OutgoingIndex || msg.Code != d.Anchor.Code || msg.IsRequest() != d.Anchor.IsRequest {
			return []*diameter.Message{msg}, nil
		}

		return d.Apply(msg.Clone(), func() (uint32, uint32) {
			return ids.NextHopByHopId(), ids.NextEndToEndId()
		})
	}
}
