package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/models"
)

// Keys for waterfall frame state
const (
	stepIndexKey = "stepIndex"
	optionsKey   = "options"
	valuesKey    = "values"
)

// WaterfallStep is one step of a waterfall. Every step must finish with
// exactly one of three actions: advance silently via step.Next, suspend by
// pushing a child dialog (step.Prompt / step.BeginDialog), or finish the
// whole waterfall via step.EndDialog.
type WaterfallStep func(ctx context.Context, step *WaterfallStepContext) (models.DialogTurnResult, error)

// WaterfallStepContext is the ephemeral per-call view a step receives. It
// embeds the DialogContext so steps can push children or end the waterfall
// directly.
type WaterfallStepContext struct {
	*DialogContext

	// Index is the zero-based position of the running step.
	Index int

	// Reason explains why the step is running.
	Reason models.DialogReason

	// Options are the caller-supplied options from when the waterfall began.
	Options any

	// Result carries the prior step's Next value or a finished child
	// dialog's return value.
	Result any

	// Values is scratch memory shared by the steps of one activation,
	// persisted in the owning frame between turns.
	Values map[string]any

	onNext     func(ctx context.Context, result any) (models.DialogTurnResult, error)
	nextCalled bool
}

// Next advances to the following step in the same turn, handing it result.
func (sc *WaterfallStepContext) Next(ctx context.Context, result any) (models.DialogTurnResult, error) {
	if sc.nextCalled {
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("step %d already called Next", sc.Index)
	}
	sc.nextCalled = true
	return sc.onNext(ctx, result)
}

// WaterfallDialog is a dialog composed of an ordered list of steps, executed
// one per resumption. The current step index lives in the frame state so the
// waterfall resumes correctly after the process restarts.
type WaterfallDialog struct {
	BaseDialog
	steps []WaterfallStep
}

// NewWaterfallDialog creates a waterfall with the given steps.
func NewWaterfallDialog(id string, steps ...WaterfallStep) *WaterfallDialog {
	return &WaterfallDialog{
		BaseDialog: NewBaseDialog(id),
		steps:      steps,
	}
}

// AddStep appends a step. Only valid before the dialog is registered.
func (w *WaterfallDialog) AddStep(step WaterfallStep) *WaterfallDialog {
	w.steps = append(w.steps, step)
	return w
}

// BeginDialog stores the caller's options in the new frame and runs step 0.
func (w *WaterfallDialog) BeginDialog(ctx context.Context, dc *DialogContext, options any) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	instance.State[optionsKey] = options
	instance.State[valuesKey] = map[string]any{}
	slog.Debug("WaterfallDialog.BeginDialog: starting", "id", w.ID(), "steps", len(w.steps), "turnID", dc.Turn.TurnID)
	return w.runStep(ctx, dc, 0, models.DialogReasonBeginCalled, nil)
}

// ContinueDialog re-runs the current step with the raw inbound text. This is
// only reached when the step suspended without pushing a child dialog.
func (w *WaterfallDialog) ContinueDialog(ctx context.Context, dc *DialogContext) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	index := stateInt(instance.State, stepIndexKey)
	var text any
	if dc.Turn.Message != nil {
		text = dc.Turn.Message.Text
	}
	slog.Debug("WaterfallDialog.ContinueDialog: re-running current step", "id", w.ID(), "step", index, "turnID", dc.Turn.TurnID)
	return w.runStep(ctx, dc, index, models.DialogReasonContinueCalled, text)
}

// ResumeDialog advances to the next step, passing the finished child dialog's
// result.
func (w *WaterfallDialog) ResumeDialog(ctx context.Context, dc *DialogContext, reason models.DialogReason, result any) (models.DialogTurnResult, error) {
	instance := dc.ActiveDialog()
	index := stateInt(instance.State, stepIndexKey)
	slog.Debug("WaterfallDialog.ResumeDialog: advancing", "id", w.ID(), "fromStep", index, "reason", reason, "turnID", dc.Turn.TurnID)
	return w.runStep(ctx, dc, index+1, reason, result)
}

// runStep executes the step at index, or auto-ends the waterfall with the
// last produced value when the index runs past the final step.
func (w *WaterfallDialog) runStep(ctx context.Context, dc *DialogContext, index int, reason models.DialogReason, result any) (models.DialogTurnResult, error) {
	if index >= len(w.steps) {
		slog.Debug("WaterfallDialog.runStep: past final step, ending", "id", w.ID(), "turnID", dc.Turn.TurnID)
		return dc.EndDialog(ctx, result)
	}

	instance := dc.ActiveDialog()
	instance.State[stepIndexKey] = index
	sc := &WaterfallStepContext{
		DialogContext: dc,
		Index:         index,
		Reason:        reason,
		Options:       instance.State[optionsKey],
		Result:        result,
		Values:        stateValues(instance),
	}
	sc.onNext = func(ctx context.Context, nextResult any) (models.DialogTurnResult, error) {
		return w.runStep(ctx, dc, index+1, models.DialogReasonNextCalled, nextResult)
	}

	res, err := w.steps[index](ctx, sc)
	if err != nil {
		// Tag the failing step so the host can locate it; never retried here.
		return models.DialogTurnResult{Status: models.DialogTurnStatusEmpty},
			fmt.Errorf("waterfall %s step %d failed: %w", w.ID(), index, err)
	}
	return res, nil
}

// stateValues returns the activation's shared scratch map, rebuilding the
// typed map after a JSON reload.
func stateValues(instance *models.DialogInstance) map[string]any {
	if raw, ok := instance.State[valuesKey]; ok {
		if values, ok := raw.(map[string]any); ok {
			return values
		}
	}
	values := make(map[string]any)
	instance.State[valuesKey] = values
	return values
}

// stateInt reads an integer from frame state, tolerating the float64 and
// json.Number forms integers take after a JSON round trip.
func stateInt(state map[string]any, key string) int {
	switch v := state[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}
