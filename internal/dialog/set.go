package dialog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/messaging"
	"github.com/BTreeMap/DialogPipe/internal/models"
)

// DialogSet is the process-wide registry of dialog definitions. It is built
// once at startup and immutable afterwards; turn processing only reads it.
type DialogSet struct {
	dialogs  map[string]Dialog
	accessor *DialogStateAccessor
}

// NewDialogSet creates a dialog set bound to the given state accessor. The
// accessor may be nil for inner sets whose state lives inside an outer frame
// (see ComponentDialog); such sets cannot create contexts directly.
func NewDialogSet(accessor *DialogStateAccessor) *DialogSet {
	return &DialogSet{
		dialogs:  make(map[string]Dialog),
		accessor: accessor,
	}
}

// Add registers a dialog definition by id.
func (s *DialogSet) Add(d Dialog) error {
	if d == nil {
		return models.ErrNilDialog
	}
	id := d.ID()
	if id == "" {
		return models.ErrEmptyDialogID
	}
	if _, exists := s.dialogs[id]; exists {
		return fmt.Errorf("%w: %s", models.ErrDuplicateDialogID, id)
	}
	s.dialogs[id] = d
	slog.Debug("DialogSet.Add: dialog registered", "id", id)
	return nil
}

// Find retrieves a registered dialog by id.
func (s *DialogSet) Find(id string) (Dialog, bool) {
	d, ok := s.dialogs[id]
	return d, ok
}

// CreateContext loads the persisted dialog state for the turn's conversation
// and returns a DialogContext over it. It fails if the set was never bound to
// a state accessor.
func (s *DialogSet) CreateContext(ctx context.Context, tc *messaging.TurnContext) (*DialogContext, error) {
	if s.accessor == nil {
		slog.Error("DialogSet.CreateContext: no state accessor bound")
		return nil, models.ErrNoStateAccessor
	}
	state, err := s.accessor.Load(ctx, tc.ConversationKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load dialog state: %w", err)
	}
	slog.Debug("DialogSet.CreateContext: context created", "turnID", tc.TurnID, "stackDepth", len(state.DialogStack))
	return NewDialogContext(s, tc, state), nil
}

// SaveContext persists the context's dialog state back through the bound
// accessor. Hosts call it once at the end of a turn.
func (s *DialogSet) SaveContext(ctx context.Context, dc *DialogContext) error {
	if s.accessor == nil {
		return models.ErrNoStateAccessor
	}
	return s.accessor.Save(ctx, dc.Turn.ConversationKey, dc.State())
}
