package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BTreeMap/DialogPipe/internal/models"
	"github.com/BTreeMap/DialogPipe/internal/store"
)

// DefaultStateKeyPrefix namespaces dialog state records in the backing store.
const DefaultStateKeyPrefix = "dialogstate"

// DialogStateAccessor loads and saves DialogState records through the generic
// Storage contract. One record is kept per conversation key.
type DialogStateAccessor struct {
	storage   store.Storage
	keyPrefix string
}

// NewDialogStateAccessor creates an accessor over the given storage using the
// default key prefix.
func NewDialogStateAccessor(storage store.Storage) *DialogStateAccessor {
	return &DialogStateAccessor{storage: storage, keyPrefix: DefaultStateKeyPrefix}
}

// NewDialogStateAccessorWithPrefix creates an accessor using a custom key
// prefix, for hosts that keep several independent stacks per conversation.
func NewDialogStateAccessorWithPrefix(storage store.Storage, keyPrefix string) *DialogStateAccessor {
	return &DialogStateAccessor{storage: storage, keyPrefix: keyPrefix}
}

func (a *DialogStateAccessor) storageKey(conversationKey string) string {
	return a.keyPrefix + "/" + conversationKey
}

// Load reads the persisted DialogState for a conversation. Missing or
// corrupted records degrade to an empty stack rather than failing the turn;
// only storage-level failures are returned as errors.
func (a *DialogStateAccessor) Load(ctx context.Context, conversationKey string) (*models.DialogState, error) {
	key := a.storageKey(conversationKey)
	records, err := a.storage.Read(ctx, []string{key})
	if err != nil {
		slog.Error("DialogStateAccessor.Load: storage read failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to read dialog state: %w", err)
	}

	record, ok := records[key]
	if !ok {
		slog.Debug("DialogStateAccessor.Load: no persisted state", "key", key)
		return &models.DialogState{}, nil
	}

	raw, ok := record["dialogStack"]
	if !ok {
		slog.Warn("DialogStateAccessor.Load: record missing dialogStack, starting empty", "key", key)
		return &models.DialogState{}, nil
	}

	// Round-trip through JSON to rebuild typed frames from the generic record.
	data, err := json.Marshal(raw)
	if err != nil {
		slog.Warn("DialogStateAccessor.Load: malformed dialogStack, starting empty", "error", err, "key", key)
		return &models.DialogState{}, nil
	}
	var stack []*models.DialogInstance
	if err := json.Unmarshal(data, &stack); err != nil {
		slog.Warn("DialogStateAccessor.Load: malformed dialogStack, starting empty", "error", err, "key", key)
		return &models.DialogState{}, nil
	}
	for _, instance := range stack {
		if instance.State == nil {
			instance.State = make(map[string]any)
		}
	}
	slog.Debug("DialogStateAccessor.Load: state loaded", "key", key, "stackDepth", len(stack))
	return &models.DialogState{DialogStack: stack}, nil
}

// Save writes the DialogState for a conversation back to storage.
func (a *DialogStateAccessor) Save(ctx context.Context, conversationKey string, state *models.DialogState) error {
	key := a.storageKey(conversationKey)
	stack := make([]any, 0, len(state.DialogStack))
	for _, instance := range state.DialogStack {
		stack = append(stack, instance)
	}
	changes := map[string]map[string]any{
		key: {"dialogStack": stack},
	}
	if err := a.storage.Write(ctx, changes); err != nil {
		slog.Error("DialogStateAccessor.Save: storage write failed", "error", err, "key", key)
		return fmt.Errorf("failed to write dialog state: %w", err)
	}
	slog.Debug("DialogStateAccessor.Save: state saved", "key", key, "stackDepth", len(state.DialogStack))
	return nil
}

// Delete removes the persisted DialogState for a conversation.
func (a *DialogStateAccessor) Delete(ctx context.Context, conversationKey string) error {
	key := a.storageKey(conversationKey)
	if err := a.storage.Delete(ctx, []string{key}); err != nil {
		slog.Error("DialogStateAccessor.Delete: storage delete failed", "error", err, "key", key)
		return fmt.Errorf("failed to delete dialog state: %w", err)
	}
	slog.Debug("DialogStateAccessor.Delete: state deleted", "key", key)
	return nil
}
