package lark

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/application/service"
	"github.com/garyjia/asset-console/internal/domain/event"
	"github.com/garyjia/asset-console/internal/domain/module"
)

// ApproverNotifier tells the approver of a newly pending tier about the
// record. Approvers are matched by name against the recipients map.
type ApproverNotifier struct {
	sender     port.LarkMessageSender
	recipients map[string]string
	translator port.Translator
	logger     *zap.Logger
}

// NewApproverNotifier creates a notifier; recipients maps approver name to open_id
func NewApproverNotifier(sender port.LarkMessageSender, recipients map[string]string, translator port.Translator, logger *zap.Logger) *ApproverNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]string, len(recipients))
	for name, openID := range recipients {
		byName[strings.ToLower(strings.TrimSpace(name))] = openID
	}
	return &ApproverNotifier{sender: sender, recipients: byName, translator: translator, logger: logger}
}

// Handle is a dispatcher handler for workflow.decided events
func (n *ApproverNotifier) Handle(ctx context.Context, evt *event.Event) error {
	approver := evt.GetPayloadString(event.KeyApprover)
	if approver == "" {
		return nil
	}

	openID, ok := n.recipients[strings.ToLower(approver)]
	if !ok {
		n.logger.Debug("No Lark recipient for approver", zap.String("approver", approver))
		return nil
	}

	if err := n.sender.SendMessage(ctx, openID, n.text(evt, approver)); err != nil {
		return fmt.Errorf("notify %s: %w", approver, err)
	}
	return nil
}

// Remind sends an overdue reminder for a pending inbox item
func (n *ApproverNotifier) Remind(ctx context.Context, item service.PendingItem) error {
	openID, ok := n.recipients[strings.ToLower(item.Approver)]
	if !ok {
		return nil
	}

	text := fmt.Sprintf("[%s] %s is overdue for approval by %s (tier %d). Due %s.",
		n.label(item.Module.String(), item.ModuleName), item.RecordID, item.Approver, item.CurrentTier, item.DueDate)
	if err := n.sender.SendMessage(ctx, openID, text); err != nil {
		return fmt.Errorf("remind %s: %w", item.Approver, err)
	}
	return nil
}

func (n *ApproverNotifier) text(evt *event.Event, approver string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s is waiting for approval by %s (tier %d).",
		n.label(evt.Module, evt.GetPayloadString(event.KeyModuleName)), evt.RecordID, approver, evt.GetPayloadInt(event.KeyTier))
	if due := evt.GetPayloadString(event.KeyDueDate); due != "" {
		fmt.Fprintf(&b, " Due %s.", due)
	}
	if actor := evt.GetPayloadString(event.KeyActor); actor != "" {
		fmt.Fprintf(&b, " Last action by %s.", actor)
	}
	return b.String()
}

// label prefers the translated module label over the configuration name
func (n *ApproverNotifier) label(code, fallback string) string {
	if n.translator == nil {
		return fallback
	}
	c, err := module.Parse(code)
	if err != nil {
		return fallback
	}
	if label := n.translator.Translate(c.LabelKey()); label != c.LabelKey() {
		return label
	}
	return fallback
}
