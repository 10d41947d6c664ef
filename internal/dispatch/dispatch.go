// internal/dispatch/dispatch.go
package dispatch

import (
	"context"
	"errors"

	"github.com/aiba-2502/denco-notify/internal/template"
	"github.com/aiba-2502/denco-notify/internal/types"
	"github.com/sirupsen/logrus"
)

/*
 * Action dispatch pipeline.
 *
 * For one matched rule action: template lookup -> optional summary enrichment
 * -> render -> resolve destination -> send with retry. Each step fails
 * independently without aborting sibling actions of the same rule; every
 * failure is captured into the DeliveryOutcome, never raised.
 *
 * Summary enrichment: when use_summary is set and the event carries
 * recognized text, the summarizer collaborator condenses it into the reserved
 * "summary" render variable. Summarizer failure degrades to rendering without
 * a summary.
 *
 * Missing render variables are a warning, not a failure: the message goes out
 * with placeholders intact and the names travel in the outcome.
 */

// SummaryVariable is the reserved render variable the summarizer fills.
// An event-supplied context variable of the same name is overwritten.
const SummaryVariable = "summary"

// Dispatcher executes the per-action delivery pipeline.
type Dispatcher struct {
	staff      StaffDirectory
	summarizer Summarizer
	sender     Sender
	retry      RetryPolicy
	log        *logrus.Entry
}

// NewDispatcher creates a dispatcher with its collaborators.
// summarizer may be nil when no summarization service is configured;
// use_summary actions then render without a summary.
func NewDispatcher(staff StaffDirectory, summarizer Summarizer, sender Sender, retry RetryPolicy, log *logrus.Logger) (*Dispatcher, error) {
	if staff == nil {
		return nil, errors.New("staff directory cannot be nil")
	}
	if sender == nil {
		return nil, errors.New("sender cannot be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		staff:      staff,
		summarizer: summarizer,
		sender:     sender,
		retry:      retry,
		log:        log.WithField("component", "dispatch"),
	}, nil
}

// Dispatch runs the pipeline for one action of a matched rule.
// actionIndex identifies the action within the rule's ordered list.
func (d *Dispatcher) Dispatch(ctx context.Context, rule *types.NotificationRule, actionIndex int, event *types.InboundEvent, snapshot *types.Snapshot) types.DeliveryOutcome {
	action := rule.Actions[actionIndex]
	outcome := types.DeliveryOutcome{
		EventID:     event.ID,
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		ActionIndex: actionIndex,
		Channel:     action.Channel,
	}

	// 1. Template lookup
	tmpl, ok := snapshot.Template(action.Config.TemplateID)
	if !ok {
		outcome.Status = types.OutcomeFailed
		outcome.ErrorKind = types.ErrorKindTemplateNotFound
		outcome.Error = types.ErrTemplateNotFound.Error()
		return outcome
	}

	// 2. Render, with optional summary enrichment
	vars := d.renderVariables(ctx, event, action.Config.UseSummary)
	message, missing := template.Render(tmpl.Content, vars)
	message = template.AppendCustomMessage(message, action.Config.CustomMessage)
	if len(missing) > 0 {
		outcome.ErrorKind = types.ErrorKindMissingVariable
		outcome.MissingVars = missing
		d.log.WithFields(logrus.Fields{
			"rule_id":  rule.ID,
			"template": tmpl.ID,
			"missing":  missing,
		}).Warn("template rendered with missing variables")
	}

	// 3. Resolve destination
	address, err := ResolveDestination(ctx, action.Config.Destination, action.Channel, d.staff)
	if err != nil {
		outcome.Status = types.OutcomeFailed
		outcome.ErrorKind = types.ErrorKindUnresolvedDestination
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Address = address

	// 4. Send with retry
	attempts, err := sendWithRetry(ctx, d.sender, d.retry, action.Channel, address, message)
	outcome.Attempts = attempts
	if err != nil {
		outcome.Status = types.OutcomeFailed
		if types.IsTransientSend(err) {
			outcome.ErrorKind = types.ErrorKindTransientSend
		} else {
			outcome.ErrorKind = types.ErrorKindPermanentSend
		}
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Status = types.OutcomeSucceeded
	return outcome
}

// renderVariables builds the variable bag for one action.
// Copies the event context so sibling actions never observe the summary merge.
func (d *Dispatcher) renderVariables(ctx context.Context, event *types.InboundEvent, useSummary bool) map[string]string {
	vars := make(map[string]string, len(event.Context)+1)
	for k, v := range event.Context {
		vars[k] = v
	}

	if useSummary && d.summarizer != nil && event.Text != "" {
		summary, err := d.summarizer.Summarize(ctx, event.Text)
		if err != nil {
			d.log.WithField("event_id", event.ID).WithError(err).Warn("summarizer failed, rendering without summary")
		} else {
			vars[SummaryVariable] = summary
		}
	}

	return vars
}
