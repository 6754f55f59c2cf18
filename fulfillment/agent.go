// Package fulfillment wraps a Dialogflow ES webhook request and accumulates
// the matching webhook response.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/dialogflow/apiv2/dialogflowpb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ErrUnknownIntent is returned by HandleRequest when the detected intent
// has no handler in the intent map.
var ErrUnknownIntent = errors.New("no handler for intent")

// Responder delivers the final webhook response to the platform.
type Responder func(resp *dialogflowpb.WebhookResponse) error

// Agent exposes the fields of one webhook request and collects the
// fulfillment messages and contexts of its response.
//
// An Agent serves a single request and is not safe for concurrent use.
type Agent struct {
	req  *dialogflowpb.WebhookRequest
	resp *dialogflowpb.WebhookResponse
	send Responder
}

// NewAgent wraps req. The response starts with the request's own
// fulfillment messages and output contexts, so anything Dialogflow already
// resolved is echoed back unless the handler clears it.
func NewAgent(req *dialogflowpb.WebhookRequest, send Responder) *Agent {
	qr := req.GetQueryResult()

	return &Agent{
		req: req,
		resp: &dialogflowpb.WebhookResponse{
			FulfillmentMessages: cloneMessages(qr.GetFulfillmentMessages()),
			OutputContexts:      cloneContexts(qr.GetOutputContexts()),
		},
		send: send,
	}
}

func (a *Agent) ResponseID() string { return a.req.GetResponseId() }

func (a *Agent) Session() string { return a.req.GetSession() }

// Query is the original text of the user's utterance.
func (a *Agent) Query() string { return a.req.GetQueryResult().GetQueryText() }

func (a *Agent) Parameters() *structpb.Struct { return a.req.GetQueryResult().GetParameters() }

func (a *Agent) AllRequiredParamsPresent() bool {
	return a.req.GetQueryResult().GetAllRequiredParamsPresent()
}

func (a *Agent) FulfillmentText() string { return a.req.GetQueryResult().GetFulfillmentText() }

func (a *Agent) FulfillmentMessages() []*dialogflowpb.Intent_Message {
	return a.req.GetQueryResult().GetFulfillmentMessages()
}

func (a *Agent) OutputContexts() []*dialogflowpb.Context {
	return a.req.GetQueryResult().GetOutputContexts()
}

func (a *Agent) Intent() *dialogflowpb.Intent { return a.req.GetQueryResult().GetIntent() }

func (a *Agent) IntentDetectionConfidence() float32 {
	return a.req.GetQueryResult().GetIntentDetectionConfidence()
}

func (a *Agent) DiagnosticInfo() *structpb.Struct {
	return a.req.GetQueryResult().GetDiagnosticInfo()
}

func (a *Agent) LanguageCode() string { return a.req.GetQueryResult().GetLanguageCode() }

func (a *Agent) OriginalDetectIntentRequest() *dialogflowpb.OriginalDetectIntentRequest {
	return a.req.GetOriginalDetectIntentRequest()
}

// Parameter returns the named query parameter and whether it was present.
func (a *Agent) Parameter(name string) (*structpb.Value, bool) {
	v, ok := a.Parameters().GetFields()[name]
	return v, ok
}

// Context returns the request context whose id (the last segment of its
// resource name) matches name, or nil.
func (a *Agent) Context(name string) *dialogflowpb.Context {
	for _, c := range a.OutputContexts() {
		if strings.EqualFold(contextID(c.GetName()), name) {
			return c
		}
	}
	return nil
}

// ContextPath returns the full resource name of context name in the
// current session.
func (a *Agent) ContextPath(name string) string {
	return a.Session() + "/contexts/" + name
}

// NewContext builds a context in the current session, ready for AddContext.
func (a *Agent) NewContext(name string, lifespan int32, params map[string]any) (*dialogflowpb.Context, error) {
	c := &dialogflowpb.Context{
		Name:          a.ContextPath(name),
		LifespanCount: lifespan,
	}

	if len(params) > 0 {
		s, err := structpb.NewStruct(params)
		if err != nil {
			return nil, fmt.Errorf("failed to build parameters of context %s: %w", name, err)
		}
		c.Parameters = s
	}

	return c, nil
}

// Add appends one text message per argument, in order. Calling it with no
// arguments leaves the response untouched.
func (a *Agent) Add(texts ...string) {
	for _, t := range texts {
		a.resp.FulfillmentMessages = append(a.resp.FulfillmentMessages, TextMessage(t))
	}
}

// ClearFulfillments drops every message collected so far, including the
// ones echoed from the request.
func (a *Agent) ClearFulfillments() {
	a.resp.FulfillmentMessages = []*dialogflowpb.Intent_Message{}
}

// AddContext appends contexts in order. Nil entries are skipped.
func (a *Agent) AddContext(contexts ...*dialogflowpb.Context) {
	for _, c := range contexts {
		if c == nil {
			continue
		}
		a.resp.OutputContexts = append(a.resp.OutputContexts, c)
	}
}

func (a *Agent) ClearContexts() {
	a.resp.OutputContexts = []*dialogflowpb.Context{}
}

// Response returns the response collected so far.
func (a *Agent) Response() *dialogflowpb.WebhookResponse {
	return a.resp
}

// HandleRequest runs the handler registered for the detected intent and
// then delivers the response exactly once. Nothing is delivered when the
// intent is unknown or the handler fails; the error is returned instead.
func (a *Agent) HandleRequest(ctx context.Context, intents IntentMap) error {
	name := a.Intent().GetDisplayName()

	handler, ok := intents.Lookup(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownIntent, name)
	}

	if err := handler(ctx, a); err != nil {
		return fmt.Errorf("intent %q: %w", name, err)
	}

	return a.send(a.resp)
}

// TextMessage wraps text in a platform-neutral text message. Invalid UTF-8
// is replaced with U+FFFD since protojson refuses to encode it.
func TextMessage(text string) *dialogflowpb.Intent_Message {
	return &dialogflowpb.Intent_Message{
		Message: &dialogflowpb.Intent_Message_Text_{
			Text: &dialogflowpb.Intent_Message_Text{Text: []string{strings.ToValidUTF8(text, "\uFFFD")}},
		},
	}
}

func contextID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func cloneMessages(src []*dialogflowpb.Intent_Message) []*dialogflowpb.Intent_Message {
	if src == nil {
		return nil
	}
	return append([]*dialogflowpb.Intent_Message{}, src...)
}

func cloneContexts(src []*dialogflowpb.Context) []*dialogflowpb.Context {
	if src == nil {
		return nil
	}
	return append([]*dialogflowpb.Context{}, src...)
}
