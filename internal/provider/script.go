package provider

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/stupiduntilnot/sponsor/internal/conversation"
	"github.com/stupiduntilnot/sponsor/internal/model"
)

// Script is a scripted provider for development and tests. The script is a
// comma-separated action list consumed one action per call; the last action
// repeats once exhausted.
//
//	ok           reply with "scripted-ok"
//	msg:TEXT     reply with TEXT
//	msgb64:B64   reply with the base64-decoded text (for commas/newlines)
//	err:TEXT     fail with TEXT
//	sleep:MS     sleep, then reply
type Script struct {
	mu     sync.Mutex
	runner *scriptRunner
}

type action struct {
	kind string
	arg  string
}

// NewScript parses the script and returns the provider. An empty script
// behaves like "ok".
func NewScript(script string) (*Script, error) {
	runner, err := newRunner(script)
	if err != nil {
		return nil, err
	}
	return &Script{runner: runner}, nil
}

// ChatCompletion executes the next scripted action.
func (p *Script) ChatCompletion(ctx context.Context, _ []conversation.Message) (model.CompletionResponse, error) {
	p.mu.Lock()
	a := p.runner.next()
	p.mu.Unlock()

	switch a.kind {
	case "err":
		return model.CompletionResponse{}, errors.New(emptyAs(a.arg, "scripted provider error"))
	case "sleep":
		ms, _ := strconv.Atoi(a.arg)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return model.CompletionResponse{}, errors.Wrap(ctx.Err(), "scripted sleep interrupted")
			}
		}
		return reply("scripted-after-sleep"), nil
	case "msg":
		return reply(a.arg), nil
	case "msgb64":
		raw, err := base64.StdEncoding.DecodeString(a.arg)
		if err != nil {
			return model.CompletionResponse{}, errors.Wrap(err, "decode msgb64 action")
		}
		return reply(string(raw)), nil
	default:
		return reply("scripted-ok"), nil
	}
}

func reply(text string) model.CompletionResponse {
	return model.CompletionResponse{Content: text, InputTokens: 1, OutputTokens: 1}
}

type scriptRunner struct {
	actions []action
	index   int
}

func newRunner(script string) (*scriptRunner, error) {
	actions, err := parseScript(script)
	if err != nil {
		return nil, err
	}
	return &scriptRunner{actions: actions}, nil
}

func (r *scriptRunner) next() action {
	if len(r.actions) == 0 {
		return action{kind: "ok"}
	}
	if r.index >= len(r.actions) {
		return r.actions[len(r.actions)-1]
	}
	a := r.actions[r.index]
	r.index++
	return a
}

func parseScript(script string) ([]action, error) {
	if strings.TrimSpace(script) == "" {
		return []action{{kind: "ok"}}, nil
	}
	parts := strings.Split(script, ",")
	actions := make([]action, 0, len(parts))
	for _, p := range parts {
		token := strings.TrimSpace(p)
		if token == "" {
			continue
		}
		switch {
		case token == "ok":
			actions = append(actions, action{kind: "ok"})
		case strings.HasPrefix(token, "err:"):
			actions = append(actions, action{kind: "err", arg: strings.TrimPrefix(token, "err:")})
		case strings.HasPrefix(token, "sleep:"):
			actions = append(actions, action{kind: "sleep", arg: strings.TrimPrefix(token, "sleep:")})
		case strings.HasPrefix(token, "msg:"):
			actions = append(actions, action{kind: "msg", arg: strings.TrimPrefix(token, "msg:")})
		case strings.HasPrefix(token, "msgb64:"):
			actions = append(actions, action{kind: "msgb64", arg: strings.TrimPrefix(token, "msgb64:")})
		default:
			return nil, errors.Errorf("invalid script action: %s", token)
		}
	}
	if len(actions) == 0 {
		actions = append(actions, action{kind: "ok"})
	}
	return actions, nil
}

func emptyAs(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
