package engine

import (
	"bytes"
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Action decides what happens to a message containing forbidden words.
type Action string

const (
	ActionDrop Action = "drop" // flagged messages are removed from the stream
	ActionTag  Action = "tag"  // flagged messages pass with a "moderation" field
)

// Checker finds forbidden words in a text.
type Checker interface {
	FindForbiddenWords(ctx context.Context, text string) ([]string, error)
}

// ModerationConfig holds configuration for creating a ModerationProcessor.
type ModerationConfig struct {
	Name     string
	TextPath string // user path with '/' separators, e.g. "message/text"
	Action   Action
}

// ModerationProcessor checks chat messages for forbidden words.
// JSON messages are read at TextPath; any other line is treated as raw text.
type ModerationProcessor struct {
	name     string
	checker  Checker
	textPath string // gjson path
	action   Action
}

// NewModerationProcessor creates a processor that checks the text at cfg.TextPath.
// Action defaults to drop.
func NewModerationProcessor(checker Checker, cfg ModerationConfig) (*ModerationProcessor, error) {
	if checker == nil {
		return nil, errors.New("moderation processor needs a checker")
	}
	if cfg.Action == "" {
		cfg.Action = ActionDrop
	}
	if cfg.Action != ActionDrop && cfg.Action != ActionTag {
		return nil, errors.Errorf("unknown moderation action %q", cfg.Action)
	}
	if cfg.TextPath == "" {
		cfg.TextPath = "text"
	}
	return &ModerationProcessor{
		name:     cfg.Name,
		checker:  checker,
		textPath: convertToGjsonPath(cfg.TextPath),
		action:   cfg.Action,
	}, nil
}

func (p *ModerationProcessor) Name() string {
	return p.name
}

func (p *ModerationProcessor) Process(ctx *ProcessingContext, msg []byte) ([]byte, bool, error) {
	body := bytes.TrimRight(msg, "\r\n")
	// Only objects carry fields; JSON strings and arrays are moderated as raw text.
	isJSON := gjson.ValidBytes(body) && gjson.ParseBytes(body).IsObject()

	var text string
	if isJSON {
		// Fail-open: a JSON message without a text field carries nothing to moderate.
		v := gjson.GetBytes(body, p.textPath)
		if !v.Exists() {
			return msg, false, nil
		}
		text = v.String()
	} else {
		text = string(body)
	}

	var c context.Context = context.Background()
	if ctx != nil && ctx.Context != nil {
		c = ctx
	}
	words, err := p.checker.FindForbiddenWords(c, text)
	if err != nil {
		return msg, false, errors.Wrapf(err, "%s: moderate message", p.name)
	}
	if len(words) == 0 {
		return msg, false, nil
	}
	if ctx != nil {
		ctx.Flagged = true
	}

	if p.action == ActionDrop {
		return msg, true, nil
	}

	tagged, err := tag(body, text, isJSON, words)
	if err != nil {
		return msg, false, errors.Wrapf(err, "%s: tag message", p.name)
	}
	return append(tagged, '\n'), false, nil
}

// tag records the verdict on the message. Plain-text lines are wrapped into a
// JSON object first.
func tag(body []byte, text string, isJSON bool, words []string) ([]byte, error) {
	out := body
	if !isJSON {
		var err error
		if out, err = sjson.SetBytes([]byte(`{}`), "text", text); err != nil {
			return nil, err
		}
	} else {
		out = append([]byte(nil), body...)
	}

	out, err := sjson.SetBytes(out, "moderation.flagged", true)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(out, "moderation.words", words)
}

// convertToGjsonPath converts a '/'-separated path to a gjson path, keeping
// dots inside key names literal.
// Example: "payload/chat.text" -> "payload.chat\.text"
func convertToGjsonPath(userPath string) string {
	parts := strings.Split(userPath, "/")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, ".", "\\.")
	}
	return strings.Join(parts, ".")
}
