package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/starORAIT/HRAgent/pkg/core"
)

const classifySystemPrompt = "You are a professional HR assistant."

const classifyUserPrompt = `Decide whether the following inbound email carries a candidate resume.

Subject: %s
From: %s
Body excerpt:
%s

Company position list (pick strictly from this list):
%s

Answer only with a JSON object, no explanations or code fences:
{
  "is_resume": false,
  "matched_position": "",
  "matched_channel": ""
}
"matched_position" must exactly equal one entry from the position list.`

// maxClassifyExcerpt bounds how much body text goes into the prompt.
const maxClassifyExcerpt = 2000

// Positions configures the labels classification may assign. Empty means
// any label the model returns is accepted.
func (c *Client) Positions(labels []string) {
	c.positions = labels
}

type classifyVerdict struct {
	IsResume        bool   `json:"is_resume"`
	MatchedPosition string `json:"matched_position"`
	MatchedChannel  string `json:"matched_channel"`
}

// Classify asks the model whether the item is a resume and which position
// and source channel it matches.
func (c *Client) Classify(ctx context.Context, item *core.WorkItem) (core.Classification, error) {
	excerpt := item.Content
	if len(excerpt) > maxClassifyExcerpt {
		excerpt = excerpt[:maxClassifyExcerpt]
	}

	user := fmt.Sprintf(classifyUserPrompt,
		item.Subject, item.FromAddress, excerpt, strings.Join(c.positions, ", "))

	content, err := c.complete(ctx, classifySystemPrompt, user)
	if err != nil {
		return core.Classification{}, err
	}

	raw, err := extractJSON(content)
	if err != nil {
		return core.Classification{}, core.Malformed(err)
	}

	var verdict classifyVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return core.Classification{}, core.Malformed(fmt.Errorf("parse classification: %w", err))
	}

	if !verdict.IsResume {
		return core.Classification{InScope: false, Reason: "not a resume"}, nil
	}
	return core.Classification{
		InScope: true,
		Label:   verdict.MatchedPosition,
		Channel: verdict.MatchedChannel,
	}, nil
}
