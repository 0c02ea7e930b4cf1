// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"

	"github.com/pdiddy/review-engine/pkg/types"
)

// ChatAnswer is the backend's reply to an article question.
type ChatAnswer struct {
	Response   string `json:"response"`
	Confidence string `json:"confidence"`
}

// historyEntry is the wire form of one prior turn. The backend replays
// these as alternating user/assistant messages.
type historyEntry struct {
	Q string `json:"q"`
	A string `json:"a"`
}

type askRequest struct {
	ArticleContent string         `json:"article_content"`
	Query          string         `json:"query"`
	Context        string         `json:"context"`
	History        []historyEntry `json:"history"`
}

// AskAboutArticle sends a question grounded on the given article content
// (abstract or full text), replaying the prior thread so the conversation
// stays coherent across turns.
func (c *Client) AskAboutArticle(ctx context.Context, content, question, chatContext string, history []types.ChatTurn) (ChatAnswer, error) {
	req := askRequest{
		ArticleContent: content,
		Query:          question,
		Context:        chatContext,
		History:        make([]historyEntry, 0, len(history)),
	}
	for _, turn := range history {
		req.History = append(req.History, historyEntry{Q: turn.Question, A: turn.Answer})
	}

	var answer ChatAnswer
	if err := c.postJSON(ctx, "/ask-about-article", req, &answer); err != nil {
		return ChatAnswer{}, err
	}
	return answer, nil
}
